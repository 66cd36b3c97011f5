package form_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian/internal/form"
	_ "github.com/meridian-erp/meridian/testing"
)

type widgetForm struct {
	Code      string  `validate:"required,min=2,max=10"`
	Kind      string  `validate:"required,oneof=Simple Compound 'Multi Part'"`
	OwnerRef  string  `validate:"omitempty,uuid4"`
	Color     string  `validate:"omitempty,hexcolor"`
	Rate      float64 `validate:"gte=0,lte=100"`
	BatchSize int     `validate:"gte=0"`
}

var widgetSchema = form.NewSchema(map[string]form.Field{
	"Code":      {Name: "code", Label: "Widget code"},
	"Kind":      {Name: "kind", Label: "Kind"},
	"OwnerRef":  {Name: "owner_ref", Label: "Owner"},
	"Color":     {Name: "color", Label: "Color"},
	"Rate":      {Name: "rate", Label: "Rate"},
	"BatchSize": {Name: "batch_size", Label: "Batch size"},
})

func TestValidateAllValid(t *testing.T) {
	errs := widgetSchema.Validate(widgetForm{
		Code:     "WID-1",
		Kind:     "Multi Part",
		OwnerRef: "7f9c24e5-2b1a-4f0e-9d3c-8a6e5b4c3d2e",
		Color:    "#3366ff",
		Rate:     19.5,
	})
	assert.Empty(t, errs)
}

func TestValidateRequired(t *testing.T) {
	errs := widgetSchema.Validate(widgetForm{})
	require.Contains(t, errs, "code")
	require.Contains(t, errs, "kind")
	assert.Equal(t, "Widget code is required", errs["code"])
	assert.Equal(t, "Kind is required", errs["kind"])
}

func TestValidateEnumRejectsUnknownLiteral(t *testing.T) {
	errs := widgetSchema.Validate(widgetForm{Code: "WID-1", Kind: "Complicated"})
	assert.Equal(t, "Kind is required", errs["kind"])
}

func TestValidateEnumAcceptsQuotedMultiWordLiteral(t *testing.T) {
	errs := widgetSchema.Validate(widgetForm{Code: "WID-1", Kind: "Multi Part"})
	assert.NotContains(t, errs, "kind")
}

func TestValidateStringMin(t *testing.T) {
	errs := widgetSchema.Validate(widgetForm{Code: "W", Kind: "Simple"})
	assert.Equal(t, "Widget code must be at least 2 characters", errs["code"])
}

func TestValidateInclusiveBounds(t *testing.T) {
	errs := widgetSchema.Validate(widgetForm{Code: "WID-1", Kind: "Simple", Rate: 100})
	assert.NotContains(t, errs, "rate", "boundary value is inside the range")

	errs = widgetSchema.Validate(widgetForm{Code: "WID-1", Kind: "Simple", Rate: 100.01})
	assert.Equal(t, "Rate must be at most 100", errs["rate"])

	errs = widgetSchema.Validate(widgetForm{Code: "WID-1", Kind: "Simple", Rate: -1})
	assert.Equal(t, "Rate must be at least 0", errs["rate"])
}

func TestValidateUUIDReference(t *testing.T) {
	errs := widgetSchema.Validate(widgetForm{Code: "WID-1", Kind: "Simple", OwnerRef: "not-a-uuid"})
	assert.Equal(t, "Owner must be a valid reference", errs["owner_ref"])

	errs = widgetSchema.Validate(widgetForm{Code: "WID-1", Kind: "Simple", OwnerRef: ""})
	assert.NotContains(t, errs, "owner_ref", "blank optional reference passes")
}

func TestValidateHexColor(t *testing.T) {
	errs := widgetSchema.Validate(widgetForm{Code: "WID-1", Kind: "Simple", Color: "blue"})
	assert.Equal(t, "Color must be a hex color", errs["color"])
}

func TestMessageOverride(t *testing.T) {
	schema := form.NewSchema(map[string]form.Field{
		"Code": {Name: "code", Label: "Code", Messages: map[string]string{"required": "Give the widget a code"}},
	})
	errs := schema.Validate(struct {
		Code string `validate:"required"`
	}{})
	assert.Equal(t, "Give the widget a code", errs["code"])
}

func TestBoolCheckboxCoercion(t *testing.T) {
	assert.True(t, form.Bool(url.Values{"active": {"on"}}, "active"))
	assert.True(t, form.Bool(url.Values{"active": {"true"}}, "active"))
	assert.True(t, form.Bool(url.Values{"active": {"1"}}, "active"))
	assert.False(t, form.Bool(url.Values{}, "active"), "unticked checkboxes are omitted entirely")
	assert.False(t, form.Bool(url.Values{"active": {"off"}}, "active"))
}

func TestFloatCoercion(t *testing.T) {
	errs := map[string]string{}
	assert.Equal(t, 12.5, form.Float(url.Values{"rate": {"12.5"}}, "rate", "Rate", errs))
	assert.Empty(t, errs)

	assert.Equal(t, 0.0, form.Float(url.Values{"rate": {""}}, "rate", "Rate", errs))
	assert.Empty(t, errs, "blank optional numeric coerces to zero without error")

	assert.Equal(t, 0.0, form.Float(url.Values{"rate": {"twelve"}}, "rate", "Rate", errs))
	assert.Equal(t, "Rate must be a number", errs["rate"])
}

func TestIntCoercion(t *testing.T) {
	errs := map[string]string{}
	assert.Equal(t, 7, form.Int(url.Values{"days": {"7"}}, "days", "Days", errs))
	assert.Equal(t, 0, form.Int(url.Values{"days": {"7.5"}}, "days", "Days", errs))
	assert.Equal(t, "Days must be a whole number", errs["days"])
}

func TestIDCoercion(t *testing.T) {
	assert.Equal(t, int64(42), form.ID(url.Values{"group_id": {"42"}}, "group_id"))
	assert.Equal(t, int64(0), form.ID(url.Values{}, "group_id"))
	assert.Equal(t, int64(0), form.ID(url.Values{"group_id": {"abc"}}, "group_id"))
}

func TestDecimalCoercion(t *testing.T) {
	errs := map[string]string{}
	d := form.Decimal(url.Values{"total": {"1999.99"}}, "total", "Total", errs)
	assert.Equal(t, "1999.99", d.String())

	form.Decimal(url.Values{"total": {"lots"}}, "total", "Total", errs)
	assert.Equal(t, "Total must be an amount", errs["total"])
}

func TestDateCoercion(t *testing.T) {
	errs := map[string]string{}
	d := form.Date(url.Values{"order_date": {"2026-03-15"}}, "order_date", "Order date", errs)
	assert.Equal(t, 2026, d.Year())
	assert.Empty(t, errs)

	form.Date(url.Values{"order_date": {"15/03/2026"}}, "order_date", "Order date", errs)
	assert.Equal(t, "Order date must be a date", errs["order_date"])
}
