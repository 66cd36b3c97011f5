package purchasing

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/meridian-erp/meridian/testing"
)

func formRequest(t *testing.T, form url.Values) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/purchasing/orders", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	require.NoError(t, req.ParseForm())
	return req
}

func validOrderForm() url.Values {
	return url.Values{
		"number":      {"PO-2026-0042"},
		"supplier_id": {"3"},
		"order_date":  {"2026-03-15"},
		"order_type":  {"Purchase"},
		"status":      {"Draft"},
		"total":       {"1250.00"},
		"notes":       {"Rush delivery"},
	}
}

func TestParseOrderFormValid(t *testing.T) {
	in, errs := parseOrderForm(formRequest(t, validOrderForm()), nil, false)
	require.Empty(t, errs)

	assert.Equal(t, "PO-2026-0042", in.Order.Number)
	assert.Equal(t, int64(3), in.Order.SupplierID)
	assert.Equal(t, "Purchase", in.Order.OrderType)
	assert.Equal(t, "Draft", in.Order.Status)
	assert.True(t, in.Order.Total.Equal(decimal.RequireFromString("1250.00")))
	assert.True(t, in.Order.Active, "new orders start active")
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), in.Order.OrderDate)
}

func TestParseOrderFormMissingFields(t *testing.T) {
	_, errs := parseOrderForm(formRequest(t, url.Values{}), nil, false)

	assert.Equal(t, "Order number is required", errs["number"])
	assert.Equal(t, "Supplier is required", errs["supplier_id"])
	assert.Equal(t, "Order date is required", errs["order_date"])
	assert.Equal(t, "Order type is required", errs["order_type"])
	assert.NotContains(t, errs, "status", "new orders default to Draft")
}

func TestParseOrderFormNewDefaultsToDraft(t *testing.T) {
	f := validOrderForm()
	f.Del("status")
	in, errs := parseOrderForm(formRequest(t, f), nil, false)

	require.Empty(t, errs)
	assert.Equal(t, StatusDraft, in.Order.Status)
}

func TestParseOrderFormRejectsUnknownStatus(t *testing.T) {
	f := validOrderForm()
	f.Set("status", "Shipped")
	_, errs := parseOrderForm(formRequest(t, f), nil, false)

	assert.Equal(t, "Status is required", errs["status"])
}

func TestParseOrderFormAcceptsMultiWordStatus(t *testing.T) {
	f := validOrderForm()
	f.Set("status", "To Receive and Invoice")
	in, errs := parseOrderForm(formRequest(t, f), nil, false)

	require.Empty(t, errs)
	assert.Equal(t, "To Receive and Invoice", in.Order.Status)
}

func TestParseOrderFormBadAmount(t *testing.T) {
	f := validOrderForm()
	f.Set("total", "one thousand")
	_, errs := parseOrderForm(formRequest(t, f), nil, false)

	assert.Equal(t, "Total must be an amount", errs["total"])
}

func TestParseOrderFormKeepsExistingIdentity(t *testing.T) {
	existing := &PurchaseOrder{ID: 9, Active: false, OrderDate: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)}
	in, errs := parseOrderForm(formRequest(t, validOrderForm()), existing, false)

	require.Empty(t, errs)
	assert.Equal(t, int64(9), in.ID)
	assert.Equal(t, int64(9), in.Order.ID)
	assert.False(t, in.Order.Active, "edits never resurrect a deactivated order")
}

func TestParseOrderFormLockedDiscardsOperationalFields(t *testing.T) {
	existing := &PurchaseOrder{
		ID:        9,
		Active:    true,
		OrderDate: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		OrderType: "Purchase",
		Status:    "To Receive",
	}
	f := validOrderForm()
	f.Set("order_date", "2026-06-01")
	f.Set("order_type", "Return")
	f.Set("status", "Completed")
	f.Set("notes", "Updated by supplier")

	in, errs := parseOrderForm(formRequest(t, f), existing, true)
	require.Empty(t, errs)

	assert.Equal(t, existing.OrderDate, in.Order.OrderDate)
	assert.Equal(t, "Purchase", in.Order.OrderType)
	assert.Equal(t, "To Receive", in.Order.Status)
	assert.Equal(t, "Updated by supplier", in.Order.Notes, "non-operational fields still go through")
}

func TestParseOrderFormLockedSatisfiesValidationFromExisting(t *testing.T) {
	existing := &PurchaseOrder{
		ID:        9,
		Active:    true,
		OrderDate: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		OrderType: "Purchase",
		Status:    "Draft",
	}
	// A supplier form omits the locked controls entirely.
	f := url.Values{
		"number":      {"PO-2026-0042"},
		"supplier_id": {"3"},
		"notes":       {"Confirmed quantities"},
	}

	in, errs := parseOrderForm(formRequest(t, f), existing, true)
	require.Empty(t, errs, "locked fields are restored before validation runs")
	assert.Equal(t, "Draft", in.Order.Status)
}

func TestParseSupplierForm(t *testing.T) {
	f := url.Values{
		"name":               {"Altware Components"},
		"type_id":            {"2"},
		"account_manager_id": {"7f9c24e5-2b1a-4f0e-9d3c-8a6e5b4c3d2e"},
		"tax_percent":        {"21.5"},
		"active":             {"on"},
	}
	in, errs := parseSupplierForm(formRequest(t, f))
	require.Empty(t, errs)

	assert.Equal(t, "Altware Components", in.Supplier.Name)
	assert.Equal(t, int64(2), in.Supplier.TypeID)
	assert.Equal(t, 21.5, in.Supplier.TaxPercent)
	assert.True(t, in.Supplier.Active)
}

func TestParseSupplierFormRejectsBadManagerReference(t *testing.T) {
	f := url.Values{"name": {"Altware"}, "account_manager_id": {"bob"}}
	_, errs := parseSupplierForm(formRequest(t, f))

	assert.Equal(t, "Account manager must be a valid reference", errs["account_manager_id"])
}

func TestParseSupplierFormTaxBounds(t *testing.T) {
	f := url.Values{"name": {"Altware"}, "tax_percent": {"101"}}
	_, errs := parseSupplierForm(formRequest(t, f))
	assert.Equal(t, "Tax percent must be at most 100", errs["tax_percent"])

	f.Set("tax_percent", "100")
	_, errs = parseSupplierForm(formRequest(t, f))
	assert.Empty(t, errs)
}

func TestParseTypeForm(t *testing.T) {
	in, errs := parseTypeForm(formRequest(t, url.Values{"name": {"Distributor"}, "color": {"#10b981"}}))
	require.Empty(t, errs)
	assert.Equal(t, "Distributor", in.Type.Name)
	assert.Equal(t, "#10b981", in.Type.Color)

	_, errs = parseTypeForm(formRequest(t, url.Values{"name": {"Distributor"}, "color": {"green"}}))
	assert.Equal(t, "Color must be a hex color", errs["color"])

	_, errs = parseTypeForm(formRequest(t, url.Values{}))
	assert.Equal(t, "Supplier type name is required", errs["name"])
}
