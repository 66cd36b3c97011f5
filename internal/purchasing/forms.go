package purchasing

import (
	"net/http"

	"github.com/meridian-erp/meridian/internal/form"
)

// OrderForm is the validated shape of a submitted purchase order.
type OrderForm struct {
	Number     string `validate:"required,max=30"`
	SupplierID int64  `validate:"required"`
	OrderDate  string `validate:"required"`
	OrderType  string `validate:"required,oneof=Purchase Return"`
	Status     string `validate:"required,oneof=Draft 'To Review' 'To Receive' 'To Receive and Invoice' 'To Invoice' Completed Rejected Closed"`
	Notes      string `validate:"max=500"`
}

var orderSchema = form.NewSchema(map[string]form.Field{
	"Number":     {Name: "number", Label: "Order number"},
	"SupplierID": {Name: "supplier_id", Label: "Supplier"},
	"OrderDate":  {Name: "order_date", Label: "Order date"},
	"OrderType":  {Name: "order_type", Label: "Order type"},
	"Status":     {Name: "status", Label: "Status"},
	"Notes":      {Name: "notes", Label: "Notes"},
})

// OrderInput carries a parsed purchase order submission.
type OrderInput struct {
	ID    int64
	Order PurchaseOrder
}

// parseOrderForm reads an order submission. When locked is true the caller
// acts as a supplier: order date, type and status are taken from existing
// instead of the submission, whatever the caller's update permission says.
func parseOrderForm(r *http.Request, existing *PurchaseOrder, locked bool) (OrderInput, map[string]string) {
	errs := make(map[string]string)

	f := OrderForm{
		Number:     r.PostFormValue("number"),
		SupplierID: form.ID(r.PostForm, "supplier_id"),
		OrderDate:  r.PostFormValue("order_date"),
		OrderType:  r.PostFormValue("order_type"),
		Status:     r.PostFormValue("status"),
		Notes:      r.PostFormValue("notes"),
	}

	order := PurchaseOrder{
		Number:     f.Number,
		SupplierID: f.SupplierID,
		OrderType:  f.OrderType,
		Status:     f.Status,
		Notes:      f.Notes,
		Total:      form.Decimal(r.PostForm, "total", "Total", errs),
		Active:     true,
	}
	order.OrderDate = form.Date(r.PostForm, "order_date", "Order date", errs)

	if existing == nil && f.Status == "" {
		// The create screen has no status control; new orders start in Draft.
		f.Status = StatusDraft
		order.Status = StatusDraft
	}
	if locked && existing != nil {
		// Suppliers keep their view of the operational fields; silently
		// submitted changes to them are discarded before validation.
		order.OrderDate = existing.OrderDate
		order.OrderType = existing.OrderType
		order.Status = existing.Status
		f.OrderDate = existing.OrderDate.Format("2006-01-02")
		f.OrderType = existing.OrderType
		f.Status = existing.Status
	}
	if existing != nil {
		order.ID = existing.ID
		order.Active = existing.Active
	}

	for k, v := range orderSchema.Validate(f) {
		if _, ok := errs[k]; !ok {
			errs[k] = v
		}
	}
	return OrderInput{ID: order.ID, Order: order}, errs
}

// SupplierForm is the validated shape of a submitted supplier. The account
// manager is an optional reference to an external people record and must be a
// well-formed UUID when present.
type SupplierForm struct {
	Name             string  `validate:"required,max=255"`
	AccountManagerID string  `validate:"omitempty,uuid4"`
	TaxPercent       float64 `validate:"gte=0,lte=100"`
}

var supplierSchema = form.NewSchema(map[string]form.Field{
	"Name":             {Name: "name", Label: "Supplier name"},
	"AccountManagerID": {Name: "account_manager_id", Label: "Account manager"},
	"TaxPercent":       {Name: "tax_percent", Label: "Tax percent"},
})

// SupplierInput carries a parsed supplier submission.
type SupplierInput struct {
	ID       int64
	Supplier Supplier
}

func parseSupplierForm(r *http.Request) (SupplierInput, map[string]string) {
	errs := make(map[string]string)
	f := SupplierForm{
		Name:             r.PostFormValue("name"),
		AccountManagerID: r.PostFormValue("account_manager_id"),
		TaxPercent:       form.Float(r.PostForm, "tax_percent", "Tax percent", errs),
	}
	for k, v := range supplierSchema.Validate(f) {
		if _, ok := errs[k]; !ok {
			errs[k] = v
		}
	}
	return SupplierInput{
		Supplier: Supplier{
			Name:             f.Name,
			TypeID:           form.ID(r.PostForm, "type_id"),
			AccountManagerID: f.AccountManagerID,
			TaxPercent:       f.TaxPercent,
			Active:           form.Bool(r.PostForm, "active"),
		},
	}, errs
}

// TypeForm is the validated shape of a submitted supplier type.
type TypeForm struct {
	Name  string `validate:"required,max=50"`
	Color string `validate:"omitempty,hexcolor"`
}

var typeSchema = form.NewSchema(map[string]form.Field{
	"Name":  {Name: "name", Label: "Supplier type name"},
	"Color": {Name: "color", Label: "Color"},
})

// TypeInput carries a parsed supplier type submission.
type TypeInput struct {
	ID   int64
	Type SupplierType
}

func parseTypeForm(r *http.Request) (TypeInput, map[string]string) {
	f := TypeForm{
		Name:  r.PostFormValue("name"),
		Color: r.PostFormValue("color"),
	}
	return TypeInput{
		Type: SupplierType{Name: f.Name, Color: f.Color},
	}, typeSchema.Validate(f)
}
