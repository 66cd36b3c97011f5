package purchasing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase order types.
const (
	OrderTypePurchase = "Purchase"
	OrderTypeReturn   = "Return"
)

// Purchase order statuses, in lifecycle order.
const (
	StatusDraft             = "Draft"
	StatusToReview          = "To Review"
	StatusToReceive         = "To Receive"
	StatusToReceiveInvoice  = "To Receive and Invoice"
	StatusToInvoice         = "To Invoice"
	StatusCompleted         = "Completed"
	StatusRejected          = "Rejected"
	StatusClosed            = "Closed"
)

// PurchaseOrder is an order placed with a supplier. Deactivated orders stay
// on record and are never resurrected.
type PurchaseOrder struct {
	ID         int64
	Number     string
	SupplierID int64
	OrderDate  time.Time
	OrderType  string
	Status     string
	Notes      string
	Total      decimal.Decimal
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	UpdatedBy  int64
}

// Supplier is a vendor master record.
type Supplier struct {
	ID               int64
	Name             string
	TypeID           int64
	AccountManagerID string
	TaxPercent       float64
	Active           bool
}

// SupplierType labels suppliers for filtering; color is presentation only.
type SupplierType struct {
	ID    int64
	Name  string
	Color string
}

// OrderTypes lists the declared order type literals.
func OrderTypes() []string {
	return []string{OrderTypePurchase, OrderTypeReturn}
}

// OrderStatuses lists the declared status literals in lifecycle order.
func OrderStatuses() []string {
	return []string{
		StatusDraft,
		StatusToReview,
		StatusToReceive,
		StatusToReceiveInvoice,
		StatusToInvoice,
		StatusCompleted,
		StatusRejected,
		StatusClosed,
	}
}
