package accounting

import "time"

// Account types. Heading accounts group posting accounts in the chart and
// never carry balances themselves.
const (
	TypePosting = "Posting"
	TypeHeading = "Heading"
)

// Financial statement classifications.
const (
	ClassificationBalanceSheet    = "Balance Sheet"
	ClassificationIncomeStatement = "Income Statement"
)

// Normal balance sides.
const (
	BalanceDebit  = "Debit"
	BalanceCredit = "Credit"
	BalanceBoth   = "Both"
)

// Account is a general ledger account in the chart of accounts.
type Account struct {
	ID             int64
	Number         string
	Name           string
	AccountType    string
	Classification string
	NormalBalance  string
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
	UpdatedBy      int64
}

// Chart groups the ledger by financial statement for display.
type Chart struct {
	BalanceSheet    []Account
	IncomeStatement []Account
}

// AccountTypes lists the selectable account types.
func AccountTypes() []string {
	return []string{TypePosting, TypeHeading}
}

// Classifications lists the selectable statement classifications.
func Classifications() []string {
	return []string{ClassificationBalanceSheet, ClassificationIncomeStatement}
}

// NormalBalances lists the selectable balance sides.
func NormalBalances() []string {
	return []string{BalanceDebit, BalanceCredit, BalanceBoth}
}
