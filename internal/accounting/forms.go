package accounting

import (
	"net/http"

	"github.com/meridian-erp/meridian/internal/form"
)

// AccountForm is the validated shape of a submitted ledger account.
type AccountForm struct {
	Number         string `validate:"required,max=20"`
	Name           string `validate:"required,max=255"`
	AccountType    string `validate:"required,oneof=Posting Heading"`
	Classification string `validate:"required,oneof='Balance Sheet' 'Income Statement'"`
	NormalBalance  string `validate:"required,oneof=Debit Credit Both"`
}

var accountSchema = form.NewSchema(map[string]form.Field{
	"Number":         {Name: "number", Label: "Account number"},
	"Name":           {Name: "name", Label: "Account name"},
	"AccountType":    {Name: "account_type", Label: "Account type"},
	"Classification": {Name: "classification", Label: "Classification"},
	"NormalBalance":  {Name: "normal_balance", Label: "Normal balance"},
})

// AccountInput carries a parsed account submission.
type AccountInput struct {
	ID      int64
	Account Account
}

func parseAccountForm(r *http.Request) (AccountInput, map[string]string) {
	f := AccountForm{
		Number:         r.PostFormValue("number"),
		Name:           r.PostFormValue("name"),
		AccountType:    r.PostFormValue("account_type"),
		Classification: r.PostFormValue("classification"),
		NormalBalance:  r.PostFormValue("normal_balance"),
	}
	return AccountInput{
		Account: Account{
			Number:         f.Number,
			Name:           f.Name,
			AccountType:    f.AccountType,
			Classification: f.Classification,
			NormalBalance:  f.NormalBalance,
			Active:         form.Bool(r.PostForm, "active"),
		},
	}, accountSchema.Validate(f)
}
