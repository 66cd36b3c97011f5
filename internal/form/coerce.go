package form

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Bool coerces a checkbox value: browsers submit "on" when ticked and omit
// the field entirely otherwise.
func Bool(values url.Values, name string) bool {
	switch strings.ToLower(values.Get(name)) {
	case "on", "true", "1":
		return true
	}
	return false
}

// Float parses a numeric input, recording a field error on garbage. A blank
// value coerces to zero so optional numeric fields need no special casing.
func Float(values url.Values, name, label string, errs map[string]string) float64 {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		errs[name] = label + " must be a number"
		return 0
	}
	return f
}

// Int parses an integer input, recording a field error on garbage.
func Int(values url.Values, name, label string, errs map[string]string) int {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		errs[name] = label + " must be a whole number"
		return 0
	}
	return n
}

// ID parses a numeric entity reference. Zero means absent.
func ID(values url.Values, name string) int64 {
	id, _ := strconv.ParseInt(strings.TrimSpace(values.Get(name)), 10, 64)
	return id
}

// Decimal parses a money amount, recording a field error on garbage.
func Decimal(values url.Values, name, label string, errs map[string]string) decimal.Decimal {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		errs[name] = label + " must be an amount"
		return decimal.Zero
	}
	return d
}

// Date parses an ISO date input, recording a field error on garbage.
func Date(values url.Values, name, label string, errs map[string]string) time.Time {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		errs[name] = label + " must be a date"
		return time.Time{}
	}
	return t
}
