package expense

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// FormatDate renders t in local time as YYYY-MM-DD. The zero time renders empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(DateLayout)
}

// FormatAmount renders a with exactly two fractional digits.
func FormatAmount(a float64) string {
	return decimal.NewFromFloat(a).StringFixed(2)
}

func FormatTotal(currencySymbol string, total float64) string {
	return fmt.Sprintf("Total: %s%s", currencySymbol, FormatAmount(total))
}

// ParseDate accepts YYYY-MM-DD in local time or RFC3339. Blank input yields
// the zero time.
func ParseDate(text string) (time.Time, error) {
	if text == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(DateLayout, text, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, text)
}
