package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

var maxQuantity = decimal.NewFromInt(MaxLineQuantity)

// ParseQuantity converts operator input to a quantity.
// Non-numeric and fractional input becomes 1; integral numbers such as "2.0" or "1e1"
// are accepted. Values below 1 map to 0 and values above MaxLineQuantity map to
// MaxLineQuantity+1 so SetQuantity ignores them.
func ParseQuantity(raw string) int {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || !d.IsInteger() {
		return 1
	}
	switch {
	case d.LessThan(decimal.NewFromInt(1)):
		return 0
	case d.GreaterThan(maxQuantity):
		return MaxLineQuantity + 1
	}
	return int(d.IntPart())
}

// ParsePrice converts operator input to a unit price. Non-numeric input becomes zero.
func ParsePrice(raw string) decimal.Decimal {
	p, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	return p
}
