package receipt

import (
	"fmt"
	"strings"
	"time"

	"swiftpos/internal/models"

	"github.com/shopspring/decimal"
)

const (
	separatorWidth = 26
	nameWidth      = 12
	dateLayout     = "2006-01-02 15:04:05"
)

// Formatter renders receipts as fixed-width text
type Formatter struct {
	StoreName      string
	StoreAddress   string
	CurrencySymbol string
}

// NewFormatter creates a formatter with the given header lines and currency symbol
func NewFormatter(storeName, storeAddress, currencySymbol string) *Formatter {
	return &Formatter{
		StoreName:      storeName,
		StoreAddress:   storeAddress,
		CurrencySymbol: currencySymbol,
	}
}

// Format renders lines and total. Names are right-padded to a fixed width and never
// truncated, so long names extend their line.
func (f *Formatter) Format(lines []models.LineItem, total decimal.Decimal, issuedAt time.Time, orderNumber int64) string {
	sep := strings.Repeat("-", separatorWidth)

	var b strings.Builder
	fmt.Fprintf(&b, "      %s\n", f.StoreName)
	fmt.Fprintf(&b, "      %s\n", f.StoreAddress)
	b.WriteString(sep + "\n")
	fmt.Fprintf(&b, "Date: %s\n", issuedAt.Format(dateLayout))
	fmt.Fprintf(&b, "Order ID: %s\n", OrderLabel(orderNumber))
	b.WriteString(sep + "\n")

	for _, line := range lines {
		fmt.Fprintf(&b, "%dx %-*s %s\n", line.Quantity, nameWidth, line.Name, f.Money(line.LineTotal()))
	}

	b.WriteString(sep + "\n")
	fmt.Fprintf(&b, "TOTAL:          %s\n", f.Money(total))
	return b.String()
}

// Money formats an amount with the currency symbol and two decimals
func (f *Formatter) Money(amount decimal.Decimal) string {
	return f.CurrencySymbol + amount.StringFixed(2)
}

// OrderLabel renders a receipt order number
func OrderLabel(orderNumber int64) string {
	return fmt.Sprintf("#%04d", orderNumber)
}
