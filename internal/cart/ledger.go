package cart

import (
	"errors"
	"fmt"

	"swiftpos/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrLineNotFound is returned by Line when the id is not in the cart
var ErrLineNotFound = errors.New("line item not found")

// MaxLineQuantity is the largest quantity a single line may hold
const MaxLineQuantity = 9999

// Mutation describes the outcome of a ledger command.
// Applied is false for rejected or no-op commands, which carry no audit description.
type Mutation struct {
	Applied bool
	LineID  string
	Action  string
	Details string
}

func rejected(lineID string) Mutation {
	return Mutation{LineID: lineID}
}

// Ledger is the ordered collection of cart line items
type Ledger struct {
	lines []models.LineItem
	newID func() string
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{
		newID: func() string { return "custom-" + uuid.New().String() },
	}
}

// Add adds quantity units of a catalog item, merging into an existing line with the same id.
// A merge that would push the line past MaxLineQuantity is rejected.
func (l *Ledger) Add(item models.CatalogItem, quantity int) Mutation {
	if quantity < 1 || quantity > MaxLineQuantity {
		return rejected(item.ID)
	}

	details := fmt.Sprintf("Added %dx %s", quantity, item.Name)

	if idx := l.index(item.ID); idx >= 0 {
		if l.lines[idx].Quantity > MaxLineQuantity-quantity {
			return rejected(item.ID)
		}
		l.lines[idx].Quantity += quantity
		return Mutation{Applied: true, LineID: item.ID, Action: models.ActionUpdatedCart, Details: details}
	}

	price := item.UnitPrice
	if price.IsNegative() {
		price = decimal.Zero
	}

	l.lines = append(l.lines, models.LineItem{
		ID:        item.ID,
		Name:      item.Name,
		Category:  item.Category,
		UnitPrice: price,
		Quantity:  quantity,
	})
	return Mutation{Applied: true, LineID: item.ID, Action: models.ActionAddedToCart, Details: details}
}

// AddCustom appends a zero-priced manual entry that is never merged
func (l *Ledger) AddCustom() Mutation {
	id := l.newID()
	l.lines = append(l.lines, models.LineItem{
		ID:        id,
		Name:      models.CustomItemName,
		Category:  models.CustomCategory,
		UnitPrice: decimal.Zero,
		Quantity:  1,
		Custom:    true,
	})
	return Mutation{Applied: true, LineID: id, Action: models.ActionAddedCustomItem, Details: "Manual entry"}
}

// SetQuantity overwrites a line quantity. Values outside 1..MaxLineQuantity are ignored.
func (l *Ledger) SetQuantity(lineID string, quantity int) Mutation {
	if quantity < 1 || quantity > MaxLineQuantity {
		return rejected(lineID)
	}
	idx := l.index(lineID)
	if idx < 0 || l.lines[idx].Quantity == quantity {
		return rejected(lineID)
	}

	line := &l.lines[idx]
	details := fmt.Sprintf("%s quantity %d -> %d", line.Name, line.Quantity, quantity)
	line.Quantity = quantity
	return Mutation{Applied: true, LineID: lineID, Action: models.ActionUpdatedQuantity, Details: details}
}

// SetPrice overwrites a line unit price, clamping negative input to zero
func (l *Ledger) SetPrice(lineID string, price decimal.Decimal) Mutation {
	if price.IsNegative() {
		price = decimal.Zero
	}
	idx := l.index(lineID)
	if idx < 0 || l.lines[idx].UnitPrice.Equal(price) {
		return rejected(lineID)
	}

	line := &l.lines[idx]
	details := fmt.Sprintf("%s price %s -> %s", line.Name, line.UnitPrice.StringFixed(2), price.StringFixed(2))
	line.UnitPrice = price
	return Mutation{Applied: true, LineID: lineID, Action: models.ActionUpdatedPrice, Details: details}
}

// Remove deletes a line if present
func (l *Ledger) Remove(lineID string) Mutation {
	idx := l.index(lineID)
	if idx < 0 {
		return rejected(lineID)
	}

	name := l.lines[idx].Name
	l.lines = append(l.lines[:idx], l.lines[idx+1:]...)
	return Mutation{Applied: true, LineID: lineID, Action: models.ActionRemovedFromCart, Details: "Removed " + name}
}

// Total recomputes the sum of unit price times quantity
func (l *Ledger) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range l.lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// ItemCount returns the number of units across all lines
func (l *Ledger) ItemCount() int {
	n := 0
	for _, line := range l.lines {
		n += line.Quantity
	}
	return n
}

// Lines returns a copy of the lines in insertion order
func (l *Ledger) Lines() []models.LineItem {
	return append([]models.LineItem{}, l.lines...)
}

// Line returns a copy of a single line
func (l *Ledger) Line(lineID string) (models.LineItem, error) {
	idx := l.index(lineID)
	if idx < 0 {
		return models.LineItem{}, fmt.Errorf("%w: %s", ErrLineNotFound, lineID)
	}
	return l.lines[idx], nil
}

// IsEmpty reports whether the cart has no lines
func (l *Ledger) IsEmpty() bool {
	return len(l.lines) == 0
}

// Clear empties the cart
func (l *Ledger) Clear() {
	l.lines = nil
}

func (l *Ledger) index(lineID string) int {
	for i := range l.lines {
		if l.lines[i].ID == lineID {
			return i
		}
	}
	return -1
}
