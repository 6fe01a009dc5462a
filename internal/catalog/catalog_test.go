package catalog

import (
	"errors"
	"testing"

	"swiftpos/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	assert.Len(t, c.Items(), 6)
	beer, err := c.Lookup("1")
	require.NoError(t, err)
	assert.Equal(t, "Beer", beer.Name)
	assert.True(t, beer.UnitPrice.Equal(decimal.NewFromInt(15)))

	_, err = c.Lookup("missing")
	assert.True(t, errors.Is(err, ErrItemNotFound))
}

func TestNewRejectsDuplicateIDs(t *testing.T) {
	_, err := New([]models.CatalogItem{
		{ID: "1", Name: "A"},
		{ID: "1", Name: "B"},
	}, nil)
	assert.Error(t, err)
}

func TestNewRejectsNegativePrice(t *testing.T) {
	_, err := New([]models.CatalogItem{
		{ID: "1", Name: "A", UnitPrice: decimal.NewFromInt(-1)},
	}, nil)
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	doc := []byte(`
items:
  - id: latte
    name: Latte
    price: "4.50"
    category: Coffee
  - id: bagel
    name: Bagel
    price: "2.25"
    category: Bakery
promotions:
  - id: m1
    title: Morning Rush
    active: true
    code: AM10
    description: 10% off coffee
`)

	c, err := Parse(doc)
	require.NoError(t, err)

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "latte", items[0].ID)
	assert.Equal(t, "4.50", items[0].UnitPrice.StringFixed(2))

	promos := c.Promotions()
	require.Len(t, promos, 1)
	assert.Equal(t, "Morning Rush", promos[0].Title)
	assert.True(t, promos[0].IsActive)
}

func TestParseDefaultsPromotions(t *testing.T) {
	c, err := Parse([]byte("items:\n  - {id: a, name: A, price: \"1\", category: X}\n"))
	require.NoError(t, err)
	assert.Len(t, c.Promotions(), len(DefaultPromotions()))
}

func TestParseRejectsBadPrice(t *testing.T) {
	_, err := Parse([]byte("items:\n  - {id: a, name: A, price: cheap, category: X}\n"))
	assert.Error(t, err)
}
