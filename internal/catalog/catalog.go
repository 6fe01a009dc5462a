package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"swiftpos/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ErrItemNotFound is returned when a catalog id is unknown
var ErrItemNotFound = errors.New("catalog item not found")

// Catalog is the read-only set of purchasable items and promotions
type Catalog struct {
	items      []models.CatalogItem
	byID       map[string]models.CatalogItem
	promotions []models.Promotion
}

// New builds a catalog, rejecting duplicate ids and negative prices
func New(items []models.CatalogItem, promotions []models.Promotion) (*Catalog, error) {
	byID := make(map[string]models.CatalogItem, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			return nil, fmt.Errorf("catalog item %q has empty id", item.Name)
		}
		if _, dup := byID[item.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog id: %s", item.ID)
		}
		if item.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("catalog item %s has negative price", item.ID)
		}
		byID[item.ID] = item
	}

	return &Catalog{
		items:      append([]models.CatalogItem(nil), items...),
		byID:       byID,
		promotions: append([]models.Promotion(nil), promotions...),
	}, nil
}

// Default returns the built-in terminal catalog
func Default() *Catalog {
	c, err := New(DefaultItems(), DefaultPromotions())
	if err != nil {
		panic(err)
	}
	return c
}

// Items returns catalog items in configured order
func (c *Catalog) Items() []models.CatalogItem {
	return append([]models.CatalogItem(nil), c.items...)
}

// Promotions returns promotions in configured order
func (c *Catalog) Promotions() []models.Promotion {
	return append([]models.Promotion(nil), c.promotions...)
}

// Lookup retrieves a catalog item by id
func (c *Catalog) Lookup(id string) (models.CatalogItem, error) {
	item, ok := c.byID[id]
	if !ok {
		return models.CatalogItem{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return item, nil
}

// DefaultItems returns the built-in inventory
func DefaultItems() []models.CatalogItem {
	return []models.CatalogItem{
		{ID: "1", Name: "Beer", UnitPrice: decimal.NewFromInt(15), Category: "Beverage"},
		{ID: "2", Name: "Water", UnitPrice: decimal.NewFromInt(8), Category: "Beverage"},
		{ID: "3", Name: "Soda", UnitPrice: decimal.NewFromInt(10), Category: "Beverage"},
		{ID: "4", Name: "Burger", UnitPrice: decimal.NewFromInt(25), Category: "Food"},
		{ID: "5", Name: "Fries", UnitPrice: decimal.NewFromInt(12), Category: "Food"},
		{ID: "6", Name: "Salad", UnitPrice: decimal.NewFromInt(18), Category: "Food"},
	}
}

// DefaultPromotions returns the built-in promotions
func DefaultPromotions() []models.Promotion {
	return []models.Promotion{
		{ID: "p1", Title: "Happy Hour", IsActive: true, Code: "HH2024", Description: "50% off drinks"},
		{ID: "p2", Title: "Lunch Special", IsActive: false, Code: "LUNCH20", Description: "20% off food"},
		{ID: "p3", Title: "Employee Disc.", IsActive: true, Code: "STAFF", Description: "15% off total"},
	}
}

type fileItem struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Price    string `yaml:"price"`
	Category string `yaml:"category"`
}

type fileFormat struct {
	Items      []fileItem         `yaml:"items"`
	Promotions []models.Promotion `yaml:"promotions"`
}

// LoadFile reads a YAML catalog file
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document. Promotions default to the built-in set when omitted.
func Parse(data []byte) (*Catalog, error) {
	var doc fileFormat
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(doc.Items) == 0 {
		return nil, errors.New("catalog has no items")
	}

	items := make([]models.CatalogItem, 0, len(doc.Items))
	for _, fi := range doc.Items {
		price, err := decimal.NewFromString(strings.TrimSpace(fi.Price))
		if err != nil {
			return nil, fmt.Errorf("invalid price for catalog item %s: %w", fi.ID, err)
		}
		items = append(items, models.CatalogItem{
			ID:        fi.ID,
			Name:      fi.Name,
			UnitPrice: price,
			Category:  fi.Category,
		})
	}

	promotions := doc.Promotions
	if promotions == nil {
		promotions = DefaultPromotions()
	}

	return New(items, promotions)
}
