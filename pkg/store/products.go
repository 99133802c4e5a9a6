package store

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

type Product struct {
	ProductID   string            `json:"product_id"`
	Name        string            `json:"name"`
	Price       decimal.Decimal   `json:"price"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	InStock     bool              `json:"in_stock"`
	Specs       map[string]string `json:"specs,omitempty"`
}

// ProductStore is the product lookup boundary. All lookups are synchronous,
// idempotent and side-effect-free.
type ProductStore interface {
	Get(productID string) (*Product, bool)
	Search(query, category string) []Product
	ByCategory(category string) []Product
}

// MemoryProductStore is the seeded in-memory catalog.
type MemoryProductStore struct {
	products map[string]Product
}

func NewMemoryProductStore() *MemoryProductStore {
	return &MemoryProductStore{products: map[string]Product{
		"PROD-001": {
			ProductID:   "PROD-001",
			Name:        "Wireless Headphones Pro",
			Price:       decimal.NewFromFloat(149.99),
			Description: "Premium wireless headphones with active noise cancellation",
			Category:    "Electronics",
			InStock:     true,
			Specs:       map[string]string{"battery_life": "30 hours", "driver_size": "40mm", "bluetooth": "5.3"},
		},
		"PROD-002": {
			ProductID:   "PROD-002",
			Name:        "USB-C Fast Charging Cable",
			Price:       decimal.NewFromFloat(19.99),
			Description: "2m braided USB-C cable with 100W fast charging support",
			Category:    "Accessories",
			InStock:     true,
			Specs:       map[string]string{"length": "2m", "max_power": "100W", "material": "braided nylon"},
		},
		"PROD-003": {
			ProductID:   "PROD-003",
			Name:        "Ergonomic Laptop Stand",
			Price:       decimal.NewFromFloat(89.99),
			Description: "Adjustable aluminum laptop stand with cooling design",
			Category:    "Accessories",
			InStock:     false,
			Specs:       map[string]string{"material": "aluminum", "adjustable_height": "15-25cm", "max_weight": "10kg"},
		},
		"PROD-004": {
			ProductID:   "PROD-004",
			Name:        "Mechanical Keyboard RGB",
			Price:       decimal.NewFromFloat(129.99),
			Description: "Full-size mechanical keyboard with RGB backlighting",
			Category:    "Electronics",
			InStock:     true,
			Specs:       map[string]string{"switch_type": "Cherry MX Red", "layout": "Full-size", "connectivity": "USB/Wireless"},
		},
	}}
}

func (s *MemoryProductStore) Get(productID string) (*Product, bool) {
	product, ok := s.products[strings.ToUpper(productID)]
	if !ok {
		return nil, false
	}
	return &product, true
}

func (s *MemoryProductStore) Search(query, category string) []Product {
	queryLower := strings.ToLower(query)
	var results []Product
	for _, id := range s.sortedIDs() {
		product := s.products[id]
		if !strings.Contains(strings.ToLower(product.Name), queryLower) &&
			!strings.Contains(strings.ToLower(product.Description), queryLower) {
			continue
		}
		if category != "" && !strings.EqualFold(product.Category, category) {
			continue
		}
		results = append(results, product)
	}
	return results
}

func (s *MemoryProductStore) ByCategory(category string) []Product {
	var results []Product
	for _, id := range s.sortedIDs() {
		product := s.products[id]
		if strings.EqualFold(product.Category, category) {
			results = append(results, product)
		}
	}
	return results
}

// sortedIDs keeps search results in a stable order.
func (s *MemoryProductStore) sortedIDs() []string {
	ids := make([]string, 0, len(s.products))
	for id := range s.products {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
