package store

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

type OrderItem struct {
	Name  string          `json:"name"`
	Qty   int             `json:"qty"`
	Price decimal.Decimal `json:"price"`
}

type Order struct {
	OrderID         string          `json:"order_id"`
	Status          string          `json:"status"`
	Items           []OrderItem     `json:"items"`
	Total           decimal.Decimal `json:"total"`
	ShippingAddress string          `json:"shipping_address"`
	TrackingNumber  string          `json:"tracking_number,omitempty"`
}

type TrackingInfo struct {
	TrackingNumber    string `json:"tracking_number"`
	Carrier           string `json:"carrier"`
	Status            string `json:"status"`
	EstimatedDelivery string `json:"estimated_delivery"`
}

// CancelResult describes the outcome of a cancellation attempt.
type CancelResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// OrderStore is the order lookup boundary. Lookups are synchronous and
// side-effect-free; Cancel is at-most-once per call.
type OrderStore interface {
	Get(orderID string) (*Order, bool)
	Status(orderID string) (string, bool)
	Tracking(orderID string) (*TrackingInfo, bool)
	Cancel(orderID string) CancelResult
}

// MemoryOrderStore is the in-memory OrderStore used until a real backend
// replaces it. Seeded with fixture orders.
type MemoryOrderStore struct {
	mu     sync.Mutex
	orders map[string]*Order
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: map[string]*Order{
		"ORD-001": {
			OrderID: "ORD-001",
			Status:  "shipped",
			Items: []OrderItem{
				{Name: "Wireless Headphones", Qty: 1, Price: decimal.NewFromFloat(149.99)},
			},
			Total:           decimal.NewFromFloat(149.99),
			ShippingAddress: "123 Main St, Istanbul, TR",
			TrackingNumber:  "TRK123456789",
		},
		"ORD-002": {
			OrderID: "ORD-002",
			Status:  "processing",
			Items: []OrderItem{
				{Name: "USB-C Cable", Qty: 2, Price: decimal.NewFromFloat(19.99)},
				{Name: "Phone Case", Qty: 1, Price: decimal.NewFromFloat(29.99)},
			},
			Total:           decimal.NewFromFloat(69.97),
			ShippingAddress: "456 Oak Ave, Ankara, TR",
		},
		"ORD-003": {
			OrderID: "ORD-003",
			Status:  "delivered",
			Items: []OrderItem{
				{Name: "Laptop Stand", Qty: 1, Price: decimal.NewFromFloat(89.99)},
			},
			Total:           decimal.NewFromFloat(89.99),
			ShippingAddress: "789 Pine Rd, Izmir, TR",
			TrackingNumber:  "TRK987654321",
		},
	}}
}

func (s *MemoryOrderStore) Get(orderID string) (*Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[strings.ToUpper(orderID)]
	if !ok {
		return nil, false
	}
	copied := *order
	return &copied, true
}

func (s *MemoryOrderStore) Status(orderID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[strings.ToUpper(orderID)]
	if !ok {
		return "", false
	}
	return order.Status, true
}

func (s *MemoryOrderStore) Tracking(orderID string) (*TrackingInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[strings.ToUpper(orderID)]
	if !ok || order.TrackingNumber == "" {
		return nil, false
	}
	return &TrackingInfo{
		TrackingNumber:    order.TrackingNumber,
		Carrier:           "FastShip",
		Status:            order.Status,
		EstimatedDelivery: "2-3 business days",
	}, true
}

func (s *MemoryOrderStore) Cancel(orderID string) CancelResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[strings.ToUpper(orderID)]
	if !ok {
		return CancelResult{Success: false, Message: "Order not found"}
	}
	switch order.Status {
	case "delivered":
		return CancelResult{Success: false, Message: "Cannot cancel delivered orders"}
	case "shipped":
		return CancelResult{Success: false, Message: "Order already shipped. Please initiate a return instead."}
	case "cancelled":
		return CancelResult{Success: false, Message: "Order is already cancelled"}
	}
	order.Status = "cancelled"
	return CancelResult{Success: true, Message: "Order " + order.OrderID + " has been cancelled"}
}
