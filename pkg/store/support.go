package store

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

type FAQ struct {
	Topic   string `json:"topic"`
	Content string `json:"content"`
}

type ContactInfo struct {
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Hours    string `json:"hours"`
	LiveChat string `json:"live_chat"`
}

type Ticket struct {
	TicketID    string `json:"ticket_id"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}

// SupportStore is the support-domain boundary. FAQ and contact lookups are
// side-effect-free; CreateTicket is at-most-once per call.
type SupportStore interface {
	FAQ(topic string) (*FAQ, bool)
	Contact() ContactInfo
	CreateTicket(subject, description string) Ticket
}

// MemorySupportStore is the in-memory SupportStore with canned FAQ content.
type MemorySupportStore struct {
	mu      sync.Mutex
	faqs    map[string]FAQ
	tickets []Ticket
}

func NewMemorySupportStore() *MemorySupportStore {
	return &MemorySupportStore{faqs: map[string]FAQ{
		"return": {
			Topic: "Returns & Refunds",
			Content: "You can return most items within 30 days of delivery for a full refund. " +
				"Items must be unused and in original packaging.",
		},
		"shipping": {
			Topic: "Shipping Information",
			Content: "We offer standard shipping (5-7 business days) and express shipping (2-3 business days). " +
				"Free shipping on orders over 200 TL.",
		},
		"warranty": {
			Topic: "Warranty Information",
			Content: "Most electronics come with a 2-year manufacturer warranty. " +
				"Accessories have a 1-year warranty.",
		},
		"payment": {
			Topic: "Payment Methods",
			Content: "We accept credit cards (Visa, Mastercard), debit cards, and bank transfers. " +
				"Installment options available for orders over 500 TL.",
		},
	}}
}

func (s *MemorySupportStore) FAQ(topic string) (*FAQ, bool) {
	topicLower := strings.ToLower(topic)
	for key, faq := range s.faqs {
		if strings.Contains(topicLower, key) {
			return &faq, true
		}
	}
	return nil, false
}

func (s *MemorySupportStore) Contact() ContactInfo {
	return ContactInfo{
		Phone:    "+90 212 555 0123",
		Email:    "support@techstore.com",
		Hours:    "Monday-Friday 9:00-18:00, Saturday 10:00-14:00",
		LiveChat: "Available on website during business hours",
	}
}

func (s *MemorySupportStore) CreateTicket(subject, description string) Ticket {
	ticketID := "TKT-" + strings.ToUpper(uuid.NewString()[:8])
	ticket := Ticket{
		TicketID:    ticketID,
		Subject:     subject,
		Description: description,
		Status:      "open",
		Message:     "Support ticket " + ticketID + " created. Our team will respond within 24 hours.",
	}
	s.mu.Lock()
	s.tickets = append(s.tickets, ticket)
	s.mu.Unlock()
	return ticket
}

// Tickets returns every ticket created in this session.
func (s *MemorySupportStore) Tickets() []Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Ticket, len(s.tickets))
	copy(out, s.tickets)
	return out
}
