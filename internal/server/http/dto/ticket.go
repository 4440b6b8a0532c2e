package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateTicketRequest describes a new listing.
type CreateTicketRequest struct {
	EventName string          `json:"eventName"`
	Category  string          `json:"category"`
	Venue     string          `json:"venue"`
	EventDate *time.Time      `json:"eventDate"`
	SeatInfo  string          `json:"seatInfo"`
	Price     decimal.Decimal `json:"price"`
}

// UpdateTicketRequest changes an available listing. Omitted fields stay as they are.
type UpdateTicketRequest struct {
	Venue    *string          `json:"venue"`
	SeatInfo *string          `json:"seatInfo"`
	Price    *decimal.Decimal `json:"price"`
}

// TicketResponse describes a listing.
type TicketResponse struct {
	ID        string          `json:"id"`
	SellerID  string          `json:"sellerId"`
	EventName string          `json:"eventName"`
	Category  string          `json:"category,omitempty"`
	Venue     string          `json:"venue,omitempty"`
	EventDate *time.Time      `json:"eventDate,omitempty"`
	SeatInfo  string          `json:"seatInfo,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ActiveOrdersResponse reports live orders on a ticket.
type ActiveOrdersResponse struct {
	TicketID string `json:"ticketId"`
	Active   int    `json:"active"`
}
