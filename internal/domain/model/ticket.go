package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketStatus describes inventory state of a ticket.
type TicketStatus string

const (
	TicketStatusAvailable TicketStatus = "AVAILABLE"
	TicketStatusReserved  TicketStatus = "RESERVED"
	TicketStatusSold      TicketStatus = "SOLD"
)

// Ticket is a single seat listed for sale by a seller.
type Ticket struct {
	ID        string
	SellerID  string
	EventName string
	Category  string
	Venue     string
	EventDate time.Time
	SeatInfo  string
	Price     decimal.Decimal
	Status    TicketStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
