package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType names a committed order transition.
type EventType string

const (
	EventOrderCreated  EventType = "ORDER_CREATED"
	EventOrderApproved EventType = "ORDER_APPROVED"
	EventOrderRejected EventType = "ORDER_REJECTED"
	EventOrderExpired  EventType = "ORDER_EXPIRED"
	EventOrderPaid     EventType = "ORDER_PAID"
)

// OrderEvent is emitted after a transition has been committed.
type OrderEvent struct {
	Type           EventType       `json:"eventType"`
	OrderID        string          `json:"orderId"`
	TicketID       string          `json:"ticketId"`
	BuyerID        string          `json:"buyerId"`
	SellerID       string          `json:"sellerId"`
	Status         OrderStatus     `json:"status"`
	PreviousStatus OrderStatus     `json:"previousStatus,omitempty"`
	TicketStatus   TicketStatus    `json:"ticketStatus"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	Reason         string          `json:"reason,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
}
