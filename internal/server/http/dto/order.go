package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest reserves a ticket. Quantity defaults to 1.
type CreateOrderRequest struct {
	TicketID string `json:"ticketId"`
	Quantity *int   `json:"quantity"`
}

// RejectOrderRequest carries the seller's reason.
type RejectOrderRequest struct {
	Reason string `json:"reason"`
}

// PayOrderRequest signals a successful payment.
type PayOrderRequest struct {
	PaymentRef string `json:"paymentRef"`
}

// OrderResponse describes an order snapshot.
type OrderResponse struct {
	ID          string          `json:"id"`
	TicketID    string          `json:"ticketId"`
	BuyerID     string          `json:"buyerId"`
	SellerID    string          `json:"sellerId"`
	Quantity    int             `json:"quantity"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      string          `json:"status"`
	Reason      string          `json:"reason,omitempty"`
	PaymentRef  string          `json:"paymentRef,omitempty"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
