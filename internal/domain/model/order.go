package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes reservation lifecycle.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusApproved OrderStatus = "APPROVED"
	OrderStatusRejected OrderStatus = "REJECTED"
	OrderStatusExpired  OrderStatus = "EXPIRED"
	OrderStatusPaid     OrderStatus = "PAID"
)

// Terminal reports whether no further transition is permitted from s.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusRejected, OrderStatusExpired, OrderStatusPaid:
		return true
	default:
		return false
	}
}

// Active reports whether an order in status s holds its ticket reserved.
func (s OrderStatus) Active() bool {
	return s == OrderStatusPending || s == OrderStatusApproved
}

// ActiveOrderStatuses lists statuses that keep a ticket reserved.
var ActiveOrderStatuses = []OrderStatus{OrderStatusPending, OrderStatusApproved}

// Order is a buyer's reservation of one ticket.
type Order struct {
	ID          string
	TicketID    string
	BuyerID     string
	SellerID    string
	Quantity    int
	TotalAmount decimal.Decimal
	Status      OrderStatus
	Reason      string
	PaymentRef  string
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ExpiredAt reports whether the reservation window is over at now.
func (o *Order) ExpiredAt(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}
