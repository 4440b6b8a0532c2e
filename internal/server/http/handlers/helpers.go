package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/ticketmart/internal/domain/errors"
	"github.com/polkiloo/ticketmart/internal/domain/model"
	"github.com/polkiloo/ticketmart/internal/server/http/dto"
	"github.com/polkiloo/ticketmart/internal/server/http/middleware"
)

// CurrentUserID extracts authenticated user identifier from context.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(middleware.UserIDContextKey)
}

// writeError maps a domain error onto a status and a message the caller can act on.
func writeError(c *gin.Context, err error) {
	status, message := statusFor(err)
	_ = c.Error(err)
	if domainErrors.Retryable(err) {
		c.Header("Retry-After", "1")
	}
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: message})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domainErrors.ErrNotAvailable):
		return http.StatusConflict, "ticket no longer available"
	case errors.Is(err, domainErrors.ErrExpired):
		return http.StatusGone, "reservation expired"
	case errors.Is(err, domainErrors.ErrSelfTrade):
		return http.StatusUnprocessableEntity, "you cannot buy your own ticket"
	case errors.Is(err, domainErrors.ErrForbidden):
		return http.StatusForbidden, "not your order or ticket"
	case errors.Is(err, domainErrors.ErrInvalidQuantity),
		errors.Is(err, domainErrors.ErrInvalidPrice),
		errors.Is(err, domainErrors.ErrInvalidTicket):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domainErrors.ErrDuplicatePayment):
		return http.StatusConflict, "payment reference already used"
	case errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domainErrors.ErrWrongState):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domainErrors.ErrConflict):
		return http.StatusConflict, "concurrent update, retry the request"
	case errors.Is(err, domainErrors.ErrTimeout):
		return http.StatusGatewayTimeout, "operation timed out, retry the request"
	case errors.Is(err, domainErrors.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "storage unavailable, retry later"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func toTicketResponse(t model.Ticket) dto.TicketResponse {
	resp := dto.TicketResponse{
		ID:        t.ID,
		SellerID:  t.SellerID,
		EventName: t.EventName,
		Category:  t.Category,
		Venue:     t.Venue,
		SeatInfo:  t.SeatInfo,
		Price:     t.Price,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
	}
	if !t.EventDate.IsZero() {
		date := t.EventDate
		resp.EventDate = &date
	}
	return resp
}

func toOrderResponse(o model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:          o.ID,
		TicketID:    o.TicketID,
		BuyerID:     o.BuyerID,
		SellerID:    o.SellerID,
		Quantity:    o.Quantity,
		TotalAmount: o.TotalAmount,
		Status:      string(o.Status),
		Reason:      o.Reason,
		PaymentRef:  o.PaymentRef,
		ExpiresAt:   o.ExpiresAt,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func writeOrders(c *gin.Context, orders []model.Order) {
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	resp := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, resp)
}

func writeTickets(c *gin.Context, tickets []model.Ticket) {
	if len(tickets) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	resp := make([]dto.TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		resp = append(resp, toTicketResponse(t))
	}
	c.JSON(http.StatusOK, resp)
}
