package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/ticketmart/internal/domain/errors"
)

const (
	maxTextLength = 256
	maxPriceScale = 2
)

// ValidateQuantity accepts single-seat orders only.
func ValidateQuantity(quantity int) error {
	if quantity != 1 {
		return fmt.Errorf("%w: quantity must be 1, got %d", domainErrors.ErrInvalidQuantity, quantity)
	}
	return nil
}

// ValidatePrice requires a positive amount with at most two decimal places.
func ValidatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", domainErrors.ErrInvalidPrice)
	}
	if !price.Equal(price.Round(maxPriceScale)) {
		return fmt.Errorf("%w: price has more than %d decimal places", domainErrors.ErrInvalidPrice, maxPriceScale)
	}
	return nil
}

// ValidateTicketDraft checks the listing fields the engine stores verbatim.
func ValidateTicketDraft(d TicketDraft) error {
	if strings.TrimSpace(d.EventName) == "" {
		return fmt.Errorf("%w: event name is required", domainErrors.ErrInvalidTicket)
	}
	for name, v := range map[string]string{
		"event name": d.EventName,
		"category":   d.Category,
		"venue":      d.Venue,
		"seat info":  d.SeatInfo,
	} {
		if utf8.RuneCountInString(v) > maxTextLength {
			return fmt.Errorf("%w: %s is longer than %d characters", domainErrors.ErrInvalidTicket, name, maxTextLength)
		}
	}
	return ValidatePrice(d.Price)
}
