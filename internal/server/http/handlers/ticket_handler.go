package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/ticketmart/internal/server/http/dto"
	"github.com/polkiloo/ticketmart/internal/usecase"
)

// TicketHandler manages listing endpoints.
type TicketHandler struct {
	facade TicketFacade
}

// NewTicketHandler constructs TicketHandler.
func NewTicketHandler(facade TicketFacade) *TicketHandler {
	return &TicketHandler{facade: facade}
}

// Create handles POST /api/tickets.
func (h *TicketHandler) Create(c *gin.Context) {
	var req dto.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed ticket payload"})
		return
	}

	draft := usecase.TicketDraft{
		EventName: req.EventName,
		Category:  req.Category,
		Venue:     req.Venue,
		SeatInfo:  req.SeatInfo,
		Price:     req.Price,
	}
	if req.EventDate != nil {
		draft.EventDate = *req.EventDate
	}

	ticket, err := h.facade.CreateTicket(c.Request.Context(), CurrentUserID(c), draft)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTicketResponse(*ticket))
}

// Get handles GET /api/tickets/:id.
func (h *TicketHandler) Get(c *gin.Context) {
	ticket, err := h.facade.Ticket(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTicketResponse(*ticket))
}

// Update handles PUT /api/tickets/:id.
func (h *TicketHandler) Update(c *gin.Context) {
	var req dto.UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed ticket payload"})
		return
	}

	patch := usecase.TicketPatch{Venue: req.Venue, SeatInfo: req.SeatInfo, Price: req.Price}
	ticket, err := h.facade.UpdateTicket(c.Request.Context(), c.Param("id"), CurrentUserID(c), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTicketResponse(*ticket))
}

// Search handles GET /api/tickets/search?query=.
func (h *TicketHandler) Search(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	tickets, err := h.facade.SearchTickets(c.Request.Context(), c.Query("query"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	writeTickets(c, tickets)
}

// HappeningBetween handles GET /api/tickets/happening-between?from=&to= with RFC 3339 bounds.
func (h *TicketHandler) HappeningBetween(c *gin.Context) {
	from, errFrom := time.Parse(time.RFC3339, c.Query("from"))
	to, errTo := time.Parse(time.RFC3339, c.Query("to"))
	if errFrom != nil || errTo != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "from and to must be RFC 3339 timestamps"})
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	tickets, err := h.facade.TicketsBetween(c.Request.Context(), from, to, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	writeTickets(c, tickets)
}

// ListAvailable handles GET /api/tickets.
func (h *TicketHandler) ListAvailable(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	tickets, err := h.facade.AvailableTickets(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	writeTickets(c, tickets)
}

// ListMine handles GET /api/user/tickets.
func (h *TicketHandler) ListMine(c *gin.Context) {
	tickets, err := h.facade.SellerTickets(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writeTickets(c, tickets)
}

// ActiveOrders handles GET /api/tickets/:id/active-orders.
func (h *TicketHandler) ActiveOrders(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.facade.Ticket(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	n, err := h.facade.ActiveOrders(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ActiveOrdersResponse{TicketID: id, Active: n})
}

func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "limit must be a non-negative integer"})
		return 0, false
	}
	return n, true
}
