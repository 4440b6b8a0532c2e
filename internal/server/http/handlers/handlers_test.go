package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/ticketmart/internal/domain/errors"
	"github.com/polkiloo/ticketmart/internal/domain/model"
	"github.com/polkiloo/ticketmart/internal/server/http/dto"
	"github.com/polkiloo/ticketmart/internal/server/http/middleware"
	testhelpers "github.com/polkiloo/ticketmart/internal/test"
	"github.com/polkiloo/ticketmart/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

func asUser(id string) func(*gin.Context) {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDContextKey, id)
	}
}

func performRequest(t *testing.T, method, route, target string, handler gin.HandlerFunc, setup func(*gin.Context), body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Handle(method, route, func(c *gin.Context) {
		if setup != nil {
			setup(c)
		}
		handler(c)
	})

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var decoded dto.ErrorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode error body %q: %v", resp.Body.String(), err)
	}
	return decoded.Error
}

func TestCurrentUserID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := CurrentUserID(c); got != "" {
		t.Fatalf("expected empty id when not set, got %q", got)
	}

	c.Set(middleware.UserIDContextKey, "buyer-1")
	if got := CurrentUserID(c); got != "buyer-1" {
		t.Fatalf("expected buyer-1, got %q", got)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err        error
		status     int
		retryAfter bool
	}{
		{err: domainErrors.ErrNotAvailable, status: http.StatusConflict},
		{err: domainErrors.ErrExpired, status: http.StatusGone},
		{err: domainErrors.ErrSelfTrade, status: http.StatusUnprocessableEntity},
		{err: domainErrors.ErrForbidden, status: http.StatusForbidden},
		{err: domainErrors.ErrInvalidQuantity, status: http.StatusUnprocessableEntity},
		{err: domainErrors.ErrInvalidPrice, status: http.StatusUnprocessableEntity},
		{err: domainErrors.ErrInvalidTicket, status: http.StatusUnprocessableEntity},
		{err: domainErrors.ErrNotFound, status: http.StatusNotFound},
		{err: fmt.Errorf("%w: order is PAID", domainErrors.ErrWrongState), status: http.StatusConflict},
		{err: fmt.Errorf("postgres: update order: %w", domainErrors.ErrDuplicatePayment), status: http.StatusConflict},
		{err: domainErrors.ErrConflict, status: http.StatusConflict, retryAfter: true},
		{err: fmt.Errorf("%w: %v", domainErrors.ErrTimeout, context.DeadlineExceeded), status: http.StatusGatewayTimeout},
		{err: domainErrors.ErrStorageUnavailable, status: http.StatusServiceUnavailable, retryAfter: true},
		{err: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			facade := testhelpers.OrderFacadeStub{ApproveOrderFn: func(context.Context, string, string) (*model.Order, error) {
				return nil, tt.err
			}}
			resp := performRequest(t, http.MethodPost, "/orders/:id/approve", "/orders/o-1/approve", NewOrderHandler(facade).Approve, asUser("seller"), nil, nil)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
			if got := resp.Header().Get("Retry-After") != ""; got != tt.retryAfter {
				t.Fatalf("expected Retry-After present=%v, got %v", tt.retryAfter, got)
			}
			if decodeError(t, resp) == "" {
				t.Fatal("expected error message")
			}
		})
	}
}

func TestTicketHandlerCreate(t *testing.T) {
	var gotSeller string
	var gotDraft usecase.TicketDraft
	facade := testhelpers.TicketFacadeStub{CreateTicketFn: func(_ context.Context, sellerID string, draft usecase.TicketDraft) (*model.Ticket, error) {
		gotSeller, gotDraft = sellerID, draft
		return &model.Ticket{ID: "t-1", SellerID: sellerID, EventName: draft.EventName, EventDate: draft.EventDate, Price: draft.Price, Status: model.TicketStatusAvailable}, nil
	}}
	body := []byte(`{"eventName":"Opera","venue":"Hall","eventDate":"2025-12-01T19:00:00Z","price":"120.50"}`)
	resp := performRequest(t, http.MethodPost, "/tickets", "/tickets", NewTicketHandler(facade).Create, asUser("seller"), body, jsonHeaders)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if gotSeller != "seller" || gotDraft.Venue != "Hall" || !gotDraft.Price.Equal(decimal.RequireFromString("120.5")) {
		t.Fatalf("unexpected draft passed to facade: %q %+v", gotSeller, gotDraft)
	}
	if !gotDraft.EventDate.Equal(time.Date(2025, 12, 1, 19, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected event date %v", gotDraft.EventDate)
	}

	var decoded dto.TicketResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.ID != "t-1" || decoded.Status != string(model.TicketStatusAvailable) || decoded.EventDate == nil {
		t.Fatalf("unexpected response %+v", decoded)
	}
}

func TestTicketHandlerCreateFailures(t *testing.T) {
	tests := []struct {
		name   string
		facade testhelpers.TicketFacadeStub
		body   []byte
		status int
	}{
		{name: "bad json", body: []byte("not json"), status: http.StatusBadRequest},
		{name: "bad price", body: []byte(`{"eventName":"x","price":"cheap"}`), status: http.StatusBadRequest},
		{name: "invalid price", body: []byte(`{"eventName":"x","price":"-1"}`), facade: testhelpers.TicketFacadeStub{CreateTicketFn: func(context.Context, string, usecase.TicketDraft) (*model.Ticket, error) {
			return nil, domainErrors.ErrInvalidPrice
		}}, status: http.StatusUnprocessableEntity},
		{name: "internal", body: []byte(`{"eventName":"x","price":"1"}`), facade: testhelpers.TicketFacadeStub{CreateTicketFn: func(context.Context, string, usecase.TicketDraft) (*model.Ticket, error) {
			return nil, errors.New("boom")
		}}, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodPost, "/tickets", "/tickets", NewTicketHandler(tt.facade).Create, asUser("seller"), tt.body, jsonHeaders)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestTicketHandlerGet(t *testing.T) {
	facade := testhelpers.TicketFacadeStub{TicketFn: func(_ context.Context, id string) (*model.Ticket, error) {
		if id != "t-1" {
			return nil, domainErrors.ErrNotFound
		}
		return &model.Ticket{ID: id, Status: model.TicketStatusReserved}, nil
	}}
	handler := NewTicketHandler(facade)

	resp := performRequest(t, http.MethodGet, "/tickets/:id", "/tickets/t-1", handler.Get, nil, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	resp = performRequest(t, http.MethodGet, "/tickets/:id", "/tickets/t-2", handler.Get, nil, nil, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestTicketHandlerListAvailable(t *testing.T) {
	var gotLimit int
	facade := testhelpers.TicketFacadeStub{AvailableTicketsFn: func(_ context.Context, limit int) ([]model.Ticket, error) {
		gotLimit = limit
		return []model.Ticket{{ID: "t-1"}, {ID: "t-2"}}, nil
	}}
	handler := NewTicketHandler(facade)

	resp := performRequest(t, http.MethodGet, "/tickets", "/tickets?limit=2", handler.ListAvailable, nil, nil, nil)
	if resp.Code != http.StatusOK || gotLimit != 2 {
		t.Fatalf("expected status 200 with limit 2, got %d limit=%d", resp.Code, gotLimit)
	}
	var decoded []dto.TicketResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil || len(decoded) != 2 {
		t.Fatalf("unexpected listing %s err=%v", resp.Body.String(), err)
	}

	resp = performRequest(t, http.MethodGet, "/tickets", "/tickets?limit=-3", handler.ListAvailable, nil, nil, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for negative limit, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodGet, "/tickets", "/tickets", NewTicketHandler(testhelpers.TicketFacadeStub{}).ListAvailable, nil, nil, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected status 204 for empty listing, got %d", resp.Code)
	}
}

func TestTicketHandlerListMine(t *testing.T) {
	facade := testhelpers.TicketFacadeStub{SellerTicketsFn: func(_ context.Context, sellerID string) ([]model.Ticket, error) {
		return []model.Ticket{{ID: "t-1", SellerID: sellerID}}, nil
	}}
	resp := performRequest(t, http.MethodGet, "/mine", "/mine", NewTicketHandler(facade).ListMine, asUser("seller"), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
}

func TestTicketHandlerActiveOrders(t *testing.T) {
	facade := testhelpers.TicketFacadeStub{ActiveOrdersFn: func(context.Context, string) (int, error) {
		return 1, nil
	}}
	resp := performRequest(t, http.MethodGet, "/tickets/:id/active-orders", "/tickets/t-1/active-orders", NewTicketHandler(facade).ActiveOrders, nil, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var decoded dto.ActiveOrdersResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil || decoded.Active != 1 || decoded.TicketID != "t-1" {
		t.Fatalf("unexpected response %s err=%v", resp.Body.String(), err)
	}

	missing := testhelpers.TicketFacadeStub{TicketFn: func(context.Context, string) (*model.Ticket, error) {
		return nil, domainErrors.ErrNotFound
	}}
	resp = performRequest(t, http.MethodGet, "/tickets/:id/active-orders", "/tickets/t-9/active-orders", NewTicketHandler(missing).ActiveOrders, nil, nil, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestTicketHandlerUpdate(t *testing.T) {
	var gotID, gotSeller string
	var gotPatch usecase.TicketPatch
	facade := testhelpers.TicketFacadeStub{UpdateTicketFn: func(_ context.Context, id, sellerID string, patch usecase.TicketPatch) (*model.Ticket, error) {
		gotID, gotSeller, gotPatch = id, sellerID, patch
		return &model.Ticket{ID: id, SellerID: sellerID, EventName: "Opera", Price: *patch.Price, Status: model.TicketStatusAvailable}, nil
	}}
	body := []byte(`{"price":"99.90","venue":"Annex"}`)
	resp := performRequest(t, http.MethodPut, "/tickets/:id", "/tickets/t-1", NewTicketHandler(facade).Update, asUser("seller"), body, jsonHeaders)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if gotID != "t-1" || gotSeller != "seller" || gotPatch.Venue == nil || *gotPatch.Venue != "Annex" || gotPatch.SeatInfo != nil {
		t.Fatalf("unexpected patch passed to facade: %q %q %+v", gotID, gotSeller, gotPatch)
	}
	if !gotPatch.Price.Equal(decimal.RequireFromString("99.9")) {
		t.Fatalf("unexpected price %s", gotPatch.Price)
	}

	tests := []struct {
		name   string
		body   []byte
		err    error
		status int
	}{
		{name: "bad json", body: []byte("{"), status: http.StatusBadRequest},
		{name: "not the seller", body: []byte(`{"venue":"x"}`), err: domainErrors.ErrForbidden, status: http.StatusForbidden},
		{name: "reserved", body: []byte(`{"venue":"x"}`), err: fmt.Errorf("%w: ticket is RESERVED", domainErrors.ErrWrongState), status: http.StatusConflict},
		{name: "missing", body: []byte(`{"venue":"x"}`), err: domainErrors.ErrNotFound, status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failing := testhelpers.TicketFacadeStub{UpdateTicketFn: func(context.Context, string, string, usecase.TicketPatch) (*model.Ticket, error) {
				return nil, tt.err
			}}
			resp := performRequest(t, http.MethodPut, "/tickets/:id", "/tickets/t-1", NewTicketHandler(failing).Update, asUser("seller"), tt.body, jsonHeaders)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestTicketHandlerSearch(t *testing.T) {
	var gotQuery string
	facade := testhelpers.TicketFacadeStub{SearchTicketsFn: func(_ context.Context, query string, _ int) ([]model.Ticket, error) {
		gotQuery = query
		if query == "" {
			return nil, fmt.Errorf("%w: search query is required", domainErrors.ErrInvalidTicket)
		}
		return []model.Ticket{{ID: "t-1", EventName: "Jazz"}}, nil
	}}
	handler := NewTicketHandler(facade)

	resp := performRequest(t, http.MethodGet, "/tickets/search", "/tickets/search?query=jazz", handler.Search, nil, nil, nil)
	if resp.Code != http.StatusOK || gotQuery != "jazz" {
		t.Fatalf("expected status 200 for jazz, got %d query=%q", resp.Code, gotQuery)
	}
	resp = performRequest(t, http.MethodGet, "/tickets/search", "/tickets/search", handler.Search, nil, nil, nil)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422 without query, got %d", resp.Code)
	}
	resp = performRequest(t, http.MethodGet, "/tickets/search", "/tickets/search?query=x&limit=many", handler.Search, nil, nil, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for bad limit, got %d", resp.Code)
	}
}

func TestTicketHandlerHappeningBetween(t *testing.T) {
	var gotFrom, gotTo time.Time
	facade := testhelpers.TicketFacadeStub{TicketsBetweenFn: func(_ context.Context, from, to time.Time, _ int) ([]model.Ticket, error) {
		gotFrom, gotTo = from, to
		return []model.Ticket{{ID: "t-1"}}, nil
	}}
	handler := NewTicketHandler(facade)

	target := "/tickets/happening-between?from=2025-07-01T00:00:00Z&to=2025-07-31T23:59:59Z"
	resp := performRequest(t, http.MethodGet, "/tickets/happening-between", target, handler.HappeningBetween, nil, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if !gotFrom.Equal(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)) || !gotTo.Equal(time.Date(2025, 7, 31, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("unexpected range %v..%v", gotFrom, gotTo)
	}

	resp = performRequest(t, http.MethodGet, "/tickets/happening-between", "/tickets/happening-between?from=yesterday&to=2025-07-31T23:59:59Z", handler.HappeningBetween, nil, nil, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for malformed bound, got %d", resp.Code)
	}
}

func TestOrderHandlerCreate(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		quantity int
	}{
		{name: "default quantity", body: `{"ticketId":" t-1 "}`, quantity: 1},
		{name: "explicit quantity", body: `{"ticketId":"t-1","quantity":3}`, quantity: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotBuyer, gotTicket string
			var gotQuantity int
			facade := testhelpers.OrderFacadeStub{PlaceOrderFn: func(_ context.Context, buyerID, ticketID string, quantity int) (*model.Order, error) {
				gotBuyer, gotTicket, gotQuantity = buyerID, ticketID, quantity
				return &model.Order{ID: "o-1", TicketID: ticketID, BuyerID: buyerID, Quantity: 1, Status: model.OrderStatusPending}, nil
			}}
			resp := performRequest(t, http.MethodPost, "/orders", "/orders", NewOrderHandler(facade).Create, asUser("buyer"), []byte(tt.body), jsonHeaders)
			if resp.Code != http.StatusCreated {
				t.Fatalf("expected status 201, got %d", resp.Code)
			}
			if gotBuyer != "buyer" || gotTicket != "t-1" || gotQuantity != tt.quantity {
				t.Fatalf("unexpected facade call %q %q %d", gotBuyer, gotTicket, gotQuantity)
			}
		})
	}
}

func TestOrderHandlerCreateFailures(t *testing.T) {
	failWith := func(err error) testhelpers.OrderFacadeStub {
		return testhelpers.OrderFacadeStub{PlaceOrderFn: func(context.Context, string, string, int) (*model.Order, error) {
			return nil, err
		}}
	}
	tests := []struct {
		name    string
		facade  testhelpers.OrderFacadeStub
		body    []byte
		status  int
		message string
	}{
		{name: "bad json", body: []byte("oops"), status: http.StatusBadRequest},
		{name: "missing ticket", body: []byte(`{"ticketId":"  "}`), status: http.StatusBadRequest},
		{name: "not available", body: []byte(`{"ticketId":"t-1"}`), facade: failWith(fmt.Errorf("%w: ticket is RESERVED", domainErrors.ErrNotAvailable)), status: http.StatusConflict, message: "ticket no longer available"},
		{name: "self trade", body: []byte(`{"ticketId":"t-1"}`), facade: failWith(domainErrors.ErrSelfTrade), status: http.StatusUnprocessableEntity},
		{name: "unknown ticket", body: []byte(`{"ticketId":"t-1"}`), facade: failWith(domainErrors.ErrNotFound), status: http.StatusNotFound},
		{name: "quantity", body: []byte(`{"ticketId":"t-1","quantity":2}`), facade: failWith(domainErrors.ErrInvalidQuantity), status: http.StatusUnprocessableEntity},
		{name: "timeout", body: []byte(`{"ticketId":"t-1"}`), facade: failWith(domainErrors.ErrTimeout), status: http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodPost, "/orders", "/orders", NewOrderHandler(tt.facade).Create, asUser("buyer"), tt.body, jsonHeaders)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
			if tt.message != "" && decodeError(t, resp) != tt.message {
				t.Fatalf("expected message %q, got %q", tt.message, decodeError(t, resp))
			}
		})
	}
}

func TestOrderHandlerGet(t *testing.T) {
	facade := testhelpers.OrderFacadeStub{OrderFn: func(_ context.Context, orderID, actorID string) (*model.Order, error) {
		if actorID != "buyer" {
			return nil, domainErrors.ErrForbidden
		}
		return &model.Order{ID: orderID, BuyerID: actorID, Status: model.OrderStatusApproved}, nil
	}}
	handler := NewOrderHandler(facade)

	resp := performRequest(t, http.MethodGet, "/orders/:id", "/orders/o-1", handler.Get, asUser("buyer"), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var decoded dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil || decoded.ID != "o-1" || decoded.Status != "APPROVED" {
		t.Fatalf("unexpected response %s err=%v", resp.Body.String(), err)
	}

	resp = performRequest(t, http.MethodGet, "/orders/:id", "/orders/o-1", handler.Get, asUser("stranger"), nil, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", resp.Code)
	}
}

func TestOrderHandlerApprove(t *testing.T) {
	var gotOrder, gotSeller string
	facade := testhelpers.OrderFacadeStub{ApproveOrderFn: func(_ context.Context, orderID, sellerID string) (*model.Order, error) {
		gotOrder, gotSeller = orderID, sellerID
		return &model.Order{ID: orderID, Status: model.OrderStatusApproved}, nil
	}}
	resp := performRequest(t, http.MethodPost, "/orders/:id/approve", "/orders/o-1/approve", NewOrderHandler(facade).Approve, asUser("seller"), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if gotOrder != "o-1" || gotSeller != "seller" {
		t.Fatalf("unexpected facade call %q %q", gotOrder, gotSeller)
	}
}

func TestOrderHandlerReject(t *testing.T) {
	var gotReason string
	facade := testhelpers.OrderFacadeStub{RejectOrderFn: func(_ context.Context, orderID, _, reason string) (*model.Order, error) {
		gotReason = reason
		return &model.Order{ID: orderID, Status: model.OrderStatusRejected, Reason: reason}, nil
	}}
	handler := NewOrderHandler(facade)

	resp := performRequest(t, http.MethodPost, "/orders/:id/reject", "/orders/o-1/reject", handler.Reject, asUser("seller"), []byte(`{"reason":"sold at the door"}`), jsonHeaders)
	if resp.Code != http.StatusOK || gotReason != "sold at the door" {
		t.Fatalf("expected status 200 with reason, got %d %q", resp.Code, gotReason)
	}

	gotReason = "unset"
	resp = performRequest(t, http.MethodPost, "/orders/:id/reject", "/orders/o-1/reject", handler.Reject, asUser("seller"), nil, nil)
	if resp.Code != http.StatusOK || gotReason != "" {
		t.Fatalf("expected status 200 without reason, got %d %q", resp.Code, gotReason)
	}

	resp = performRequest(t, http.MethodPost, "/orders/:id/reject", "/orders/o-1/reject", handler.Reject, asUser("seller"), []byte("{"), jsonHeaders)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for malformed body, got %d", resp.Code)
	}
}

func TestOrderHandlerPay(t *testing.T) {
	tests := []struct {
		name   string
		facade testhelpers.OrderFacadeStub
		body   []byte
		status int
	}{
		{name: "paid", body: []byte(`{"paymentRef":"pay-1"}`), status: http.StatusOK},
		{name: "missing ref", body: []byte(`{"paymentRef":" "}`), status: http.StatusBadRequest},
		{name: "no body", status: http.StatusBadRequest},
		{name: "expired", body: []byte(`{"paymentRef":"pay-1"}`), facade: testhelpers.OrderFacadeStub{PayOrderFn: func(context.Context, string, string, string) (*model.Order, error) {
			return nil, domainErrors.ErrExpired
		}}, status: http.StatusGone},
		{name: "not approved", body: []byte(`{"paymentRef":"pay-1"}`), facade: testhelpers.OrderFacadeStub{PayOrderFn: func(context.Context, string, string, string) (*model.Order, error) {
			return nil, fmt.Errorf("%w: order is PENDING", domainErrors.ErrWrongState)
		}}, status: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodPost, "/orders/:id/pay", "/orders/o-1/pay", NewOrderHandler(tt.facade).Pay, asUser("buyer"), tt.body, jsonHeaders)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestOrderHandlerByPaymentRef(t *testing.T) {
	var gotRef string
	facade := testhelpers.OrderFacadeStub{OrderByPaymentRefFn: func(_ context.Context, ref, actorID string) (*model.Order, error) {
		gotRef = ref
		return &model.Order{ID: "o-1", BuyerID: actorID, PaymentRef: ref, Status: model.OrderStatusPaid}, nil
	}}
	resp := performRequest(t, http.MethodGet, "/payments/:ref/order", "/payments/pay-7/order", NewOrderHandler(facade).ByPaymentRef, asUser("buyer"), nil, nil)
	if resp.Code != http.StatusOK || gotRef != "pay-7" {
		t.Fatalf("expected status 200 for pay-7, got %d %q", resp.Code, gotRef)
	}
}

func TestOrderHandlerLists(t *testing.T) {
	orders := []model.Order{{ID: "o-1"}, {ID: "o-2"}}
	facade := testhelpers.OrderFacadeStub{
		BuyerOrdersFn: func(context.Context, string) ([]model.Order, error) { return orders, nil },
		SellerOrdersFn: func(context.Context, string) ([]model.Order, error) {
			return nil, domainErrors.ErrStorageUnavailable
		},
	}
	handler := NewOrderHandler(facade)

	resp := performRequest(t, http.MethodGet, "/purchases", "/purchases", handler.ListPurchases, asUser("buyer"), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var decoded []dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(decoded) != len(orders) {
		t.Fatalf("expected %d orders, got %d", len(orders), len(decoded))
	}

	resp = performRequest(t, http.MethodGet, "/sales", "/sales", handler.ListSales, asUser("seller"), nil, nil)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", resp.Code)
	}
}

func TestHealthHandlerCheck(t *testing.T) {
	resp := performRequest(t, http.MethodGet, "/health", "/health", NewHealthHandler(testhelpers.HealthFacadeStub{}).Check, nil, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	resp = performRequest(t, http.MethodGet, "/health", "/health", NewHealthHandler(testhelpers.HealthFacadeStub{Err: errors.New("down")}).Check, nil, nil, nil)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", resp.Code)
	}
}
