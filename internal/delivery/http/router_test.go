package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eventbooking/internal/delivery/http/controllers"
	"eventbooking/internal/delivery/http/middleware"
	"eventbooking/internal/domain"

	"github.com/stretchr/testify/assert"
)

// tokenTable verifies tokens by looking them up; the token is the role name.
type tokenTable map[string]domain.Principal

func (t tokenTable) Verify(token string) (domain.Principal, error) {
	p, ok := t[token]
	if !ok {
		return domain.Principal{}, errors.New("unknown token")
	}
	return p, nil
}

type stubEventService struct{ domain.EventService }

func (stubEventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	return []*domain.Event{{Title: "Gala"}}, 1, nil
}

func (stubEventService) DeleteEvent(ctx context.Context, title string) error {
	return nil
}

func TestRouter_Access(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	tokens := tokenTable{
		"admin":    {UserID: "u-1", Email: "boss@example.com", Role: domain.RoleAdmin},
		"employee": {UserID: "u-2", Email: "bob@example.com", Role: domain.RoleEmployee},
		"customer": {UserID: "u-3", Email: "ann@example.com", Role: domain.RoleCustomer},
	}
	router := NewRouter(Controllers{
		User:     controllers.NewUserController(logger, nil),
		Event:    controllers.NewEventController(logger, stubEventService{}),
		Request:  controllers.NewRequestController(logger, nil),
		Employee: controllers.NewEmployeeController(logger, nil),
		Live:     controllers.NewLiveController(logger, nil, nil, nil, nil),
	}, tokens, logger)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{name: "health is public", method: http.MethodGet, path: "/healthz", wantStatus: http.StatusOK},
		{name: "events need a token", method: http.MethodGet, path: "/events", wantStatus: http.StatusUnauthorized},
		{name: "bad token", method: http.MethodGet, path: "/events", token: "nobody", wantStatus: http.StatusUnauthorized},
		{name: "any role lists events", method: http.MethodGet, path: "/events", token: "customer", wantStatus: http.StatusOK},
		{name: "admin deletes events", method: http.MethodDelete, path: "/events/Gala", token: "admin", wantStatus: http.StatusOK},
		{name: "customer cannot delete events", method: http.MethodDelete, path: "/events/Gala", token: "customer", wantStatus: http.StatusForbidden},
		{name: "admin cannot book", method: http.MethodPost, path: "/events/Gala/requests", token: "admin", wantStatus: http.StatusForbidden},
		{name: "employee cannot accept", method: http.MethodPost, path: "/requests/Gala/accept", token: "employee", wantStatus: http.StatusForbidden},
		{name: "customer cannot toggle progress", method: http.MethodPatch, path: "/requests/Gala/progress/food", token: "customer", wantStatus: http.StatusForbidden},
		{name: "customer cannot see assigned", method: http.MethodGet, path: "/requests/assigned", token: "customer", wantStatus: http.StatusForbidden},
		{name: "employee cannot list all requests", method: http.MethodGet, path: "/requests", token: "employee", wantStatus: http.StatusForbidden},
		{name: "employee cannot invite", method: http.MethodPost, path: "/employees", token: "employee", wantStatus: http.StatusForbidden},
		{name: "customer cannot watch employees", method: http.MethodGet, path: "/employees/live", token: "customer", wantStatus: http.StatusForbidden},
		{name: "wrong method", method: http.MethodPatch, path: "/events", token: "admin", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "http://test"+tt.path, strings.NewReader("{}"))
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

type stubMailer struct{}

func (stubMailer) Send(ctx context.Context, to, subject, html, text string) (string, error) {
	return "msg-1", nil
}

func TestRelayRouter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	router := NewRelayRouter(controllers.NewRelayController(logger, stubMailer{}), middleware.NewRateLimiter(1))

	send := func(method string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "http://test/api/send", strings.NewReader(`{"to":"a@b.co","subject":"s","message":"m"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusOK, send(http.MethodPost).Code)
	limited := send(http.MethodPost)
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.JSONEq(t, `{"error":"too many requests"}`, limited.Body.String())
}
