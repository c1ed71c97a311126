package controllers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eventbooking/internal/delivery/http/helpers"
	"eventbooking/internal/domain"

	"github.com/gorilla/websocket"
)

const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = livePongWait * 9 / 10
)

// LiveController streams snapshots of watched documents over websockets. The current state is
// written once on connect, then once after every change.
type LiveController struct {
	Logger    *slog.Logger
	Requests  domain.RequestService
	Employees domain.EmployeeService
	Feed      domain.ChangeFeed
	upgrader  websocket.Upgrader
}

// NewLiveController builds a LiveController. Browser origins are checked against allowedOrigins;
// an empty list or "*" allows every origin.
func NewLiveController(logger *slog.Logger, requests domain.RequestService, employees domain.EmployeeService, feed domain.ChangeFeed, allowedOrigins []string) *LiveController {
	return &LiveController{
		Logger:    logger,
		Requests:  requests,
		Employees: employees,
		Feed:      feed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		o = strings.TrimSpace(o)
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if o != "" {
			set[o] = struct{}{}
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(set) == 0 {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// WatchRequest godoc
// @Summary Watch a request
// @Description Upgrade to a websocket that receives the request (with overall_status) now and after every change. Browsers may pass the token as the access_token query parameter. Customers may only watch their own requests.
// @Tags live
// @Security BearerAuth
// @Param title path string true "Request title"
// @Param access_token query string false "Bearer token for clients that cannot set headers"
// @Success 101 "Switching Protocols"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /requests/{title}/live [get]
func (c *LiveController) WatchRequest(w http.ResponseWriter, r *http.Request) {
	title, ok := pathTitle(w, r)
	if !ok {
		return
	}
	p, ok := caller(w, r)
	if !ok {
		return
	}
	// Subscribe before reading the snapshot so no write falls between the two.
	updates, cancel := c.Feed.Subscribe(domain.RequestTopic(title))
	defer cancel()

	current, err := c.Requests.GetRequest(r.Context(), title, p)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	snapshot, err := json.Marshal(domain.NewRequestView(current))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	c.stream(w, r, snapshot, updates)
}

// WatchEmployees godoc
// @Summary Watch the employee roster
// @Description Upgrade to a websocket that receives the employee list now and after every invite or first login. Admin only.
// @Tags live
// @Security BearerAuth
// @Param access_token query string false "Bearer token for clients that cannot set headers"
// @Success 101 "Switching Protocols"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /employees/live [get]
func (c *LiveController) WatchEmployees(w http.ResponseWriter, r *http.Request) {
	updates, cancel := c.Feed.Subscribe(domain.TopicEmployees)
	defer cancel()

	employees, err := c.Employees.List(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if employees == nil {
		employees = []*domain.Employee{}
	}
	snapshot, err := json.Marshal(employees)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	c.stream(w, r, snapshot, updates)
}

// stream upgrades the connection, writes snapshot and forwards updates until either side goes away.
func (c *LiveController) stream(w http.ResponseWriter, r *http.Request, snapshot []byte, updates <-chan []byte) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		c.Logger.WarnContext(r.Context(), "websocket upgrade failed", "path", r.URL.Path, "err", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go c.readLoop(ctx, cancel, conn)

	if err := c.write(conn, websocket.TextMessage, snapshot); err != nil {
		return
	}
	ticker := time.NewTicker(livePingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(liveWriteWait))
			return
		case msg, ok := <-updates:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(liveWriteWait))
				return
			}
			if err := c.write(conn, websocket.TextMessage, msg); err != nil {
				c.Logger.DebugContext(ctx, "live write failed", "path", r.URL.Path, "err", err)
				return
			}
		case <-ticker.C:
			if err := c.write(conn, websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *LiveController) write(conn *websocket.Conn, messageType int, data []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
	return conn.WriteMessage(messageType, data)
}

// readLoop discards client messages and cancels ctx once the client disconnects.
func (c *LiveController) readLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn) {
	defer cancel()
	_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}
