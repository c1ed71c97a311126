package controllers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"eventbooking/internal/adapters/email"
	"eventbooking/internal/domain"
)

// maxRelayRequest bounds the size of a relay request body.
const maxRelayRequest = 1 << 20

// RelayErrorResponse is the error body of the email relay.
type RelayErrorResponse struct {
	Error    string   `json:"error"`
	Allowed  string   `json:"allowed,omitempty"`
	Required []string `json:"required,omitempty"`
}

// RelayController exposes a Mailer over HTTP for clients that cannot hold provider credentials.
// Its bodies are plain JSON objects, not the API envelope.
type RelayController struct {
	Logger *slog.Logger
	Mailer domain.Mailer
}

func NewRelayController(logger *slog.Logger, mailer domain.Mailer) *RelayController {
	return &RelayController{
		Logger: logger,
		Mailer: mailer,
	}
}

func writeRelayJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Send godoc
// @Summary Send an email
// @Description Forward a plain-text message to the configured email provider.
// @Tags relay
// @Accept json
// @Produce json
// @Param body body email.RelaySendRequest true "Message"
// @Success 200 {object} email.RelaySendResponse "success and provider message id"
// @Failure 400 {object} controllers.RelayErrorResponse "missing fields"
// @Failure 405 {object} controllers.RelayErrorResponse "only POST is allowed"
// @Failure 429 {object} controllers.RelayErrorResponse "rate limited"
// @Failure 500 {object} controllers.RelayErrorResponse "provider error"
// @Router /api/send [post]
func (c *RelayController) Send(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeRelayJSON(w, http.StatusMethodNotAllowed, RelayErrorResponse{Error: "method not allowed", Allowed: http.MethodPost})
		return
	}
	var req email.RelaySendRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRelayRequest))
	if err := dec.Decode(&req); err != nil {
		writeRelayJSON(w, http.StatusBadRequest, RelayErrorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}
	req.To = strings.TrimSpace(req.To)
	if req.To == "" || strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Message) == "" {
		writeRelayJSON(w, http.StatusBadRequest, RelayErrorResponse{
			Error:    "missing required fields",
			Required: []string{"to", "subject", "message"},
		})
		return
	}
	id, err := c.Mailer.Send(r.Context(), req.To, req.Subject, "", req.Message)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "relay send failed", "to", req.To, "err", err)
		writeRelayJSON(w, http.StatusInternalServerError, RelayErrorResponse{Error: err.Error()})
		return
	}
	c.Logger.InfoContext(r.Context(), "relay email sent", "to", req.To, "message_id", id)
	writeRelayJSON(w, http.StatusOK, email.RelaySendResponse{Success: true, ID: id})
}

// TooManyRequests answers a rate-limited relay request.
func (c *RelayController) TooManyRequests(w http.ResponseWriter, r *http.Request) {
	writeRelayJSON(w, http.StatusTooManyRequests, RelayErrorResponse{Error: "too many requests"})
}
