package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrRelay wraps failures reported by, or in reaching, the email relay.
var ErrRelay = errors.New("email relay")

// maxRelayBody bounds how much of a relay response is read.
const maxRelayBody = 64 << 10

// RelaySendRequest is the body accepted by the relay's POST /api/send.
type RelaySendRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// RelaySendResponse is the JSON body returned by the relay.
type RelaySendResponse struct {
	Success bool   `json:"success,omitempty"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RelayClient is a Mailer that forwards plain-text messages to the email relay.
type RelayClient struct {
	url    string
	client *http.Client
}

// NewRelayClient returns a RelayClient posting to baseURL + "/api/send".
func NewRelayClient(baseURL string, client *http.Client) *RelayClient {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &RelayClient{url: strings.TrimSuffix(baseURL, "/") + "/api/send", client: client}
}

// Send posts the text body to the relay. The HTML body is not used by the relay contract.
func (c *RelayClient) Send(ctx context.Context, to, subject, html, text string) (string, error) {
	message := text
	if message == "" {
		message = html
	}
	body, err := json.Marshal(RelaySendRequest{To: to, Subject: subject, Message: message})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrRelay, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", ErrRelay, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRelay, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxRelayBody))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrRelay, err)
	}

	// Hosting platforms answer some failures with HTML pages; those are reported as text.
	var out RelaySendResponse
	decoded := json.Unmarshal(raw, &out) == nil

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(raw))
		if decoded && out.Error != "" {
			msg = out.Error
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", fmt.Errorf("%w: status %d: %s", ErrRelay, resp.StatusCode, truncate(msg, 300))
	}
	return out.ID, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
