// Package whatsapp sends outbound messages through the Graph API.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/replydesk/replydesk/internal/bot"
	"github.com/replydesk/replydesk/internal/metrics"
)

// DefaultBaseURL is the Graph API endpoint prefix.
const DefaultBaseURL = "https://graph.facebook.com/v13.0"

// Credentials are the bearer token and sender phone-number id used for one
// send. They are read at call time, not cached, so settings changes take
// effect immediately.
type Credentials struct {
	Token         string
	PhoneNumberID string
}

// CredentialSource supplies fresh credentials per call.
type CredentialSource func() Credentials

// Client implements bot.Sender against the Graph API send-message endpoint.
type Client struct {
	httpClient  *http.Client
	credentials CredentialSource
	baseURL     string
	logger      *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the Graph API endpoint (tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient constructs a Client.
func NewClient(credentials CredentialSource, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		credentials: credentials,
		baseURL:     DefaultBaseURL,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type textPayload struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body string `json:"body"`
}

// SendText delivers one text message. The result reports delivery success
// so callers can decide what to surface; no retry is attempted.
func (c *Client) SendText(ctx context.Context, to, body string) (bot.DeliveryResult, error) {
	creds := c.credentials()
	if creds.Token == "" || creds.PhoneNumberID == "" {
		return bot.DeliveryResult{}, fmt.Errorf("whatsapp credentials are not configured")
	}

	payload, err := json.Marshal(textPayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: body},
	})
	if err != nil {
		return bot.DeliveryResult{}, fmt.Errorf("marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, creds.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return bot.DeliveryResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveSend(false)
		return bot.DeliveryResult{}, fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	result := bot.DeliveryResult{
		OK:         resp.StatusCode >= 200 && resp.StatusCode < 300,
		StatusCode: resp.StatusCode,
	}
	metrics.ObserveSend(result.OK)
	if !result.OK {
		c.logger.Warn("message delivery rejected",
			zap.String("to", to),
			zap.Int("status", resp.StatusCode),
		)
	}
	return result, nil
}
