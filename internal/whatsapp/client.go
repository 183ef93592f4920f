package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Sender is the narrow outbound contract the services depend on. It exists
// so the confirmation flow can be exercised with a fake in tests and so the
// gateway (Cloud API direct, or a relay such as Kapso) can be swapped.
type Sender interface {
	// SendText delivers a free-text message to a phone number and returns
	// the WhatsApp message id assigned by the gateway.
	SendText(ctx context.Context, to, body string) (string, error)
}

// APIError is returned when the Cloud API answers with a non-2xx status.
// The body is retained (truncated) because Meta's error payloads carry the
// actionable detail; there is no retry or backoff at this layer.
type APIError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp api: status %d: %s", e.StatusCode, e.Body)
}

// Client is a minimal WhatsApp Cloud API client. It sends text messages from
// a single business phone number, authenticated with a bearer token.
type Client struct {
	// BaseURL is the Graph API root, e.g. "https://graph.facebook.com/v19.0".
	BaseURL string
	// Token is the bearer token for the WhatsApp Business account.
	Token string
	// PhoneNumberID is the business phone number the messages are sent from.
	PhoneNumberID string

	// HTTPClient is used for all requests; a default with a 15s timeout is
	// applied when nil.
	HTTPClient *http.Client
}

// maxErrBody caps how much of an error response body is kept on APIError.
const maxErrBody = 2048

// NewClient constructs a Client with a sane default HTTP timeout.
func NewClient(baseURL, token, phoneNumberID string) *Client {
	return &Client{
		BaseURL:       strings.TrimRight(baseURL, "/"),
		Token:         token,
		PhoneNumberID: phoneNumberID,
		HTTPClient:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SendText posts a free-text message to the Cloud API and returns the
// WhatsApp message id. A non-2xx response yields an *APIError carrying the
// status code and (truncated) body; the call is not retried.
func (c *Client) SendText(ctx context.Context, to, body string) (string, error) {
	payload := sendRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             &sendText{Body: body},
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s/messages", strings.TrimRight(c.BaseURL, "/"), c.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	res, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", err
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b := string(raw)
		if len(b) > maxErrBody {
			b = b[:maxErrBody]
		}
		return "", &APIError{StatusCode: res.StatusCode, Body: b}
	}

	var out SendResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", err
	}
	return out.MessageID(), nil
}
