package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// LineItem is one purchased position as handed to the payment processor.
type LineItem struct {
	Name      string  `json:"name"`
	Size      string  `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  uint    `json:"quantity"`
	Image     string  `json:"image,omitempty"`
}

type sessionRequest struct {
	Items      []LineItem `json:"items"`
	SuccessURL string     `json:"success_url"`
	CancelURL  string     `json:"cancel_url"`
	Reference  string     `json:"reference,omitempty"`
}

type sessionResponse struct {
	URL string `json:"url"`
}

// Service creates hosted-checkout sessions with the external payment
// processor. The shopper is redirected to the returned URL; payment itself
// never touches this codebase.
type Service interface {
	CreateSession(ctx context.Context, items []LineItem, reference string) (string, error)
}

type Client struct {
	baseURL      string
	apiKey       string
	returnDomain string
	httpClient   *http.Client
}

func NewClient(baseURL, apiKey, returnDomain string) *Client {
	return &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		returnDomain: returnDomain,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c *Client) CreateSession(ctx context.Context, items []LineItem, reference string) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("checkout api url is not configured")
	}

	payload := sessionRequest{
		Items:      items,
		SuccessURL: c.returnDomain + "/success",
		CancelURL:  c.returnDomain + "/cart",
		Reference:  reference,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("checkout session failed with status %d", resp.StatusCode)
	}

	var result sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode session response: %w", err)
	}
	if result.URL == "" {
		return "", fmt.Errorf("checkout session response had no url")
	}
	return result.URL, nil
}

// WebhookEvent is the processor's completion callback payload.
type WebhookEvent struct {
	Type string         `json:"type"`
	Data WebhookSession `json:"data"`
}

type WebhookSession struct {
	Reference  string            `json:"reference,omitempty"`
	UserID     string            `json:"user_id,omitempty"`
	GuestEmail string            `json:"guest_email,omitempty"`
	Total      float64           `json:"total"`
	Items      []WebhookItem     `json:"items"`
	Shipping   map[string]string `json:"shipping"`
}

type WebhookItem struct {
	Name     string `json:"name"`
	Size     string `json:"size,omitempty"`
	Quantity uint   `json:"quantity"`
}

const EventSessionCompleted = "checkout.session.completed"
