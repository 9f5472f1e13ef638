// Package payments wraps the external payment processor.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

type Client struct {
	baseURL string
	apiKey  string
	// intent creation is sent once; reads may retry
	create *http.Client
	read   *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = 5 * time.Second
	rc.Logger = nil

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		create:  &http.Client{Timeout: 10 * time.Second},
		read:    rc.StandardClient(),
	}
}

// Metadata correlates an authorization to the purchase it pays for, so a
// webhook-driven fulfillment path can be added without schema changes.
type Metadata struct {
	BuyerID        string `json:"buyerId"`
	OfferID        string `json:"offerId"`
	ServicePointID string `json:"servicePointId"`
}

type intentRequest struct {
	Amount   int64    `json:"amount"` // minor units
	Currency string   `json:"currency"`
	Metadata Metadata `json:"metadata"`
}

type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// CreateIntent opens a payment authorization for amount minor units.
func (c *Client) CreateIntent(ctx context.Context, amount int64, currency string, meta Metadata) (*Intent, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("payments client not configured")
	}
	body, err := json.Marshal(intentRequest{Amount: amount, Currency: currency, Metadata: meta})
	if err != nil {
		return nil, fmt.Errorf("marshal intent: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payment_intents", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.auth(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.create.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("processor returned %d: %s", resp.StatusCode, readSnippet(resp.Body))
	}

	var in Intent
	if err := json.NewDecoder(resp.Body).Decode(&in); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if in.ClientSecret == "" {
		return nil, fmt.Errorf("processor returned no client secret")
	}
	return &in, nil
}

// GetIntent reads an authorization back by id.
func (c *Client) GetIntent(ctx context.Context, id string) (*Intent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/payment_intents/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.auth(req)

	resp, err := c.read.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("processor returned %d: %s", resp.StatusCode, readSnippet(resp.Body))
	}

	var in Intent
	if err := json.NewDecoder(resp.Body).Decode(&in); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &in, nil
}

// MinorUnits converts a decimal price to integer minor units.
func MinorUnits(price float64) int64 {
	return int64(price*100 + 0.5)
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 1024))
	return strings.TrimSpace(string(b))
}

func (c *Client) auth(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
