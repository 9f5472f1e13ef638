// Package shipping wraps the carrier parcel API.
package shipping

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
	"unicode/utf8"

	"github.com/hashicorp/go-retryablehttp"
)

// MaxDescriptionLen is the carrier's parcel description field limit.
const MaxDescriptionLen = 35

type Client struct {
	baseURL string
	apiKey  string
	// create goes over a plain client: parcel creation is not assumed
	// idempotent, so it is never auto-retried. Read-only lookups go over
	// the retrying client.
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

// APIError carries the carrier's diagnostic payload for a non-2xx reply.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("carrier returned %d: %s", e.Status, e.Body)
}

type ParcelRequest struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	ToServicePoint string  `json:"to_service_point"`
	SenderAddress  string  `json:"sender_address"` // carrier-assigned sender id
	WeightGrams    int     `json:"weight"`
	InsuredValue   float64 `json:"insured_value"`
	Description    string  `json:"description"`
	RequestLabel   bool    `json:"request_label"`
}

type Parcel struct {
	ID             string `json:"id"`
	TrackingNumber string `json:"tracking_number"`
	LabelID        string `json:"label_id"`
}

type ServicePoint struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

type SenderAddress struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// CreateParcel registers a shipment with the carrier. The description is
// truncated to the carrier's field limit before sending.
func (c *Client) CreateParcel(ctx context.Context, pr ParcelRequest) (*Parcel, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("carrier client not configured")
	}
	pr.Description = Truncate(pr.Description, MaxDescriptionLen)

	body, err := json.Marshal(pr)
	if err != nil {
		return nil, fmt.Errorf("marshal parcel: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/parcels", bytes.NewReader(body))
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
		return nil, &APIError{Status: resp.StatusCode, Body: readSnippet(resp.Body)}
	}

	var p Parcel
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if p.TrackingNumber == "" {
		return nil, fmt.Errorf("carrier returned no tracking number")
	}
	return &p, nil
}

// GetLabel fetches the binary label document for a parcel.
func (c *Client) GetLabel(ctx context.Context, labelID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/labels/"+url.PathEscape(labelID), nil)
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
		return nil, &APIError{Status: resp.StatusCode, Body: readSnippet(resp.Body)}
	}
	return io.ReadAll(resp.Body)
}

// ServicePoints queries pickup points for a country + postal code.
func (c *Client) ServicePoints(ctx context.Context, country, postalCode string) ([]ServicePoint, error) {
	q := url.Values{}
	q.Set("country", country)
	q.Set("postal_code", postalCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/service-points?"+q.Encode(), nil)
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
		return nil, &APIError{Status: resp.StatusCode, Body: readSnippet(resp.Body)}
	}

	var points []ServicePoint
	if err := json.NewDecoder(resp.Body).Decode(&points); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return points, nil
}

// UpsertSender syncs a seller's address with the carrier and returns the
// carrier-assigned sender id.
func (c *Client) UpsertSender(ctx context.Context, addr SenderAddress) (string, error) {
	body, err := json.Marshal(addr)
	if err != nil {
		return "", fmt.Errorf("marshal sender: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sender-addresses", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	c.auth(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.create.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", &APIError{Status: resp.StatusCode, Body: readSnippet(resp.Body)}
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("carrier returned no sender id")
	}
	return out.ID, nil
}

// readSnippet drains at most 1 KiB of an error body for diagnostics.
func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 1024))
	return strings.TrimSpace(string(b))
}

func (c *Client) auth(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// Truncate shortens s to at most max bytes without splitting a UTF-8 rune.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
