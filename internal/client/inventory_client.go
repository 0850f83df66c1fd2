// Package client is a typed client for the inventory REST API.
package client

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

	"invadmin/internal/domain"
	applog "invadmin/internal/log"
)

// InventoryClient talks to the inventory REST API.
type InventoryClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewInventoryClient(baseURL string, timeout time.Duration) *InventoryClient {
	return &InventoryClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// APIError is a non-2xx answer from the API. Message is the body's
// "message" field and may be empty.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("inventory api: status %d", e.Status)
	}
	return fmt.Sprintf("inventory api: status %d: %s", e.Status, e.Message)
}

// SearchFilter selects the search endpoint. With ProductID set only
// Condition is forwarded.
type SearchFilter struct {
	ProductID   string
	ProductName string
	Condition   string
}

// Create posts all six fields to /inventory.
func (c *InventoryClient) Create(ctx context.Context, f domain.Fields) (domain.Record, error) {
	return c.record(ctx, http.MethodPost, "/inventory", nil, f)
}

// Update replaces the record at (id, condition).
func (c *InventoryClient) Update(ctx context.Context, id, condition string, f domain.Fields) (domain.Record, error) {
	return c.record(ctx, http.MethodPut, itemPath(id), url.Values{"condition": {condition}}, f)
}

// Get retrieves one record by id and condition.
func (c *InventoryClient) Get(ctx context.Context, id, condition string) (domain.Record, error) {
	return c.record(ctx, http.MethodGet, itemPath(id), url.Values{"condition": {condition}}, nil)
}

// Delete removes every condition variant of id.
func (c *InventoryClient) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, itemPath(id), nil, nil)
	return err
}

// Increase adds value to the quantity of (id, condition).
func (c *InventoryClient) Increase(ctx context.Context, id, condition, value string) (domain.Record, error) {
	return c.adjust(ctx, "inc", id, condition, value)
}

// Decrease subtracts value from the quantity of (id, condition).
func (c *InventoryClient) Decrease(ctx context.Context, id, condition, value string) (domain.Record, error) {
	return c.adjust(ctx, "dec", id, condition, value)
}

// SetQuantity overwrites the quantity of (id, condition).
func (c *InventoryClient) SetQuantity(ctx context.Context, id, condition, value string) (domain.Record, error) {
	return c.adjust(ctx, "update", id, condition, value)
}

// Search queries /inventory or /inventory/{id}. The result shape follows the
// response body, not the filter.
func (c *InventoryClient) Search(ctx context.Context, f SearchFilter) (domain.SearchResult, error) {
	path := "/inventory"
	q := url.Values{}
	if f.ProductID != "" {
		path = itemPath(f.ProductID)
		if f.Condition != "" {
			q.Set("condition", f.Condition)
		}
	} else {
		if f.ProductName != "" {
			q.Set("product_name", f.ProductName)
		}
		if f.Condition != "" {
			q.Set("condition", f.Condition)
		}
	}
	body, err := c.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return domain.SearchResult{}, err
	}
	return DecodeSearch(body)
}

// DecodeSearch accepts either a JSON object or a JSON array of records.
func DecodeSearch(body []byte) (domain.SearchResult, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return domain.ManyResult(nil), nil
	}
	switch trimmed[0] {
	case '{':
		var r domain.Record
		if err := json.Unmarshal(trimmed, &r); err != nil {
			return domain.SearchResult{}, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		return domain.SingleResult(r), nil
	case '[':
		var rs []domain.Record
		if err := json.Unmarshal(trimmed, &rs); err != nil {
			return domain.SearchResult{}, fmt.Errorf("failed to unmarshal records: %w", err)
		}
		return domain.ManyResult(rs), nil
	default:
		return domain.SearchResult{}, fmt.Errorf("unexpected search response: %.40q", trimmed)
	}
}

func itemPath(id string) string { return "/inventory/" + url.PathEscape(id) }

func (c *InventoryClient) adjust(ctx context.Context, op, id, condition, value string) (domain.Record, error) {
	q := url.Values{"condition": {condition}, "value": {value}}
	return c.record(ctx, http.MethodPut, itemPath(id)+"/"+op, q, nil)
}

func (c *InventoryClient) record(ctx context.Context, method, path string, q url.Values, payload any) (domain.Record, error) {
	body, err := c.do(ctx, method, path, q, payload)
	if err != nil {
		return domain.Record{}, err
	}
	var r domain.Record
	if err := json.Unmarshal(body, &r); err != nil {
		return domain.Record{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return r, nil
}

// do sends one request and returns the body of a 2xx response.
func (c *InventoryClient) do(ctx context.Context, method, path string, q url.Values, payload any) ([]byte, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		applog.Outbound(method, u, 0, time.Since(start), err)
		return nil, fmt.Errorf("failed to call inventory service: %w", err)
	}
	defer resp.Body.Close()
	applog.Outbound(method, u, resp.StatusCode, time.Since(start), nil)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &msg) == nil {
			apiErr.Message = msg.Message
		}
		return nil, apiErr
	}
	return body, nil
}
