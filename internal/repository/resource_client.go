package repository

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

	"go.uber.org/zap"
)

// maxResponseBytes bounds how much of a backend response is read
const maxResponseBytes = 16 << 20

// ResourceClient is the generic CRUD access layer of the inventory backend,
// keyed by resource name ("products", "sales", ...)
type ResourceClient interface {
	List(ctx context.Context, resource string, params ListParams, out any) (total int, err error)
	Get(ctx context.Context, resource, id string, out any) error
	Create(ctx context.Context, resource string, payload any, out any) error
	Update(ctx context.Context, resource, id string, payload any, out any) error
	Delete(ctx context.Context, resource, id string) error
}

type resourceClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewResourceClient creates a ResourceClient for the backend at baseURL
func NewResourceClient(baseURL string, timeout time.Duration, logger *zap.Logger) ResourceClient {
	return &resourceClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// pageEnvelope is the paginated list response shape
type pageEnvelope struct {
	Data      json.RawMessage `json:"data"`
	Count     int             `json:"count"`
	Total     int             `json:"total"`
	Page      int             `json:"page"`
	PageCount int             `json:"pageCount"`
}

// List fetches records of resource into out (a pointer to a slice) and
// returns the total number of matching records
func (c *resourceClient) List(ctx context.Context, resource string, params ListParams, out any) (int, error) {
	endpoint := c.resourceURL(resource, "")
	if query := params.Encode(); query != "" {
		endpoint += "?" + query
	}

	body, err := c.do(ctx, http.MethodGet, resource, endpoint, nil)
	if err != nil {
		return 0, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return 0, fmt.Errorf("failed to decode %s list: %w", resource, err)
		}
		if err := json.Unmarshal(trimmed, out); err != nil {
			return 0, fmt.Errorf("failed to decode %s list: %w", resource, err)
		}
		return len(items), nil
	}

	var page pageEnvelope
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return 0, fmt.Errorf("failed to decode %s page: %w", resource, err)
	}
	if len(page.Data) > 0 {
		if err := json.Unmarshal(page.Data, out); err != nil {
			return 0, fmt.Errorf("failed to decode %s page data: %w", resource, err)
		}
	}

	return page.Total, nil
}

// Get fetches a single record of resource by id
func (c *resourceClient) Get(ctx context.Context, resource, id string, out any) error {
	body, err := c.do(ctx, http.MethodGet, resource, c.resourceURL(resource, id), nil)
	if err != nil {
		return err
	}
	return decodeRecord(resource, body, out)
}

// Create posts payload as a new record of resource and decodes the created record
func (c *resourceClient) Create(ctx context.Context, resource string, payload any, out any) error {
	body, err := c.do(ctx, http.MethodPost, resource, c.resourceURL(resource, ""), payload)
	if err != nil {
		return err
	}
	return decodeRecord(resource, body, out)
}

// Update patches the record of resource identified by id
func (c *resourceClient) Update(ctx context.Context, resource, id string, payload any, out any) error {
	body, err := c.do(ctx, http.MethodPatch, resource, c.resourceURL(resource, id), payload)
	if err != nil {
		return err
	}
	return decodeRecord(resource, body, out)
}

// Delete removes the record of resource identified by id
func (c *resourceClient) Delete(ctx context.Context, resource, id string) error {
	_, err := c.do(ctx, http.MethodDelete, resource, c.resourceURL(resource, id), nil)
	return err
}

func (c *resourceClient) resourceURL(resource, id string) string {
	endpoint := c.baseURL + "/" + url.PathEscape(resource)
	if id != "" {
		endpoint += "/" + url.PathEscape(id)
	}
	return endpoint
}

func (c *resourceClient) do(ctx context.Context, method, resource, endpoint string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", resource, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", resource, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Backend request failed",
			zap.String("method", method),
			zap.String("resource", resource),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to call %s %s: %w", method, resource, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", resource, err)
	}

	c.logger.Debug("Backend request completed",
		zap.String("method", method),
		zap.String("resource", resource),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(method, resource, resp.StatusCode, body)
	}

	return body, nil
}

// decodeRecord decodes a single-record response; some backends wrap it in {data: ...}
func decodeRecord(resource string, body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && len(wrapped.Data) > 0 && wrapped.Data[0] == '{' {
		body = wrapped.Data
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s record: %w", resource, err)
	}
	return nil
}
