package gateapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/billie-coop/fasttrack/internal/exeat"
	"github.com/billie-coop/fasttrack/internal/logging"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Client talks to the gate backend.
type Client struct {
	client  *http.Client
	baseURL string
	token   string
	log     logging.Logger
	newID   func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithTimeout sets a per-request timeout. Zero means none.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.client
		hc.Timeout = d
		c.client = &hc
	}
}

func WithLogger(log logging.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithRequestIDs replaces the X-Request-ID generator.
func WithRequestIDs(fn func() string) Option {
	return func(c *Client) { c.newID = fn }
}

// New creates a client for baseURL (for example https://gate.example.edu/api).
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		client:  &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		log:     logging.Discard(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type listResponse struct {
	Data []exeat.Request `json:"data"`
	exeat.PaginationMeta
}

// ListEligible fetches one page of requests eligible for mode.
func (c *Client) ListEligible(ctx context.Context, mode exeat.Mode, page int, date string) (exeat.Page, error) {
	q := url.Values{}
	q.Set("type", string(mode))
	q.Set("page", strconv.Itoa(max(page, 1)))
	if date != "" {
		q.Set("date", date)
	}

	var resp listResponse
	if err := c.do(ctx, http.MethodGet, "/staff/exeat-requests/fast-track/list", q, nil, &resp); err != nil {
		return exeat.Page{}, fmt.Errorf("list eligible: %w", err)
	}
	return exeat.Page{Items: resp.Data, Meta: resp.PaginationMeta}, nil
}

// SearchEligible searches requests eligible for mode.
func (c *Client) SearchEligible(ctx context.Context, mode exeat.Mode, query string) ([]exeat.Request, error) {
	q := url.Values{}
	q.Set("search", query)
	q.Set("type", string(mode))

	var resp struct {
		ExeatRequests []exeat.Request `json:"exeat_requests"`
	}
	if err := c.do(ctx, http.MethodGet, "/staff/exeat-requests/fast-track/search", q, nil, &resp); err != nil {
		return nil, fmt.Errorf("search eligible: %w", err)
	}
	return resp.ExeatRequests, nil
}

// ExecuteBatch applies the current action to ids and returns the processed
// ids.
func (c *Client) ExecuteBatch(ctx context.Context, ids []int64) ([]int64, error) {
	body := struct {
		RequestIDs []int64 `json:"request_ids"`
	}{RequestIDs: ids}

	var resp struct {
		Processed []processedID `json:"processed"`
	}
	if err := c.do(ctx, http.MethodPost, "/staff/exeat-requests/fast-track/execute", nil, body, &resp); err != nil {
		return nil, fmt.Errorf("execute batch: %w", err)
	}

	processed := make([]int64, len(resp.Processed))
	for i, p := range resp.Processed {
		processed[i] = int64(p)
	}
	return processed, nil
}

// processedID accepts either a bare id or an object with an "id" field.
type processedID int64

func (p *processedID) UnmarshalJSON(b []byte) error {
	var id int64
	if err := json.Unmarshal(b, &id); err == nil {
		*p = processedID(id)
		return nil
	}
	var obj struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("processed entry %s: %w", b, err)
	}
	*p = processedID(obj.ID)
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	requestID := c.newID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "request_id", requestID, "method", method, "path", path, "error", err)
		return err
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "request done",
		"request_id", requestID, "method", method, "path", path,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) statusError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("status %d but failed to read body: %w", resp.StatusCode, err)
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(b, &payload) == nil {
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %w", ErrUnauthorized, apiErr)
	}
	return fmt.Errorf("%w: %w", ErrUnexpectedStatus, apiErr)
}

// IsUnauthorized reports whether err came from a 401 or 403.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
