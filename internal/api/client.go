// Package api is the HTTP client for the sysdash metrics backend.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/rileyhilliard/sysdash/internal/logger"
	"github.com/rileyhilliard/sysdash/internal/monitor"
)

// Endpoint paths, relative to the base URL.
const (
	MetricsPath   = "/api/metrics"
	ProcessesPath = "/api/processes"
	terminatePath = "/api/process/%d/terminate"
)

// Header names sent on every request.
const (
	HeaderRequestID = "X-Request-ID"
	HeaderSessionID = "X-Session-ID"
)

// maxBodySize caps how much of a response is read.
const maxBodySize = 8 << 20

// Client talks to the metrics backend. It is safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	timeout   time.Duration
	sessionID string
	log       logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each request. Zero leaves it to the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithSessionID tags every request with the dashboard session.
func WithSessionID(id string) Option {
	return func(c *Client) { c.sessionID = id }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient returns a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		log:     logger.Noop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// MetricsURL returns the full metrics endpoint URL.
func (c *Client) MetricsURL() string {
	return c.baseURL + MetricsPath
}

// Metrics fetches one snapshot.
func (c *Client) Metrics(ctx context.Context) (*monitor.Snapshot, error) {
	body, err := c.do(ctx, http.MethodGet, MetricsPath, nil)
	if err != nil {
		return nil, err
	}

	var snap *monitor.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrDecode,
			"Metrics response is not valid JSON",
			"Check that "+c.MetricsURL()+" is the sysdash metrics endpoint")
	}
	if snap == nil {
		return nil, errors.New(errors.ErrDecode,
			"Metrics response is empty",
			"Check that "+c.MetricsURL()+" is the sysdash metrics endpoint")
	}
	return snap, nil
}

type processesResponse struct {
	OK    bool                   `json:"ok"`
	Rows  []monitor.ProcessGroup `json:"rows"`
	Error string                 `json:"error,omitempty"`
}

// Processes fetches the process groups matching query. An empty query
// matches everything. A body with ok=false returns an ErrAPI error.
func (c *Client) Processes(ctx context.Context, query string) ([]monitor.ProcessGroup, error) {
	body, err := c.do(ctx, http.MethodGet, ProcessesPath, url.Values{"q": {query}})
	if err != nil {
		return nil, err
	}

	var resp processesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrDecode,
			"Process response is not valid JSON", "")
	}
	if !resp.OK {
		msg := "Process endpoint reported ok=false"
		if resp.Error != "" {
			msg += ": " + resp.Error
		}
		return nil, errors.New(errors.ErrAPI, msg, "")
	}
	if resp.Rows == nil {
		resp.Rows = []monitor.ProcessGroup{}
	}
	return resp.Rows, nil
}

// Terminate asks the backend to terminate pid. The response body is ignored.
func (c *Client) Terminate(ctx context.Context, pid int) error {
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf(terminatePath, pid), nil)
	return err
}

// do performs a request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrHTTP,
			"Can't build request for "+target,
			"Check the API URL")
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)
	if c.sessionID != "" {
		req.Header.Set(HeaderSessionID, c.sessionID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("%s %s failed after %s [%s]: %v", method, path, time.Since(start).Round(time.Millisecond), requestID, err)
		return nil, errors.WrapWithCode(err, errors.ErrHTTP,
			"Request to "+path+" failed",
			"Is the backend running at "+c.baseURL+"?")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrHTTP,
			"Reading response from "+path+" failed", "")
	}

	c.log.Debug("%s %s -> %d in %s [%s]", method, path, resp.StatusCode, time.Since(start).Round(time.Millisecond), requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.New(errors.ErrHTTP,
			"HTTP "+strconv.Itoa(resp.StatusCode),
			"The backend answered "+path+" with "+http.StatusText(resp.StatusCode))
	}
	return body, nil
}
