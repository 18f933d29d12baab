// Package backend is the HTTP client for the trade-processing REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fundsmith/tradewatch/internal/model"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/time/rate"
)

// Options configures a Client.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	HTTPClient        *http.Client
	Logger            hclog.Logger
}

// Client implements model.Backend over HTTP.
type Client struct {
	base    string
	http    *http.Client
	limiter *rate.Limiter
	log     hclog.Logger
}

var _ model.Backend = (*Client)(nil)

const maxErrorBody = 512

// New validates opts and returns a client.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = model.DefaultAPIBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", base)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = model.DefaultRequestTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Client{
		base:    base,
		http:    hc,
		limiter: rate.NewLimiter(limit, burst),
		log:     logger.Named("backend"),
	}, nil
}

// BaseURL returns the normalised API root.
func (c *Client) BaseURL() string { return c.base }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", "method", method, "path", path, "request_id", reqID, "error", err)
		return fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	c.log.Trace("request", "method", method, "path", path, "status", resp.StatusCode,
		"request_id", reqID, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s %s: %w", ErrNetwork, method, path, err)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrDecode, method, path, err)
	}
	return nil
}

func importPath(id int64, suffix string) string {
	return "/imports/" + strconv.FormatInt(id, 10) + suffix
}

func (c *Client) ListImports(ctx context.Context) ([]model.TradeImport, error) {
	var out []model.TradeImport
	if err := c.do(ctx, http.MethodGet, "/imports", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetImport(ctx context.Context, id int64) (model.TradeImport, error) {
	var out model.TradeImport
	err := c.do(ctx, http.MethodGet, importPath(id, ""), nil, &out)
	return out, err
}

type consolidationRequest struct {
	Criteria string `json:"criteria"`
}

func (c *Client) Consolidate(ctx context.Context, id int64, criteria string) (model.TradeImport, error) {
	var out model.TradeImport
	err := c.do(ctx, http.MethodPost, importPath(id, "/consolidate"), consolidationRequest{Criteria: criteria}, &out)
	return out, err
}

func (c *Client) GenerateMXML(ctx context.Context, id int64) (model.TradeImport, error) {
	var out model.TradeImport
	err := c.do(ctx, http.MethodPost, importPath(id, "/generate-mxml"), nil, &out)
	return out, err
}

func (c *Client) PushToMurex(ctx context.Context, id int64) (model.TradeImport, error) {
	var out model.TradeImport
	err := c.do(ctx, http.MethodPost, importPath(id, "/push-to-murex"), nil, &out)
	return out, err
}

func (c *Client) DeleteImport(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, importPath(id, ""), nil, nil)
}

// PendingCount reads the bare JSON number served by the pending-count endpoint.
func (c *Client) PendingCount(ctx context.Context) (int, error) {
	var n json.Number
	if err := c.do(ctx, http.MethodGet, "/live-trades/pending-count", nil, &n); err != nil {
		return 0, err
	}
	count, err := strconv.Atoi(n.String())
	if err != nil {
		return 0, fmt.Errorf("%w: pending count %q: %w", ErrDecode, n.String(), err)
	}
	return count, nil
}

func (c *Client) PendingTrades(ctx context.Context) ([]model.LiveTrade, error) {
	var out []model.LiveTrade
	if err := c.do(ctx, http.MethodGet, "/live-trades/pending", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProcessPending groups the queued trades into a new import. It returns nil
// when the backend had nothing to process.
func (c *Client) ProcessPending(ctx context.Context) (*model.TradeImport, error) {
	var out *model.TradeImport
	if err := c.do(ctx, http.MethodPost, "/live-trades/process", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DemoConfig(ctx context.Context) (model.DemoConfig, error) {
	var out model.DemoConfig
	err := c.do(ctx, http.MethodGet, "/live-trades/demo-config", nil, &out)
	return out, err
}

func (c *Client) UpdateDemoConfig(ctx context.Context, cfg model.DemoConfig) (model.DemoConfig, error) {
	var out model.DemoConfig
	err := c.do(ctx, http.MethodPut, "/live-trades/demo-config", cfg, &out)
	return out, err
}
