package httputil

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/matzehuels/depforce/pkg/buildinfo"
	"github.com/matzehuels/depforce/pkg/errors"
	"github.com/matzehuels/depforce/pkg/observability"
)

// Client defaults.
const (
	DefaultTimeout = 30 * time.Second
	DefaultRate    = rate.Limit(5)
	DefaultBurst   = 2

	// maxBodySize caps decoded response bodies.
	maxBodySize = 64 << 20
)

// Client performs rate-limited JSON requests and maps failures to codes:
//
//   - transport failures: NETWORK_ERROR, retryable
//   - deadline exceeded: TIMEOUT, retryable
//   - 404: NOT_FOUND
//   - 5xx: NETWORK_ERROR, retryable
//   - other non-2xx: NETWORK_ERROR
//   - undecodable body: INVALID_INPUT
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRateLimit sets the request rate. r == rate.Inf disables limiting.
func WithRateLimit(r rate.Limit, burst int) ClientOption {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, max(burst, 1)) }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a Client with DefaultTimeout and DefaultRate.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:      &http.Client{Timeout: DefaultTimeout},
		limiter:   rate.NewLimiter(DefaultRate, DefaultBurst),
		userAgent: buildinfo.UserAgent(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON fetches url and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "build request for %s", url)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	body, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode response from %s", url)
	}
	return nil
}

func (c *Client) do(ctx context.Context, req *http.Request) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, classifyTransport(ctx, req, err)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, classifyTransport(ctx, req, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, classifyTransport(ctx, req, err)
	}
	if err := statusError(req, resp); err != nil {
		return nil, err
	}
	return body, nil
}

func classifyTransport(ctx context.Context, req *http.Request, err error) error {
	if stderrors.Is(err, context.Canceled) && ctx.Err() != nil {
		return ctx.Err()
	}
	var timeout interface{ Timeout() bool }
	if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &timeout) && timeout.Timeout()) {
		return Retryable(errors.Wrap(errors.ErrCodeTimeout, err, "%s %s timed out", req.Method, req.URL))
	}
	return Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "%s %s", req.Method, req.URL))
}

func statusError(req *http.Request, resp *http.Response) error {
	status := resp.StatusCode
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s %s: %s", req.Method, req.URL, http.StatusText(status))
	case status == http.StatusTooManyRequests || status >= 500:
		return retryAfter(errors.New(errors.ErrCodeNetwork, "%s %s: %d %s", req.Method, req.URL, status, http.StatusText(status)), resp.Header)
	default:
		return errors.New(errors.ErrCodeNetwork, "%s %s: %d %s", req.Method, req.URL, status, http.StatusText(status))
	}
}
