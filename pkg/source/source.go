package source

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depforce/pkg/cache"
	"github.com/matzehuels/depforce/pkg/errors"
	"github.com/matzehuels/depforce/pkg/graph"
	"github.com/matzehuels/depforce/pkg/httputil"
	"github.com/matzehuels/depforce/pkg/observability"
)

// DefaultEndpoint is where the analyzer serves the current snapshot.
const DefaultEndpoint = "http://localhost:3000/analyze"

// Retry defaults for Fetch.
const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second
)

// Client fetches snapshots from the analyzer.
type Client struct {
	endpoint string
	http     *httputil.Client
	cache    *httputil.Cache
	attempts int
	delay    time.Duration
	logger   *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides DefaultEndpoint.
func WithEndpoint(url string) Option {
	return func(c *Client) { c.endpoint = url }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *httputil.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithCache stores fetched snapshots in backend for ttl.
func WithCache(backend cache.Cache, keyer cache.Keyer, ttl time.Duration) Option {
	return func(c *Client) { c.cache = httputil.NewCache(backend, keyer, "analyze", ttl) }
}

// WithRetry sets the attempt count and initial backoff.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) { c.attempts, c.delay = attempts, delay }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client. It fails with INVALID_INPUT on a bad endpoint.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		endpoint: DefaultEndpoint,
		http:     httputil.NewClient(),
		cache:    httputil.NewCache(nil, nil, "analyze", 0),
		attempts: DefaultAttempts,
		delay:    DefaultDelay,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := errors.ValidateURL(c.endpoint); err != nil {
		return nil, err
	}
	return c, nil
}

// Endpoint returns the analyzer URL.
func (c *Client) Endpoint() string { return c.endpoint }

// Fetch returns the current snapshot. A cached snapshot is reused unless
// refresh is set. Transient failures are retried with backoff.
func (c *Client) Fetch(ctx context.Context, refresh bool) (graph.GraphData, error) {
	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, c.endpoint)
	start := time.Now()

	g, err := c.fetch(ctx, refresh)
	hooks.OnFetchComplete(ctx, c.endpoint, len(g.Nodes), time.Since(start), err)
	return g, err
}

func (c *Client) fetch(ctx context.Context, refresh bool) (graph.GraphData, error) {
	var g graph.GraphData
	if !refresh {
		if ok, err := c.cache.Get(ctx, c.endpoint, &g); err != nil {
			c.logger.Warn("graph cache read failed", "err", err)
		} else if ok && g.Validate() == nil {
			observability.Cache().OnCacheHit(ctx, "graph")
			c.logger.Debug("graph cache hit", "endpoint", c.endpoint, "nodes", len(g.Nodes))
			return g, nil
		}
		observability.Cache().OnCacheMiss(ctx, "graph")
	}

	err := httputil.Retry(ctx, c.attempts, c.delay, func() error {
		g = graph.GraphData{}
		err := c.http.GetJSON(ctx, c.endpoint, &g)
		if httputil.IsRetryable(err) {
			c.logger.Debug("fetch failed, retrying", "endpoint", c.endpoint, "err", err)
		}
		return err
	})
	if err != nil {
		return graph.GraphData{}, err
	}
	if err := g.Validate(); err != nil {
		return graph.GraphData{}, err
	}

	if err := c.cache.Set(ctx, c.endpoint, g); err != nil {
		c.logger.Warn("graph cache write failed", "err", err)
	}
	c.logger.Debug("fetched graph", "endpoint", c.endpoint, "nodes", len(g.Nodes), "edges", len(g.Edges))
	return g, nil
}

// IsURL reports whether ref names an http(s) resource rather than a file.
func IsURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Load reads a snapshot from a URL or a file path. URLs are fetched with
// a client built from opts; WithEndpoint is implied by ref.
func Load(ctx context.Context, ref string, refresh bool, opts ...Option) (graph.GraphData, error) {
	if !IsURL(ref) {
		return graph.ReadGraphFile(ref)
	}
	c, err := New(append(opts, WithEndpoint(ref))...)
	if err != nil {
		return graph.GraphData{}, err
	}
	return c.Fetch(ctx, refresh)
}
