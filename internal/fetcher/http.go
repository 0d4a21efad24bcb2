// Package fetcher retrieves buyer press pages over HTTP. Every outcome is
// a status-valued FetchResult; nothing escapes the fetch boundary as an
// error.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/buyer-signals/internal/model"
)

// Options configures the HTTP fetcher.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	// PerHostRate caps request rate per host. Zero uses the default.
	PerHostRate rate.Limit
	Burst       int
}

// Client fetches pages with per-host rate limiting and a hard timeout.
// There is no internal retry: a failed attempt is final for that URL, and
// the fallback chain is the only retry mechanism.
type Client struct {
	http *http.Client
	opts Options

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates a Client with the given options.
func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "buyer-signals/1.0"
	}
	if opts.PerHostRate == 0 {
		opts.PerHostRate = 5
	}
	if opts.Burst == 0 {
		opts.Burst = 5
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (c *Client) limiterFor(rawURL string) *rate.Limiter {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	lim, ok := c.limiters[host]
	if !ok {
		lim = rate.NewLimiter(c.opts.PerHostRate, c.opts.Burst)
		c.limiters[host] = lim
	}
	return lim
}

// Fetch retrieves one URL, following redirects. Non-2xx responses yield
// status HTTP_<code>; transport failures yield FETCH_<reason>, with
// timeouts normalized to FETCH_TIMEOUT.
func (c *Client) Fetch(ctx context.Context, rawURL string) model.FetchResult {
	fail := func(status string) model.FetchResult {
		return model.FetchResult{OK: false, Status: status, URL: rawURL}
	}

	if err := c.limiterFor(rawURL).Wait(ctx); err != nil {
		return fail(fetchStatus(err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fail(fetchStatus(err))
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		zap.L().Debug("fetcher: request failed",
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return fail(fetchStatus(err))
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(fmt.Sprintf("HTTP_%d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(fetchStatus(err))
	}

	return model.FetchResult{OK: true, Status: model.StatusOK, URL: rawURL, Text: string(body)}
}

// FetchWithFallback tries candidates strictly in order and returns on the
// first success. When every candidate fails, the result of the FIRST
// attempted URL is returned, not the last: downstream consumers see a
// deterministic status for the buyer's canonical source regardless of how
// deep the chain went.
func (c *Client) FetchWithFallback(ctx context.Context, urls []string) model.FetchResult {
	var first model.FetchResult
	for i, u := range urls {
		res := c.Fetch(ctx, u)
		if res.OK {
			if i > 0 {
				zap.L().Info("fetcher: fallback source succeeded",
					zap.String("url", u),
					zap.Int("attempt", i+1),
				)
			}
			return res
		}
		if i == 0 {
			first = res
		}
	}
	return first
}

// fetchStatus maps a transport-level error onto the FETCH_* status grammar.
func fetchStatus(err error) string {
	if isTimeout(err) {
		return model.StatusFetchTimeout
	}
	msg := err.Error()
	// Unwrap url.Error noise down to the cause.
	var uerr *url.Error
	if errors.As(err, &uerr) {
		msg = uerr.Err.Error()
	}
	return "FETCH_" + sanitizeReason(msg)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

// sanitizeReason collapses an error message into a compact status suffix.
func sanitizeReason(msg string) string {
	msg = strings.TrimSpace(msg)
	if len(msg) > 120 {
		msg = msg[:120]
	}
	return strings.Join(strings.Fields(msg), "_")
}
