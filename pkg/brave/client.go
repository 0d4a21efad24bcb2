// Package brave provides a Brave web-search client used for secondary
// signal enrichment. Like the page fetcher, it reports failures as status
// values: a missing API key, an HTTP error and a transport error each get
// a distinct, documented status instead of an error return.
package brave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/buyer-signals/internal/model"
)

const defaultBaseURL = "https://api.search.brave.com/res/v1"

// Client performs Brave web searches.
type Client interface {
	Search(ctx context.Context, query string) model.SearchResult
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithCount sets how many results to request per query.
func WithCount(n int) Option {
	return func(c *httpClient) {
		c.count = n
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.http.Timeout = d
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	count   int
	http    *http.Client
}

// NewClient creates a Brave search client. An empty API key is allowed;
// every Search then returns the BRAVE_API_KEY_MISSING status, degrading
// enrichment without failing the run.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		count:   3,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type searchResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

func (c *httpClient) Search(ctx context.Context, query string) model.SearchResult {
	if c.apiKey == "" {
		return model.SearchResult{Status: model.StatusBraveKeyMissing}
	}

	u := c.baseURL + "/web/search?q=" + url.QueryEscape(query) + "&count=" + strconv.Itoa(c.count)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.SearchResult{Status: braveFetchStatus(err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return model.SearchResult{Status: braveFetchStatus(err)}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return model.SearchResult{Status: fmt.Sprintf("BRAVE_HTTP_%d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.SearchResult{Status: braveFetchStatus(err)}
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return model.SearchResult{Status: braveFetchStatus(err)}
	}

	snippets := make([]string, 0, len(parsed.Web.Results))
	for _, r := range parsed.Web.Results {
		s := strings.TrimSpace(r.Title + " " + r.Description)
		if s != "" {
			snippets = append(snippets, s)
		}
	}

	return model.SearchResult{
		OK:     true,
		Status: model.StatusOK,
		Text:   strings.Join(snippets, " "),
	}
}

func braveFetchStatus(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.StatusBraveFetchTimeout
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return model.StatusBraveFetchTimeout
	}
	msg := err.Error()
	var uerr *url.Error
	if errors.As(err, &uerr) {
		msg = uerr.Err.Error()
	}
	msg = strings.TrimSpace(msg)
	if len(msg) > 120 {
		msg = msg[:120]
	}
	return "BRAVE_FETCH_" + strings.Join(strings.Fields(msg), "_")
}
