// Package swapi is a query client for the Star Wars API (https://swapi.dev).
// It validates request parameters, builds the request URL from a resource
// kind plus one of id/search/page, classifies the outcome into a small error
// taxonomy, and caches successful results through a pluggable Cache.
package swapi

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
)

// Resource identifies a queryable SWAPI category.
type Resource string

const (
	People    Resource = "people"
	Planets   Resource = "planets"
	Starships Resource = "starships"
	Vehicles  Resource = "vehicles"
	Species   Resource = "species"
	Films     Resource = "films"
)

// Resources lists every valid resource kind.
var Resources = []Resource{People, Planets, Starships, Vehicles, Species, Films}

// ParseResource converts a string into a Resource, rejecting unknown kinds.
func ParseResource(s string) (Resource, error) {
	for _, r := range Resources {
		if string(r) == s {
			return r, nil
		}
	}
	return "", invalidArgument(fmt.Sprintf("unknown resource kind: %q", s))
}

func (r Resource) valid() bool {
	for _, known := range Resources {
		if r == known {
			return true
		}
	}
	return false
}

const (
	// DefaultBaseURL is the public SWAPI endpoint.
	DefaultBaseURL = "https://swapi.dev/api"
	// DefaultTimeout bounds a single fetch when the query does not set one.
	DefaultTimeout = 10 * time.Second
)

// Record is a single decoded resource.
type Record = map[string]any

// Result holds either a single record (for ID queries) or an ordered list
// (for search, listing, and paginated queries). Exactly one side is set.
type Result struct {
	Record Record   `json:"record,omitempty"`
	List   []Record `json:"list,omitempty"`
}

// Cache stores successful query results by cache key. Implementations decide
// lifetime and persistence; the client only ever gets and puts.
type Cache interface {
	Get(key string) (Result, bool)
	Put(key string, res Result) error
}

// Query describes one fetch. ID and Search are mutually exclusive.
type Query struct {
	Resource Resource
	ID       int
	Search   string
	Page     int

	// ResolveRelated is accepted for compatibility but has no effect;
	// related-resource URL expansion is not implemented.
	ResolveRelated bool

	UseCache bool
	Timeout  time.Duration
}

// NewQuery returns a Query for the given resource with caching enabled and
// the default timeout. A zero-value Query bypasses the cache.
func NewQuery(r Resource) Query {
	return Query{Resource: r, UseCache: true, Timeout: DefaultTimeout}
}

// CacheKey derives the deterministic key identifying this query's target.
// Only kind/id/search/page participate, in that fixed order.
func (q Query) CacheKey() string {
	parts := []string{string(q.Resource)}
	if q.ID > 0 {
		parts = append(parts, "id:"+strconv.Itoa(q.ID))
	}
	if q.Search != "" {
		parts = append(parts, "search:"+q.Search)
	}
	if q.Page > 0 {
		parts = append(parts, "page:"+strconv.Itoa(q.Page))
	}
	return strings.Join(parts, "|")
}

func (q Query) validate() error {
	if !q.Resource.valid() {
		return invalidArgument(fmt.Sprintf("unknown resource kind: %q", q.Resource))
	}
	if q.ID < 0 {
		return invalidArgument("resource id must be positive")
	}
	if q.Page < 0 {
		return invalidArgument("page must be positive")
	}
	if q.ID > 0 && q.Search != "" {
		return invalidArgument("cannot specify both id and search")
	}
	return nil
}

// Client fetches SWAPI resources. The zero value is not usable; construct
// with NewClient.
type Client struct {
	base  string
	httpc *http.Client
	cache Cache
}

// NewClient creates a Client against baseURL (DefaultBaseURL when empty).
// cache may be nil, in which case every fetch goes to the network.
func NewClient(baseURL string, cache Cache) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		base:  strings.TrimRight(baseURL, "/"),
		httpc: &http.Client{},
		cache: cache,
	}
}

// Fetch performs one query: validate, consult the cache, issue a single GET,
// classify the outcome, and cache the result on success. Failures surface as
// *Error; no retries are performed.
func (c *Client) Fetch(ctx context.Context, q Query) (Result, error) {
	if err := q.validate(); err != nil {
		return Result{}, err
	}

	key := q.CacheKey()
	if q.UseCache && c.cache != nil {
		if res, ok := c.cache.Get(key); ok {
			return res, nil
		}
	}

	timeout := q.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(q), nil)
	if err != nil {
		return Result{}, apiErrorf(err, "Network error: %v", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		if isTimeout(err) {
			return Result{}, apiError("Request timeout", err)
		}
		return Result{}, apiErrorf(err, "Network error: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return Result{}, apiError("Request timeout", err)
		}
		return Result{}, apiErrorf(err, "Network error: %v", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Result{}, apiError("Resource not found", nil)
	case resp.StatusCode >= 400:
		return Result{}, apiErrorf(nil, "Server error: %s", resp.Status)
	}

	res, err := decodeResult(q, body)
	if err != nil {
		return Result{}, err
	}

	if q.UseCache && c.cache != nil {
		_ = c.cache.Put(key, res)
	}
	return res, nil
}

func decodeResult(q Query, body []byte) (Result, error) {
	if q.ID > 0 {
		var rec Record
		if err := json.Unmarshal(body, &rec); err != nil {
			return Result{}, apiErrorf(err, "Failed to parse response: %v", err)
		}
		return Result{Record: rec}, nil
	}

	var payload struct {
		Results []Record `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Result{}, apiErrorf(err, "Failed to parse response: %v", err)
	}
	if payload.Results == nil {
		payload.Results = []Record{}
	}
	return Result{List: payload.Results}, nil
}

// buildURL constructs the request target. ID queries use a trailing slash
// for exact-match compatibility with the upstream API; list queries append
// search then page, in that order.
func (c *Client) buildURL(q Query) string {
	if q.ID > 0 {
		return fmt.Sprintf("%s/%s/%d/", c.base, q.Resource, q.ID)
	}

	target := fmt.Sprintf("%s/%s/", c.base, q.Resource)
	var params []string
	if q.Search != "" {
		params = append(params, "search="+url.QueryEscape(q.Search))
	}
	if q.Page > 0 {
		params = append(params, "page="+strconv.Itoa(q.Page))
	}
	if len(params) > 0 {
		target += "?" + strings.Join(params, "&")
	}
	return target
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
