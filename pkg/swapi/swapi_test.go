package swapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// mapCache is a minimal Cache for tests.
type mapCache struct {
	entries map[string]Result
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]Result)}
}

func (c *mapCache) Get(key string) (Result, bool) {
	res, ok := c.entries[key]
	return res, ok
}

func (c *mapCache) Put(key string, res Result) error {
	c.entries[key] = res
	return nil
}

func newStubServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestValidationRejectsBadArguments(t *testing.T) {
	srv, calls := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	client := NewClient(srv.URL, nil)

	tests := []struct {
		name    string
		query   Query
		message string
	}{
		{"negative id", Query{Resource: People, ID: -1}, "resource id must be positive"},
		{"negative page", Query{Resource: People, Page: -1}, "page must be positive"},
		{"id and search", Query{Resource: People, ID: 1, Search: "Luke"}, "cannot specify both id and search"},
		{"unknown kind", Query{Resource: "droids"}, "unknown resource kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Fetch(context.Background(), tt.query)
			if err == nil {
				t.Fatal("expected error")
			}
			apiErr, ok := err.(*Error)
			if !ok {
				t.Fatalf("expected *Error, got %T", err)
			}
			if apiErr.Kind != KindInvalidArgument {
				t.Errorf("expected KindInvalidArgument, got %v", apiErr.Kind)
			}
			if !strings.Contains(apiErr.Message, tt.message) {
				t.Errorf("message %q does not contain %q", apiErr.Message, tt.message)
			}
		})
	}

	if calls.Load() != 0 {
		t.Errorf("validation failures must not reach the network, saw %d calls", calls.Load())
	}
}

func TestFetchByID(t *testing.T) {
	srv, _ := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/people/1/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"name":"Luke Skywalker","height":"172"}`))
	})
	client := NewClient(srv.URL, nil)

	res, err := client.Fetch(context.Background(), Query{Resource: People, ID: 1})
	if err != nil {
		t.Fatal(err)
	}
	want := Record{"name": "Luke Skywalker", "height": "172"}
	if !reflect.DeepEqual(res.Record, want) {
		t.Errorf("got %v, want %v", res.Record, want)
	}
	if res.List != nil {
		t.Error("ID query must not populate List")
	}
}

func TestFetchSearch(t *testing.T) {
	srv, _ := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/planets/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if !strings.Contains(r.URL.RawQuery, "search=Tatooine") {
			t.Errorf("query %q missing search=Tatooine", r.URL.RawQuery)
		}
		w.Write([]byte(`{"results":[{"name":"Tatooine"}]}`))
	})
	client := NewClient(srv.URL, nil)

	res, err := client.Fetch(context.Background(), Query{Resource: Planets, Search: "Tatooine"})
	if err != nil {
		t.Fatal(err)
	}
	want := []Record{{"name": "Tatooine"}}
	if !reflect.DeepEqual(res.List, want) {
		t.Errorf("got %v, want %v", res.List, want)
	}
}

func TestFetchListMissingResults(t *testing.T) {
	srv, _ := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count":0}`))
	})
	client := NewClient(srv.URL, nil)

	res, err := client.Fetch(context.Background(), Query{Resource: Films})
	if err != nil {
		t.Fatal(err)
	}
	if res.List == nil || len(res.List) != 0 {
		t.Errorf("expected empty list, got %v", res.List)
	}
}

func TestCacheIdempotence(t *testing.T) {
	srv, calls := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"Luke Skywalker"}`))
	})
	client := NewClient(srv.URL, newMapCache())

	q := NewQuery(People)
	q.ID = 1

	first, err := client.Fetch(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	second, err := client.Fetch(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}

	if calls.Load() != 1 {
		t.Errorf("expected exactly 1 network call, got %d", calls.Load())
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached result differs: %v vs %v", first, second)
	}
}

func TestCacheBypass(t *testing.T) {
	srv, calls := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"Luke Skywalker"}`))
	})
	client := NewClient(srv.URL, newMapCache())

	q := Query{Resource: People, ID: 1, UseCache: false}
	for i := 0; i < 2; i++ {
		if _, err := client.Fetch(context.Background(), q); err != nil {
			t.Fatal(err)
		}
	}
	if calls.Load() != 2 {
		t.Errorf("expected exactly 2 network calls with cache bypassed, got %d", calls.Load())
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		message string
	}{
		{"not found", http.StatusNotFound, "Resource not found"},
		{"server error", http.StatusInternalServerError, "Server error"},
		{"bad request", http.StatusBadRequest, "Server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			client := NewClient(srv.URL, nil)

			_, err := client.Fetch(context.Background(), Query{Resource: People, ID: 1})
			if err == nil {
				t.Fatal("expected error")
			}
			apiErr, ok := err.(*Error)
			if !ok {
				t.Fatalf("expected *Error, got %T", err)
			}
			if apiErr.Kind != KindAPI {
				t.Errorf("expected KindAPI, got %v", apiErr.Kind)
			}
			if !strings.Contains(apiErr.Message, tt.message) {
				t.Errorf("message %q does not contain %q", apiErr.Message, tt.message)
			}
		})
	}
}

func TestTimeout(t *testing.T) {
	srv, _ := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{}`))
	})
	client := NewClient(srv.URL, nil)

	q := Query{Resource: People, ID: 1, Timeout: 30 * time.Millisecond}
	_, err := client.Fetch(context.Background(), q)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	apiErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.Kind != KindAPI {
		t.Errorf("expected KindAPI, got %v", apiErr.Kind)
	}
	if !strings.Contains(strings.ToLower(apiErr.Message), "timeout") {
		t.Errorf("message %q does not mention timeout", apiErr.Message)
	}
}

func TestParseFailure(t *testing.T) {
	srv, _ := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})
	client := NewClient(srv.URL, nil)

	_, err := client.Fetch(context.Background(), Query{Resource: People, ID: 1})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Failed to parse response") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestNetworkError(t *testing.T) {
	// A server that is immediately closed yields connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	client := NewClient(srv.URL, nil)

	_, err := client.Fetch(context.Background(), Query{Resource: People, ID: 1})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Network error") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestCacheKey(t *testing.T) {
	tests := []struct {
		query Query
		want  string
	}{
		{Query{Resource: People, ID: 1}, "people|id:1"},
		{Query{Resource: Planets, Search: "Tatooine"}, "planets|search:Tatooine"},
		{Query{Resource: Planets, Search: "desert", Page: 2}, "planets|search:desert|page:2"},
		{Query{Resource: Films}, "films"},
	}
	for _, tt := range tests {
		if got := tt.query.CacheKey(); got != tt.want {
			t.Errorf("CacheKey() = %q, want %q", got, tt.want)
		}
	}

	// UseCache and Timeout must not affect the key.
	a := Query{Resource: People, ID: 4, UseCache: true, Timeout: time.Second}
	b := Query{Resource: People, ID: 4, UseCache: false, Timeout: time.Minute}
	if a.CacheKey() != b.CacheKey() {
		t.Error("cache key must depend only on kind/id/search/page")
	}
}

func TestResolveRelatedHasNoEffect(t *testing.T) {
	srv, _ := newStubServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/people/1/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"name":"Luke Skywalker"}`))
	})
	client := NewClient(srv.URL, nil)

	q := Query{Resource: People, ID: 1, ResolveRelated: true}
	if _, err := client.Fetch(context.Background(), q); err != nil {
		t.Fatal(err)
	}
}

func TestParseResource(t *testing.T) {
	r, err := ParseResource("starships")
	if err != nil {
		t.Fatal(err)
	}
	if r != Starships {
		t.Errorf("got %v", r)
	}

	if _, err := ParseResource("droids"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestBuildURLPageOnly(t *testing.T) {
	c := NewClient("https://swapi.dev/api", nil)
	got := c.buildURL(Query{Resource: People, Page: 3})
	if got != "https://swapi.dev/api/people/?page=3" {
		t.Errorf("buildURL = %q", got)
	}

	got = c.buildURL(Query{Resource: People, Search: "sky", Page: 2})
	if got != "https://swapi.dev/api/people/?search=sky&page=2" {
		t.Errorf("buildURL = %q", got)
	}
}
