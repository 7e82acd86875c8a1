package roku

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newClientFor(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	return NewClient(u.Host)
}

func TestApps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/query/apps" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`<apps>
	<app id="12">Netflix</app>
	<app id="837">YouTube</app>
</apps>`))
	}))
	defer srv.Close()

	apps, err := newClientFor(t, srv).Apps(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(apps) != 2 {
		t.Fatalf("expected 2 apps, got %d", len(apps))
	}
	if apps[0].ID != "12" || strings.TrimSpace(apps[0].Name) != "Netflix" {
		t.Errorf("unexpected first app: %+v", apps[0])
	}
	if apps[1].ID != "837" || strings.TrimSpace(apps[1].Name) != "YouTube" {
		t.Errorf("unexpected second app: %+v", apps[1])
	}
}

func TestLaunch(t *testing.T) {
	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
	}))
	defer srv.Close()

	if err := newClientFor(t, srv).Launch(context.Background(), "12"); err != nil {
		t.Fatal(err)
	}
	if method != http.MethodPost || path != "/launch/12" {
		t.Errorf("got %s %s, want POST /launch/12", method, path)
	}
}

func TestHome(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
	}))
	defer srv.Close()

	if err := newClientFor(t, srv).Home(context.Background()); err != nil {
		t.Fatal(err)
	}
	if path != "/keypress/Home" {
		t.Errorf("got %s, want /keypress/Home", path)
	}
}

func TestErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newClientFor(t, srv)
	if err := c.Launch(context.Background(), "12"); err == nil {
		t.Error("expected error for 503 on launch")
	}
	if _, err := c.Apps(context.Background()); err == nil {
		t.Error("expected error for 503 on apps")
	}
}

func TestNewClientDefaultPort(t *testing.T) {
	c := NewClient("192.168.0.8")
	if c.base != "http://192.168.0.8:8060" {
		t.Errorf("unexpected base %q", c.base)
	}

	c = NewClient("192.168.0.8:9090")
	if c.base != "http://192.168.0.8:9090" {
		t.Errorf("unexpected base %q", c.base)
	}
}
