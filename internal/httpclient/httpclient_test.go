package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGetJSONDecodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"Tampere"}`))
	}))
	defer srv.Close()

	g := NewGetter("test", srv.Client())

	var out struct {
		Name string `json:"name"`
	}
	if err := g.GetJSON(context.Background(), srv.URL+"/x?appid=secret", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Name != "Tampere" {
		t.Fatalf("expected Tampere, got %q", out.Name)
	}
}

func TestGetStatusErrorsAreTransportErrors(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, errRateLimited},
		{http.StatusBadGateway, errServerError},
		{http.StatusNotFound, errUnexpected},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))

		g := NewGetter("test", srv.Client())
		_, err := g.Get(context.Background(), srv.URL+"/data?appid=secret")
		srv.Close()

		var te *TransportError
		if !errors.As(err, &te) {
			t.Fatalf("status %d: expected *TransportError, got %v", tc.status, err)
		}
		if te.StatusCode != tc.status {
			t.Errorf("status %d: recorded status %d", tc.status, te.StatusCode)
		}
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
		if strings.Contains(err.Error(), "secret") {
			t.Errorf("error message leaks query string: %v", err)
		}
	}
}

func TestGetNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	g := NewGetter("test", NewHTTPClient(time.Second))
	_, err := g.Get(context.Background(), url)
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewGetter("test", srv.Client())
	for i := 0; i < 5; i++ {
		g.Get(context.Background(), srv.URL)
	}

	_, err := g.Get(context.Background(), srv.URL)
	if !errors.Is(err, errCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if calls != 5 {
		t.Fatalf("expected 5 upstream calls, got %d", calls)
	}
}

func TestRateLimitWaitHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	g := NewGetter("test", srv.Client(), WithRateLimit(0.001, 1))
	if _, err := g.Get(context.Background(), srv.URL); err != nil {
		t.Fatalf("first request should use the burst token: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := g.Get(ctx, srv.URL); !IsTransport(err) {
		t.Fatalf("expected transport error from limiter, got %v", err)
	}
}

func TestRedact(t *testing.T) {
	got := Redact("https://api.openweathermap.org/data/2.5/weather?lat=1&appid=secret")
	if got != "https://api.openweathermap.org/data/2.5/weather" {
		t.Fatalf("unexpected redaction %q", got)
	}
	if Redact("::nope") != "(unparseable url)" {
		t.Fatalf("expected placeholder for bad url")
	}
}
