package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestDoReturnsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.GET(context.Background(), "/x")

	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusForbidden {
		t.Fatalf("Expected StatusError 403, got %v", err)
	}
	if !IsStatus(err) {
		t.Error("Expected IsStatus to match")
	}
}

func TestDoWithRetryRecoversFrom5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	cfg := &RetryConfig{MaxAttempts: 5, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond}
	resp, err := c.DoWithRetry(NewRequest(http.MethodGet, "/x").WithContext(context.Background()), cfg)
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		OK bool `json:"ok"`
	}
	if err := resp.ParseJSON(&body); err != nil || !body.OK {
		t.Errorf("Unexpected body %s (err %v)", resp.String(), err)
	}
	if calls.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls.Load())
	}
}

func TestDoWithRetryDoesNotRetry4xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	cfg := &RetryConfig{MaxAttempts: 5, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond}
	_, err := c.DoWithRetry(NewRequest(http.MethodGet, "/x").WithContext(context.Background()), cfg)
	if err == nil {
		t.Fatal("Expected failure")
	}
	if calls.Load() != 1 {
		t.Errorf("Expected a single attempt for a 4xx, got %d", calls.Load())
	}
}

func TestRequestHeadersAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Auth-Token") != "tok" {
			t.Errorf("Missing default header, got %q", r.Header.Get("X-Auth-Token"))
		}
		if r.URL.Query().Get("q") != "RELI" {
			t.Errorf("Missing query param, got %v", r.URL.Query())
		}
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	c.SetHeader("X-Auth-Token", "tok")
	if _, err := c.GET(context.Background(), "/x", map[string]string{"q": "RELI"}); err != nil {
		t.Fatal(err)
	}

	// Clearing the header removes it.
	c.SetHeader("X-Auth-Token", "")
	if _, ok := c.headers["X-Auth-Token"]; ok {
		t.Error("Expected cleared header removed")
	}
}
