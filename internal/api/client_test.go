package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCall_AttachesAPIKeyAndContentType(t *testing.T) {
	var gotKey, gotContentType string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	var out struct {
		OK bool `json:"ok"`
	}
	err := client.Call(context.Background(), http.MethodPost, "/things", CallOptions{
		APIKey: "secret-key",
		Body:   map[string]string{"name": "x"},
		Out:    &out,
	})
	if err != nil {
		t.Fatalf("Call error: %v", err)
	}

	if gotKey != "secret-key" {
		t.Errorf("X-API-Key = %q, want %q", gotKey, "secret-key")
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want %q", gotContentType, "application/json")
	}
	if gotBody["name"] != "x" {
		t.Errorf("request body = %v, want name=x", gotBody)
	}
	if !out.OK {
		t.Error("response not decoded")
	}
}

func TestCall_NoKeyNoHeader(t *testing.T) {
	var hasKey bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasKey = r.Header["X-Api-Key"]
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if err := client.Call(context.Background(), http.MethodGet, "/", CallOptions{}); err != nil {
		t.Fatalf("Call error: %v", err)
	}
	if hasKey {
		t.Error("X-API-Key header sent without a credential")
	}
}

func TestCall_ErrorDetailMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail": "naver_blog_id is required"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	err := client.Call(context.Background(), http.MethodPost, "/blogs", CallOptions{})

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if apiErr.Message != "naver_blog_id is required" {
		t.Errorf("Message = %q, want server detail", apiErr.Message)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, http.StatusBadRequest)
	}
}

func TestCall_ErrorStatusTextFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("<html>gateway sad</html>"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	err := client.Call(context.Background(), http.MethodGet, "/", CallOptions{})

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if apiErr.Message != "Service Unavailable" {
		t.Errorf("Message = %q, want status text fallback", apiErr.Message)
	}
}

func TestCall_TransportFailure(t *testing.T) {
	// A server that is already closed yields a connection error.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL)
	err := client.Call(context.Background(), http.MethodGet, "/", CallOptions{})

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if apiErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for transport failure", apiErr.StatusCode)
	}
	if apiErr.Message == "" {
		t.Error("transport failure should carry a message")
	}
}

func TestCall_NilOutDiscardsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"invitation": {"id": 1}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	// Side-channel call: the server attaches a body but we asked for none.
	if err := client.Call(context.Background(), http.MethodPost, "/x", CallOptions{}); err != nil {
		t.Fatalf("Call error: %v", err)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	if got := NewClient("").BaseURL(); got != DefaultBaseURL {
		t.Errorf("BaseURL() = %q, want %q", got, DefaultBaseURL)
	}
	if got := NewClient("http://api.example/").BaseURL(); got != "http://api.example" {
		t.Errorf("BaseURL() = %q, want trailing slash stripped", got)
	}
}
