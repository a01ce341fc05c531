package lingva

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/kk/en/%D0%A1%D3%99%D0%BB%D0%B5%D0%BC" && r.URL.EscapedPath() != "/api/v1/kk/en/%D0%A1%D3%99%D0%BB%D0%B5%D0%BC" {
			t.Errorf("path = %q", r.URL.EscapedPath())
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"translation":"Hello"}`))
	}))
	defer server.Close()

	client := New(server.URL)
	got, err := client.Translate(context.Background(), "Сәлем", "kk", "en")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if got != "Hello" {
		t.Errorf("Translate() = %q, want %q", got, "Hello")
	}
}

func TestTranslateAutoSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/auto/en/hello" {
			t.Errorf("path = %q, want auto source", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"translation":"hello"}`))
	}))
	defer server.Close()

	client := New(server.URL)
	if _, err := client.Translate(context.Background(), "hello", "", "en"); err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
}

func TestTranslateEmptyText(t *testing.T) {
	client := New("http://127.0.0.1:1") // must not be contacted
	got, err := client.Translate(context.Background(), "   ", "kk", "en")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if got != "" {
		t.Errorf("Translate() = %q, want empty", got)
	}
}

func TestTranslateUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(server.URL)
	if _, err := client.Translate(context.Background(), "hello", "", "en"); err == nil {
		t.Error("expected error on non-200 status")
	}
}
