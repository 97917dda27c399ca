package ical

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetcherRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "oscar-feed-test" {
			t.Errorf("Expected user agent 'oscar-feed-test', got '%s'", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/calendar")
		w.Write([]byte(sampleCalendar))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "oscar-feed-test", 5*time.Second)

	data, err := fetcher.Run(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if string(data) != sampleCalendar {
		t.Error("Expected calendar body to be returned unchanged")
	}
}

func TestFetcherHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "test", 5*time.Second)

	if _, err := fetcher.Run(context.Background(), server.URL); err == nil {
		t.Error("Expected error for 404 response")
	}
}

func TestFetcherTimeout(t *testing.T) {
	done := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(done)

	fetcher := NewFetcher(server.Client(), "test", 50*time.Millisecond)

	if _, err := fetcher.Run(context.Background(), server.URL); err == nil {
		t.Error("Expected timeout error")
	}
}

func TestFetcherTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleCalendar))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "test", 5*time.Second)

	fetcher.maxSize = int64(len(sampleCalendar))
	if _, err := fetcher.Run(context.Background(), server.URL); err != nil {
		t.Errorf("Expected body at the limit to be accepted, got: %v", err)
	}

	fetcher.maxSize = int64(len(sampleCalendar)) - 1
	if _, err := fetcher.Run(context.Background(), server.URL); err == nil {
		t.Error("Expected error for oversized calendar")
	}
}
