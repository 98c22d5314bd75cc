package scraper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"listing_studio/config"
	"listing_studio/retry"
)

func newFirecrawlServer(t *testing.T, handler http.HandlerFunc) *FirecrawlClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewFirecrawlClient(config.FirecrawlConfig{APIKey: "fc-test", BaseURL: srv.URL}, srv.Client())
}

func TestFirecrawlSubmit_InlineData(t *testing.T) {
	var got ExtractRequest
	client := newFirecrawlServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/extract" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer fc-test" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"success":true,"data":{"price":"250000","images":["u1"]}}`))
	})

	res, err := client.Submit(context.Background(), ExtractRequest{URLs: []string{testListingURL}, Prompt: "p"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if res.JobID != "" {
		t.Fatalf("expected inline data, got job id %q", res.JobID)
	}
	root := rootData(res.Data)
	if root == nil || root["price"] != "250000" {
		t.Fatalf("unexpected data %v", res.Data)
	}
	if len(got.URLs) != 1 || got.URLs[0] != testListingURL || got.Prompt != "p" {
		t.Fatalf("request body not forwarded: %+v", got)
	}
}

func TestFirecrawlSubmit_AsyncJob(t *testing.T) {
	client := newFirecrawlServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"id":"job-42"}`))
	})

	res, err := client.Submit(context.Background(), ExtractRequest{URLs: []string{testListingURL}})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if res.JobID != "job-42" || res.Data != nil {
		t.Fatalf("expected job-42 with no data, got %+v", res)
	}
}

func TestFirecrawlSubmit_ErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		permanent bool
	}{
		{"bad request", http.StatusBadRequest, `{"success":false,"error":"bad url"}`, true},
		{"unauthorized", http.StatusUnauthorized, `{"error":"invalid key"}`, true},
		{"rate limited", http.StatusTooManyRequests, `{"error":"slow down"}`, false},
		{"server error", http.StatusBadGateway, `upstream`, false},
		{"rejected with 200", http.StatusOK, `{"success":false,"error":"quota exceeded"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFirecrawlServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := client.Submit(context.Background(), ExtractRequest{URLs: []string{testListingURL}})
			if err == nil {
				t.Fatalf("expected error")
			}
			if retry.IsPermanent(err) != tt.permanent {
				t.Fatalf("expected permanent=%v, got %v (%v)", tt.permanent, retry.IsPermanent(err), err)
			}
		})
	}
}

func TestFirecrawlSubmit_MissingKey(t *testing.T) {
	client := NewFirecrawlClient(config.FirecrawlConfig{BaseURL: "http://127.0.0.1:1"}, nil)
	_, err := client.Submit(context.Background(), ExtractRequest{})
	if !retry.IsPermanent(err) {
		t.Fatalf("missing key should be permanent, got %v", err)
	}
}

func TestFirecrawlStatus(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus string
		wantData   bool
		wantError  string
	}{
		{"processing", `{"success":true,"status":"processing"}`, firecrawlProcessing, false, ""},
		{"completed", `{"success":true,"status":"completed","data":[{"address":"1 Road"}]}`, firecrawlCompleted, true, ""},
		{"completed empty", `{"success":true,"status":"completed","data":{}}`, firecrawlCompleted, false, ""},
		{"failed", `{"success":true,"status":"FAILED","error":"blocked"}`, firecrawlFailed, false, "blocked"},
		{"unsuccessful", `{"success":false,"message":"job expired"}`, firecrawlFailed, false, "job expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFirecrawlServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet || r.URL.Path != "/v1/extract/job-42" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				w.Write([]byte(tt.body))
			})
			res, err := client.Status(context.Background(), "job-42")
			if err != nil {
				t.Fatalf("status failed: %v", err)
			}
			if res.Status != tt.wantStatus {
				t.Fatalf("expected status %q, got %q", tt.wantStatus, res.Status)
			}
			if (res.Data != nil) != tt.wantData {
				t.Fatalf("expected data=%v, got %v", tt.wantData, res.Data)
			}
			if res.Error != tt.wantError {
				t.Fatalf("expected error %q, got %q", tt.wantError, res.Error)
			}
		})
	}
}
