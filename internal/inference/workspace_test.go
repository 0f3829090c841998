package inference

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"curator/internal/config"
)

func workspaceConfig(baseURL string) config.Inference {
	return config.Inference{
		Backend:         "workspace",
		BaseURL:         baseURL,
		APIKey:          "test-key",
		WorkspaceSlug:   "documents",
		TimeoutSeconds:  5,
		MaxAttempts:     3,
		RetryBaseMillis: 1,
		RetryMaxMillis:  5,
	}
}

func TestWorkspaceClassify(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/workspace/documents/chat" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		var req workspaceChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Mode != "chat" {
			t.Errorf("mode = %q", req.Mode)
		}
		_ = json.NewEncoder(w).Encode(workspaceChatResponse{
			TextResponse: `{"category":"KB.Finance.Tax","subpath":"Filing/Federal","confidence":0.85,"reason":"tax form"}`,
		})
	}))
	defer server.Close()

	backend := NewWorkspaceBackend(workspaceConfig(server.URL))
	result, err := backend.Classify(context.Background(), Request{
		Filename:   "Form 1040 2024.pdf",
		Categories: "- KB.Finance.Tax\n",
	})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if result.Category != "KB.Finance.Tax" || result.Confidence01 != 0.85 {
		t.Fatalf("result = %+v", result)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("auth header = %q", gotAuth)
	}
}

func TestWorkspaceRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(workspaceChatResponse{
			TextResponse: `{"category":"KB.Personal.Misc","confidence":0.2}`,
		})
	}))
	defer server.Close()

	backend := NewWorkspaceBackend(workspaceConfig(server.URL))
	result, err := backend.Classify(context.Background(), Request{Filename: "x.txt"})
	if err != nil {
		t.Fatalf("classify after retries: %v", err)
	}
	if result.Category != "KB.Personal.Misc" {
		t.Fatalf("result = %+v", result)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d", calls.Load())
	}
}

func TestWorkspaceExhaustsAttempts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	backend := NewWorkspaceBackend(workspaceConfig(server.URL))
	_, err := backend.Classify(context.Background(), Request{Filename: "x.txt"})
	if err == nil {
		t.Fatal("expected failure after exhausting attempts")
	}
	var statusErr *httpStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("err = %v", err)
	}
}

func TestWorkspaceDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	backend := NewWorkspaceBackend(workspaceConfig(server.URL))
	if _, err := backend.Classify(context.Background(), Request{Filename: "x.txt"}); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want no retries on 401", calls.Load())
	}
}

func TestWorkspaceHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/workspace/documents" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	backend := NewWorkspaceBackend(workspaceConfig(server.URL))
	if err := backend.HealthCheck(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}

	bad := workspaceConfig(server.URL)
	bad.WorkspaceSlug = "missing"
	if err := NewWorkspaceBackend(bad).HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health failure for missing workspace")
	}
}

func TestParseRetryAfterSeconds(t *testing.T) {
	if delay, ok := parseRetryAfter("3"); !ok || delay != 3*time.Second {
		t.Fatalf("parseRetryAfter = %v, %v", delay, ok)
	}
	if _, ok := parseRetryAfter(""); ok {
		t.Fatal("empty header must not parse")
	}
	if _, ok := parseRetryAfter("-1"); ok {
		t.Fatal("negative header must not parse")
	}
}
