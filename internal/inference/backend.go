package inference

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"curator/internal/config"
)

// Request carries the evidence for one classification call.
type Request struct {
	Filename   string
	SourcePath string
	Content    string
	// Hint is a below-threshold heuristic candidate, offered to the model
	// as a starting point it is free to contradict.
	Hint string
	// Categories is the prompt outline of valid taxonomy paths.
	Categories string
}

// Result is a parsed backend response. Confidence01 is on the backend-native
// 0-1 scale; callers convert to the catalog's 0-5 scale.
type Result struct {
	Category     string  `json:"category"`
	Subpath      string  `json:"subpath"`
	Filename     string  `json:"filename"`
	Confidence01 float64 `json:"confidence"`
	Reason       string  `json:"reason"`
	Raw          string  `json:"-"`
}

// Backend classifies a file by asking a model.
type Backend interface {
	Name() string
	Classify(ctx context.Context, req Request) (Result, error)
	HealthCheck(ctx context.Context) error
}

// Select picks a backend from configuration. "chat" and "workspace" are
// explicit; "auto" prefers the workspace backend when a slug is configured
// and it answers a health probe, falling back to the chat backend.
func Select(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.Inference.Backend {
	case "chat":
		return NewChatBackend(cfg.Inference), nil
	case "workspace":
		if cfg.Inference.WorkspaceSlug == "" {
			return nil, errors.New("inference: workspace backend requires a workspace slug")
		}
		return NewWorkspaceBackend(cfg.Inference), nil
	case "auto":
		if cfg.Inference.WorkspaceSlug != "" {
			workspace := NewWorkspaceBackend(cfg.Inference)
			probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := workspace.HealthCheck(probeCtx); err == nil {
				return workspace, nil
			}
		}
		return NewChatBackend(cfg.Inference), nil
	default:
		return nil, fmt.Errorf("inference: unknown backend %q", cfg.Inference.Backend)
	}
}

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("inference request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// IsTransient reports whether an error is worth retrying: rate limits,
// server errors, and network timeouts. Context cancellation and malformed
// responses are not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return retryableStatus(statusErr.StatusCode)
	}
	return isTimeout(err)
}

// isTimeout reports whether an error is a request timeout of some shape:
// a network-level deadline or an HTTP 408.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusRequestTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	return false
}

func retryableStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= http.StatusInternalServerError
}

func requestTimeout(cfg config.Inference) time.Duration {
	if cfg.TimeoutSeconds > 0 {
		return time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return 2 * time.Minute
}
