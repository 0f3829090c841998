package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"curator/internal/config"
)

// WorkspaceBackend classifies through a workspace chat API in the
// AnythingLLM style: the workspace's own document index supplies retrieval
// context, so only the question travels in the request.
type WorkspaceBackend struct {
	baseURL    string
	apiKey     string
	slug       string
	httpClient *http.Client
	retrier    retrier
}

// NewWorkspaceBackend builds a workspace backend from inference configuration.
func NewWorkspaceBackend(cfg config.Inference) *WorkspaceBackend {
	return &WorkspaceBackend{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		slug:       cfg.WorkspaceSlug,
		httpClient: &http.Client{Timeout: requestTimeout(cfg)},
		retrier:    newRetrier(cfg),
	}
}

func (b *WorkspaceBackend) Name() string { return "workspace" }

type workspaceChatRequest struct {
	Message string `json:"message"`
	Mode    string `json:"mode"`
}

type workspaceChatResponse struct {
	TextResponse string `json:"textResponse"`
	Error        string `json:"error"`
}

// HealthCheck verifies the workspace exists and the key is accepted.
func (b *WorkspaceBackend) HealthCheck(ctx context.Context) error {
	endpoint, err := url.JoinPath(b.baseURL, "workspace", b.slug)
	if err != nil {
		return fmt.Errorf("workspace health: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("workspace health: new request: %w", err)
	}
	b.setHeaders(req)
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("workspace health: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}

// Classify asks the workspace chat endpoint for a classification, retrying
// transient failures with backoff and honoring Retry-After.
func (b *WorkspaceBackend) Classify(ctx context.Context, req Request) (Result, error) {
	message := classificationPrompt + "\n\n" + buildUserPrompt(req)

	var payload string
	err := b.retrier.do(ctx, func() error {
		text, err := b.chatOnce(ctx, message)
		if err != nil {
			return err
		}
		payload = text
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return parseResult(payload)
}

func (b *WorkspaceBackend) chatOnce(ctx context.Context, message string) (string, error) {
	endpoint, err := url.JoinPath(b.baseURL, "workspace", b.slug, "chat")
	if err != nil {
		return "", fmt.Errorf("workspace chat: build url: %w", err)
	}
	encoded, err := json.Marshal(workspaceChatRequest{Message: message, Mode: "chat"})
	if err != nil {
		return "", fmt.Errorf("workspace chat: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("workspace chat: new request: %w", err)
	}
	b.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("workspace chat: http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("workspace chat: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return "", &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: retryAfter,
		}
	}

	var decoded workspaceChatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("workspace chat: decode response: %w", err)
	}
	if decoded.Error != "" {
		return "", fmt.Errorf("workspace chat: api error: %s", decoded.Error)
	}
	text := strings.TrimSpace(decoded.TextResponse)
	if text == "" {
		return "", errors.New("workspace chat: empty response")
	}
	return text, nil
}

func (b *WorkspaceBackend) setHeaders(req *http.Request) {
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}
	req.Header.Set("Accept", "application/json")
}
