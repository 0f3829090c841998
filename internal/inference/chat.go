package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"curator/internal/config"
)

// ChatBackend classifies through an OpenAI-compatible chat completion API.
// Ollama, LM Studio, and hosted OpenAI endpoints all speak this shape.
type ChatBackend struct {
	client  *openai.Client
	model   string
	retrier retrier
}

// NewChatBackend builds a chat backend from inference configuration.
func NewChatBackend(cfg config.Inference) *ChatBackend {
	apiKey := cfg.APIKey
	if apiKey == "" {
		// Local servers ignore the key but the client requires one.
		apiKey = "unused"
	}
	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: requestTimeout(cfg)}
	return &ChatBackend{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		retrier: newRetrier(cfg),
	}
}

func (b *ChatBackend) Name() string { return "chat" }

// HealthCheck verifies the endpoint answers a model listing.
func (b *ChatBackend) HealthCheck(ctx context.Context) error {
	if _, err := b.client.ListModels(ctx); err != nil {
		return fmt.Errorf("chat backend unavailable: %w", translateAPIError(err))
	}
	return nil
}

// Classify sends one classification request, retrying transient failures.
func (b *ChatBackend) Classify(ctx context.Context, req Request) (Result, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classificationPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(req)},
		},
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	var payload string
	err := b.retrier.do(ctx, func() error {
		resp, err := b.client.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			return translateAPIError(err)
		}
		if len(resp.Choices) == 0 {
			return errors.New("chat completion returned no choices")
		}
		payload = strings.TrimSpace(resp.Choices[0].Message.Content)
		if payload == "" {
			return errors.New("chat completion returned empty content")
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return parseResult(payload)
}

// translateAPIError maps go-openai errors onto the shared status error so
// retry classification sees HTTP codes uniformly across backends.
func translateAPIError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &httpStatusError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &httpStatusError{StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error()}
	}
	return err
}
