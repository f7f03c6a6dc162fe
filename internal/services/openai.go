// OpenAI-compatible chat completions implementation of [Completer]
package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/encore/internal/shared"
	"github.com/go-resty/resty/v2"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// chatMessage is one message of a chat completion request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatRequest is the chat completions request payload.
type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens"`
	ResponseFormat responseFormat `json:"response_format"`
}

// chatResponse is the subset of the chat completions response we read.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// OpenAIService implements [Completer] against any OpenAI-compatible
// chat completions endpoint.
type OpenAIService struct {
	client *resty.Client
	model  string
}

// NewOpenAIService creates a completions client. baseURL and model fall
// back to the OpenAI defaults when empty.
func NewOpenAIService(apiKey, baseURL, model string) (*OpenAIService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: api_key", shared.ErrMissingCredentials)
	}

	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	if model == "" {
		model = "gpt-4o-mini"
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")

	return &OpenAIService{client: client, model: model}, nil
}

// Complete sends a system/user prompt pair and returns the raw completion
// text. The request asks for a JSON object response so the caller can
// unmarshal it directly.
func (s *OpenAIService) Complete(ctx context.Context, system, user string) (string, error) {
	request := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    0.8,
		MaxTokens:      2000,
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	var response chatResponse

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&response).
		SetError(&response).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	if resp.IsError() {
		if response.Error != nil && response.Error.Message != "" {
			return "", fmt.Errorf("%w: %s", shared.ErrAPIRequest, response.Error.Message)
		}
		return "", fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode())
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%w: completion returned no choices", shared.ErrAPIRequest)
	}

	return response.Choices[0].Message.Content, nil
}
