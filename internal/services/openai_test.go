package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/encore/internal/shared"
)

func TestNewOpenAIService(t *testing.T) {
	t.Run("Missing API Key", func(t *testing.T) {
		_, err := NewOpenAIService("", "", "")
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Default Model", func(t *testing.T) {
		srv, err := NewOpenAIService("sk-test", "", "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if srv.model != "gpt-4o-mini" {
			t.Errorf("expected default model gpt-4o-mini, got %s", srv.model)
		}
	})
}

func TestComplete(t *testing.T) {
	t.Run("Sends Structured Request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/chat/completions" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}

			var request chatRequest
			if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
				t.Fatalf("failed to decode request: %v", err)
			}

			if request.Temperature != 0.8 {
				t.Errorf("expected temperature 0.8, got %f", request.Temperature)
			}

			if request.MaxTokens != 2000 {
				t.Errorf("expected max_tokens 2000, got %d", request.MaxTokens)
			}

			if request.ResponseFormat.Type != "json_object" {
				t.Errorf("expected json_object response format, got %s", request.ResponseFormat.Type)
			}

			if len(request.Messages) != 2 || request.Messages[0].Role != "system" {
				t.Errorf("expected system+user messages, got %v", request.Messages)
			}

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"choices":[{"message":{"content":"{\"suggestions\":[]}"}}]}`)
		}))
		defer server.Close()

		srv, err := NewOpenAIService("sk-test", server.URL, "gpt-4o-mini")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		content, err := srv.Complete(context.Background(), "you are a dj", "suggest songs")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if content != `{"suggestions":[]}` {
			t.Errorf("unexpected content %q", content)
		}
	})

	t.Run("Surfaces API Errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error":{"message":"rate limit reached"}}`)
		}))
		defer server.Close()

		srv, err := NewOpenAIService("sk-test", server.URL, "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		_, err = srv.Complete(context.Background(), "system", "user")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("Rejects Empty Choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"choices":[]}`)
		}))
		defer server.Close()

		srv, err := NewOpenAIService("sk-test", server.URL, "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		_, err = srv.Complete(context.Background(), "system", "user")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}
