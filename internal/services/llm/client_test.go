package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkcast/internal/services/llm"
)

func newTestClient(t *testing.T, provider llm.Provider, handler http.HandlerFunc) *llm.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := llm.NewClient(llm.Config{
		Provider: provider,
		BaseURL:  server.URL,
		Model:    "test-model",
		Token:    "test-token",
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestCompleteOpenAI(t *testing.T) {
	client := newTestClient(t, llm.ProviderOpenAI, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected authorization header %q", got)
		}
		var payload struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
			Stream bool `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if payload.Stream {
			t.Error("expected stream=false")
		}
		if len(payload.Messages) != 2 || payload.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", payload.Messages)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"translated text"}}]}`))
	})

	got, err := client.Complete(context.Background(), "translate this", "original text")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "translated text" {
		t.Fatalf("unexpected completion %q", got)
	}
}

func TestCompleteOpenAIHTTPError(t *testing.T) {
	client := newTestClient(t, llm.ProviderOpenAI, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	if _, err := client.Complete(context.Background(), "", "text"); err == nil {
		t.Fatal("expected error for http 502")
	}
}

func TestCompleteOpenAITokenExceeded(t *testing.T) {
	client := newTestClient(t, llm.ProviderOpenAI, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"message":"This model's maximum context length is 8192 tokens"}}`))
	})

	_, err := client.Complete(context.Background(), "", "text")
	if !errors.Is(err, llm.ErrTokenExceeded) {
		t.Fatalf("expected ErrTokenExceeded, got %v", err)
	}
}

func TestCompleteOpenAIEmptyChoices(t *testing.T) {
	client := newTestClient(t, llm.ProviderOpenAI, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.Complete(context.Background(), "", "text")
	if !errors.Is(err, llm.ErrEmptyCompletion) {
		t.Fatalf("expected ErrEmptyCompletion, got %v", err)
	}
}

func TestCompleteGemini(t *testing.T) {
	client := newTestClient(t, llm.ProviderGemini, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/test-model:generateContent" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("key"); got != "test-token" {
			t.Errorf("unexpected key query %q", got)
		}
		var payload struct {
			Contents []struct {
				Role  string `json:"role"`
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(payload.Contents) != 1 || len(payload.Contents[0].Parts) != 1 {
			t.Errorf("unexpected contents: %+v", payload.Contents)
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"part one "},{"text":"part two"}]}}]}`))
	})

	got, err := client.Complete(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "part one part two" {
		t.Fatalf("unexpected completion %q", got)
	}
}

func TestCompleteGeminiBlockedPrompt(t *testing.T) {
	client := newTestClient(t, llm.ProviderGemini, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"promptFeedback":{"blockReason":"OTHER"}}`))
	})

	_, err := client.Complete(context.Background(), "", "text")
	if !errors.Is(err, llm.ErrTokenExceeded) {
		t.Fatalf("expected ErrTokenExceeded for blocked prompt, got %v", err)
	}
}

func TestParseProvider(t *testing.T) {
	cases := []struct {
		in      string
		want    llm.Provider
		wantErr bool
	}{
		{"openai", llm.ProviderOpenAI, false},
		{"", llm.ProviderOpenAI, false},
		{"Gemini", llm.ProviderGemini, false},
		{"parrot", "", true},
	}
	for _, tc := range cases {
		got, err := llm.ParseProvider(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
