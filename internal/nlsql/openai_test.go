package nlsql

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChatClientGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var payload struct {
			Model       string   `json:"model"`
			MaxTokens   int      `json:"max_tokens"`
			Temperature float64  `json:"temperature"`
			TopP        float64  `json:"top_p"`
			Stop        []string `json:"stop"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload.Model != "Qwen/Qwen2.5-Coder-32B-Instruct" {
			t.Errorf("model = %q", payload.Model)
		}
		if payload.MaxTokens != 512 || payload.Temperature != 0.1 || payload.TopP != 0.7 {
			t.Errorf("decoding params = %d/%v/%v", payload.MaxTokens, payload.Temperature, payload.TopP)
		}
		if len(payload.Stop) != 1 || payload.Stop[0] != ";" {
			t.Errorf("stop = %v", payload.Stop)
		}
		if len(payload.Messages) != 1 || payload.Messages[0].Role != "user" {
			t.Errorf("messages = %v", payload.Messages)
		}

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"SELECT COUNT(*) FROM vehicle_svc"}}]}`))
	}))
	defer server.Close()

	client, err := NewChatClient(ChatClientConfig{
		BaseURL:     server.URL,
		APIKey:      "test-key",
		Model:       "Qwen/Qwen2.5-Coder-32B-Instruct",
		Temperature: 0.1,
		TopP:        0.7,
		MaxTokens:   512,
	})
	if err != nil {
		t.Fatalf("NewChatClient() error = %v", err)
	}

	got, err := client.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "SELECT COUNT(*) FROM vehicle_svc" {
		t.Fatalf("Generate() = %q", got)
	}
}

func TestChatClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewChatClient(ChatClientConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "Qwen/Qwen2.5-Coder-32B-Instruct",
	})
	if err != nil {
		t.Fatalf("NewChatClient() error = %v", err)
	}

	if _, err := client.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for 503 response")
	}
}

func TestChatClientEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client, err := NewChatClient(ChatClientConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "Qwen/Qwen2.5-Coder-32B-Instruct",
	})
	if err != nil {
		t.Fatalf("NewChatClient() error = %v", err)
	}

	if _, err := client.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
