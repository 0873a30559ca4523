package index

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEmbeddingClientEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var payload struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload.Model != "BAAI/bge-base-en-v1.5" {
			t.Errorf("model = %q", payload.Model)
		}

		type item struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		resp := struct {
			Data []item `json:"data"`
		}{}
		// Return out of order to exercise index-based placement.
		for i := len(payload.Input) - 1; i >= 0; i-- {
			resp.Data = append(resp.Data, item{Index: i, Embedding: []float32{float32(i), 0, 0}})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := NewEmbeddingClient(EmbeddingClientConfig{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Model:      "BAAI/bge-base-en-v1.5",
		Dimensions: 3,
	})
	if err != nil {
		t.Fatalf("NewEmbeddingClient() error = %v", err)
	}

	vectors, err := client.Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("len(vectors) = %d, want 2", len(vectors))
	}
	if vectors[0][0] != 0 || vectors[1][0] != 1 {
		t.Fatalf("vectors misordered: %v", vectors)
	}
}

func TestEmbeddingClientRejectsDimensionMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[1,2]}]}`))
	}))
	defer server.Close()

	client, err := NewEmbeddingClient(EmbeddingClientConfig{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Model:      "BAAI/bge-base-en-v1.5",
		Dimensions: 3,
	})
	if err != nil {
		t.Fatalf("NewEmbeddingClient() error = %v", err)
	}

	if _, err := client.Embed(context.Background(), []string{"first"}); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestEmbeddingClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewEmbeddingClient(EmbeddingClientConfig{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Model:      "BAAI/bge-base-en-v1.5",
		Dimensions: 3,
	})
	if err != nil {
		t.Fatalf("NewEmbeddingClient() error = %v", err)
	}

	if _, err := client.Embed(context.Background(), []string{"first"}); err == nil {
		t.Fatal("expected error for 502 response")
	}
}
