package nlsql

import (
	"context"
	"errors"
	"testing"
)

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func TestGenerateQuerySentinelOnError(t *testing.T) {
	gen := generatorFunc(func(context.Context, string) (string, error) {
		return "", errors.New("upstream timeout")
	})
	if got := GenerateQuery(context.Background(), gen, "prompt"); got != SentinelQuery {
		t.Fatalf("got %q, want sentinel", got)
	}
}

func TestGenerateQuerySentinelOnNonSelect(t *testing.T) {
	cases := []string{
		"DROP TABLE vehicle_svc",
		"I cannot answer that question.",
		"UPDATE t SET a = 1",
		"",
	}
	for _, output := range cases {
		gen := generatorFunc(func(context.Context, string) (string, error) {
			return output, nil
		})
		if got := GenerateQuery(context.Background(), gen, "prompt"); got != SentinelQuery {
			t.Fatalf("output %q: got %q, want sentinel", output, got)
		}
	}
}

func TestGenerateQueryAcceptsFencedSelect(t *testing.T) {
	gen := generatorFunc(func(context.Context, string) (string, error) {
		return "```sql\nselect COUNT(*) FROM vehicle_svc\n```", nil
	})
	got := GenerateQuery(context.Background(), gen, "prompt")
	if got != "select COUNT(*) FROM vehicle_svc" {
		t.Fatalf("got %q", got)
	}
}

func TestSentinelQueryIsSelect(t *testing.T) {
	state := PipelineState{GeneratedQuery: SentinelQuery}
	if !isReadOnly(state.GeneratedQuery) {
		t.Fatal("sentinel query must pass the read-only guard")
	}
}
