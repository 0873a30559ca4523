package nlsql

import (
	"context"
	"strings"

	"github.com/rampgpt/rampgpt/internal/observability"
)

// SentinelQuery is substituted whenever generation fails or produces
// something other than a SELECT statement. Downstream stages always
// receive parseable SQL and never special-case "no query".
const SentinelQuery = "SELECT 'Query could not be generated' AS error;"

// Generator produces raw model output for a composed prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerateQuery wraps a Generator with the sentinel policy: transport
// errors, timeouts and non-SELECT output all collapse into
// SentinelQuery. Single attempt, no retry.
func GenerateQuery(ctx context.Context, gen Generator, prompt string) string {
	raw, err := gen.Generate(ctx, prompt)
	if err != nil {
		observability.IncrementGenerationSentinel()
		return SentinelQuery
	}

	query := stripFences(raw)
	if !strings.HasPrefix(strings.ToLower(query), "select") {
		observability.IncrementGenerationSentinel()
		return SentinelQuery
	}
	return query
}

func stripFences(value string) string {
	value = strings.ReplaceAll(value, "```sql", "")
	value = strings.ReplaceAll(value, "```", "")
	value = strings.ReplaceAll(value, "<s>", "")
	return strings.TrimSpace(value)
}
