package nlsql

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/rampgpt/rampgpt/internal/index"
	"github.com/rampgpt/rampgpt/internal/observability"
	"github.com/rampgpt/rampgpt/internal/schema"
)

// Pipeline is the fixed two-stage machine: GenerateSQL then
// ExecuteSQL. No branching, no retries; a fresh PipelineState is
// required per request.
type Pipeline struct {
	retriever index.Retriever
	generator Generator
	topK      int
	logger    *slog.Logger
}

func NewPipeline(retriever index.Retriever, generator Generator, topK int, logger *slog.Logger) *Pipeline {
	if topK <= 0 {
		topK = 3
	}
	return &Pipeline{
		retriever: retriever,
		generator: generator,
		topK:      topK,
		logger:    logger,
	}
}

// Run traverses both stages and returns the terminal state. The
// session db must already be bound to the resolved garage database;
// the caller owns its lifecycle.
func (p *Pipeline) Run(ctx context.Context, db *sql.DB, state PipelineState) PipelineState {
	state = p.generateSQL(ctx, db, state)
	return ExecuteQuery(ctx, db, state)
}

func (p *Pipeline) generateSQL(ctx context.Context, db *sql.DB, state PipelineState) PipelineState {
	snapshot, err := schema.Introspect(ctx, db)
	if err != nil {
		// Report, don't crash: generation proceeds with an empty schema.
		p.logger.Warn("schema introspection failed", "error", err)
		snapshot = schema.Snapshot{}
	}

	examples, err := p.retriever.RetrieveSimilar(ctx, state.Question, p.topK)
	if err != nil {
		p.logger.Warn("similarity retrieval failed", "error", err)
		examples = nil
	}
	observability.ObserveRetrievedExamples(len(examples))

	prompt := ComposePrompt(state.Question, snapshot, examples, state.Scope)
	query := GenerateQuery(ctx, p.generator, prompt)
	query = Sanitize(SanitizeInput{Query: query, Question: state.Question})

	p.logger.Debug("generated query",
		"garage", state.Tenant.Name,
		"examples", len(examples),
		"query", query,
	)
	return state.withQuery(query)
}
