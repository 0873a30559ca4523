// Package nlsql implements the question-to-answer pipeline: prompt
// composition, SQL generation, deterministic repair, scoped execution
// and response shaping.
package nlsql

import (
	"github.com/rampgpt/rampgpt/internal/tenant"
)

type ResultKind int

const (
	ResultPending ResultKind = iota
	ResultSuccess
	ResultFailure
)

// Row is one materialized result row keyed by column name. Column
// order is carried separately on Result.
type Row map[string]any

type Result struct {
	Kind    ResultKind
	Rows    []Row
	Columns []string
	Message string
}

// AccessScope restricts what a caller may see. Customer scope binds the
// ownership predicate to OwnerFilterID; other roles get the always-true
// predicate.
type AccessScope struct {
	Role          string
	OwnerFilterID string
}

// PipelineState threads one request through the two pipeline stages.
// Stages return a new state rather than mutating their input.
type PipelineState struct {
	Question       string
	GeneratedQuery string
	Result         Result
	HasError       bool
	Scope          AccessScope
	Tenant         tenant.Selection
}

func NewState(question string, scope AccessScope, selection tenant.Selection) PipelineState {
	return PipelineState{
		Question: question,
		Result:   Result{Kind: ResultPending},
		Scope:    scope,
		Tenant:   selection,
	}
}

func (s PipelineState) withQuery(query string) PipelineState {
	s.GeneratedQuery = query
	return s
}

func (s PipelineState) withSuccess(rows []Row, columns []string) PipelineState {
	s.Result = Result{Kind: ResultSuccess, Rows: rows, Columns: columns}
	s.HasError = false
	return s
}

func (s PipelineState) withFailure(message string) PipelineState {
	s.Result = Result{Kind: ResultFailure, Message: message}
	s.HasError = true
	return s
}
