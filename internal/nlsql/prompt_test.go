package nlsql

import (
	"strings"
	"testing"

	"github.com/rampgpt/rampgpt/internal/schema"
)

func TestComposePromptCustomerPredicate(t *testing.T) {
	scope := AccessScope{Role: "customer", OwnerFilterID: "42"}
	prompt := ComposePrompt("total revenue?", schema.Snapshot{}, nil, scope)
	if !strings.Contains(prompt, "vs.customer_id = 42") {
		t.Fatalf("customer predicate missing:\n%s", prompt)
	}
}

func TestComposePromptNonCustomerPredicate(t *testing.T) {
	for _, role := range []string{"admin", "owner"} {
		prompt := ComposePrompt("total revenue?", schema.Snapshot{}, nil, AccessScope{Role: role, OwnerFilterID: "42"})
		if !strings.Contains(prompt, "WHERE True") {
			t.Fatalf("role %q: always-true predicate missing:\n%s", role, prompt)
		}
		if strings.Contains(prompt, "vs.customer_id") {
			t.Fatalf("role %q: customer predicate leaked:\n%s", role, prompt)
		}
	}
}

func TestComposePromptSectionOrder(t *testing.T) {
	snapshot := schema.Snapshot{{Name: "vehicle_svc", Columns: []string{"id", "customer_id"}}}
	examples := []string{"q1 | SELECT 1", "q2 | SELECT 2"}
	prompt := ComposePrompt("how many services?", snapshot, examples, AccessScope{Role: "admin"})

	markers := []string{
		"### Instructions:",
		"#### Database Schema:",
		"#### Example Queries:",
		"#### User's Question:",
		"#### Correct SQL Query:",
	}
	last := -1
	for _, marker := range markers {
		pos := strings.Index(prompt, marker)
		if pos < 0 {
			t.Fatalf("marker %q missing:\n%s", marker, prompt)
		}
		if pos < last {
			t.Fatalf("marker %q out of order", marker)
		}
		last = pos
	}

	if !strings.Contains(prompt, "vehicle_svc: id, customer_id") {
		t.Fatalf("schema listing missing:\n%s", prompt)
	}
	if !strings.Contains(prompt, "q1 | SELECT 1\nq2 | SELECT 2") {
		t.Fatalf("examples missing:\n%s", prompt)
	}
	if !strings.Contains(prompt, "\"how many services?\"") {
		t.Fatalf("question missing:\n%s", prompt)
	}
}

func TestComposePromptColumnCorrectionRule(t *testing.T) {
	prompt := ComposePrompt("total revenue?", schema.Snapshot{}, nil, AccessScope{Role: "admin"})
	if !strings.Contains(prompt, "vehicle_svc_dtl.amount") {
		t.Fatalf("amount column rule missing:\n%s", prompt)
	}
	if !strings.Contains(prompt, "vsd.vehicle_svc_id") {
		t.Fatalf("join key rule missing:\n%s", prompt)
	}
}

func TestComposePromptNoExamplesPlaceholder(t *testing.T) {
	prompt := ComposePrompt("anything", schema.Snapshot{}, nil, AccessScope{Role: "admin"})
	if !strings.Contains(prompt, "No relevant examples found.") {
		t.Fatalf("placeholder missing:\n%s", prompt)
	}
}
