package nlsql

import (
	"strings"

	"github.com/rampgpt/rampgpt/internal/auth"
	"github.com/rampgpt/rampgpt/internal/schema"
)

const noExamplesPlaceholder = "No relevant examples found."

// customerPredicate is the ownership constraint injected into every
// prompt. Customer scope binds it to the caller's id; every other
// scope degenerates to an always-true predicate so the instruction
// block has the same shape regardless of role.
func customerPredicate(scope AccessScope) string {
	if strings.EqualFold(scope.Role, auth.RoleCustomer) && strings.TrimSpace(scope.OwnerFilterID) != "" {
		return "vs.customer_id = " + strings.TrimSpace(scope.OwnerFilterID)
	}
	return "True"
}

// ComposePrompt builds the generation prompt from its four fixed
// sections: instructions, schema, retrieved examples, question. Pure;
// always produces a prompt even with an empty schema or no examples.
func ComposePrompt(question string, snapshot schema.Snapshot, examples []string, scope AccessScope) string {
	predicate := customerPredicate(scope)

	retrieved := noExamplesPlaceholder
	if len(examples) > 0 {
		retrieved = strings.Join(examples, "\n")
	}

	var b strings.Builder
	b.WriteString("### Instructions:\n")
	b.WriteString("You are a MySQL SQL query generator. Follow these rules:\n")
	b.WriteString("- Only output a valid `SELECT` statement.\n")
	b.WriteString("- Use table aliases and define them before use.\n")
	b.WriteString("- Correctly apply `JOIN ON` conditions.\n")
	b.WriteString("- Always include `WHERE " + predicate + "` to restrict results to the caller's own data.\n")
	b.WriteString("- If the caller asks for another customer's data, return no results by using `WHERE " + predicate + "`.\n")
	b.WriteString("- Ensure table aliases are correctly defined in `FROM` or `JOIN` before use.\n")
	b.WriteString("- Service amounts live in `vehicle_svc_dtl.amount`; join detail rows on `vsd.vehicle_svc_id`.\n")
	b.WriteString("\n#### Database Schema:\n")
	b.WriteString(snapshot.Render())
	b.WriteString("\n\n#### Example Queries:\n")
	b.WriteString(retrieved)
	b.WriteString("\n\n#### User's Question:\n")
	b.WriteString("\"" + strings.TrimSpace(question) + "\"\n")
	b.WriteString("\n#### Correct SQL Query:\n")
	return b.String()
}
