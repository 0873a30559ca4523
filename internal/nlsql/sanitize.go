package nlsql

import (
	"regexp"
	"strings"

	"github.com/rampgpt/rampgpt/internal/observability"
)

// SanitizeInput carries the generated query plus the original question;
// the brand rule needs the question to decide whether to fire.
type SanitizeInput struct {
	Query    string
	Question string
}

// sanitizeRule is one named, pure, total rewrite. Unmatched input
// passes through unchanged; rules never remove the leading SELECT.
type sanitizeRule struct {
	name  string
	apply func(in SanitizeInput) string
}

var (
	inlineCommentPattern  = regexp.MustCompile(`--.*`)
	blockCommentPattern   = regexp.MustCompile(`(?s)/\*.*?\*/`)
	ilikePattern          = regexp.MustCompile(`(?i)\bilike\b`)
	doubleWildcardPattern = regexp.MustCompile(`%{2,}`)
	vehicleTypeEquality   = regexp.MustCompile(`(?i)((?:[a-z_][a-z0-9_]*\.)?vehicle_type)\s*=\s*'[^']*'`)
	bareCountPattern      = regexp.MustCompile(`(?i)count\(\s*\*\s*\)`)
)

// vehicleBrands is the fixed vocabulary the brand rule detects in
// questions. vehicle_type values are encoded "<Brand>-<model code>",
// so exact-equality filters must become prefix matches.
var vehicleBrands = []string{
	"Audi", "BMW", "Mercedes", "Toyota", "Honda", "Ford", "Hyundai",
	"Nissan", "Kia", "Volkswagen", "Suzuki", "Tata", "Mahindra",
}

var sanitizeRules = []sanitizeRule{
	{
		name: "strip_fences",
		apply: func(in SanitizeInput) string {
			return stripFences(in.Query)
		},
	},
	{
		name: "ilike_to_like",
		apply: func(in SanitizeInput) string {
			return ilikePattern.ReplaceAllString(in.Query, "LIKE")
		},
	},
	{
		name: "strip_comments",
		apply: func(in SanitizeInput) string {
			out := inlineCommentPattern.ReplaceAllString(in.Query, "")
			out = blockCommentPattern.ReplaceAllString(out, "")
			return strings.TrimSpace(out)
		},
	},
	{
		// The component amount lives on vehicle_service_details, not
		// the summary table the generator tends to alias it to.
		name: "fix_amount_alias",
		apply: func(in SanitizeInput) string {
			return strings.ReplaceAll(in.Query, "vss.amount", "vsd.amount")
		},
	},
	{
		name: "fix_join_key",
		apply: func(in SanitizeInput) string {
			return strings.ReplaceAll(in.Query, "vsd.vehicle_svc_summary_id", "vsd.vehicle_svc_id")
		},
	},
	{
		name:  "brand_prefix_filter",
		apply: applyBrandPrefixFilter,
	},
	{
		name: "collapse_double_wildcard",
		apply: func(in SanitizeInput) string {
			return doubleWildcardPattern.ReplaceAllString(in.Query, "%")
		},
	},
	{
		name:  "count_distinct_vehicles",
		apply: applyCountDistinctVehicles,
	},
}

// Sanitize runs the rewrite rules in their fixed order and reports
// each rule that changed the query.
func Sanitize(in SanitizeInput) string {
	query := in.Query
	for _, rule := range sanitizeRules {
		out := rule.apply(SanitizeInput{Query: query, Question: in.Question})
		if out != query {
			observability.IncrementSanitizerRule(rule.name)
		}
		query = out
	}
	return query
}

// DetectBrand returns the first known brand mentioned in the question,
// or "" when none is present.
func DetectBrand(question string) string {
	lower := strings.ToLower(question)
	for _, brand := range vehicleBrands {
		if containsWord(lower, strings.ToLower(brand)) {
			return brand
		}
	}
	return ""
}

func containsWord(haystack, needle string) bool {
	idx := 0
	for {
		pos := strings.Index(haystack[idx:], needle)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(needle)
		beforeOK := start == 0 || !isWordByte(haystack[start-1])
		afterOK := end == len(haystack) || !isWordByte(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = end
	}
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// applyBrandPrefixFilter rewrites exact-equality filters on the coded
// vehicle_type column to a prefix match on the segment before '-',
// bound to the brand detected in the question.
func applyBrandPrefixFilter(in SanitizeInput) string {
	brand := DetectBrand(in.Question)
	if brand == "" {
		return in.Query
	}
	return vehicleTypeEquality.ReplaceAllString(in.Query, "SUBSTRING_INDEX($1, '-', 1) = '"+brand+"'")
}

// applyCountDistinctVehicles promotes a bare COUNT(*) to a distinct
// count on the vehicle number, but only when the query joins
// customer_vehicle_info and row duplication is actually possible.
func applyCountDistinctVehicles(in SanitizeInput) string {
	lower := strings.ToLower(in.Query)
	if !strings.Contains(lower, "join") || !strings.Contains(lower, "customer_vehicle_info") {
		return in.Query
	}
	return bareCountPattern.ReplaceAllString(in.Query, "COUNT(DISTINCT cv.customer_vehicle_number)")
}
