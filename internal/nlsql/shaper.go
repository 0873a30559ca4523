package nlsql

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const noDataMessage = "No relevant data found."

// Shaped pairs the raw result payload with its natural-language
// rendering; callers may use either.
type Shaped struct {
	RawAnswer     any    `json:"raw_answer"`
	HumanReadable string `json:"human_readable"`
}

// ShapeResponse renders the executor's terminal result. Pure; cases in
// priority order: captured error, empty result, single scalar, single
// row, row list.
func ShapeResponse(result Result, hasError bool) Shaped {
	if hasError {
		return Shaped{
			RawAnswer:     map[string]string{"error": result.Message},
			HumanReadable: "An error occurred: " + result.Message,
		}
	}

	if len(result.Rows) == 0 {
		return Shaped{
			RawAnswer:     []Row{},
			HumanReadable: noDataMessage,
		}
	}

	if len(result.Rows) == 1 && len(result.Columns) == 1 {
		column := result.Columns[0]
		label := strings.ReplaceAll(column, "_", " ")
		value := formatValue(result.Rows[0][column])
		return Shaped{
			RawAnswer:     result.Rows,
			HumanReadable: fmt.Sprintf("The %s is **%s**.", label, value),
		}
	}

	if len(result.Rows) == 1 {
		return Shaped{
			RawAnswer:     result.Rows,
			HumanReadable: strings.Join(renderFields(result.Rows[0], result.Columns), "\n"),
		}
	}

	var b strings.Builder
	for i, row := range result.Rows {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strconv.Itoa(i+1) + ". ")
		b.WriteString(strings.Join(renderFields(row, result.Columns), ", "))
	}
	return Shaped{
		RawAnswer:     result.Rows,
		HumanReadable: b.String(),
	}
}

func renderFields(row Row, columns []string) []string {
	fields := make([]string, 0, len(columns))
	for _, column := range columns {
		fields = append(fields, titleCase(strings.ReplaceAll(column, "_", " "))+": "+formatValue(row[column]))
	}
	return fields
}

// formatValue renders numbers with two decimal places and thousands
// separators; everything else is rendered verbatim. MySQL decimals
// arrive as strings and are parsed before formatting.
func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case float64:
		return formatNumber(v)
	case float32:
		return formatNumber(float64(v))
	case int:
		return formatNumber(float64(v))
	case int32:
		return formatNumber(float64(v))
	case int64:
		return formatNumber(float64(v))
	case uint64:
		return formatNumber(float64(v))
	case string:
		trimmed := strings.TrimSpace(v)
		// ParseFloat also accepts "Inf" and "NaN"; those are text here.
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil && trimmed != "" && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return formatNumber(f)
		}
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatNumber(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	formatted := strconv.FormatFloat(f, 'f', 2, 64)

	sign := ""
	if strings.HasPrefix(formatted, "-") {
		sign = "-"
		formatted = formatted[1:]
	}

	parts := strings.SplitN(formatted, ".", 2)
	whole := parts[0]

	var b strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	return sign + b.String() + "." + parts[1]
}

func titleCase(value string) string {
	words := strings.Fields(value)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
