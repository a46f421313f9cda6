package app

import "strings"

const maxTracedQueryLength = 512

// formatDBQueryForTrace collapses runs of whitespace so multi-line SQL reads
// as a single line in span attributes, truncating oversized statements.
func formatDBQueryForTrace(query string) string {
	normalized := strings.Join(strings.Fields(query), " ")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}

	return normalized[:maxTracedQueryLength] + "..."
}
