// Package strings parses the comma separated lists used in configuration.
package strings

import (
	"strings"
)

// SplitList splits s on sep, trims each element, and drops empty and repeated
// elements. Order is preserved and the result is nil when nothing remains.
//
// Example:
//
//	SplitList(" k1:9092, k2:9092 ,,k1:9092", ",")
//	// Returns: []string{"k1:9092", "k2:9092"}
func SplitList(s, sep string) []string {
	var result []string
	seen := make(map[string]struct{})
	for _, v := range strings.Split(s, sep) {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
