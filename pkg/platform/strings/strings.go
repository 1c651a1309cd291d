// Package strings holds the small text helpers shared by request parsing and configuration.
package strings

import "strings"

// TrimStrings trims surrounding whitespace in place.
func TrimStrings(ss ...*string) {
	for _, s := range ss {
		*s = strings.TrimSpace(*s)
	}
}

// SplitList splits a comma-separated value and passes the parts through DedupeAndTrim.
func SplitList(value string) []string {
	return DedupeAndTrim(strings.Split(value, ","))
}

// DedupeAndTrim trims every element and drops empties and repeats, keeping first-seen order.
func DedupeAndTrim(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
