package utils

import (
	"net/url"
	"strings"
)

// ParseQueryList handles both repeated and comma-separated query params.
// Blank entries are dropped.
// Example:
//
//	?type=wire,turns         → ["wire","turns"]
//	?type=wire&type=turns    → ["wire","turns"]
func ParseQueryList(q url.Values, key string) []string {
	values := q[key]
	if len(values) == 0 {
		return nil
	}

	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				cleaned = append(cleaned, part)
			}
		}
	}
	return cleaned
}
