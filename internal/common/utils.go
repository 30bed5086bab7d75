package common

import "strings"

// ContainsFold reports whether s contains any of subs, ignoring case.
func ContainsFold(s string, subs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if sub != "" && strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
