package mqbroker

import "strings"

// isSharedFilter reports whether filter uses the "$share/<group>/..." shared
// subscription form. Shared subscriptions are a non-goal; the SUBSCRIBE
// handler uses this to reject them explicitly rather than silently
// mismatching them against the exact-match Subscription Table.
func isSharedFilter(filter string) bool {
	return strings.HasPrefix(filter, "$share/")
}

// hasWildcard reports whether filter contains a single-level ('+') or
// multi-level ('#') wildcard character. Wildcard subscriptions are a
// non-goal; this broker's Subscription Table only ever stores and matches
// filters by exact string equality.
func hasWildcard(filter string) bool {
	return strings.ContainsAny(filter, "+#")
}
