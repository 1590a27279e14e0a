package mqbroker

import (
	"sync"

	"github.com/gonzalop/mqbroker/internal/packets"
)

// subscription is one entry in a Subscription Table: the options negotiated
// for a filter plus an optional subscription identifier.
type subscription struct {
	options packets.SubscriptionOptions
	id      int
	hasID   bool
}

// SubscriptionTable is the per-Session mapping from topic filter to
// subscription options. Matching is exact-string equality only: wildcard
// and shared-subscription filters are rejected before they ever reach
// Add, by the SUBSCRIBE control handler.
//
// A Session's table is mutated only by the Command Loop (on SUBSCRIBE) and
// read only by the Command Loop (on PUBLISH fan-out), but it
// carries its own mutex so a future observability hook can read it safely
// from another goroutine without waiting on the Command Loop.
type SubscriptionTable struct {
	mu      sync.Mutex
	filters map[string]subscription
}

// NewSubscriptionTable returns an empty Subscription Table.
func NewSubscriptionTable() *SubscriptionTable {
	return &SubscriptionTable{filters: make(map[string]subscription)}
}

// Add inserts or replaces the entry for filter. It reports whether an
// existing entry was replaced.
func (t *SubscriptionTable) Add(filter string, options packets.SubscriptionOptions, subscriptionID int, hasID bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, replaced := t.filters[filter]
	t.filters[filter] = subscription{options: options, id: subscriptionID, hasID: hasID}
	return replaced
}

// HasFilter reports whether filter is present verbatim.
func (t *SubscriptionTable) HasFilter(filter string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.filters[filter]
	return ok
}

// Matches reports whether any stored filter equals topicName exactly.
func (t *SubscriptionTable) Matches(topicName string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.filters[topicName]
	return ok
}

// Len returns the number of distinct filters currently stored.
func (t *SubscriptionTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.filters)
}
