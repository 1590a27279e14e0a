package mqbroker

import (
	"testing"

	"github.com/gonzalop/mqbroker/internal/packets"
)

func TestSubscriptionTableAddAndMatch(t *testing.T) {
	table := NewSubscriptionTable()
	table.Add("sensors/temp", packets.SubscriptionOptions{QoS: 0}, 0, false)

	if !table.Matches("sensors/temp") {
		t.Fatal("expected exact match on stored filter")
	}
	if table.Matches("sensors/other") {
		t.Fatal("unexpected match on unrelated topic")
	}
	if table.Matches("sensors/+") {
		t.Fatal("Matches takes a literal topic name, not a filter; wildcard string must not match")
	}
}

func TestSubscriptionTableHasFilter(t *testing.T) {
	table := NewSubscriptionTable()
	if table.HasFilter("a/b") {
		t.Fatal("empty table should not have any filter")
	}
	table.Add("a/b", packets.SubscriptionOptions{}, 0, false)
	if !table.HasFilter("a/b") {
		t.Fatal("expected filter to be present after Add")
	}
}

func TestSubscriptionTableAddReplacesExisting(t *testing.T) {
	table := NewSubscriptionTable()
	replaced := table.Add("a/b", packets.SubscriptionOptions{QoS: 0}, 0, false)
	if replaced {
		t.Fatal("first Add should report no replacement")
	}
	replaced = table.Add("a/b", packets.SubscriptionOptions{QoS: 0, NoLocal: true}, 0, false)
	if !replaced {
		t.Fatal("second Add to the same filter should report a replacement")
	}
	if table.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after replacing the same filter", table.Len())
	}
}

func TestSubscriptionTableLen(t *testing.T) {
	table := NewSubscriptionTable()
	table.Add("a", packets.SubscriptionOptions{}, 0, false)
	table.Add("b", packets.SubscriptionOptions{}, 0, false)
	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}
}

func TestIsSharedFilter(t *testing.T) {
	cases := map[string]bool{
		"$share/group/topic": true,
		"topic/filter":       false,
		"$SYS/broker/uptime": false,
	}
	for filter, want := range cases {
		if got := isSharedFilter(filter); got != want {
			t.Errorf("isSharedFilter(%q) = %v, want %v", filter, got, want)
		}
	}
}

func TestHasWildcard(t *testing.T) {
	cases := map[string]bool{
		"a/+/c": true,
		"a/#":   true,
		"a/b/c": false,
		"":      false,
	}
	for filter, want := range cases {
		if got := hasWildcard(filter); got != want {
			t.Errorf("hasWildcard(%q) = %v, want %v", filter, got, want)
		}
	}
}
