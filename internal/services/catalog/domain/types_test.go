package domain

import (
	"testing"
	"time"

	"curator/internal/core/eventlog"
)

func TestTroubledLatestMarkWins(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mark := func(tag eventlog.Tag, h int) eventlog.Event {
		return eventlog.Event{Type: tag, At: t0.Add(time.Duration(h) * time.Hour)}
	}
	cases := []struct {
		name   string
		stored bool
		events []eventlog.Event
		want   bool
	}{
		{"stored flag only", true, nil, true},
		{"marked troubled", false, []eventlog.Event{mark(eventlog.Troubled, 1)}, true},
		{"cleared later", true, []eventlog.Event{mark(eventlog.Troubled, 1), mark(eventlog.NotTroubled, 2)}, false},
		{"troubled again", false, []eventlog.Event{mark(eventlog.NotTroubled, 1), mark(eventlog.Troubled, 2)}, true},
		{"unrelated events", false, []eventlog.Event{mark(eventlog.GeneMapping, 1)}, false},
	}
	for _, tc := range cases {
		if got := Troubled(Entity{Troubled: tc.stored}, eventlog.FromEvents(tc.events)); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
	if !Troubled(Entity{Troubled: true}, nil) {
		t.Fatalf("nil history should fall back to the stored flag")
	}
}

func TestIsChild(t *testing.T) {
	p := int64(4)
	if (Entity{}).IsChild() || !(Entity{MergedInto: &p}).IsChild() || !(Entity{SubsumedBy: &p}).IsChild() {
		t.Fatalf("IsChild mismatch")
	}
}
