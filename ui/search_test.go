package ui

import (
	"context"
	"testing"
	"time"

	"dockdash/clock"
)

func TestSearchFilterDebounce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fake := clock.NewFake(time.Unix(0, 0))
	filter := NewSearchFilter(ctx, fake)

	var fired int
	filter.SetQuery("Te", func() { fired++ })
	fake.Advance(200 * time.Millisecond)
	filter.SetQuery("Test", func() { fired++ })
	fake.Advance(200 * time.Millisecond)
	if got := filter.ActiveQuery(); got != "" {
		t.Fatalf("expected query to stay pending, got %q", got)
	}
	fake.Advance(50 * time.Millisecond)
	if got := filter.ActiveQuery(); got != "test" {
		t.Fatalf("expected active query 'test', got %q", got)
	}
	if fired != 1 {
		t.Fatalf("expected one debounced callback, got %d", fired)
	}
}

func TestSearchFilterIgnoresUpdatesAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fake := clock.NewFake(time.Unix(0, 0))
	filter := NewSearchFilter(ctx, fake)
	cancel()
	filter.SetQuery("nginx", nil)
	fake.Advance(time.Second)
	if filter.ActiveQuery() != "" {
		t.Fatalf("expected cancelled filter to ignore queries")
	}
}

func TestMatchQuery(t *testing.T) {
	cases := []struct {
		query, text string
		want        bool
	}{
		{"", "anything", true},
		{"ngin", "nginx:latest", true},
		{"postgres", "web postgress running", true},
		{"redis", "memcached", false},
		{"rds", "redis", false},
		{"running", "/web | runing", true},
	}
	for _, tc := range cases {
		if got := matchQuery(tc.query, tc.text); got != tc.want {
			t.Fatalf("matchQuery(%q, %q) = %v, want %v", tc.query, tc.text, got, tc.want)
		}
	}
}
