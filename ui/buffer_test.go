package ui

import (
	"testing"
	"time"
)

func TestBoundedEventBufferEvictsOldest(t *testing.T) {
	buf := NewBoundedEventBuffer("events", 2, 0, DropPolicy{MaxMessageBytes: 0, EvictOnByteLimit: true}, nil)
	buf.Append(StyledEvent{Timestamp: time.Unix(1, 0), Kind: EventStream, Message: "a"})
	buf.Append(StyledEvent{Timestamp: time.Unix(2, 0), Kind: EventStream, Message: "b"})
	buf.Append(StyledEvent{Timestamp: time.Unix(3, 0), Kind: EventStream, Message: "c"})

	snap := buf.SnapshotInto(nil)
	if len(snap.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(snap.Events))
	}
	if snap.Events[0].Message != "b" || snap.Events[1].Message != "c" {
		t.Fatalf("unexpected order: %+v", snap.Events)
	}
}

func TestBoundedEventBufferMaxMessageDrop(t *testing.T) {
	buf := NewBoundedEventBuffer("events", 2, 0, DropPolicy{MaxMessageBytes: 3, EvictOnByteLimit: true, LogDrops: false}, nil)
	if ok := buf.Append(StyledEvent{Timestamp: time.Now(), Kind: EventStream, Message: "abcd"}); ok {
		t.Fatalf("expected oversized message drop")
	}
	drops := buf.DropSnapshot()
	if drops.Oversized != 1 {
		t.Fatalf("expected oversized drop count 1, got %d", drops.Oversized)
	}
}

func TestBoundedEventBufferByteLimitReject(t *testing.T) {
	buf := NewBoundedEventBuffer("events", 10, 4, DropPolicy{MaxMessageBytes: 0, EvictOnByteLimit: false, LogDrops: false}, nil)
	if ok := buf.Append(StyledEvent{Timestamp: time.Now(), Kind: EventStream, Message: "abcd"}); !ok {
		t.Fatalf("expected first append to succeed")
	}
	if ok := buf.Append(StyledEvent{Timestamp: time.Now(), Kind: EventStream, Message: "ef"}); ok {
		t.Fatalf("expected byte limit drop")
	}
	drops := buf.DropSnapshot()
	if drops.ByteLimit != 1 {
		t.Fatalf("expected byte limit drop count 1, got %d", drops.ByteLimit)
	}
}

func TestBoundedEventBufferLogsDropsOncePerInterval(t *testing.T) {
	var logged int
	buf := NewBoundedEventBuffer("events", 4, 0, DropPolicy{MaxMessageBytes: 2, LogDrops: true}, func(string, ...any) { logged++ })
	for i := 0; i < 5; i++ {
		buf.Append(StyledEvent{Kind: EventMessage, Message: "too long"})
	}
	if logged != 1 {
		t.Fatalf("expected one drop log line, got %d", logged)
	}
	if buf.DropSnapshot().Oversized != 5 {
		t.Fatalf("expected every drop counted, got %d", buf.DropSnapshot().Oversized)
	}
}
