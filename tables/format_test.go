package tables

import (
	"strings"
	"testing"
	"time"

	"dockdash/api"
	"dockdash/reconcile"
)

func TestConvertBytes(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0.00 MB"},
		{1048576, "1.00 MB"},
		{1572864, "1.50 MB"},
		{1073741823, "1024.00 MB"},
		{1073741824, "1.00 GB"},
		{2.5 * 1073741824, "2.50 GB"},
	}
	for _, tc := range cases {
		if got := ConvertBytes(tc.in); got != tc.want {
			t.Fatalf("ConvertBytes(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStatusTone(t *testing.T) {
	cases := map[string]reconcile.Tone{
		"running":      reconcile.ToneSuccess,
		"paused":       reconcile.ToneWarning,
		"exited":       reconcile.ToneDanger,
		"created":      reconcile.ToneSecondary,
		"Up 3 minutes": reconcile.ToneSecondary,
		"":             reconcile.ToneSecondary,
	}
	for in, want := range cases {
		if got := StatusTone(in); got != want {
			t.Fatalf("StatusTone(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPortBindingsOnlyPublishedWildcard(t *testing.T) {
	ports := []api.Port{
		{IP: "0.0.0.0", PrivatePort: 80, PublicPort: 8080, Type: "tcp"},
		{IP: "::", PrivatePort: 80, PublicPort: 8080, Type: "tcp"},
		{PrivatePort: 443, Type: "tcp"},
		{IP: "0.0.0.0", PrivatePort: 5432, PublicPort: 15432, Type: "tcp"},
	}
	if got := PortBindings(ports); got != "8080:80 15432:5432" {
		t.Fatalf("unexpected bindings %q", got)
	}
	if got := PortBindings(nil); got != "" {
		t.Fatalf("expected empty bindings, got %q", got)
	}
}

func TestSmallFormatters(t *testing.T) {
	if got := ShortID("0123456789abcdef"); got != "0123456789ab" {
		t.Fatalf("ShortID = %q", got)
	}
	if got := ShortID("abc"); got != "abc" {
		t.Fatalf("ShortID short = %q", got)
	}
	if got := ImageName("nginx:1.25"); got != "nginx" {
		t.Fatalf("ImageName = %q", got)
	}
	if got := ImageName("redis"); got != "redis" {
		t.Fatalf("ImageName untagged = %q", got)
	}
	if got := Percent(12.34567); got != "12.346 %" {
		t.Fatalf("Percent = %q", got)
	}
	if got := CreatedDate(0); got != "" {
		t.Fatalf("CreatedDate(0) = %q", got)
	}
	if got := CreatedDate(1700000000); len(got) != len("2006-01-02") {
		t.Fatalf("CreatedDate = %q", got)
	}
}

func TestNewToast(t *testing.T) {
	now := time.Unix(1700000600, 0)
	toast := NewToast(api.ServerMessage{Category: "Success", Text: "pulled", TimeSent: 1700000000}, now)
	if toast.Tone != reconcile.ToneSuccess {
		t.Fatalf("expected success tone, got %v", toast.Tone)
	}
	if !strings.Contains(toast.Header, "10 minutes ago") {
		t.Fatalf("expected humanized age in header, got %q", toast.Header)
	}
	if toast.Body != "pulled" {
		t.Fatalf("unexpected body %q", toast.Body)
	}

	errToast := NewToast(api.ServerMessage{Category: "error", Text: "boom", TimeSent: 1700000000}, now)
	if errToast.Tone != reconcile.ToneDanger {
		t.Fatalf("expected danger tone, got %v", errToast.Tone)
	}
	info := NewToast(api.ServerMessage{Category: "info", Text: "hi"}, now)
	if info.Tone != reconcile.ToneSecondary || !strings.HasSuffix(info.Header, "now") {
		t.Fatalf("unexpected info toast %+v", info)
	}
}
