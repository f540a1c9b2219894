// Package tables defines the column schemas of the dashboard tables and the
// display formatters they share.
package tables

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"dockdash/api"
	"dockdash/reconcile"

	"github.com/dustin/go-humanize"
)

const (
	bytesPerMB = 1048576
	mbPerGB    = 1024
)

// StatusTone maps a container state or status string onto a badge tone.
func StatusTone(status string) reconcile.Tone {
	switch status {
	case "running":
		return reconcile.ToneSuccess
	case "paused":
		return reconcile.ToneWarning
	case "exited":
		return reconcile.ToneDanger
	default:
		return reconcile.ToneSecondary
	}
}

// ConvertBytes renders a byte count as "X.XX MB", switching to "X.XX GB" from
// one gigabyte up.
func ConvertBytes(n float64) string {
	mb := n / bytesPerMB
	gb := mb / mbPerGB
	if gb < 1 {
		return strconv.FormatFloat(mb, 'f', 2, 64) + " MB"
	}
	return strconv.FormatFloat(gb, 'f', 2, 64) + " GB"
}

// Percent renders a percentage with three decimals.
func Percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64) + " %"
}

// ShortID truncates a Docker id to the 12 characters the CLI shows.
func ShortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12]
}

// PortBindings lists published ports bound on every interface as
// "public:private", one per binding.
func PortBindings(ports []api.Port) string {
	parts := make([]string, 0, len(ports))
	for _, p := range ports {
		if p.PublicPort == 0 || p.IP != "0.0.0.0" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d:%d", p.PublicPort, p.PrivatePort))
	}
	return strings.Join(parts, " ")
}

// ImageName strips the tag from a repository reference.
func ImageName(name string) string {
	if idx := strings.Index(name, ":"); idx >= 0 {
		return name[:idx]
	}
	return name
}

// CreatedDate renders a unix timestamp as a local calendar date.
func CreatedDate(unix int64) string {
	if unix <= 0 {
		return ""
	}
	return time.Unix(unix, 0).Local().Format("2006-01-02")
}

// Toast is a rendered server message.
type Toast struct {
	Tone   reconcile.Tone
	Header string
	Body   string
	Sent   time.Time
}

// NewToast renders msg relative to now. Success and error categories get
// their own tones; anything else is secondary.
func NewToast(msg api.ServerMessage, now time.Time) Toast {
	sent := time.Unix(msg.TimeSent, 0)
	tone := reconcile.ToneSecondary
	switch strings.ToLower(msg.Category) {
	case "success":
		tone = reconcile.ToneSuccess
	case "error":
		tone = reconcile.ToneDanger
	}
	age := humanize.RelTime(sent, now, "ago", "from now")
	if msg.TimeSent <= 0 {
		age = "now"
	}
	return Toast{
		Tone:   tone,
		Header: fmt.Sprintf("%s · %s", msg.Category, age),
		Body:   msg.Text,
		Sent:   sent,
	}
}

// String renders the toast on a single line for logs and the events page.
func (t Toast) String() string {
	return t.Header + ": " + t.Body
}
