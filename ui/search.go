package ui

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"

	"dockdash/clock"

	"github.com/agnivade/levenshtein"
)

// SearchFilter debounces query updates so typing does not rebuild tables on
// every keystroke.
type SearchFilter struct {
	mu          sync.RWMutex
	query       string
	activeQuery string
	timer       clock.Timer
	clock       clock.Clock
	ctx         context.Context
	onChange    func()
}

const (
	searchDebounce = 250 * time.Millisecond
	// fuzzyMinLen keeps short queries from matching almost anything.
	fuzzyMinLen   = 4
	fuzzyMaxEdits = 2
)

func NewSearchFilter(ctx context.Context, clk clock.Clock) *SearchFilter {
	if clk == nil {
		clk = clock.Real()
	}
	return &SearchFilter{ctx: ctx, clock: clk}
}

func (s *SearchFilter) SetQuery(query string, onChange func()) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.query = strings.ToLower(strings.TrimSpace(query))
	s.onChange = onChange
	if s.ctx != nil && s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = s.clock.AfterFunc(searchDebounce, s.fire)
	s.mu.Unlock()
}

func (s *SearchFilter) ActiveQuery() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeQuery
}

// Match reports whether text satisfies the active query.
func (s *SearchFilter) Match(text string) bool {
	return matchQuery(s.ActiveQuery(), text)
}

func (s *SearchFilter) Stop() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
}

func (s *SearchFilter) fire() {
	if s == nil {
		return
	}
	if s.ctx != nil && s.ctx.Err() != nil {
		return
	}
	var cb func()
	s.mu.Lock()
	s.activeQuery = s.query
	cb = s.onChange
	s.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// matchQuery matches a lowercase query against text: a plain substring, or
// for longer queries any word of text within fuzzyMaxEdits edits.
func matchQuery(query, text string) bool {
	if query == "" {
		return true
	}
	lower := strings.ToLower(text)
	if strings.Contains(lower, query) {
		return true
	}
	if len(query) < fuzzyMinLen {
		return false
	}
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return unicode.IsSpace(r) || r == '/' || r == ':' || r == ',' || r == '|'
	})
	for _, word := range words {
		if levenshtein.ComputeDistance(query, word) <= fuzzyMaxEdits {
			return true
		}
	}
	return false
}
