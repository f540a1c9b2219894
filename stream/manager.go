// Package stream maintains the dashboard's server-sent event subscriptions.
// Each named stream is read by one goroutine; payloads are handed to the
// registered handler in arrival order, and any transport failure schedules a
// single reconnect after a fixed delay.
package stream

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"dockdash/clock"
	"dockdash/internal/ratelimit"
)

// ErrClosed is returned by Open after CloseAll.
var ErrClosed = errors.New("stream: manager closed")

// DefaultReconnectDelay is the fixed wait between a failure and the next attempt.
const DefaultReconnectDelay = 5 * time.Second

// State is the connection state of one subscription.
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Message is one payload received on a stream.
type Message struct {
	Stream     string
	Event      string
	Data       []byte
	ReceivedAt time.Time
}

// Handler consumes messages for one stream. It runs on the stream's reader
// goroutine and must not call CloseAll.
type Handler func(Message)

// Options configures a Manager.
type Options struct {
	HTTPClient     *http.Client
	URLFor         func(name string) string
	UserAgent      string
	ReconnectDelay time.Duration
	MaxEventBytes  int
	Clock          clock.Clock
	// ErrorLogInterval throttles repeated failure logs per stream.
	ErrorLogInterval time.Duration
	// OnState observes every state transition; err is set for StateClosed.
	OnState func(name string, state State, err error)
}

// Manager owns every open subscription.
type Manager struct {
	opts    Options
	errLogs *ratelimit.Keyed

	mu     sync.Mutex
	subs   map[string]*Subscription
	closed bool
}

// NewManager builds a Manager. URLFor is required.
func NewManager(opts Options) *Manager {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	return &Manager{
		opts:    opts,
		errLogs: ratelimit.NewKeyed(opts.ErrorLogInterval),
		subs:    make(map[string]*Subscription),
	}
}

// Open subscribes to name and starts connecting immediately. Opening a name
// that is already open replaces the previous subscription.
func (m *Manager) Open(name string, handler Handler) (*Subscription, error) {
	if handler == nil {
		return nil, fmt.Errorf("stream %s: nil handler", name)
	}
	if m.opts.URLFor == nil {
		return nil, fmt.Errorf("stream %s: no URL resolver configured", name)
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	prev := m.subs[name]
	sub := &Subscription{
		name:    name,
		url:     m.opts.URLFor(name),
		handler: handler,
		mgr:     m,
		state:   StateClosed,
	}
	m.subs[name] = sub
	m.mu.Unlock()

	if prev != nil {
		prev.close()
	}
	sub.connect()
	return sub, nil
}

// Subscription returns the current subscription for name, if any.
func (m *Manager) Subscription(name string) *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subs[name]
}

// Active lists subscribed stream names, sorted.
func (m *Manager) Active() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.subs))
	for name := range m.subs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CloseAll cancels every connection and pending reconnect. Once it returns no
// handler runs again and no reconnect fires. Safe to call more than once.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	m.closed = true
	subs := make([]*Subscription, 0, len(m.subs))
	for _, sub := range m.subs {
		subs = append(subs, sub)
	}
	m.subs = make(map[string]*Subscription)
	m.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}
}

// Subscription is one named stream with its current connection handle.
type Subscription struct {
	name    string
	url     string
	handler Handler
	mgr     *Manager

	mu         sync.Mutex
	state      State
	generation uint64
	cancel     context.CancelFunc
	timer      clock.Timer
	closed     bool
	wg         sync.WaitGroup

	attempts   atomic.Uint64
	reconnects atomic.Uint64
	delivered  atomic.Uint64
}

// Name returns the stream name.
func (s *Subscription) Name() string { return s.name }

// State returns the current connection state.
func (s *Subscription) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Attempts counts connection attempts, including the first.
func (s *Subscription) Attempts() uint64 { return s.attempts.Load() }

// Reconnects counts reconnects scheduled after failures.
func (s *Subscription) Reconnects() uint64 { return s.reconnects.Load() }

// Delivered counts messages handed to the handler.
func (s *Subscription) Delivered() uint64 { return s.delivered.Load() }

func (s *Subscription) connect() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.generation++
	gen := s.generation
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.state = StateConnecting
	s.wg.Add(1)
	s.mu.Unlock()

	s.attempts.Add(1)
	s.notify(StateConnecting, nil)
	go s.run(ctx, gen)
}

func (s *Subscription) run(ctx context.Context, gen uint64) {
	defer s.wg.Done()
	err := s.read(ctx, gen)
	if ctx.Err() != nil {
		return
	}
	s.fail(gen, err)
}

func (s *Subscription) read(ctx context.Context, gen uint64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if ua := s.mgr.opts.UserAgent; ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	resp, err := s.mgr.opts.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if !s.transition(gen, StateOpen) {
		return nil
	}
	s.notify(StateOpen, nil)

	scanner := NewScanner(resp.Body, s.mgr.opts.MaxEventBytes)
	for scanner.Next() {
		if ctx.Err() != nil || !s.current(gen) {
			return nil
		}
		ev := scanner.Event()
		s.delivered.Add(1)
		s.handler(Message{
			Stream:     s.name,
			Event:      ev.Type,
			Data:       []byte(ev.Data),
			ReceivedAt: s.mgr.opts.Clock.Now(),
		})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read: %w", err)
	}
	return errors.New("stream ended")
}

func (s *Subscription) transition(gen uint64, state State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.generation {
		return false
	}
	s.state = state
	return true
}

func (s *Subscription) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && gen == s.generation
}

// fail marks the handle closed and schedules exactly one reconnect.
func (s *Subscription) fail(gen uint64, err error) {
	delay := s.mgr.opts.ReconnectDelay
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	scheduled := false
	if s.timer == nil {
		s.timer = s.mgr.opts.Clock.AfterFunc(delay, s.connect)
		scheduled = true
	}
	s.mu.Unlock()

	if scheduled {
		s.reconnects.Add(1)
	}
	if total, ok := s.mgr.errLogs.Inc(s.name); ok {
		log.Printf("Stream %s: %v (reconnecting in %s, failures=%d)", s.name, err, delay, total)
	}
	s.notify(StateClosed, err)
}

func (s *Subscription) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.state = StateClosed
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Subscription) notify(state State, err error) {
	if fn := s.mgr.opts.OnState; fn != nil {
		fn(s.name, state, err)
	}
}
