// Package suggest turns keystrokes in one ingredient name field into catalog
// suggestions: it waits for a quiet period, issues at most one search at a
// time, and never lets an older response overwrite a newer one.
package suggest

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/heartmarshall/mealink-backend/internal/domain"
)

// DefaultQuietPeriod is the time without keystrokes before a search is sent.
const DefaultQuietPeriod = 300 * time.Millisecond

// State of a Debouncer.
type State int

const (
	Idle State = iota
	Pending
	InFlight
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case InFlight:
		return "in_flight"
	}
	return "idle"
}

// Searcher runs one catalog search for a normalized keyword.
type Searcher interface {
	Search(ctx context.Context, keyword string) ([]domain.Ingredient, error)
}

// SearchFunc adapts a function to Searcher.
type SearchFunc func(ctx context.Context, keyword string) ([]domain.Ingredient, error)

// Search implements Searcher.
func (f SearchFunc) Search(ctx context.Context, keyword string) ([]domain.Ingredient, error) {
	return f(ctx, keyword)
}

// Event is published whenever the suggestion list changes or a search fails.
// On failure Err is set and Suggestions holds the unchanged previous list.
type Event struct {
	Query       string
	Suggestions []domain.Ingredient
	Err         error
}

type searchMetrics interface {
	SearchIssued()
	SearchCancelled()
	SearchFailed()
}

// Option configures a Debouncer.
type Option func(*Debouncer)

// WithClock replaces the real clock, mainly for tests.
func WithClock(c clockwork.Clock) Option {
	return func(d *Debouncer) { d.clock = c }
}

// WithQuietPeriod overrides DefaultQuietPeriod. Non-positive values are ignored.
func WithQuietPeriod(p time.Duration) Option {
	return func(d *Debouncer) {
		if p > 0 {
			d.quiet = p
		}
	}
}

// WithHandler sets the event callback. It is invoked with the debouncer's
// lock held, so events arrive in keystroke order; it must not call back into
// the Debouncer.
func WithHandler(h func(Event)) Option {
	return func(d *Debouncer) { d.handler = h }
}

// WithMetrics records issued, cancelled and failed searches.
func WithMetrics(m searchMetrics) Option {
	return func(d *Debouncer) { d.metrics = m }
}

// Debouncer owns the pending search of a single input field.
// It is safe for concurrent use.
type Debouncer struct {
	searcher Searcher
	clock    clockwork.Clock
	quiet    time.Duration
	handler  func(Event)
	metrics  searchMetrics

	root       context.Context
	rootCancel context.CancelFunc
	wg         sync.WaitGroup

	mu          sync.Mutex
	gen         uint64
	state       State
	timer       clockwork.Timer
	cancel      context.CancelFunc
	suggestions []domain.Ingredient
	closed      bool
}

// New creates a Debouncer that searches through s.
func New(s Searcher, opts ...Option) *Debouncer {
	root, cancel := context.WithCancel(context.Background())
	d := &Debouncer{
		searcher:   s,
		clock:      clockwork.NewRealClock(),
		quiet:      DefaultQuietPeriod,
		root:       root,
		rootCancel: cancel,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// InputChanged handles one keystroke carrying the field's full text.
// Any scheduled or running search is abandoned. Blank text publishes an empty
// list at once; anything else schedules a search after the quiet period.
func (d *Debouncer) InputChanged(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	d.gen++
	d.abortLocked()

	query := domain.NormalizeName(text)
	if query == "" {
		d.suggestions = nil
		d.state = Idle
		d.emitLocked(Event{Suggestions: []domain.Ingredient{}})
		return
	}

	gen := d.gen
	d.state = Pending
	d.timer = d.clock.AfterFunc(d.quiet, func() { d.fire(gen, query) })
}

// Clear abandons any pending work and publishes an empty list. It is used
// when the user picks a suggestion.
func (d *Debouncer) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	d.gen++
	d.abortLocked()
	d.suggestions = nil
	d.state = Idle
	d.emitLocked(Event{Suggestions: []domain.Ingredient{}})
}

// Close cancels pending work and waits for a running search to return.
// Further calls are ignored.
func (d *Debouncer) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.gen++
	d.abortLocked()
	d.state = Idle
	d.mu.Unlock()

	d.rootCancel()
	d.wg.Wait()
}

// Suggestions returns the current suggestion list.
func (d *Debouncer) Suggestions() []domain.Ingredient {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.suggestionsLocked()
}

// State returns the current state.
func (d *Debouncer) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Debouncer) abortLocked() {
	if d.timer != nil {
		if d.timer.Stop() && d.metrics != nil {
			d.metrics.SearchCancelled()
		}
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
		if d.metrics != nil {
			d.metrics.SearchCancelled()
		}
	}
}

func (d *Debouncer) emitLocked(ev Event) {
	if d.handler != nil {
		d.handler(ev)
	}
}

func (d *Debouncer) fire(gen uint64, query string) {
	d.mu.Lock()
	if d.closed || gen != d.gen {
		d.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(d.root)
	d.timer = nil
	d.cancel = cancel
	d.state = InFlight
	d.wg.Add(1)
	d.mu.Unlock()

	defer d.wg.Done()
	defer cancel()

	if d.metrics != nil {
		d.metrics.SearchIssued()
	}
	found, err := d.searcher.Search(ctx, query)

	d.mu.Lock()
	defer d.mu.Unlock()

	// Superseded while in flight: the newer keystroke owns the field now.
	if d.closed || gen != d.gen {
		return
	}

	d.cancel = nil
	d.state = Idle

	if err != nil {
		if d.metrics != nil {
			d.metrics.SearchFailed()
		}
		d.emitLocked(Event{Query: query, Suggestions: d.suggestionsLocked(), Err: err})
		return
	}

	if found == nil {
		found = []domain.Ingredient{}
	}
	d.suggestions = found
	d.emitLocked(Event{Query: query, Suggestions: d.suggestionsLocked()})
}

func (d *Debouncer) suggestionsLocked() []domain.Ingredient {
	out := make([]domain.Ingredient, len(d.suggestions))
	copy(out, d.suggestions)
	return out
}
