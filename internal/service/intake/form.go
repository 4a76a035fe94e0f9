// Package intake is the presentation-facing entry point for recording
// inventory: an editable list of rows, each with its own debounced ingredient
// suggestions, submitted as one ingestion.
package intake

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/mealink-backend/internal/domain"
	"github.com/heartmarshall/mealink-backend/internal/identity"
	"github.com/heartmarshall/mealink-backend/internal/service/inventory"
	"github.com/heartmarshall/mealink-backend/internal/service/suggest"
)

var (
	// ErrUnknownRow is returned for a row ID that is not on the form.
	ErrUnknownRow = errors.New("unknown row")
	// ErrSubmitInProgress is returned when Submit is called while another
	// submission is still running.
	ErrSubmitInProgress = errors.New("submit already in progress")
)

type catalogSearcher interface {
	Search(ctx context.Context, keyword string, requesterID uuid.UUID) ([]domain.Ingredient, error)
}

type ingester interface {
	Ingest(ctx context.Context, requesterID uuid.UUID, lines []domain.InventoryLine) (*inventory.Result, error)
}

// Deps are the collaborators of a Form.
type Deps struct {
	Identity  identity.Provider
	Catalog   catalogSearcher
	Inventory ingester

	// OnSuggestions receives every suggestion event of every row. It runs
	// while the row's debouncer is locked and must not call into the Form.
	OnSuggestions func(rowID uuid.UUID, ev suggest.Event)
}

// Row is a snapshot of one input row.
type Row struct {
	ID   uuid.UUID
	Line domain.InventoryLine
}

// RowEdit changes the non-name fields of a row. Nil fields are left as is.
type RowEdit struct {
	Quantity  *string
	Unit      *string
	Location  *domain.StorageLocation
	ExpiresAt *string
}

type row struct {
	id        uuid.UUID
	line      domain.InventoryLine
	debouncer *suggest.Debouncer
}

// Form holds the rows being entered. It is safe for concurrent use.
type Form struct {
	log         *slog.Logger
	deps        Deps
	suggestOpts []suggest.Option

	mu         sync.Mutex
	rows       []*row
	submitting bool
	closed     bool
}

// NewForm creates a form with one empty row. opts configure every row's
// debouncer (quiet period, clock, metrics).
func NewForm(logger *slog.Logger, deps Deps, opts ...suggest.Option) *Form {
	f := &Form{
		log:         logger.With("service", "intake"),
		deps:        deps,
		suggestOpts: opts,
	}
	f.rows = []*row{f.newRow()}
	return f
}

func (f *Form) newRow() *row {
	r := &row{id: uuid.New(), line: domain.InventoryLine{Location: domain.DefaultLocation}}

	opts := append([]suggest.Option{}, f.suggestOpts...)
	if f.deps.OnSuggestions != nil {
		id, cb := r.id, f.deps.OnSuggestions
		opts = append(opts, suggest.WithHandler(func(ev suggest.Event) { cb(id, ev) }))
	}
	r.debouncer = suggest.New(suggest.SearchFunc(f.search), opts...)
	return r
}

func (f *Form) search(ctx context.Context, keyword string) ([]domain.Ingredient, error) {
	if f.deps.Catalog == nil {
		return nil, domain.ErrBackendUnavailable
	}
	userID, ok := f.currentUser(ctx)
	if !ok {
		return nil, domain.ErrAuthRequired
	}
	return f.deps.Catalog.Search(ctx, keyword, userID)
}

func (f *Form) currentUser(ctx context.Context) (uuid.UUID, bool) {
	if f.deps.Identity == nil {
		return uuid.Nil, false
	}
	return f.deps.Identity.CurrentUserID(ctx)
}

func (f *Form) findLocked(id uuid.UUID) (int, *row) {
	for i, r := range f.rows {
		if r.id == id {
			return i, r
		}
	}
	return -1, nil
}

// Rows returns a snapshot of the rows in display order.
func (f *Form) Rows() []Row {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Row, len(f.rows))
	for i, r := range f.rows {
		out[i] = Row{ID: r.id, Line: r.line}
	}
	return out
}

// AddRow appends an empty row and returns its ID.
func (f *Form) AddRow() uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()

	r := f.newRow()
	f.rows = append(f.rows, r)
	return r.id
}

// RemoveRow deletes a row and stops its pending search.
func (f *Form) RemoveRow(id uuid.UUID) error {
	f.mu.Lock()
	i, r := f.findLocked(id)
	if r == nil {
		f.mu.Unlock()
		return ErrUnknownRow
	}
	f.rows = append(f.rows[:i], f.rows[i+1:]...)
	f.mu.Unlock()

	r.debouncer.Close()
	return nil
}

// EditRow updates quantity, unit, location or expiry of a row.
func (f *Form) EditRow(id uuid.UUID, edit RowEdit) error {
	if edit.Location != nil && *edit.Location != "" && !edit.Location.IsValid() {
		return domain.NewValidationError("location", "unknown location "+string(*edit.Location))
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	_, r := f.findLocked(id)
	if r == nil {
		return ErrUnknownRow
	}
	if edit.Quantity != nil {
		r.line.QuantityInput = *edit.Quantity
	}
	if edit.Unit != nil {
		r.line.UnitInput = *edit.Unit
	}
	if edit.Location != nil {
		r.line.Location = edit.Location.OrDefault()
	}
	if edit.ExpiresAt != nil {
		r.line.ExpiresAt = *edit.ExpiresAt
	}
	return nil
}

// InputChanged records new name text for a row and feeds its debouncer.
// Typing away from a picked suggestion drops the pick.
func (f *Form) InputChanged(id uuid.UUID, text string) error {
	f.mu.Lock()
	_, r := f.findLocked(id)
	if r == nil {
		f.mu.Unlock()
		return ErrUnknownRow
	}
	r.line.NameInput = text
	if sel := r.line.Selected; sel != nil && domain.NormalizeName(sel.Name) != domain.NormalizeName(text) {
		r.line.Selected = nil
	}
	d := r.debouncer
	f.mu.Unlock()

	d.InputChanged(text)
	return nil
}

// SuggestionPicked binds a row to a catalog entry: the entry's name replaces
// the typed text, its default unit fills a blank unit, and the row's
// suggestions are cleared.
func (f *Form) SuggestionPicked(id uuid.UUID, ing domain.Ingredient) error {
	f.mu.Lock()
	_, r := f.findLocked(id)
	if r == nil {
		f.mu.Unlock()
		return ErrUnknownRow
	}
	picked := ing
	r.line.Selected = &picked
	r.line.NameInput = ing.Name
	if ing.Unit != nil && *ing.Unit != "" && r.line.UnitInput == "" {
		r.line.UnitInput = *ing.Unit
	}
	d := r.debouncer
	f.mu.Unlock()

	d.Clear()
	return nil
}

// Suggestions returns the current suggestions of a row.
func (f *Form) Suggestions(id uuid.UUID) ([]domain.Ingredient, error) {
	f.mu.Lock()
	_, r := f.findLocked(id)
	f.mu.Unlock()

	if r == nil {
		return nil, ErrUnknownRow
	}
	return r.debouncer.Suggestions(), nil
}

// Reset replaces all rows with a single empty one.
func (f *Form) Reset() {
	f.mu.Lock()
	old := f.rows
	f.rows = []*row{f.newRow()}
	f.mu.Unlock()

	for _, r := range old {
		r.debouncer.Close()
	}
}

// Close stops every row's debouncer. The form must not be used afterwards.
func (f *Form) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	rows := f.rows
	f.mu.Unlock()

	for _, r := range rows {
		r.debouncer.Close()
	}
}
