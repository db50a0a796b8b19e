// Package browser composes chips, the debounced live term, projection,
// pagination and export into one engine per list screen.
package browser

import (
	"io"
	"sync"
	"time"

	"merchantconsole/internal/debounce"
	"merchantconsole/internal/export"
	"merchantconsole/internal/filter"
	"merchantconsole/internal/model"
	"merchantconsole/internal/pager"
)

type Option func(*Engine)

func WithQuiet(d time.Duration) Option {
	return func(e *Engine) { e.quiet = d }
}

func WithPageSize(n int) Option {
	return func(e *Engine) { e.pageSize = n }
}

// WithOnSettle is called from the timer goroutine after a settled term has
// been projected. It must not call back into the engine synchronously.
func WithOnSettle(fn func(term string)) Option {
	return func(e *Engine) { e.onSettle = fn }
}

type Engine struct {
	fields   []model.FieldSpec
	access   model.Accessor
	quiet    time.Duration
	pageSize int
	onSettle func(string)

	term *debounce.TermBuffer

	mu       sync.Mutex
	chips    filter.Accumulator
	field    string
	expr     string
	recs     []model.Record
	filtered []model.Record
	pager    *pager.Pager
}

// New builds an engine over fields. access may be nil, in which case the
// field table's own accessors are used.
func New(fields []model.FieldSpec, access model.Accessor, opts ...Option) *Engine {
	e := &Engine{fields: fields, access: access}
	for _, o := range opts {
		o(e)
	}
	if e.access == nil {
		e.access = model.FieldAccessor(fields)
	}
	if len(fields) > 0 {
		e.field = fields[0].Key
	}
	e.pager = pager.New(e.pageSize)
	e.term = debounce.New(e.quiet, e.settled)
	return e
}

func (e *Engine) settled(v string) {
	e.mu.Lock()
	e.project()
	e.mu.Unlock()
	if e.onSettle != nil {
		e.onSettle(v)
	}
}

// project must run with mu held.
func (e *Engine) project() {
	ev, err := filter.NewEvaluator(filter.Criteria{
		Chips: e.chips.Chips(),
		Term:  e.term.Settled(),
		Field: e.field,
		Expr:  e.expr,
	}, e.access)
	if err != nil {
		// expr is validated in SetExpr
		ev, _ = filter.NewEvaluator(filter.Criteria{Chips: e.chips.Chips(), Term: e.term.Settled(), Field: e.field}, e.access)
	}
	e.filtered = ev.Filter(e.recs)
	e.pager.SetTotal(len(e.filtered))
}

func (e *Engine) Fields() []model.FieldSpec { return e.fields }
func (e *Engine) Accessor() model.Accessor  { return e.access }

// SetCollection installs a freshly loaded collection. The page index is clamped, not reset.
func (e *Engine) SetCollection(recs []model.Record) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recs = recs
	e.project()
}

// SelectField chooses the field the live term is matched against.
func (e *Engine) SelectField(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.field = key
	e.project()
}

// CycleField moves the live term to the next field of the table.
func (e *Engine) CycleField() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.fields) == 0 {
		return e.field
	}
	next := 0
	for i, f := range e.fields {
		if f.Key == e.field {
			next = (i + 1) % len(e.fields)
			break
		}
	}
	e.field = e.fields[next].Key
	e.project()
	return e.field
}

func (e *Engine) Field() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.field
}

// FieldLabel returns the label of the selected field.
func (e *Engine) FieldLabel() string {
	f := e.Field()
	for _, s := range e.fields {
		if s.Key == f {
			return s.Label
		}
	}
	return f
}

// Type records raw input; projection follows once input settles.
func (e *Engine) Type(raw string) { e.term.Update(raw) }

func (e *Engine) Raw() string     { return e.term.Raw() }
func (e *Engine) Settled() string { return e.term.Settled() }

// Commit turns the raw input into a chip on the selected field and clears
// the input. Blank input is ignored.
func (e *Engine) Commit() bool {
	raw := e.term.Raw()
	e.mu.Lock()
	ok := e.chips.Commit(e.field, raw)
	e.mu.Unlock()
	if !ok {
		return false
	}
	e.term.Reset()
	e.mu.Lock()
	e.pager.Reset()
	e.project()
	e.mu.Unlock()
	return true
}

// AddChip commits a chip on an arbitrary field without touching the live input.
func (e *Engine) AddChip(field, value string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.chips.Commit(field, value) {
		return false
	}
	e.pager.Reset()
	e.project()
	return true
}

func (e *Engine) RemoveChip(i int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.chips.Remove(i) {
		return false
	}
	e.pager.Reset()
	e.project()
	return true
}

func (e *Engine) ClearChips() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.chips.Clear() {
		return false
	}
	e.pager.Reset()
	e.project()
	return true
}

func (e *Engine) Chips() []filter.Chip {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chips.Chips()
}

// SetExpr installs a boolean expression over raw record fields. An invalid
// expression is rejected and the previous one stays in effect.
func (e *Engine) SetExpr(expr string) error {
	if _, err := filter.NewEvaluator(filter.Criteria{Expr: expr}, e.access); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.expr = expr
	e.pager.Reset()
	e.project()
	return nil
}

func (e *Engine) Expr() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.expr
}

// Refresh re-projects the current collection, e.g. after a store write.
func (e *Engine) Refresh() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.project()
}

// Flush publishes the live term now instead of waiting for the quiet interval.
func (e *Engine) Flush() { e.term.Flush() }

func (e *Engine) NextPage() {
	e.mu.Lock()
	e.pager.Next()
	e.mu.Unlock()
}

func (e *Engine) PrevPage() {
	e.mu.Lock()
	e.pager.Prev()
	e.mu.Unlock()
}

func (e *Engine) SetPageSize(n int) {
	e.mu.Lock()
	e.pager.SetPageSize(n)
	e.mu.Unlock()
}

func (e *Engine) CyclePageSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pager.CycleSize()
	return e.pager.Size()
}

func (e *Engine) PageIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pager.Index()
}

func (e *Engine) PageSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pager.Size()
}

// Page returns the visible slice of the filtered view.
func (e *Engine) Page() []model.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	page := pager.Slice(e.pager, e.filtered)
	out := make([]model.Record, len(page))
	copy(out, page)
	return out
}

// Filtered returns the whole filtered view, unpaginated.
func (e *Engine) Filtered() []model.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Record, len(e.filtered))
	copy(out, e.filtered)
	return out
}

func (e *Engine) Total() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.filtered)
}

func (e *Engine) Label() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pager.Label()
}

// WriteCSV serialises the filtered view.
func (e *Engine) WriteCSV(w io.Writer, cols []export.Column) error {
	return export.WriteCSV(w, e.Filtered(), cols, e.access)
}

// Export writes the filtered view to a timestamped file in dir.
func (e *Engine) Export(dir, domain, format string, cols []export.Column, now time.Time) (string, error) {
	return export.ToFile(dir, domain, format, e.Filtered(), cols, e.access, now)
}

// Reset drops chips, the live term and the expression, as when the screen
// is opened fresh.
func (e *Engine) Reset() {
	e.term.Reset()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.chips.Clear()
	e.expr = ""
	e.pager.Reset()
	e.project()
}

// Close cancels the pending term publication. No settle callback runs afterwards.
func (e *Engine) Close() { e.term.Close() }
