// Package mutate applies record mutations optimistically: the local store is
// updated before the remote store confirms, and reverted if it refuses.
package mutate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"merchantconsole/internal/model"
	"merchantconsole/internal/util/logx"
)

type State int

const (
	Idle State = iota
	Pending
	Committed
	RolledBack
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled-back"
	default:
		return "idle"
	}
}

var (
	ErrPending        = errors.New("mutation already pending for record")
	ErrNotToggleable  = errors.New("field is not a boolean")
	ErrClosed         = errors.New("controller closed")
	errDiscardedState = errors.New("settled after close")
)

// Intent proposes a new value for one field of one record.
type Intent struct {
	RecordID string
	Field    string
	Proposed any
}

// Update is an authoritative value reported by the remote store. It may
// address a record or field other than the one in the Intent.
type Update struct {
	RecordID string
	Field    string
	Value    any
}

// Mutator is the remote side of a mutation.
type Mutator interface {
	Apply(ctx context.Context, in Intent) ([]Update, error)
}

// MutatorFunc adapts a function to Mutator.
type MutatorFunc func(ctx context.Context, in Intent) ([]Update, error)

func (f MutatorFunc) Apply(ctx context.Context, in Intent) ([]Update, error) { return f(ctx, in) }

// Outcome is the terminal report of one mutation.
type Outcome struct {
	Intent Intent
	State  State
	Prev   any
	Value  any // value of Intent.Field after settlement
	Err    error
}

// Ticket tracks one pending mutation.
type Ticket struct {
	intent Intent
	prev   any
	key    string
	state  State
}

func (t *Ticket) State() State   { return t.state }
func (t *Ticket) Intent() Intent { return t.intent }

type Option func(*Controller)

// WithRecordGuard rejects a mutation while any field of the same record is pending.
func WithRecordGuard() Option {
	return func(c *Controller) { c.recordGuard = true }
}

// WithNotify registers a callback receiving every settled outcome.
func WithNotify(fn func(Outcome)) Option {
	return func(c *Controller) { c.notify = fn }
}

type Controller struct {
	store       *model.Store
	remote      Mutator
	recordGuard bool
	notify      func(Outcome)

	mu      sync.Mutex
	pending map[string]*Ticket
	closed  bool
}

func NewController(store *model.Store, remote Mutator, opts ...Option) *Controller {
	c := &Controller{store: store, remote: remote, pending: map[string]*Ticket{}}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Controller) guardKey(in Intent) string {
	if c.recordGuard {
		return in.RecordID
	}
	return in.RecordID + "\x00" + in.Field
}

// Begin applies the proposed value locally and marks the mutation pending.
func (c *Controller) Begin(in Intent) (*Ticket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	key := c.guardKey(in)
	if _, busy := c.pending[key]; busy {
		return nil, fmt.Errorf("%s/%s: %w", in.RecordID, in.Field, ErrPending)
	}
	prev, ok := c.store.Set(in.RecordID, in.Field, in.Proposed)
	if !ok {
		return nil, fmt.Errorf("%s: %w", in.RecordID, model.ErrNotFound)
	}
	t := &Ticket{intent: in, prev: prev, key: key, state: Pending}
	c.pending[key] = t
	logx.Debugf("mutate: pending %s/%s %v -> %v", in.RecordID, in.Field, prev, in.Proposed)
	return t, nil
}

// Settle moves a pending ticket to Committed (err == nil) or RolledBack.
func (c *Controller) Settle(t *Ticket, updates []Update, err error) Outcome {
	c.mu.Lock()
	if t.state != Pending {
		c.mu.Unlock()
		return Outcome{Intent: t.intent, State: t.state, Prev: t.prev}
	}
	delete(c.pending, t.key)
	closed := c.closed
	in := t.intent
	out := Outcome{Intent: in, Prev: t.prev}
	if closed {
		// the consumer is gone; leave the store alone and report nothing
		if err != nil {
			t.state = RolledBack
		} else {
			t.state = Committed
		}
		c.mu.Unlock()
		out.State = t.state
		out.Err = errDiscardedState
		return out
	}
	if err != nil {
		t.state = RolledBack
		// a reload that already replaced the proposed value wins
		c.store.CompareAndSet(in.RecordID, in.Field, in.Proposed, t.prev)
		out.State = RolledBack
		out.Value = t.prev
		out.Err = err
		logx.Warnf("mutate: rolled back %s/%s: %v", in.RecordID, in.Field, err)
	} else {
		t.state = Committed
		out.State = Committed
		out.Value = in.Proposed
		for _, u := range updates {
			c.store.Set(u.RecordID, u.Field, u.Value)
			if u.RecordID == in.RecordID && u.Field == in.Field {
				out.Value = u.Value
			}
		}
		logx.Infof("mutate: committed %s/%s = %v (%d updates)", in.RecordID, in.Field, out.Value, len(updates))
	}
	notify := c.notify
	c.mu.Unlock()
	if notify != nil {
		notify(out)
	}
	return out
}

// Run begins in, calls the remote mutator and settles. It blocks for the
// duration of the remote call and is meant to run off the UI loop.
func (c *Controller) Run(ctx context.Context, in Intent) (Outcome, error) {
	t, err := c.Begin(in)
	if err != nil {
		return Outcome{Intent: in, State: Idle}, err
	}
	updates, rerr := c.remote.Apply(ctx, in)
	return c.Settle(t, updates, rerr), nil
}

// Toggle flips a boolean field of a record.
func (c *Controller) Toggle(ctx context.Context, recordID, field string) (Outcome, error) {
	in, err := ToggleIntent(c.store, recordID, field)
	if err != nil {
		return Outcome{Intent: in, State: Idle}, err
	}
	return c.Run(ctx, in)
}

func (c *Controller) IsPending(recordID, field string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[c.guardKey(Intent{RecordID: recordID, Field: field})]
	return ok
}

func (c *Controller) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Close detaches the controller from its consumer. Mutations still in flight
// settle without touching the store or notifying.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// Discarded reports whether an outcome was dropped because the controller was closed.
func Discarded(o Outcome) bool { return errors.Is(o.Err, errDiscardedState) }

// ToggleIntent builds the intent flipping a boolean field.
func ToggleIntent(store *model.Store, recordID, field string) (Intent, error) {
	in := Intent{RecordID: recordID, Field: field}
	r, ok := store.Get(recordID)
	if !ok {
		return in, fmt.Errorf("%s: %w", recordID, model.ErrNotFound)
	}
	v, ok := r.Get(field)
	b, isBool := v.(bool)
	if !ok || !isBool {
		return in, fmt.Errorf("%s/%s: %w", recordID, field, ErrNotToggleable)
	}
	in.Proposed = !b
	return in, nil
}
