package mutate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"merchantconsole/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// gate is a Mutator whose calls block until released.
type gate struct {
	mu      sync.Mutex
	started chan Intent
	release chan result
}

type result struct {
	updates []Update
	err     error
}

func newGate() *gate {
	return &gate{started: make(chan Intent, 8), release: make(chan result, 8)}
}

func (g *gate) Apply(ctx context.Context, in Intent) ([]Update, error) {
	g.started <- in
	r := <-g.release
	return r.updates, r.err
}

func products() *model.Store {
	s := model.NewStore()
	s.Replace([]model.Record{
		{ID: "v1", Fields: map[string]any{"displayOffered": false, "name": "Speaker"}},
		{ID: "v2", Fields: map[string]any{"displayOffered": false, "name": "Speaker XL"}},
		{ID: "v3", Fields: map[string]any{"displayOffered": true, "name": "Earbuds"}},
	})
	return s
}

func field(s *model.Store, id, f string) any {
	r, _ := s.Get(id)
	return r.Fields[f]
}

func TestToggleOptimisticThenRollback(t *testing.T) {
	store := products()
	g := newGate()
	var notices []Outcome
	c := NewController(store, g, WithNotify(func(o Outcome) { notices = append(notices, o) }))

	done := make(chan Outcome, 1)
	go func() {
		o, err := c.Toggle(context.Background(), "v1", "displayOffered")
		if err != nil {
			t.Errorf("toggle: %v", err)
		}
		done <- o
	}()
	<-g.started
	if field(store, "v1", "displayOffered") != true {
		t.Fatalf("proposed value not applied before remote settled")
	}
	if !c.IsPending("v1", "displayOffered") {
		t.Fatalf("expected pending")
	}
	g.release <- result{err: fmt.Errorf("toggle: %w", model.ErrMutationRejected)}
	o := <-done
	if o.State != RolledBack || !errors.Is(o.Err, model.ErrMutationRejected) {
		t.Fatalf("outcome %+v", o)
	}
	if field(store, "v1", "displayOffered") != false {
		t.Fatalf("not rolled back")
	}
	if len(notices) != 1 || notices[0].Err == nil {
		t.Fatalf("expected exactly one failure notice, got %d", len(notices))
	}
}

func TestCommitAppliesAuthoritativeSiblings(t *testing.T) {
	store := products()
	remote := MutatorFunc(func(ctx context.Context, in Intent) ([]Update, error) {
		// joint toggle: the server flips every variant of the product
		return []Update{
			{RecordID: "v1", Field: "displayOffered", Value: true},
			{RecordID: "v2", Field: "displayOffered", Value: true},
		}, nil
	})
	c := NewController(store, remote)
	o, err := c.Toggle(context.Background(), "v1", "displayOffered")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if o.State != Committed || o.Value != true {
		t.Fatalf("outcome %+v", o)
	}
	if field(store, "v2", "displayOffered") != true {
		t.Fatalf("sibling not corrected")
	}
}

func TestCommitServerOverridesProposed(t *testing.T) {
	store := products()
	remote := MutatorFunc(func(ctx context.Context, in Intent) ([]Update, error) {
		return []Update{{RecordID: in.RecordID, Field: in.Field, Value: false}}, nil
	})
	c := NewController(store, remote)
	o, _ := c.Toggle(context.Background(), "v1", "displayOffered")
	if o.Value != false || field(store, "v1", "displayOffered") != false {
		t.Fatalf("authoritative value ignored: %+v", o)
	}
}

func TestSecondTogglePendingIsRejected(t *testing.T) {
	store := products()
	g := newGate()
	c := NewController(store, g)
	done := make(chan struct{})
	go func() {
		c.Toggle(context.Background(), "v1", "displayOffered")
		close(done)
	}()
	<-g.started
	if _, err := c.Toggle(context.Background(), "v1", "displayOffered"); !errors.Is(err, ErrPending) {
		t.Fatalf("expected ErrPending, got %v", err)
	}
	// a different record proceeds independently
	other := make(chan struct{})
	go func() {
		c.Toggle(context.Background(), "v3", "displayOffered")
		close(other)
	}()
	<-g.started
	if c.PendingCount() != 2 {
		t.Fatalf("pending count %d", c.PendingCount())
	}
	g.release <- result{}
	g.release <- result{}
	<-done
	<-other
	if field(store, "v1", "displayOffered") != true || field(store, "v3", "displayOffered") != false {
		t.Fatalf("final state wrong")
	}
}

func TestRecordGuard(t *testing.T) {
	store := products()
	c := NewController(store, newGate(), WithRecordGuard())
	if _, err := c.Begin(Intent{RecordID: "v1", Field: "displayOffered", Proposed: true}); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := c.Begin(Intent{RecordID: "v1", Field: "name", Proposed: "x"}); !errors.Is(err, ErrPending) {
		t.Fatalf("record guard should reject other field, got %v", err)
	}
}

func TestCloseDiscardsLateResult(t *testing.T) {
	store := products()
	var notified int
	c := NewController(store, newGate(), WithNotify(func(Outcome) { notified++ }))
	tk, err := c.Begin(Intent{RecordID: "v1", Field: "displayOffered", Proposed: true})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	c.Close()
	o := c.Settle(tk, []Update{{RecordID: "v2", Field: "displayOffered", Value: true}}, nil)
	if !Discarded(o) || notified != 0 {
		t.Fatalf("late result not discarded: %+v notified=%d", o, notified)
	}
	if field(store, "v2", "displayOffered") != false {
		t.Fatalf("store written after close")
	}
	if _, err := c.Begin(Intent{RecordID: "v3", Field: "displayOffered", Proposed: false}); !errors.Is(err, ErrClosed) {
		t.Fatalf("begin after close: %v", err)
	}
}

func TestRollbackYieldsToReload(t *testing.T) {
	store := products()
	c := NewController(store, newGate())
	tk, _ := c.Begin(Intent{RecordID: "v1", Field: "displayOffered", Proposed: true})
	// reload lands while pending with a fresh server value
	store.Replace([]model.Record{{ID: "v1", Fields: map[string]any{"displayOffered": "fresh"}}})
	c.Settle(tk, nil, model.ErrTransport)
	if field(store, "v1", "displayOffered") != "fresh" {
		t.Fatalf("rollback clobbered reloaded value")
	}
}

func TestToggleIntentValidation(t *testing.T) {
	store := products()
	if _, err := ToggleIntent(store, "v1", "name"); !errors.Is(err, ErrNotToggleable) {
		t.Fatalf("expected ErrNotToggleable, got %v", err)
	}
	if _, err := ToggleIntent(store, "nope", "displayOffered"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
