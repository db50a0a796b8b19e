// Package remote talks to the merchant API, or to an in-process stand-in,
// and adapts it to the mutation controller and detail reconciler.
package remote

import (
	"context"
	"fmt"

	"merchantconsole/internal/domain"
	"merchantconsole/internal/model"
	"merchantconsole/internal/mutate"
	"merchantconsole/internal/reconcile"
)

// Backend is the remote store of all domains.
type Backend interface {
	// Name identifies the backend for cache keys and status lines.
	Name() string
	List(ctx context.Context, d *domain.Domain) ([]model.Record, error)
	Detail(ctx context.Context, d *domain.Domain, id string) (model.Detail, error)
	Toggle(ctx context.Context, d *domain.Domain, rec model.Record) ([]mutate.Update, error)
	Edit(ctx context.Context, d *domain.Domain, prior model.Detail, in reconcile.EditIntent) (reconcile.Response, error)
}

// FetchDetail loads the detail of rec, building it locally for domains without a detail endpoint.
func FetchDetail(ctx context.Context, b Backend, d *domain.Domain, rec model.Record) (model.Detail, error) {
	if d.Endpoints.Detail == "" {
		if det, ok := d.Detail(rec); ok {
			return det, nil
		}
		return model.Detail{}, fmt.Errorf("%s has no detail view: %w", d.Name, model.ErrNotFound)
	}
	return b.Detail(ctx, d, rec.ID)
}

// Mutator adapts b to the mutation controller for one domain. The record is
// read from store at call time so the toggle body sees current values.
func Mutator(b Backend, d *domain.Domain, store *model.Store) mutate.Mutator {
	return mutate.MutatorFunc(func(ctx context.Context, in mutate.Intent) ([]mutate.Update, error) {
		rec, ok := store.Get(in.RecordID)
		if !ok {
			return nil, fmt.Errorf("%s: %w", in.RecordID, model.ErrNotFound)
		}
		return b.Toggle(ctx, d, rec)
	})
}

// Editor adapts b to the detail reconciler. prior supplies the held detail
// the request body is built from.
func Editor(b Backend, d *domain.Domain, prior func() (model.Detail, bool)) reconcile.Editor {
	return reconcile.EditorFunc(func(ctx context.Context, in reconcile.EditIntent) (reconcile.Response, error) {
		p, _ := prior()
		return b.Edit(ctx, d, p, in)
	})
}
