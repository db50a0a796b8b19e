package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"merchantconsole/internal/domain"
	"merchantconsole/internal/ingest"
	"merchantconsole/internal/model"
	"merchantconsole/internal/mutate"
	"merchantconsole/internal/reconcile"
)

// DemoOptions tune the in-process backend.
type DemoOptions struct {
	Seed        int64
	PerDomain   int
	Latency     time.Duration
	FailRate    float64 // share of mutations refused
	PartialRate float64 // share of edits answered with a partial payload
}

// Demo is an in-memory merchant API. It owns the authoritative copy of
// every collection and applies toggles and edits to it.
type Demo struct {
	opt DemoOptions

	mu      sync.Mutex
	rnd     *rand.Rand
	recs    map[domain.Name][]model.Record
	details map[string]model.Detail
}

func NewDemo(opt DemoOptions) *Demo {
	if opt.PerDomain <= 0 {
		opt.PerDomain = 60
	}
	gen := ingest.NewGenerator(opt.Seed, time.Now())
	d := &Demo{
		opt:     opt,
		rnd:     rand.New(rand.NewSource(opt.Seed + 1)),
		recs:    map[domain.Name][]model.Record{},
		details: map[string]model.Detail{},
	}
	for _, n := range domain.All {
		d.recs[n] = gen.Records(n, opt.PerDomain)
	}
	return d
}

func (d *Demo) Name() string { return fmt.Sprintf("demo:%d", d.opt.Seed) }

func (d *Demo) wait(ctx context.Context) error {
	if d.opt.Latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d.opt.Latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (d *Demo) roll(rate float64) bool {
	if rate <= 0 {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rnd.Float64() < rate
}

func (d *Demo) find(n domain.Name, id string) (int, bool) {
	for i, r := range d.recs[n] {
		if r.ID == id {
			return i, true
		}
	}
	return -1, false
}

func (d *Demo) List(ctx context.Context, dom *domain.Domain) ([]model.Record, error) {
	if err := d.wait(ctx); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	src := d.recs[dom.Name]
	out := make([]model.Record, len(src))
	for i, r := range src {
		out[i] = r.Clone()
	}
	return out, nil
}

func (d *Demo) Detail(ctx context.Context, dom *domain.Domain, id string) (model.Detail, error) {
	if err := d.wait(ctx); err != nil {
		return model.Detail{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.detailLocked(dom, id)
}

func (d *Demo) detailLocked(dom *domain.Domain, id string) (model.Detail, error) {
	key := string(dom.Name) + "/" + id
	if det, ok := d.details[key]; ok {
		return det.Clone(), nil
	}
	i, ok := d.find(dom.Name, id)
	if !ok {
		return model.Detail{}, fmt.Errorf("%s %s: %w", dom.Name, id, model.ErrNotFound)
	}
	det := demoDetail(dom, d.recs[dom.Name][i])
	d.details[key] = det
	return det.Clone(), nil
}

// Toggle flips the toggle field. For products every variant of the same
// product is flipped together, as the real endpoint does.
func (d *Demo) Toggle(ctx context.Context, dom *domain.Domain, rec model.Record) ([]mutate.Update, error) {
	if !dom.CanToggle() {
		return nil, fmt.Errorf("%s: %w", dom.Name, mutate.ErrNotToggleable)
	}
	if err := d.wait(ctx); err != nil {
		return nil, fmt.Errorf("toggle: %w", err)
	}
	if d.roll(d.opt.FailRate) {
		return nil, fmt.Errorf("toggle %s: simulated refusal: %w", rec.ID, model.ErrMutationRejected)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	i, ok := d.find(dom.Name, rec.ID)
	if !ok {
		return nil, fmt.Errorf("toggle %s: %w", rec.ID, model.ErrNotFound)
	}
	cur, _ := d.recs[dom.Name][i].Fields[dom.ToggleField].(bool)
	next := !cur
	targets := []int{i}
	if dom.Name == domain.Products {
		targets = targets[:0]
		pid := model.DefaultAccess(d.recs[dom.Name][i], "productId")
		for j, r := range d.recs[dom.Name] {
			if model.DefaultAccess(r, "productId") == pid {
				targets = append(targets, j)
			}
		}
	}
	var ups []mutate.Update
	for _, j := range targets {
		r := d.recs[dom.Name][j]
		r = r.With(dom.ToggleField, next)
		ups = append(ups, mutate.Update{RecordID: r.ID, Field: dom.ToggleField, Value: next})
		if dom.Name == domain.Users {
			st := "Deactivated"
			if next {
				st = "Active"
			}
			r = r.With("status", st)
			ups = append(ups, mutate.Update{RecordID: r.ID, Field: "status", Value: st})
		}
		d.recs[dom.Name][j] = r
	}
	return ups, nil
}

func (d *Demo) Edit(ctx context.Context, dom *domain.Domain, prior model.Detail, in reconcile.EditIntent) (reconcile.Response, error) {
	if !dom.CanEdit() {
		return reconcile.Response{}, fmt.Errorf("%s: not editable: %w", dom.Name, model.ErrMutationRejected)
	}
	if err := d.wait(ctx); err != nil {
		return reconcile.Response{}, fmt.Errorf("edit: %w", err)
	}
	if d.roll(d.opt.FailRate) {
		return reconcile.Response{}, fmt.Errorf("edit %s: simulated refusal: %w", in.RecordID, model.ErrMutationRejected)
	}
	partial := d.roll(d.opt.PartialRate)
	d.mu.Lock()
	defer d.mu.Unlock()
	det, err := d.detailLocked(dom, in.RecordID)
	if err != nil {
		return reconcile.Response{}, err
	}
	for i := range det.Sections {
		for k, v := range in.Sections[det.Sections[i].Name] {
			if det.Sections[i].Fields == nil {
				det.Sections[i].Fields = map[string]string{}
			}
			det.Sections[i].Fields[k] = v
		}
	}
	d.details[string(dom.Name)+"/"+in.RecordID] = det
	if i, ok := d.find(dom.Name, in.RecordID); ok {
		for _, u := range dom.ListUpdates(in) {
			d.recs[dom.Name][i] = d.recs[dom.Name][i].With(u.Field, u.Value)
		}
	}
	if partial {
		raw, _ := json.Marshal(map[string]any{"updated": true, "id": in.RecordID})
		return reconcile.Response{Kind: reconcile.PartialPayload, Raw: raw}, nil
	}
	return reconcile.Classify(&det, nil, dom.Required), nil
}

func demoDetail(dom *domain.Domain, r model.Record) model.Detail {
	if det, ok := dom.Detail(r); ok {
		return det
	}
	get := func(k string) string { return model.DefaultAccess(r, k) }
	sec := func(name string, kv ...string) model.Section {
		s := model.Section{Name: name, Fields: map[string]string{}}
		for i := 0; i+1 < len(kv); i += 2 {
			s.Fields[kv[i]] = kv[i+1]
		}
		return s
	}
	switch dom.Name {
	case domain.Contracts:
		return model.Detail{ID: r.ID, Sections: []model.Section{
			sec("customer", "customerId", get("customerId"), "fullName", get("customerName"), "email", get("customerEmail"),
				"phoneNumber", "+91 98765 43210", "address", "12 MG Road", "city", "Pune", "state", "MH", "pinCode", "411001", "country", "India"),
			sec("transaction", "transactionId", get("transactionId"), "currencyCode", "INR"),
			sec("store", "storeName", "Demo Store", "storeId", "M-DEMO"),
			sec("contract", "contractId", r.ID, "status", get("status"), "planCategory", get("type"),
				"transactionDate", get("date"), "purchasePrice", get("price"), "dateRefunded", "--", "dateCanceled", "--"),
			{Name: "shipments"},
			{Name: "unassigned"},
		}}
	case domain.Claims:
		return model.Detail{ID: r.ID, Sections: []model.Section{
			sec("summary", "claimId", r.ID, "contractId", get("contractId"), "type", get("type"), "status", get("status"), "failureType", get("failureType")),
			sec("customer", "fullName", get("customerName"), "email", get("customerEmail")),
			sec("claim", "type", get("type"), "statusDetail", get("status"), "incidentDescription", get("failureType")),
			sec("product", "name", "Demo product"),
			sec("service_order", "serviceOrderId", r.ID, "serviceType", get("type"), "status", get("status"), "assignee", "Standard"),
		}}
	}
	return model.Detail{ID: r.ID}
}
