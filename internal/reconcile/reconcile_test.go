package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"merchantconsole/internal/model"
)

var required = []string{"customer", "contract"}

func prior() model.Detail {
	return model.Detail{ID: "P-1", Sections: []model.Section{
		{Name: "customer", Fields: map[string]string{"name": "Jane", "email": "jane@example.com", "phone": "555"}},
		{Name: "contract", Fields: map[string]string{"status": "Active", "term": "24"}},
		{Name: "shipments", Items: []map[string]string{{"carrier": "UPS", "tracking": "1Z"}}},
	}}
}

func TestMalformedResponseMergesOnlyEditedFields(t *testing.T) {
	p := prior()
	before := p.Clone()
	in := EditIntent{RecordID: "P-1", Sections: map[string]map[string]string{"customer": {"name": "Janet"}}}
	resp := Response{Kind: PartialPayload, Raw: json.RawMessage(`{"ok":true}`)}

	got, path, err := Reconcile(&p, in, resp, required)
	if err != nil || path != PathMerged {
		t.Fatalf("path=%v err=%v", path, err)
	}
	cust, _ := got.Section("customer")
	if cust.Fields["name"] != "Janet" || cust.Fields["email"] != "jane@example.com" {
		t.Fatalf("customer %v", cust.Fields)
	}
	wantContract, _ := before.Section("contract")
	gotContract, _ := got.Section("contract")
	if !reflect.DeepEqual(wantContract, gotContract) {
		t.Fatalf("contract changed: %v", gotContract)
	}
	wantShip, _ := before.Section("shipments")
	gotShip, _ := got.Section("shipments")
	if !reflect.DeepEqual(wantShip, gotShip) {
		t.Fatalf("shipments changed")
	}
	// prior itself is untouched
	if !reflect.DeepEqual(p, before) {
		t.Fatalf("prior mutated")
	}
}

func TestFullDetailReplaces(t *testing.T) {
	p := prior()
	full := model.Detail{ID: "P-1", Sections: []model.Section{
		{Name: "customer", Fields: map[string]string{"name": "Janet"}},
		{Name: "contract", Fields: map[string]string{"status": "Cancelled"}},
	}}
	resp := Classify(&full, nil, required)
	if resp.Kind != FullDetail {
		t.Fatalf("expected full")
	}
	got, path, err := Reconcile(&p, EditIntent{RecordID: "P-1"}, resp, required)
	if err != nil || path != PathReplaced || !reflect.DeepEqual(got, full) {
		t.Fatalf("path=%v err=%v got=%+v", path, err, got)
	}
}

func TestClassifyDowngradesIncompleteDetail(t *testing.T) {
	d := model.Detail{ID: "P-1", Sections: []model.Section{{Name: "customer"}}}
	if Classify(&d, nil, required).Kind != PartialPayload {
		t.Fatalf("missing section should be partial")
	}
	if Classify(nil, json.RawMessage(`[]`), required).Kind != PartialPayload {
		t.Fatalf("nil detail should be partial")
	}
}

func TestPartialWithoutPriorFails(t *testing.T) {
	_, _, err := Reconcile(nil, EditIntent{RecordID: "x"}, Response{Kind: PartialPayload}, required)
	if !errors.Is(err, ErrNoFallback) {
		t.Fatalf("expected ErrNoFallback, got %v", err)
	}
}

func TestHolderErrorLeavesDetail(t *testing.T) {
	ed := EditorFunc(func(ctx context.Context, in EditIntent) (Response, error) {
		return Response{}, model.ErrTransport
	})
	h := NewHolder(ed, required)
	h.Set(prior())
	_, err := h.Submit(context.Background(), EditIntent{RecordID: "P-1", Sections: map[string]map[string]string{"customer": {"name": "X"}}})
	if !errors.Is(err, model.ErrTransport) {
		t.Fatalf("err %v", err)
	}
	d, _ := h.Detail()
	if !reflect.DeepEqual(d, prior()) {
		t.Fatalf("detail changed on failure")
	}
}

func TestHolderMergesAndDiscardsAfterClose(t *testing.T) {
	release := make(chan struct{})
	ed := EditorFunc(func(ctx context.Context, in EditIntent) (Response, error) {
		<-release
		return Response{Kind: PartialPayload}, nil
	})
	h := NewHolder(ed, required)
	h.Set(prior())
	close(release)
	res, err := h.Submit(context.Background(), EditIntent{RecordID: "P-1", Sections: map[string]map[string]string{"customer": {"phone": "777"}}})
	if err != nil || res.Path != PathMerged {
		t.Fatalf("res=%+v err=%v", res, err)
	}
	held, _ := h.Detail()
	if s, _ := held.Section("customer"); s.Fields["phone"] != "777" {
		t.Fatalf("held detail not updated")
	}

	h.Close()
	if _, err := h.Submit(context.Background(), EditIntent{RecordID: "P-1"}); !errors.Is(err, ErrDiscarded) {
		t.Fatalf("expected ErrDiscarded, got %v", err)
	}
}

func TestHolderDiscardsResultArrivingAfterClose(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	ed := EditorFunc(func(ctx context.Context, in EditIntent) (Response, error) {
		close(started)
		<-release
		return Response{Kind: PartialPayload}, nil
	})
	h := NewHolder(ed, required)
	h.Set(prior())
	errc := make(chan error, 1)
	go func() {
		_, err := h.Submit(context.Background(), EditIntent{RecordID: "P-1", Sections: map[string]map[string]string{"customer": {"name": "Late"}}})
		errc <- err
	}()
	<-started
	h.Close()
	close(release)
	if err := <-errc; !errors.Is(err, ErrDiscarded) {
		t.Fatalf("expected ErrDiscarded, got %v", err)
	}
	d, _ := h.Detail()
	if s, _ := d.Section("customer"); s.Fields["name"] != "Jane" {
		t.Fatalf("late result applied")
	}
}

func TestHolderRejectsSecondSubmitWhileInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	ed := EditorFunc(func(ctx context.Context, in EditIntent) (Response, error) {
		close(started)
		<-release
		return Response{Kind: PartialPayload}, nil
	})
	h := NewHolder(ed, required)
	h.Set(prior())
	errc := make(chan error, 1)
	go func() {
		_, err := h.Submit(context.Background(), EditIntent{RecordID: "P-1", Sections: map[string]map[string]string{"customer": {"name": "First"}}})
		errc <- err
	}()
	<-started
	if _, err := h.Submit(context.Background(), EditIntent{RecordID: "P-1", Sections: map[string]map[string]string{"customer": {"name": "Second"}}}); !errors.Is(err, ErrPending) {
		t.Fatalf("expected ErrPending, got %v", err)
	}
	close(release)
	if err := <-errc; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	d, _ := h.Detail()
	if s, _ := d.Section("customer"); s.Fields["name"] != "First" {
		t.Fatalf("name %q", s.Fields["name"])
	}
}
