package filter

import (
	"fmt"
	"testing"

	"merchantconsole/internal/model"
)

func contracts() []model.Record {
	rows := []struct{ id, txn, customer, product string }{
		{"1", "TRN123458", "John Doe", "Smart Speaker"},
		{"2", "TRN123459", "Jane Smith", "Air Purifier"},
		{"3", "TRN123460", "Mike Johnson", "Wireless Earbuds"},
		{"4", "TRN123461", "Sarah Wilson", "Smartwatch"},
	}
	out := make([]model.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Record{ID: r.id, Fields: map[string]any{
			"transactionId": r.txn, "customerName": r.customer, "productName": r.product,
		}})
	}
	return out
}

func ids(recs []model.Record) string {
	s := ""
	for _, r := range recs {
		s += r.ID
	}
	return s
}

func TestCommitIgnoresBlank(t *testing.T) {
	var a Accumulator
	if a.Commit("customerName", "   ") {
		t.Fatalf("blank commit should be skipped")
	}
	if !a.Commit("customerName", "  jo ") {
		t.Fatalf("commit failed")
	}
	if got := a.Chips(); len(got) != 1 || got[0].Value != "jo" {
		t.Fatalf("unexpected chips %+v", got)
	}
}

func TestRemoveKeepsOrder(t *testing.T) {
	var a Accumulator
	for _, v := range []string{"a", "b", "c"} {
		a.Commit("f", v)
	}
	if !a.Remove(1) {
		t.Fatalf("remove failed")
	}
	if a.Remove(5) || a.Remove(-1) {
		t.Fatalf("out-of-range remove should be a no-op")
	}
	got := a.Chips()
	if len(got) != 2 || got[0].Value != "a" || got[1].Value != "c" {
		t.Fatalf("unexpected chips %+v", got)
	}
}

func TestProjectChipsAndTerm(t *testing.T) {
	recs := contracts()
	got := Project(recs, Criteria{Chips: []Chip{{Field: "productName", Value: "SMART"}}}, nil)
	if ids(got) != "14" {
		t.Fatalf("chip match: %s", ids(got))
	}
	got = Project(recs, Criteria{
		Chips: []Chip{{Field: "productName", Value: "smart"}},
		Term:  "wil", Field: "customerName",
	}, nil)
	if ids(got) != "4" {
		t.Fatalf("chip+term: %s", ids(got))
	}
	// empty term imposes nothing
	if got := Project(recs, Criteria{Field: "customerName"}, nil); len(got) != len(recs) {
		t.Fatalf("empty term filtered records")
	}
}

func TestProjectTermOnlyUsesSelectedField(t *testing.T) {
	recs := contracts()
	// "smith" appears only in customerName
	if got := Project(recs, Criteria{Term: "smith", Field: "productName"}, nil); len(got) != 0 {
		t.Fatalf("term leaked into other fields: %s", ids(got))
	}
}

func TestProjectSameFieldChipsNarrow(t *testing.T) {
	recs := contracts()
	got := Project(recs, Criteria{Chips: []Chip{
		{Field: "customerName", Value: "john"},
		{Field: "customerName", Value: "jane"},
	}}, nil)
	if len(got) != 0 {
		t.Fatalf("same-field chips should AND, got %s", ids(got))
	}
}

func TestProjectAbsentFieldIsEmpty(t *testing.T) {
	recs := []model.Record{{ID: "x", Fields: map[string]any{}}}
	if got := Project(recs, Criteria{Chips: []Chip{{Field: "customerName", Value: "a"}}}, nil); len(got) != 0 {
		t.Fatalf("absent field should not match non-empty chip")
	}
}

func TestProjectIdempotentAndOrderPreserving(t *testing.T) {
	var recs []model.Record
	for i := 0; i < 30; i++ {
		recs = append(recs, model.Record{ID: fmt.Sprint(i), Fields: map[string]any{"customerName": fmt.Sprintf("cust-%d", i%3)}})
	}
	c := Criteria{Chips: []Chip{{Field: "customerName", Value: "1"}}, Term: "cust", Field: "customerName"}
	once := Project(recs, c, nil)
	twice := Project(once, c, nil)
	if ids(once) != ids(twice) {
		t.Fatalf("not idempotent")
	}
	for i := 1; i < len(once); i++ {
		var a, b int
		fmt.Sscan(once[i-1].ID, &a)
		fmt.Sscan(once[i].ID, &b)
		if a >= b {
			t.Fatalf("order not preserved")
		}
	}
}

func TestAddingChipNeverGrows(t *testing.T) {
	recs := contracts()
	base := Project(recs, Criteria{}, nil)
	var a Accumulator
	prev := len(base)
	for _, v := range []string{"trn", "12345", "9"} {
		a.Commit("transactionId", v)
		n := len(Project(recs, Criteria{Chips: a.Chips()}, nil))
		if n > prev {
			t.Fatalf("chip %q grew result %d -> %d", v, prev, n)
		}
		prev = n
	}
	for a.Len() > 0 {
		a.Remove(a.Len() - 1)
	}
	if n := len(Project(recs, Criteria{Chips: a.Chips()}, nil)); n != len(base) {
		t.Fatalf("removing all chips did not restore count: %d", n)
	}
}

func TestEvaluatorExpr(t *testing.T) {
	recs := []model.Record{
		{ID: "1", Fields: map[string]any{"price": 14500.0, "status": "Active"}},
		{ID: "2", Fields: map[string]any{"price": 7999.0, "status": "Inactive"}},
		{ID: "3", Fields: map[string]any{"status": "Active"}},
	}
	ev, err := NewEvaluator(Criteria{Expr: "price > 10000 && status == 'Active'"}, nil)
	if err != nil {
		t.Fatalf("expr: %v", err)
	}
	if got := ids(ev.Filter(recs)); got != "1" {
		t.Fatalf("expr filter: %s", got)
	}
	if _, err := NewEvaluator(Criteria{Expr: "price >"}, nil); err == nil {
		t.Fatalf("invalid expression accepted")
	}
}
