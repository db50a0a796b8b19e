package filter

import (
	"strings"

	"github.com/Knetic/govaluate"

	"merchantconsole/internal/model"
)

// Chip is a committed filter predicate: Value must be a case-insensitive
// substring of the record's Field.
type Chip struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Accumulator holds the ordered chip list of one screen.
type Accumulator struct {
	chips []Chip
}

// Commit appends a chip. Blank values are ignored and report false.
func (a *Accumulator) Commit(field, value string) bool {
	v := strings.TrimSpace(value)
	if v == "" {
		return false
	}
	a.chips = append(a.chips, Chip{Field: field, Value: v})
	return true
}

// Remove drops the chip at index i. Out-of-range indexes are ignored.
func (a *Accumulator) Remove(i int) bool {
	if i < 0 || i >= len(a.chips) {
		return false
	}
	a.chips = append(a.chips[:i:i], a.chips[i+1:]...)
	return true
}

func (a *Accumulator) Clear() bool {
	if len(a.chips) == 0 {
		return false
	}
	a.chips = nil
	return true
}

func (a *Accumulator) Chips() []Chip {
	out := make([]Chip, len(a.chips))
	copy(out, a.chips)
	return out
}

func (a *Accumulator) Len() int { return len(a.chips) }

type Criteria struct {
	Chips []Chip
	Term  string // settled live term
	Field string // field the live term is matched against
	Expr  string // govaluate expression over raw record fields
}

type Evaluator struct {
	access model.Accessor
	chips  []Chip // values lowered
	term   string
	field  string
	expr   *govaluate.EvaluableExpression
}

// NewEvaluator prepares c for matching. Only an invalid Expr fails.
func NewEvaluator(c Criteria, access model.Accessor) (*Evaluator, error) {
	if access == nil {
		access = model.DefaultAccess
	}
	e := &Evaluator{access: access, term: strings.ToLower(c.Term), field: c.Field}
	e.chips = make([]Chip, len(c.Chips))
	for i, ch := range c.Chips {
		e.chips[i] = Chip{Field: ch.Field, Value: strings.ToLower(ch.Value)}
	}
	if strings.TrimSpace(c.Expr) != "" {
		expr, err := govaluate.NewEvaluableExpression(c.Expr)
		if err != nil {
			return nil, err
		}
		e.expr = expr
	}
	return e, nil
}

func (e *Evaluator) Match(r model.Record) bool {
	// Chips: all must match, same-field chips narrow further
	for _, ch := range e.chips {
		if !strings.Contains(strings.ToLower(e.access(r, ch.Field)), ch.Value) {
			return false
		}
	}
	if e.term != "" {
		if !strings.Contains(strings.ToLower(e.access(r, e.field)), e.term) {
			return false
		}
	}
	if e.expr != nil {
		params := make(map[string]any, len(r.Fields)+1)
		for k, v := range r.Fields {
			params[k] = v
		}
		params["id"] = r.ID
		result, err := e.expr.Evaluate(params)
		if err != nil {
			return false
		}
		b, ok := result.(bool)
		if !ok || !b {
			return false
		}
	}
	return true
}

// Filter returns the matching records in their original order.
func (e *Evaluator) Filter(recs []model.Record) []model.Record {
	out := make([]model.Record, 0, len(recs))
	for i := range recs {
		if e.Match(recs[i]) {
			out = append(out, recs[i])
		}
	}
	return out
}

// Project filters recs by chips and the settled term. Expr is not applied here,
// so Project never fails.
func Project(recs []model.Record, c Criteria, access model.Accessor) []model.Record {
	c.Expr = ""
	e, _ := NewEvaluator(c, access)
	return e.Filter(recs)
}
