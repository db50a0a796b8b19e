// Package domain describes the five record collections of the console:
// their filterable fields, export columns, wire payloads and detail layout.
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"merchantconsole/internal/export"
	"merchantconsole/internal/model"
	"merchantconsole/internal/mutate"
	"merchantconsole/internal/reconcile"
)

type Name string

const (
	Contracts Name = "contracts"
	Claims    Name = "claims"
	Leads     Name = "leads"
	Products  Name = "products"
	Users     Name = "users"
)

// Endpoints are paths relative to the API base. Empty means unsupported.
type Endpoints struct {
	List   string
	Detail string
	Edit   string
	Toggle string
}

type Domain struct {
	Name    Name
	Title   string
	Fields  []model.FieldSpec
	Columns []export.Column

	// ToggleField is the boolean field flipped by the toggle action, "" if none.
	ToggleField string
	// Required sections make an edit response a full detail.
	Required []string
	// Editable sections, in form order.
	Editable []string
	// ListFields maps "section.field" of an edit onto the list record field it mirrors.
	ListFields map[string]string

	Endpoints Endpoints

	DecodeList   func(raw json.RawMessage) ([]model.Record, error)
	DecodeDetail func(raw json.RawMessage) (*model.Detail, error)
	DecodeToggle func(raw json.RawMessage) ([]mutate.Update, error)
	DetailBody   func(id string) any
	ToggleBody   func(r model.Record) any
	EditBody     func(merchantID string, prior model.Detail, in reconcile.EditIntent) any
	// LocalDetail builds the detail from the list record when there is no detail endpoint.
	LocalDetail func(r model.Record) model.Detail
}

var registry = map[Name]*Domain{}

// All lists the domains in tab order.
var All []Name

func register(d *Domain) {
	registry[d.Name] = d
	All = append(All, d.Name)
}

func init() {
	register(contractsDomain())
	register(claimsDomain())
	register(leadsDomain())
	register(productsDomain())
	register(usersDomain())
}

// Lookup finds a domain by name (case-insensitive).
func Lookup(name string) (*Domain, bool) {
	d, ok := registry[Name(strings.ToLower(strings.TrimSpace(name)))]
	return d, ok
}

func MustLookup(n Name) *Domain {
	d, ok := registry[n]
	if !ok {
		panic(fmt.Sprintf("unknown domain %q", n))
	}
	return d
}

func (d *Domain) Accessor() model.Accessor { return model.FieldAccessor(d.Fields) }

func (d *Domain) CanToggle() bool { return d.ToggleField != "" && d.Endpoints.Toggle != "" }
func (d *Domain) CanEdit() bool   { return len(d.Editable) > 0 && d.Endpoints.Edit != "" }

// ListUpdates maps an applied edit onto updates of the list record.
func (d *Domain) ListUpdates(in reconcile.EditIntent) []mutate.Update {
	var out []mutate.Update
	for sec, fields := range in.Sections {
		for k, v := range fields {
			if target, ok := d.ListFields[sec+"."+k]; ok {
				out = append(out, mutate.Update{RecordID: in.RecordID, Field: target, Value: v})
			}
		}
	}
	return out
}

// Detail returns the detail of r for domains that build it locally.
func (d *Domain) Detail(r model.Record) (model.Detail, bool) {
	if d.LocalDetail == nil {
		return model.Detail{}, false
	}
	return d.LocalDetail(r), true
}

func decodeShape(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return fmt.Errorf("empty payload: %w", model.ErrShapeMismatch)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%v: %w", err, model.ErrShapeMismatch)
	}
	return nil
}

var errMissing = errors.New("missing required object")

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// longDate renders an ISO timestamp as "02 January 2006"; unparsable input is returned as is.
func longDate(iso string) string {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, iso); err == nil {
			return t.Format("02 January 2006")
		}
	}
	return iso
}

var printer = message.NewPrinter(language.English)

// rupees formats an amount the way the console shows prices; nil renders "––".
func rupees(amt *float64) string {
	if amt == nil {
		return "––"
	}
	if *amt == float64(int64(*amt)) {
		return printer.Sprintf("₹ %d", int64(*amt))
	}
	return printer.Sprintf("₹ %.2f", *amt)
}

func section(name string, kv ...string) model.Section {
	s := model.Section{Name: name, Fields: make(map[string]string, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		s.Fields[kv[i]] = kv[i+1]
	}
	return s
}
