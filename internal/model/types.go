package model

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Record is one entity of a domain collection (contract, claim, lead, product, user).
type Record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// Get returns the raw value stored under key.
func (r Record) Get(key string) (any, bool) {
	if r.Fields == nil {
		return nil, false
	}
	v, ok := r.Fields[key]
	return v, ok
}

// With returns a copy of r with key set to v. The receiver is not modified.
func (r Record) With(key string, v any) Record {
	out := r.Clone()
	out.Fields[key] = v
	return out
}

func (r Record) Clone() Record {
	f := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		f[k] = v
	}
	return Record{ID: r.ID, Fields: f}
}

// Accessor extracts the comparable text of one field of a record.
type Accessor func(r Record, key string) string

// FieldSpec describes one filterable field of a domain.
type FieldSpec struct {
	Key    string
	Label  string
	Access func(Record) string // nil means Stringify(r.Fields[Key])
}

// FieldAccessor builds an Accessor from a field table. Keys missing from the
// table fall back to the stored value.
func FieldAccessor(fields []FieldSpec) Accessor {
	byKey := make(map[string]func(Record) string, len(fields))
	for _, f := range fields {
		if f.Access != nil {
			byKey[f.Key] = f.Access
		}
	}
	return func(r Record, key string) string {
		if fn, ok := byKey[key]; ok {
			return fn(r)
		}
		return DefaultAccess(r, key)
	}
}

// DefaultAccess returns the stringified field value, "" when absent.
func DefaultAccess(r Record, key string) string {
	v, ok := r.Get(key)
	if !ok || v == nil {
		return ""
	}
	return Stringify(v)
}

func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64, float32, int, int32, int64, uint, uint32, uint64, bool:
		return fmt.Sprint(t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

// Section is one independently mergeable part of a Detail.
type Section struct {
	Name   string              `json:"name"`
	Fields map[string]string   `json:"fields"`
	Items  []map[string]string `json:"items,omitempty"`
}

// Detail is the canonical detail view-model of one record.
type Detail struct {
	ID       string    `json:"id"`
	Sections []Section `json:"sections"`
}

func (d Detail) Section(name string) (Section, bool) {
	for _, s := range d.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// HasSections reports whether every named section is present.
func (d Detail) HasSections(names ...string) bool {
	for _, n := range names {
		if _, ok := d.Section(n); !ok {
			return false
		}
	}
	return true
}

func (d Detail) Clone() Detail {
	out := Detail{ID: d.ID}
	if d.Sections != nil {
		out.Sections = make([]Section, len(d.Sections))
		for i, s := range d.Sections {
			out.Sections[i] = s.Clone()
		}
	}
	return out
}

func (s Section) Clone() Section {
	c := Section{Name: s.Name}
	if s.Fields != nil {
		c.Fields = make(map[string]string, len(s.Fields))
		for k, v := range s.Fields {
			c.Fields[k] = v
		}
	}
	if s.Items != nil {
		c.Items = make([]map[string]string, len(s.Items))
		for i, it := range s.Items {
			m := make(map[string]string, len(it))
			for k, v := range it {
				m[k] = v
			}
			c.Items[i] = m
		}
	}
	return c
}

// FieldNames returns the section's field keys in sorted order.
func (s Section) FieldNames() []string {
	keys := make([]string, 0, len(s.Fields))
	for k := range s.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Store holds one domain's in-memory collection. Reloads replace it wholesale.
type Store struct {
	mu      sync.RWMutex
	recs    []Record
	index   map[string]int
	version uint64
}

func NewStore() *Store {
	return &Store{index: map[string]int{}}
}

// Replace swaps the whole collection. Records with duplicate IDs keep the first occurrence.
func (s *Store) Replace(recs []Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = make([]Record, 0, len(recs))
	s.index = make(map[string]int, len(recs))
	for _, r := range recs {
		if _, dup := s.index[r.ID]; dup {
			continue
		}
		s.index[r.ID] = len(s.recs)
		s.recs = append(s.recs, r.Clone())
	}
	s.version++
}

func (s *Store) Clear() {
	s.Replace(nil)
}

// Snapshot returns a copy of the collection and its version.
func (s *Store) Snapshot() ([]Record, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.recs))
	copy(out, s.recs)
	return out, s.version
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recs)
}

func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return Record{}, false
	}
	return s.recs[i], true
}

// Set writes one field of one record and returns the previous value.
func (s *Store) Set(id, key string, v any) (prev any, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, found := s.index[id]
	if !found {
		return nil, false
	}
	prev = s.recs[i].Fields[key]
	s.recs[i] = s.recs[i].With(key, v)
	s.version++
	return prev, true
}

// CompareAndSet writes v only when the current value equals old.
func (s *Store) CompareAndSet(id, key string, old, v any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, found := s.index[id]
	if !found {
		return false
	}
	if !reflect.DeepEqual(s.recs[i].Fields[key], old) {
		return false
	}
	s.recs[i] = s.recs[i].With(key, v)
	s.version++
	return true
}

// Prepend inserts r at the front; an existing record with the same ID is replaced in place.
func (s *Store) Prepend(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[r.ID]; ok {
		s.recs[i] = r.Clone()
		s.version++
		return
	}
	s.recs = append([]Record{r.Clone()}, s.recs...)
	for i, rec := range s.recs {
		s.index[rec.ID] = i
	}
	s.version++
}
