// Package reconcile merges the outcome of a detail edit into the detail
// the screen already holds, falling back to the submitted values when the
// server answers with something other than a complete detail.
package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"merchantconsole/internal/model"
	"merchantconsole/internal/util"
	"merchantconsole/internal/util/logx"
)

var (
	ErrNoFallback = errors.New("partial response and no prior detail to merge into")
	ErrDiscarded  = errors.New("detail screen closed")
	ErrPending    = errors.New("an edit is already in flight")
)

// Kind tags the shape of an edit response.
type Kind int

const (
	PartialPayload Kind = iota
	FullDetail
)

func (k Kind) String() string {
	if k == FullDetail {
		return "full"
	}
	return "partial"
}

// Path reports how a response was folded into the held detail.
type Path int

const (
	PathNone Path = iota
	PathReplaced
	PathMerged
)

func (p Path) String() string {
	switch p {
	case PathReplaced:
		return "replaced"
	case PathMerged:
		return "merged"
	default:
		return "none"
	}
}

// EditIntent carries the edited values per section and field.
type EditIntent struct {
	RecordID string
	Sections map[string]map[string]string
}

// Response is what the remote store returned for an edit.
type Response struct {
	Kind   Kind
	Detail model.Detail // valid when Kind == FullDetail
	Raw    json.RawMessage
}

// Editor submits an edit to the remote store.
type Editor interface {
	Edit(ctx context.Context, in EditIntent) (Response, error)
}

type EditorFunc func(ctx context.Context, in EditIntent) (Response, error)

func (f EditorFunc) Edit(ctx context.Context, in EditIntent) (Response, error) { return f(ctx, in) }

// Classify tags a decoded detail: FullDetail only if every required section is present.
func Classify(d *model.Detail, raw json.RawMessage, required []string) Response {
	if d == nil || d.ID == "" || !d.HasSections(required...) {
		return Response{Kind: PartialPayload, Raw: raw}
	}
	return Response{Kind: FullDetail, Detail: d.Clone(), Raw: raw}
}

// Reconcile computes the detail to show after a successful edit. prior may be nil.
func Reconcile(prior *model.Detail, in EditIntent, resp Response, required []string) (model.Detail, Path, error) {
	if resp.Kind == FullDetail && resp.Detail.HasSections(required...) {
		return resp.Detail.Clone(), PathReplaced, nil
	}
	if prior == nil {
		return model.Detail{}, PathNone, ErrNoFallback
	}
	out := prior.Clone()
	for name, fields := range in.Sections {
		idx := -1
		for i := range out.Sections {
			if out.Sections[i].Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			out.Sections = append(out.Sections, model.Section{Name: name, Fields: map[string]string{}})
			idx = len(out.Sections) - 1
		}
		if out.Sections[idx].Fields == nil {
			out.Sections[idx].Fields = map[string]string{}
		}
		for k, v := range fields {
			out.Sections[idx].Fields[k] = v
		}
	}
	return out, PathMerged, nil
}

// Result is the outcome of one Submit.
type Result struct {
	Detail model.Detail
	Path   Path
}

// Holder owns the detail shown by one detail screen.
type Holder struct {
	editor   Editor
	required []string

	mu       sync.Mutex
	detail   *model.Detail
	closed   bool
	inflight bool
}

func NewHolder(editor Editor, required []string) *Holder {
	return &Holder{editor: editor, required: required}
}

// Set installs a freshly fetched detail.
func (h *Holder) Set(d model.Detail) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	c := d.Clone()
	h.detail = &c
}

// Detail returns a copy of the held detail.
func (h *Holder) Detail() (model.Detail, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.detail == nil {
		return model.Detail{}, false
	}
	return h.detail.Clone(), true
}

// Submit sends in and folds the response into the held detail. One submit
// runs at a time; a second one returns ErrPending. The lock is not held
// during the remote call.
func (h *Holder) Submit(ctx context.Context, in EditIntent) (Result, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return Result{}, ErrDiscarded
	}
	if h.inflight {
		h.mu.Unlock()
		return Result{}, fmt.Errorf("edit %s: %w", in.RecordID, ErrPending)
	}
	h.inflight = true
	h.mu.Unlock()

	if b, err := json.Marshal(in.Sections); err == nil {
		logx.Debugf("reconcile: submit %s %s", in.RecordID, util.RedactPII(string(b)))
	}
	resp, err := h.editor.Edit(ctx, in)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.inflight = false
	if h.closed {
		return Result{}, ErrDiscarded
	}
	if err != nil {
		logx.Warnf("reconcile: edit %s failed (%s): %v", in.RecordID, model.Classify(err), err)
		return Result{}, fmt.Errorf("edit %s: %w", in.RecordID, err)
	}
	if resp.Kind != FullDetail && len(resp.Raw) > 0 {
		logx.Infof("reconcile: partial response for %s: %s", in.RecordID, util.RedactPII(string(resp.Raw)))
	}
	d, path, err := Reconcile(h.detail, in, resp, h.required)
	if err != nil {
		logx.Errorf("reconcile: %s: %v", in.RecordID, err)
		return Result{}, err
	}
	h.detail = &d
	logx.Infof("reconcile: %s %s", in.RecordID, path)
	return Result{Detail: d.Clone(), Path: path}, nil
}

// Close discards any result that arrives afterwards.
func (h *Holder) Close() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
}
