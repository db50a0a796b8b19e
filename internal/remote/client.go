package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"merchantconsole/internal/domain"
	"merchantconsole/internal/model"
	"merchantconsole/internal/mutate"
	"merchantconsole/internal/reconcile"
	"merchantconsole/internal/util"
	"merchantconsole/internal/util/logx"
	"merchantconsole/internal/version"
)

// Client is the HTTP merchant API backend.
type Client struct {
	base       string
	token      string
	merchantID string
	http       *http.Client
}

func NewClient(base, token, merchantID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		base:       strings.TrimRight(base, "/"),
		token:      token,
		merchantID: merchantID,
		http:       &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string { return "http:" + c.base + "#" + c.merchantID }

// envelope covers every response wrapper the API uses, including the
// misspelled "sucess" flag of the claims endpoint and "productData".
type envelope struct {
	Success     *bool           `json:"success"`
	Sucess      *bool           `json:"sucess"`
	Data        json.RawMessage `json:"data"`
	ProductData json.RawMessage `json:"productData"`
	Message     string          `json:"message"`
}

func (e envelope) ok() (bool, bool) {
	switch {
	case e.Success != nil:
		return *e.Success, true
	case e.Sucess != nil:
		return *e.Sucess, true
	}
	return false, false
}

// unwrap returns the payload of a response body. Bodies without a success
// flag (the toggle endpoints) are returned whole.
func unwrap(body []byte) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		// a bare array or scalar is its own payload
		trimmed := bytes.TrimSpace(body)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			return trimmed, nil
		}
		return nil, fmt.Errorf("%v: %w", err, model.ErrShapeMismatch)
	}
	ok, flagged := env.ok()
	if flagged && !ok {
		msg := env.Message
		if msg == "" {
			msg = "API returned success=false"
		}
		return nil, fmt.Errorf("%s: %w", msg, model.ErrMutationRejected)
	}
	switch {
	case len(env.Data) > 0:
		return env.Data, nil
	case len(env.ProductData) > 0:
		return env.ProductData, nil
	}
	return json.RawMessage(body), nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in any) (json.RawMessage, error) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		logx.Debugf("remote: %s %s %s", method, path, util.RedactPII(string(b)))
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, ctx.Err())
		}
		return nil, fmt.Errorf("%s %s: %w: %w", method, path, model.ErrTransport, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w: %w", method, path, model.ErrTransport, err)
	}
	if resp.StatusCode >= 300 {
		return nil, statusError(method, path, resp.StatusCode, raw)
	}
	payload, err := unwrap(raw)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return payload, nil
}

func statusError(method, path string, code int, body []byte) error {
	var env envelope
	msg := http.StatusText(code)
	if json.Unmarshal(body, &env) == nil && env.Message != "" {
		msg = env.Message
	}
	var kind error
	switch {
	case code == http.StatusNotFound:
		kind = model.ErrNotFound
	case code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout:
		kind = model.ErrTransport
	default:
		kind = model.ErrMutationRejected
	}
	return fmt.Errorf("%s %s: %d %s: %w", method, path, code, msg, kind)
}

func (c *Client) List(ctx context.Context, d *domain.Domain) ([]model.Record, error) {
	if d.Endpoints.List == "" {
		return nil, fmt.Errorf("%s: no list endpoint: %w", d.Name, model.ErrNotFound)
	}
	q := url.Values{}
	if c.merchantID != "" {
		q.Set("User_id", c.merchantID)
	}
	raw, err := c.do(ctx, http.MethodGet, d.Endpoints.List, q, nil)
	if err != nil {
		return nil, err
	}
	return d.DecodeList(raw)
}

func (c *Client) Detail(ctx context.Context, d *domain.Domain, id string) (model.Detail, error) {
	if d.Endpoints.Detail == "" || d.DecodeDetail == nil {
		return model.Detail{}, fmt.Errorf("%s: no detail endpoint: %w", d.Name, model.ErrNotFound)
	}
	raw, err := c.do(ctx, http.MethodPost, d.Endpoints.Detail, nil, d.DetailBody(id))
	if err != nil {
		return model.Detail{}, err
	}
	det, err := d.DecodeDetail(raw)
	if err != nil {
		return model.Detail{}, err
	}
	return *det, nil
}

func (c *Client) Toggle(ctx context.Context, d *domain.Domain, rec model.Record) ([]mutate.Update, error) {
	if !d.CanToggle() {
		return nil, fmt.Errorf("%s: %w", d.Name, mutate.ErrNotToggleable)
	}
	raw, err := c.do(ctx, http.MethodPost, d.Endpoints.Toggle, nil, d.ToggleBody(rec))
	if err != nil {
		return nil, err
	}
	return d.DecodeToggle(raw)
}

// Edit posts the edit. A response that does not decode into a complete
// detail is reported as a partial payload, not an error.
func (c *Client) Edit(ctx context.Context, d *domain.Domain, prior model.Detail, in reconcile.EditIntent) (reconcile.Response, error) {
	if !d.CanEdit() {
		return reconcile.Response{}, fmt.Errorf("%s: not editable: %w", d.Name, model.ErrMutationRejected)
	}
	raw, err := c.do(ctx, http.MethodPost, d.Endpoints.Edit, nil, d.EditBody(c.merchantID, prior, in))
	if err != nil {
		return reconcile.Response{}, err
	}
	det, derr := d.DecodeDetail(raw)
	if derr != nil {
		if !errors.Is(derr, model.ErrShapeMismatch) {
			return reconcile.Response{}, derr
		}
		logx.Warnf("remote: edit %s %s: %v", d.Name, in.RecordID, derr)
		return reconcile.Response{Kind: reconcile.PartialPayload, Raw: raw}, nil
	}
	return reconcile.Classify(det, raw, d.Required), nil
}
