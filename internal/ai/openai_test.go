package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"merchantconsole/internal/model"
)

var fields = []model.FieldSpec{
	{Key: "customerName", Label: "Customer Name"},
	{Key: "transactionId", Label: "Transaction ID"},
}

func TestParseChipsDropsUnknownFields(t *testing.T) {
	raw := `{"chips":[{"field":"customerName","value":" jane "},{"field":"planet","value":"mars"},{"field":"transactionId","value":"  "}],"expr":" price > 10 "}`
	s, err := parseChips([]byte(raw), fields)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(s.Chips) != 1 || s.Chips[0].Value != "jane" || s.Dropped != 2 {
		t.Fatalf("suggestion %+v", s)
	}
	if s.Expr != "price > 10" {
		t.Fatalf("expr %q", s.Expr)
	}
	if _, err := parseChips([]byte("not json"), fields); !errors.Is(err, model.ErrShapeMismatch) {
		t.Fatalf("garbage: %v", err)
	}
}

func TestDisabledWithoutKey(t *testing.T) {
	var c *OpenAIClient
	if _, err := c.SuggestChips(context.Background(), fields, "x"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("nil client: %v", err)
	}
	c = NewOpenAIClient("", "", "m", time.Second)
	if c.Enabled() {
		t.Fatalf("enabled without key")
	}
}

func TestSuggestChipsAgainstFakeServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "customerName") {
			t.Errorf("prompt lacks field table")
		}
		content, _ := json.Marshal(map[string]any{"chips": []map[string]string{{"field": "customerName", "value": "Asha"}}})
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "c1",
			"object":  "chat.completion",
			"choices": []map[string]any{{"index": 0, "message": map[string]string{"role": "assistant", "content": string(content)}}},
		})
	}))
	defer srv.Close()

	c := NewOpenAIClient("k", srv.URL, "test-model", 5*time.Second)
	s, err := c.SuggestChips(context.Background(), fields, "contracts for Asha")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if len(s.Chips) != 1 || s.Chips[0].Field != "customerName" {
		t.Fatalf("chips %+v", s.Chips)
	}
}
