package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	altai "github.com/sashabaranov/go-openai"

	"merchantconsole/internal/filter"
	"merchantconsole/internal/model"
	"merchantconsole/internal/util/logx"
)

// ErrDisabled is returned when no API key is configured or the console runs offline.
var ErrDisabled = errors.New("openai disabled")

// OpenAIClient turns a free-text request into filter chips.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	model   string
	timeout time.Duration
}

func NewOpenAIClient(apiKey, baseURL, model string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{apiKey: apiKey, baseURL: baseURL, model: model, timeout: timeout}
}

func (c *OpenAIClient) Enabled() bool { return c != nil && c.apiKey != "" }

// Suggestion is what the model proposed, already checked against the field table.
type Suggestion struct {
	Chips   []filter.Chip
	Expr    string
	Dropped int
}

type aiResponse struct {
	Chips []struct {
		Field string `json:"field"`
		Value string `json:"value"`
	} `json:"chips"`
	Expr string `json:"expr"`
}

func (c *OpenAIClient) SuggestChips(ctx context.Context, fields []model.FieldSpec, request string) (Suggestion, error) {
	if !c.Enabled() {
		return Suggestion{}, ErrDisabled
	}
	ctx2, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	resp, err := c.callAlt(ctx2, buildChipPrompt(fields, request))
	if err != nil {
		return Suggestion{}, fmt.Errorf("suggest chips: %w", err)
	}
	s, err := parseChips([]byte(resp), fields)
	if err != nil {
		return Suggestion{}, err
	}
	logx.Infof("ai: %d chips suggested (%d dropped)", len(s.Chips), s.Dropped)
	return s, nil
}

func (c *OpenAIClient) callAlt(ctx context.Context, prompt string) (string, error) {
	cfg := altai.DefaultConfig(c.apiKey)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	cli := altai.NewClientWithConfig(cfg)
	resp, err := cli.CreateChatCompletion(ctx, altai.ChatCompletionRequest{
		Model: c.model,
		Messages: []altai.ChatCompletionMessage{
			{Role: altai.ChatMessageRoleSystem, Content: "You translate search requests into record filters and return ONLY strict JSON following the specified contract. No prose, no code fences."},
			{Role: altai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature:    0.1,
		ResponseFormat: &altai.ChatCompletionResponseFormat{Type: altai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func buildChipPrompt(fields []model.FieldSpec, request string) string {
	var b strings.Builder
	b.WriteString("Return ONLY strict JSON matching this contract: {chips:[{field,value}], expr}. ")
	b.WriteString("Each chip is a case-insensitive substring match on one field. ")
	b.WriteString("expr is optional and may be empty.\nFields:\n")
	for _, f := range fields {
		fmt.Fprintf(&b, "- %s (%s)\n", f.Key, f.Label)
	}
	b.WriteString("Request:\n")
	b.WriteString(request)
	return b.String()
}

// parseChips keeps chips whose field exists and whose value is non-blank.
func parseChips(raw []byte, fields []model.FieldSpec) (Suggestion, error) {
	var out aiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return Suggestion{}, fmt.Errorf("ai response: %w", model.ErrShapeMismatch)
	}
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.Key] = true
	}
	var s Suggestion
	for _, ch := range out.Chips {
		v := strings.TrimSpace(ch.Value)
		if !known[ch.Field] || v == "" {
			s.Dropped++
			continue
		}
		s.Chips = append(s.Chips, filter.Chip{Field: ch.Field, Value: v})
	}
	s.Expr = strings.TrimSpace(out.Expr)
	return s, nil
}
