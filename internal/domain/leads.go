package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"merchantconsole/internal/export"
	"merchantconsole/internal/model"
)

type rawLead struct {
	ID              string  `json:"id"`
	TransactionID   string  `json:"transactionId"`
	TransactionDate string  `json:"transactionDate"`
	CustomerName    string  `json:"customerName"`
	CustomerEmail   string  `json:"customerEmail"`
	ProductName     string  `json:"productName"`
	Quantity        int     `json:"quantity"`
	LineItemPrice   float64 `json:"lineItemPrice"`
	Status          string  `json:"status"`
}

func leadsDomain() *Domain {
	return &Domain{
		Name:  Leads,
		Title: "Leads",
		Fields: []model.FieldSpec{
			{Key: "transactionId", Label: "Transaction ID"},
			{Key: "customerName", Label: "Customer Name"},
			{Key: "productName", Label: "Product Name"},
		},
		Columns: []export.Column{
			{Header: "Transaction ID", Field: "transactionId"},
			{Header: "Transaction Date", Field: "transactionDate"},
			{Header: "Customer Name", Field: "customerName"},
			{Header: "Customer Email", Field: "customerEmail"},
			{Header: "Product Name", Field: "productName"},
			{Header: "Quantity", Field: "quantity"},
			{Header: "Line Item Price", Field: "lineItemPrice"},
			{Header: "Status", Field: "status"},
		},
		Endpoints:   Endpoints{List: "/api/merchant/getLeads"},
		DecodeList:  decodeLeads,
		LocalDetail: flatDetail("lead"),
	}
}

func decodeLeads(raw json.RawMessage) ([]model.Record, error) {
	var items []rawLead
	if err := decodeShape(raw, &items); err != nil {
		return nil, fmt.Errorf("leads: %w", err)
	}
	out := make([]model.Record, 0, len(items))
	for _, l := range items {
		out = append(out, leadRecord(l))
	}
	return out, nil
}

func leadRecord(l rawLead) model.Record {
	return model.Record{ID: l.ID, Fields: map[string]any{
		"transactionId":   l.TransactionID,
		"transactionDate": l.TransactionDate,
		"customerName":    l.CustomerName,
		"customerEmail":   l.CustomerEmail,
		"productName":     l.ProductName,
		"quantity":        l.Quantity,
		"lineItemPrice":   l.LineItemPrice,
		"status":          l.Status,
	}}
}

// LeadInput is what the create-lead form collects.
type LeadInput struct {
	TransactionID   string
	TransactionDate string
	CustomerName    string
	CustomerEmail   string
	ProductName     string
	Quantity        int
	LineItemPrice   float64
}

// NewLead builds a Pending lead with a fresh id, filling form defaults.
func NewLead(in LeadInput, now time.Time) model.Record {
	l := rawLead{
		ID:              uuid.NewString(),
		TransactionID:   strings.TrimSpace(in.TransactionID),
		TransactionDate: strings.TrimSpace(in.TransactionDate),
		CustomerName:    strings.TrimSpace(in.CustomerName),
		CustomerEmail:   strings.TrimSpace(in.CustomerEmail),
		ProductName:     strings.TrimSpace(in.ProductName),
		Quantity:        in.Quantity,
		LineItemPrice:   in.LineItemPrice,
		Status:          "Pending",
	}
	if l.TransactionDate == "" {
		l.TransactionDate = now.UTC().Format("2006-01-02")
	}
	if l.CustomerName == "" {
		l.CustomerName = "New Customer"
	}
	if l.ProductName == "" {
		l.ProductName = "Unknown Product"
	}
	if l.Quantity <= 0 {
		l.Quantity = 1
	}
	return leadRecord(l)
}

// flatDetail renders a list record as a single-section detail.
func flatDetail(name string) func(model.Record) model.Detail {
	return func(r model.Record) model.Detail {
		s := model.Section{Name: name, Fields: make(map[string]string, len(r.Fields))}
		for k := range r.Fields {
			s.Fields[k] = model.DefaultAccess(r, k)
		}
		return model.Detail{ID: r.ID, Sections: []model.Section{s}}
	}
}
