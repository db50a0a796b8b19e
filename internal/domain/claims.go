package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"merchantconsole/internal/export"
	"merchantconsole/internal/model"
)

// damage arrives as a list, a bare string or null.
type damage []string

func (d *damage) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*d = list
		return nil
	}
	var one *string
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	if one != nil {
		*d = damage{*one}
	} else {
		*d = nil
	}
	return nil
}

type rawClaim struct {
	ID            string  `json:"id"`
	ClaimType     string  `json:"claim_type"`
	PolicyID      string  `json:"policy_id"`
	CreatedAt     string  `json:"created_at"`
	CustomerName  *string `json:"customer_name"`
	CustomerEmail *string `json:"customer_email"`
	CustomerID    string  `json:"customer_id"`
	Damage        damage  `json:"damage"`
	Status        string  `json:"status"`
	Description   *string `json:"description"`
	IncidentDate  *string `json:"incident_date"`
}

type rawClaimDetail struct {
	ID                string   `json:"id"`
	PolicyID          string   `json:"policy_id"`
	MerchantID        string   `json:"merchant_id"`
	PlanID            string   `json:"plan_id"`
	ClaimType         string   `json:"claim_type"`
	Description       *string  `json:"description"`
	AmountClaimed     *float64 `json:"amount_claimed"`
	DeductibleApplied *float64 `json:"deductible_applied"`
	Status            string   `json:"status"`
	StatusNotes       *string  `json:"status_notes"`
	CreatedAt         string   `json:"created_at"`
	ReviewedAt        *string  `json:"reviewed_at"`
	WhatToDo          *string  `json:"what_to_do"`
	HighPriority      bool     `json:"high_priority"`
	Damage            damage   `json:"damage"`
	Product           *struct {
		Title            string   `json:"title"`
		MainProductTitle string   `json:"main_product_title"`
		SKU              *string  `json:"sku"`
		VariantID        int64    `json:"variant_id"`
		Price            *float64 `json:"price"`
	} `json:"product"`
	Customer *struct {
		FullName string  `json:"full_name"`
		Email    string  `json:"email"`
		Phone    *string `json:"phone"`
		Address  struct {
			Address1 string `json:"address1"`
			City     string `json:"city"`
			Province string `json:"province"`
			Zip      string `json:"zip"`
			Country  string `json:"country"`
		} `json:"address"`
	} `json:"customer"`
}

func claimsDomain() *Domain {
	return &Domain{
		Name:  Claims,
		Title: "Claims",
		Fields: []model.FieldSpec{
			{Key: "contractId", Label: "Contract ID"},
			{Key: "claimId", Label: "Claim ID"},
			{Key: "customerName", Label: "Customer Name"},
		},
		Columns: []export.Column{
			{Header: "Type", Field: "type"},
			{Header: "Contract ID", Field: "contractId"},
			{Header: "Claim ID", Field: "claimId"},
			{Header: "Customer Name", Field: "customerName"},
			{Header: "Customer Email", Field: "customerEmail"},
			{Header: "Failure Type", Field: "failureType"},
			{Header: "Incident Date", Field: "incidentDate"},
			{Header: "Status", Field: "status"},
		},
		Required: []string{"customer", "claim", "product", "service_order"},
		Endpoints: Endpoints{
			List:   "/api/merchant/getClaims",
			Detail: "/api/merchant/getClaimDetails",
		},
		DecodeList:   decodeClaims,
		DecodeDetail: decodeClaimDetail,
		DetailBody:   func(id string) any { return map[string]string{"claim_id": id} },
	}
}

// claimStatus keeps the three known list statuses; anything else is Pending.
func claimStatus(s string) string {
	switch s {
	case "Pending", "Approved", "Denied":
		return s
	}
	return "Pending"
}

func decodeClaims(raw json.RawMessage) ([]model.Record, error) {
	var items []rawClaim
	if err := decodeShape(raw, &items); err != nil {
		return nil, fmt.Errorf("claims: %w", err)
	}
	out := make([]model.Record, 0, len(items))
	for _, c := range items {
		incident := c.CreatedAt
		if c.IncidentDate != nil {
			incident = *c.IncidentDate
		}
		out = append(out, model.Record{ID: c.ID, Fields: map[string]any{
			"type":          c.ClaimType,
			"contractId":    c.PolicyID,
			"customerId":    c.CustomerID,
			"claimId":       c.ID,
			"customerName":  str(c.CustomerName),
			"customerEmail": str(c.CustomerEmail),
			"failureType":   strings.Join(c.Damage, ", "),
			"incidentDate":  incident,
			"status":        claimStatus(c.Status),
		}})
	}
	return out, nil
}

func decodeClaimDetail(raw json.RawMessage) (*model.Detail, error) {
	var d rawClaimDetail
	if err := decodeShape(raw, &d); err != nil {
		return nil, fmt.Errorf("claim detail: %w", err)
	}
	if d.ID == "" || d.Customer == nil || d.Product == nil {
		return nil, fmt.Errorf("claim detail: %v: %w", errMissing, model.ErrShapeMismatch)
	}
	a := d.Customer.Address
	var addr []string
	for _, p := range []string{a.Address1, a.City, a.Province, a.Zip, a.Country} {
		if p != "" {
			addr = append(addr, p)
		}
	}
	statusDetail := d.Status
	if d.StatusNotes != nil {
		statusDetail = *d.StatusNotes
	}
	coverageYears, coverageTerm := "", ""
	if created, err := time.Parse(time.RFC3339, d.CreatedAt); err == nil {
		coverageYears = fmt.Sprint(created.Year())
		if d.ReviewedAt != nil {
			if reviewed, err := time.Parse(time.RFC3339, *d.ReviewedAt); err == nil {
				coverageTerm = created.Format("02/01/2006") + " - " + reviewed.Format("02/01/2006")
			}
		}
	}
	assignee := "Standard"
	if d.HighPriority {
		assignee = "High Priority"
	}
	return &model.Detail{ID: d.ID, Sections: []model.Section{
		section("summary",
			"claimId", d.ID,
			"contractId", d.PolicyID,
			"product", d.Product.Title,
			"type", d.ClaimType,
			"status", claimDetailStatus(d.Status),
			"failureType", strings.Join(d.Damage, ", "),
		),
		section("customer",
			"fullName", d.Customer.FullName,
			"phone", str(d.Customer.Phone),
			"email", d.Customer.Email,
			"address", strings.Join(addr, "  "),
		),
		section("claim",
			"type", d.ClaimType,
			"statusDetail", statusDetail,
			"incidentDescription", str(d.Description),
			"fraudulentActivity", str(d.WhatToDo),
			"storeName", a.City,
			"poNumber", d.PlanID,
			"storeId", d.MerchantID,
			"coverageYears", coverageYears,
			"coverageTerm", coverageTerm,
		),
		section("product",
			"name", d.Product.Title,
			"manufacturer", d.Product.MainProductTitle,
			"modelNumber", str(d.Product.SKU),
			"serialNumber", fmt.Sprint(d.Product.VariantID),
		),
		section("service_order",
			"serviceOrderId", d.ID,
			"serviceType", d.ClaimType,
			"status", statusDetail,
			"assignee", assignee,
			"remainingCoverage", rupees(d.DeductibleApplied),
			"productListPrice", rupees(d.Product.Price),
		),
	}}, nil
}

func claimDetailStatus(s string) string {
	switch strings.ToLower(s) {
	case "approved":
		return "Approved"
	case "declined":
		return "Denied"
	}
	return "In Review"
}
