package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"merchantconsole/internal/model"
	"merchantconsole/internal/reconcile"
)

func TestRegistry(t *testing.T) {
	if len(All) != 5 || All[0] != Contracts || All[4] != Users {
		t.Fatalf("tab order %v", All)
	}
	d, ok := Lookup(" Products ")
	if !ok || !d.CanToggle() || d.CanEdit() {
		t.Fatalf("products lookup")
	}
	if _, ok := Lookup("invoices"); ok {
		t.Fatalf("unknown domain found")
	}
	for _, n := range All {
		d := MustLookup(n)
		if len(d.Fields) < 2 || len(d.Columns) == 0 || d.DecodeList == nil {
			t.Fatalf("%s incomplete", n)
		}
	}
}

func TestDecodeContracts(t *testing.T) {
	raw := json.RawMessage(`[{"policy":{"id":"P-1","policy_number":"TX-9","status":"Active","type":"Extended","created_at":"2025-06-01T10:00:00Z"},
		"customer":{"id":"C-1","full_name":"Jane Doe","email":"jane@example.com"},
		"product":{"title":"Smart TV","price":14500}}]`)
	recs, err := decodeContracts(raw)
	if err != nil || len(recs) != 1 {
		t.Fatalf("decode: %v", err)
	}
	acc := MustLookup(Contracts).Accessor()
	if recs[0].ID != "P-1" || acc(recs[0], "transactionId") != "TX-9" || acc(recs[0], "price") != "14500" {
		t.Fatalf("record %+v", recs[0])
	}
	if _, err := decodeContracts(json.RawMessage(`{"not":"a list"}`)); !errors.Is(err, model.ErrShapeMismatch) {
		t.Fatalf("expected shape mismatch, got %v", err)
	}
}

func TestContractDetailShape(t *testing.T) {
	full := json.RawMessage(`{"policyInfo":{"id":"P-1","policy_number":"TX-9","start_date":"2025-06-01","status":"Active","Customer_ID":"C-1","policy_type":"Extended"},
		"customer":{"full_name":"Jane","email":"j@x.io","phone":"1","address":{"address1":"1 Main","address2":null,"city":"Pune","province":"MH","zip":"411001","country":"India"}},
		"merchant":{"id":"M-1","name":"Acme"}}`)
	d, err := decodeContractDetail(full)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	c := MustLookup(Contracts)
	if !d.HasSections(c.Required...) {
		t.Fatalf("missing sections")
	}
	sec, _ := d.Section("contract")
	if sec.Fields["transactionDate"] != "01 June 2025" {
		t.Fatalf("date %q", sec.Fields["transactionDate"])
	}
	cust, _ := d.Section("customer")
	if cust.Fields["shippingCity"] != "Pune" || cust.Fields["address2"] != "" {
		t.Fatalf("customer %v", cust.Fields)
	}
	if _, err := decodeContractDetail(json.RawMessage(`{"updated":true}`)); !errors.Is(err, model.ErrShapeMismatch) {
		t.Fatalf("partial payload should be a shape mismatch: %v", err)
	}
}

func TestContractEditBodyOverlaysIntent(t *testing.T) {
	prior := model.Detail{ID: "P-1", Sections: []model.Section{{Name: "customer", Fields: map[string]string{
		"customerId": "C-1", "fullName": "Jane", "email": "j@x.io", "phoneNumber": "1", "city": "Pune",
	}}}}
	in := reconcile.EditIntent{RecordID: "P-1", Sections: map[string]map[string]string{"customer": {"fullName": "Janet"}}}
	b, err := json.Marshal(contractEditBody("M-1", prior, in))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, want := range []string{`"full_name":"Janet"`, `"email":"j@x.io"`, `"policy_id":"P-1"`, `"User_id":"M-1"`, `"city":"Pune"`} {
		if !strings.Contains(s, want) {
			t.Fatalf("body missing %s: %s", want, s)
		}
	}
	ups := MustLookup(Contracts).ListUpdates(in)
	if len(ups) != 1 || ups[0].Field != "customerName" || ups[0].Value != "Janet" {
		t.Fatalf("list updates %+v", ups)
	}
}

func TestDecodeClaimsQuirks(t *testing.T) {
	raw := json.RawMessage(`[
		{"id":"CL-1","claim_type":"Accidental","policy_id":"P-1","created_at":"2025-01-02","customer_name":null,"damage":["screen","water"],"status":"Weird"},
		{"id":"CL-2","claim_type":"Extended","policy_id":"P-2","created_at":"2025-01-03","incident_date":"2024-12-30","damage":"scratch","status":"Approved"},
		{"id":"CL-3","claim_type":"Extended","policy_id":"P-3","created_at":"2025-01-04","damage":null,"status":"Denied"}]`)
	recs, err := decodeClaims(raw)
	if err != nil || len(recs) != 3 {
		t.Fatalf("decode: %v", err)
	}
	if recs[0].Fields["failureType"] != "screen, water" || recs[0].Fields["status"] != "Pending" || recs[0].Fields["customerName"] != "" {
		t.Fatalf("claim 1 %+v", recs[0].Fields)
	}
	if recs[1].Fields["failureType"] != "scratch" || recs[1].Fields["incidentDate"] != "2024-12-30" {
		t.Fatalf("claim 2 %+v", recs[1].Fields)
	}
	if recs[2].Fields["failureType"] != "" {
		t.Fatalf("claim 3 %+v", recs[2].Fields)
	}
}

func TestClaimDetail(t *testing.T) {
	raw := json.RawMessage(`{"id":"CL-1","policy_id":"P-1","merchant_id":"M-1","plan_id":"PL","claim_type":"Accidental",
		"status":"declined","created_at":"2025-01-02T00:00:00Z","high_priority":true,"deductible_applied":null,"damage":["screen"],
		"product":{"title":"TV","main_product_title":"Acme TV","variant_id":42,"price":14500},
		"customer":{"full_name":"Jane","email":"j@x.io","phone":null,"address":{"address1":"1 Main","city":"Pune","province":"","zip":"411001","country":"India"}}}`)
	d, err := decodeClaimDetail(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !d.HasSections(MustLookup(Claims).Required...) {
		t.Fatalf("sections")
	}
	sum, _ := d.Section("summary")
	so, _ := d.Section("service_order")
	cust, _ := d.Section("customer")
	if sum.Fields["status"] != "Denied" || so.Fields["assignee"] != "High Priority" || so.Fields["remainingCoverage"] != "––" {
		t.Fatalf("summary=%v so=%v", sum.Fields, so.Fields)
	}
	if so.Fields["productListPrice"] != "₹ 14,500" {
		t.Fatalf("price %q", so.Fields["productListPrice"])
	}
	if cust.Fields["address"] != "1 Main  Pune  411001  India" {
		t.Fatalf("address %q", cust.Fields["address"])
	}
}

func TestDecodeProductsFlattensVariants(t *testing.T) {
	raw := json.RawMessage(`[{"product_id":7,"variants":[
		{"id":"v1","v_title":"  ","title":"Speaker","price":10,"all_protection_active":true},
		{"id":"v2","v_title":null,"title":null,"price":12}]}]`)
	recs, err := decodeProducts(raw)
	if err != nil || len(recs) != 2 {
		t.Fatalf("decode: %v", err)
	}
	if recs[0].Fields["name"] != "Speaker" || recs[0].Fields[fieldDisplayOffered] != true {
		t.Fatalf("v1 %+v", recs[0].Fields)
	}
	if recs[1].Fields["name"] != "Product 7" || recs[1].Fields[fieldDisplayOffered] != false {
		t.Fatalf("v2 %+v", recs[1].Fields)
	}
}

func TestDecodeToggle(t *testing.T) {
	p := MustLookup(Products)
	ups, err := p.DecodeToggle(json.RawMessage(`{"message":"ok","updates":[{"id":"v1","newStatus":true},{"id":"v2","newStatus":true}]}`))
	if err != nil || len(ups) != 2 || ups[1].RecordID != "v2" || ups[1].Value != true {
		t.Fatalf("updates %+v err=%v", ups, err)
	}
	if _, err := p.DecodeToggle(json.RawMessage(`{"message":"product not found","updates":[]}`)); !errors.Is(err, model.ErrMutationRejected) {
		t.Fatalf("empty updates should reject: %v", err)
	}
	u := MustLookup(Users)
	ups, _ = u.DecodeToggle(json.RawMessage(`{"updates":[{"id":"u1","newStatus":false}]}`))
	if len(ups) != 2 || ups[1].Field != "status" || ups[1].Value != "Deactivated" {
		t.Fatalf("user updates %+v", ups)
	}
}

func TestNewLeadDefaults(t *testing.T) {
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	r := NewLead(LeadInput{TransactionID: "TX-1"}, now)
	if r.ID == "" || r.Fields["status"] != "Pending" || r.Fields["customerName"] != "New Customer" ||
		r.Fields["productName"] != "Unknown Product" || r.Fields["quantity"] != 1 || r.Fields["transactionDate"] != "2026-10-18" {
		t.Fatalf("lead %+v", r)
	}
	if other := NewLead(LeadInput{}, now); other.ID == r.ID {
		t.Fatalf("ids not unique")
	}
}

func TestUserDetailRoundTrip(t *testing.T) {
	u := MustLookup(Users)
	rec := userRecord(rawUser{ID: "u1", FirstName: "Riya", LastName: "Sharma", Email: "r@x.io", Status: "Active"})
	if rec.Fields[fieldActive] != true {
		t.Fatalf("active flag")
	}
	d, ok := u.Detail(rec)
	if !ok || !d.HasSections(u.Required...) {
		t.Fatalf("local detail")
	}
	if _, err := decodeUserDetail(json.RawMessage(`{"ok":1}`)); !errors.Is(err, model.ErrShapeMismatch) {
		t.Fatalf("partial user: %v", err)
	}
}
