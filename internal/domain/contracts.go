package domain

import (
	"encoding/json"
	"fmt"

	"merchantconsole/internal/export"
	"merchantconsole/internal/model"
	"merchantconsole/internal/reconcile"
)

type rawAddress struct {
	Zip          string  `json:"zip"`
	City         string  `json:"city"`
	Name         string  `json:"name"`
	Phone        *string `json:"phone"`
	Company      *string `json:"company"`
	Country      string  `json:"country"`
	Address1     string  `json:"address1"`
	Address2     *string `json:"address2"`
	Latitude     float64 `json:"latitude"`
	Province     string  `json:"province"`
	LastName     string  `json:"last_name"`
	Longitude    float64 `json:"longitude"`
	FirstName    string  `json:"first_name"`
	CountryCode  string  `json:"country_code"`
	ProvinceCode string  `json:"province_code"`
}

type rawContract struct {
	Policy struct {
		ID            string  `json:"id"`
		PolicyNumber  string  `json:"policy_number"`
		Status        string  `json:"status"`
		Type          string  `json:"type"`
		StartDate     string  `json:"start_date"`
		EndDate       string  `json:"end_date"`
		PremiumAmount float64 `json:"premium_amount"`
		CreatedAt     string  `json:"created_at"`
	} `json:"policy"`
	Customer struct {
		ID       string `json:"id"`
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
	} `json:"customer"`
	Product struct {
		ID    string  `json:"id"`
		Title string  `json:"title"`
		Price float64 `json:"price"`
	} `json:"product"`
}

type rawContractDetail struct {
	PolicyInfo *struct {
		ID           string `json:"id"`
		PolicyNumber string `json:"policy_number"`
		StartDate    string `json:"start_date"`
		EndDate      string `json:"end_date"`
		Status       string `json:"status"`
		CustomerID   string `json:"Customer_ID"`
		PolicyType   string `json:"policy_type"`
	} `json:"policyInfo"`
	Customer *struct {
		FullName string      `json:"full_name"`
		Email    string      `json:"email"`
		Phone    string      `json:"phone"`
		Address  *rawAddress `json:"address"`
	} `json:"customer"`
	Merchant *struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		ShopURL string `json:"shop_url"`
	} `json:"merchant"`
}

func contractsDomain() *Domain {
	return &Domain{
		Name:  Contracts,
		Title: "Contracts",
		Fields: []model.FieldSpec{
			{Key: "transactionId", Label: "Transaction ID"},
			{Key: "customerName", Label: "Customer Name"},
			{Key: "productName", Label: "Product Name"},
		},
		Columns: []export.Column{
			{Header: "Type", Field: "type"},
			{Header: "Transaction ID", Field: "transactionId"},
			{Header: "Trans Date", Field: "date"},
			{Header: "Customer Name", Field: "customerName"},
			{Header: "Customer Email", Field: "customerEmail"},
			{Header: "Product Name", Field: "productName"},
			{Header: "Contract ID", Field: "contractId"},
			{Header: "Price", Field: "price"},
			{Header: "Status", Field: "status"},
		},
		Required: []string{"customer", "transaction", "store", "contract"},
		Editable: []string{"customer"},
		ListFields: map[string]string{
			"customer.fullName": "customerName",
			"customer.email":    "customerEmail",
		},
		Endpoints: Endpoints{
			List:   "/api/merchant/getContracts",
			Detail: "/api/merchant/getContractDetails",
			Edit:   "/api/merchant/editContractDetails",
		},
		DecodeList:   decodeContracts,
		DecodeDetail: decodeContractDetail,
		DetailBody:   func(id string) any { return map[string]string{"policy_id": id} },
		EditBody:     contractEditBody,
	}
}

func decodeContracts(raw json.RawMessage) ([]model.Record, error) {
	var items []rawContract
	if err := decodeShape(raw, &items); err != nil {
		return nil, fmt.Errorf("contracts: %w", err)
	}
	out := make([]model.Record, 0, len(items))
	for _, it := range items {
		out = append(out, model.Record{ID: it.Policy.ID, Fields: map[string]any{
			"transactionId": it.Policy.PolicyNumber,
			"contractId":    it.Policy.ID,
			"status":        it.Policy.Status,
			"type":          it.Policy.Type,
			"date":          it.Policy.CreatedAt,
			"customerId":    it.Customer.ID,
			"customerName":  it.Customer.FullName,
			"customerEmail": it.Customer.Email,
			"productName":   it.Product.Title,
			"price":         it.Product.Price,
		}})
	}
	return out, nil
}

func decodeContractDetail(raw json.RawMessage) (*model.Detail, error) {
	var r rawContractDetail
	if err := decodeShape(raw, &r); err != nil {
		return nil, fmt.Errorf("contract detail: %w", err)
	}
	if r.PolicyInfo == nil || r.Customer == nil || r.Customer.Address == nil || r.Merchant == nil {
		return nil, fmt.Errorf("contract detail: %v: %w", errMissing, model.ErrShapeMismatch)
	}
	p, c, a, m := r.PolicyInfo, r.Customer, r.Customer.Address, r.Merchant
	d := &model.Detail{ID: p.ID, Sections: []model.Section{
		section("customer",
			"customerId", p.CustomerID,
			"fullName", c.FullName,
			"phoneNumber", c.Phone,
			"email", c.Email,
			"address", a.Address1,
			"address2", str(a.Address2),
			"city", a.City,
			"state", a.Province,
			"pinCode", a.Zip,
			"country", a.Country,
			"shippingAddress", a.Address1,
			"shippingAddress2", str(a.Address2),
			"shippingCity", a.City,
			"shippingState", a.Province,
			"shippingPinCode", a.Zip,
			"shippingCountry", a.Country,
		),
		section("transaction", "transactionId", p.PolicyNumber, "currencyCode", "INR"),
		section("store", "storeName", m.Name, "storeId", m.ID),
		section("contract",
			"contractId", p.ID,
			"status", p.Status,
			"dateUpdated", longDate(p.StartDate),
			"purchasePrice", "",
			"planCategory", p.PolicyType,
			"transactionDate", longDate(p.StartDate),
			"dateRefunded", "--",
			"dateCanceled", "--",
		),
		{Name: "shipments"},
		{Name: "unassigned"},
	}}
	return d, nil
}

// contractEditBody builds the editContractDetails request from the held
// detail overlaid with the edited customer fields.
func contractEditBody(merchantID string, prior model.Detail, in reconcile.EditIntent) any {
	cust, _ := prior.Section("customer")
	get := func(k string) string {
		if v, ok := in.Sections["customer"][k]; ok {
			return v
		}
		return cust.Fields[k]
	}
	var addr2 *string
	if v := get("address2"); v != "" {
		addr2 = &v
	}
	return map[string]any{
		"customer_id": get("customerId"),
		"policy_id":   in.RecordID,
		"User_id":     merchantID,
		"customer_data": map[string]string{
			"full_name": get("fullName"),
			"email":     get("email"),
			"phone":     get("phoneNumber"),
		},
		"address": rawAddress{
			Zip:      get("pinCode"),
			City:     get("city"),
			Name:     get("fullName"),
			Country:  get("country"),
			Address1: get("address"),
			Address2: addr2,
			Province: get("state"),
		},
	}
}
