package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"merchantconsole/internal/export"
	"merchantconsole/internal/model"
	"merchantconsole/internal/mutate"
)

type rawVariant struct {
	ID                  string   `json:"id"`
	Title               *string  `json:"title"`
	VTitle              *string  `json:"v_title"`
	Price               float64  `json:"price"`
	ImageURL            string   `json:"image_url"`
	Status              string   `json:"status"`
	Category            []string `json:"category"`
	AllProtectionActive *bool    `json:"all_protection_active"`
	MainProductTitle    string   `json:"main_product_title"`
}

type rawProduct struct {
	ProductID int64        `json:"product_id"`
	Variants  []rawVariant `json:"variants"`
}

type rawToggle struct {
	Message string `json:"message"`
	Updates []struct {
		ID        string `json:"id"`
		NewStatus bool   `json:"newStatus"`
	} `json:"updates"`
}

const fieldDisplayOffered = "displayOffered"

func productsDomain() *Domain {
	return &Domain{
		Name:  Products,
		Title: "Products",
		Fields: []model.FieldSpec{
			{Key: "name", Label: "Name"},
			{Key: "productId", Label: "Product ID"},
		},
		Columns: []export.Column{
			{Header: "Product ID", Field: "productId"},
			{Header: "Variant ID", Field: "id"},
			{Header: "Name", Field: "name"},
			{Header: "Price", Field: "price"},
			{Header: "Display Offered", Field: fieldDisplayOffered},
		},
		ToggleField: fieldDisplayOffered,
		Endpoints: Endpoints{
			List:   "/api/merchant/getAllProducts",
			Toggle: "/api/merchant/toggleProtection",
		},
		DecodeList: decodeProducts,
		DecodeToggle: func(raw json.RawMessage) ([]mutate.Update, error) {
			return decodeToggle(raw, func(id string, on bool) []mutate.Update {
				return []mutate.Update{{RecordID: id, Field: fieldDisplayOffered, Value: on}}
			})
		},
		ToggleBody: func(r model.Record) any {
			return map[string]string{"product_id": model.DefaultAccess(r, "productId")}
		},
		LocalDetail: flatDetail("product"),
	}
}

// decodeProducts flattens products into one record per variant.
func decodeProducts(raw json.RawMessage) ([]model.Record, error) {
	var items []rawProduct
	if err := decodeShape(raw, &items); err != nil {
		return nil, fmt.Errorf("products: %w", err)
	}
	var out []model.Record
	for _, p := range items {
		for _, v := range p.Variants {
			out = append(out, model.Record{ID: v.ID, Fields: map[string]any{
				"id":                v.ID,
				"name":              variantName(p.ProductID, v),
				"productId":         fmt.Sprint(p.ProductID),
				"price":             v.Price,
				"imageUrl":          v.ImageURL,
				fieldDisplayOffered: v.AllProtectionActive != nil && *v.AllProtectionActive,
			}})
		}
	}
	return out, nil
}

func variantName(productID int64, v rawVariant) string {
	if s := strings.TrimSpace(str(v.VTitle)); s != "" {
		return s
	}
	if s := strings.TrimSpace(str(v.Title)); s != "" {
		return s
	}
	return fmt.Sprintf("Product %d", productID)
}

// decodeToggle reads {updates:[{id,newStatus}]}. An empty list is a rejection.
func decodeToggle(raw json.RawMessage, conv func(id string, on bool) []mutate.Update) ([]mutate.Update, error) {
	var r rawToggle
	if err := decodeShape(raw, &r); err != nil {
		return nil, fmt.Errorf("toggle: %w", err)
	}
	if len(r.Updates) == 0 {
		msg := r.Message
		if msg == "" {
			msg = "no updates returned"
		}
		return nil, fmt.Errorf("toggle: %s: %w", msg, model.ErrMutationRejected)
	}
	var out []mutate.Update
	for _, u := range r.Updates {
		out = append(out, conv(u.ID, u.NewStatus)...)
	}
	return out, nil
}
