package domain

import (
	"encoding/json"
	"fmt"

	"merchantconsole/internal/export"
	"merchantconsole/internal/model"
	"merchantconsole/internal/mutate"
	"merchantconsole/internal/reconcile"
)

type rawUser struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Status    string `json:"status"`
}

const fieldActive = "active"

func usersDomain() *Domain {
	return &Domain{
		Name:  Users,
		Title: "Users",
		Fields: []model.FieldSpec{
			{Key: "firstName", Label: "First Name"},
			{Key: "lastName", Label: "Last Name"},
			{Key: "email", Label: "Email"},
		},
		Columns: []export.Column{
			{Header: "First Name", Field: "firstName"},
			{Header: "Last Name", Field: "lastName"},
			{Header: "Email", Field: "email"},
			{Header: "Status", Field: "status"},
		},
		ToggleField: fieldActive,
		Required:    []string{"profile"},
		Editable:    []string{"profile"},
		ListFields: map[string]string{
			"profile.firstName": "firstName",
			"profile.lastName":  "lastName",
			"profile.email":     "email",
		},
		Endpoints: Endpoints{
			List:   "/api/merchant/getUsers",
			Edit:   "/api/merchant/editUser",
			Toggle: "/api/merchant/toggleUser",
		},
		DecodeList:   decodeUsers,
		DecodeDetail: decodeUserDetail,
		DecodeToggle: func(raw json.RawMessage) ([]mutate.Update, error) {
			return decodeToggle(raw, func(id string, on bool) []mutate.Update {
				status := "Deactivated"
				if on {
					status = "Active"
				}
				return []mutate.Update{
					{RecordID: id, Field: fieldActive, Value: on},
					{RecordID: id, Field: "status", Value: status},
				}
			})
		},
		ToggleBody: func(r model.Record) any { return map[string]string{"user_id": r.ID} },
		EditBody: func(merchantID string, prior model.Detail, in reconcile.EditIntent) any {
			p, _ := prior.Section("profile")
			get := func(k string) string {
				if v, ok := in.Sections["profile"][k]; ok {
					return v
				}
				return p.Fields[k]
			}
			return map[string]string{
				"user_id":    in.RecordID,
				"User_id":    merchantID,
				"first_name": get("firstName"),
				"last_name":  get("lastName"),
				"email":      get("email"),
			}
		},
		LocalDetail: userDetail,
	}
}

func decodeUsers(raw json.RawMessage) ([]model.Record, error) {
	var items []rawUser
	if err := decodeShape(raw, &items); err != nil {
		return nil, fmt.Errorf("users: %w", err)
	}
	out := make([]model.Record, 0, len(items))
	for _, u := range items {
		out = append(out, userRecord(u))
	}
	return out, nil
}

func userRecord(u rawUser) model.Record {
	return model.Record{ID: u.ID, Fields: map[string]any{
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"email":     u.Email,
		"status":    u.Status,
		fieldActive: u.Status == "Active",
	}}
}

func userDetail(r model.Record) model.Detail {
	return model.Detail{ID: r.ID, Sections: []model.Section{section("profile",
		"firstName", model.DefaultAccess(r, "firstName"),
		"lastName", model.DefaultAccess(r, "lastName"),
		"email", model.DefaultAccess(r, "email"),
		"status", model.DefaultAccess(r, "status"),
	)}}
}

func decodeUserDetail(raw json.RawMessage) (*model.Detail, error) {
	var u rawUser
	if err := decodeShape(raw, &u); err != nil {
		return nil, fmt.Errorf("user: %w", err)
	}
	if u.ID == "" {
		return nil, fmt.Errorf("user: %v: %w", errMissing, model.ErrShapeMismatch)
	}
	d := userDetail(userRecord(u))
	return &d, nil
}
