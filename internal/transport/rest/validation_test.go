package rest

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestValidateReceivableRequest(t *testing.T) {
	body := `{
		"client_id": "c1",
		"invoice_number": "F-2026-001",
		"amount": "1500.50",
		"paid_amount": 200,
		"status": "pending",
		"due_date": "2026-04-01"
	}`
	r := httptest.NewRequest("POST", "/receivables", strings.NewReader(body))

	req, err := ValidateReceivableRequest(r)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if req.ClientID != "c1" {
		t.Errorf("ClientID = %s, want c1", req.ClientID)
	}
	// numeric strings are coerced
	if req.Amount != 1500.50 {
		t.Errorf("Amount = %v, want 1500.50", req.Amount)
	}
	if req.PaidAmount != 200 {
		t.Errorf("PaidAmount = %v, want 200", req.PaidAmount)
	}
	if req.DueDate.Format("2006-01-02") != "2026-04-01" {
		t.Errorf("DueDate = %v, want 2026-04-01", req.DueDate)
	}
}

func TestValidateReceivableRequest_MissingFields(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"no client_id", `{"invoice_number":"F-1","amount":10,"due_date":"2026-04-01"}`},
		{"no invoice_number", `{"client_id":"c1","amount":10,"due_date":"2026-04-01"}`},
		{"no due_date", `{"client_id":"c1","invoice_number":"F-1","amount":10}`},
		{"bad due_date", `{"client_id":"c1","invoice_number":"F-1","amount":10,"due_date":"soon"}`},
		{"negative amount", `{"client_id":"c1","invoice_number":"F-1","amount":-5,"due_date":"2026-04-01"}`},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/receivables", strings.NewReader(tt.body))
			if _, err := ValidateReceivableRequest(r); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateReceivableRequest_RFC3339DueDate(t *testing.T) {
	body := `{"client_id":"c1","invoice_number":"F-1","amount":10,"due_date":"2026-04-01T00:00:00Z"}`
	r := httptest.NewRequest("POST", "/receivables", strings.NewReader(body))

	req, err := ValidateReceivableRequest(r)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if req.DueDate.Format("2006-01-02") != "2026-04-01" {
		t.Fatalf("DueDate = %v, want 2026-04-01", req.DueDate)
	}
}

func TestValidateClientRequest_DelayShapes(t *testing.T) {
	body := `{
		"name": "Acme",
		"email": "acme@example.com",
		"reminder_delay_1": 10,
		"reminder_delay_2": {"days": 20, "hours": 12},
		"final_delay": null
	}`
	r := httptest.NewRequest("POST", "/clients", strings.NewReader(body))

	req, err := ValidateClientRequest(r)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if req.Reminder1Delay == nil || req.Reminder1Delay.Days != 10 {
		t.Errorf("Reminder1Delay = %+v, want {Days:10}", req.Reminder1Delay)
	}
	if req.Reminder2Delay == nil || req.Reminder2Delay.Days != 20 || req.Reminder2Delay.Hours != 12 {
		t.Errorf("Reminder2Delay = %+v, want {Days:20 Hours:12}", req.Reminder2Delay)
	}
	if req.FinalDelay != nil {
		t.Errorf("FinalDelay = %+v, want nil", req.FinalDelay)
	}
}

func TestValidateClientRequest_RequiredFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/clients", strings.NewReader(`{"email":"acme@example.com"}`))
	if _, err := ValidateClientRequest(r); err == nil {
		t.Fatal("expected error for missing name")
	}

	r = httptest.NewRequest("POST", "/clients", strings.NewReader(`{"name":"Acme"}`))
	if _, err := ValidateClientRequest(r); err == nil {
		t.Fatal("expected error for missing email")
	}
}

func TestValidateClientRequest_BadDelay(t *testing.T) {
	body := `{"name":"Acme","email":"acme@example.com","reminder_delay_1":"soon"}`
	r := httptest.NewRequest("POST", "/clients", strings.NewReader(body))

	if _, err := ValidateClientRequest(r); err == nil {
		t.Fatal("expected error for non-numeric delay")
	}
}

func TestValidateExportRequest(t *testing.T) {
	body := `{"fields":["invoice_number","amount"],"status":"pending","overdue":true}`
	r := httptest.NewRequest("POST", "/export/receivables", strings.NewReader(body))

	req, err := ValidateExportRequest(r)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if len(req.Fields) != 2 {
		t.Errorf("Fields = %v, want 2 entries", req.Fields)
	}
	if req.Status == nil || *req.Status != "pending" {
		t.Errorf("Status = %v, want pending", req.Status)
	}
	if req.Overdue == nil || !*req.Overdue {
		t.Errorf("Overdue = %v, want true", req.Overdue)
	}

	filter := req.ToRepositoryFilter([]string{"user-1"})
	if len(filter.OwnerIDs) != 1 || filter.OwnerIDs[0] != "user-1" {
		t.Errorf("OwnerIDs = %v, want [user-1]", filter.OwnerIDs)
	}
}

func TestValidateExportRequest_EmptyBody(t *testing.T) {
	r := httptest.NewRequest("POST", "/export/receivables", strings.NewReader(""))

	req, err := ValidateExportRequest(r)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	// no fields means the export falls back to its default column set
	if len(req.Fields) != 0 {
		t.Errorf("Fields = %v, want empty", req.Fields)
	}
	if req.ClientID != nil || req.Status != nil || req.Overdue != nil {
		t.Errorf("expected empty filters, got %+v", req)
	}
}
