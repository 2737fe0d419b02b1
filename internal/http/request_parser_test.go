package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"budgetwise/internal/core"
)

func newJSONRequest(body string) (*httptest.ResponseRecorder, *http.Request) {
	return httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestDecodeJSON_Budget(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"amount": 100.5, "categoryId": 3, "month": 4, "year": 2024}`},
		{name: "amount as string", body: `{"amount": "100.50", "categoryId": 3, "month": 4, "year": 2024}`},
		{name: "empty body", body: ``, wantErr: "request body is required"},
		{name: "malformed", body: `{"amount": `, wantErr: "malformed JSON body"},
		{name: "wrong type", body: `{"amount": 1, "month": "april", "year": 2024}`, wantErr: "invalid value for month"},
		{name: "missing amount", body: `{"month": 4, "year": 2024}`, wantErr: "amount is required"},
		{name: "month too large", body: `{"amount": 1, "month": 13, "year": 2024}`, wantErr: "month must be at most 12"},
		{name: "month missing", body: `{"amount": 1, "year": 2024}`, wantErr: "month is required"},
		{name: "year too small", body: `{"amount": 1, "month": 1, "year": 1800}`, wantErr: "year must be at least 1900"},
		{name: "category not positive", body: `{"amount": 1, "categoryId": 0, "month": 1, "year": 2024}`, wantErr: "categoryId must be greater than 0"},
		{name: "two objects", body: `{"amount": 1, "month": 1, "year": 2024} {}`, wantErr: "request body must hold a single JSON object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, r := newJSONRequest(tt.body)
			var req budgetRequest
			err := decodeJSON(w, r, &req)

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("decodeJSON() error = %v", err)
				}
				return
			}
			var reqErr *requestError
			if !errors.As(err, &reqErr) {
				t.Fatalf("decodeJSON() error = %v, want requestError", err)
			}
			if reqErr.msg != tt.wantErr {
				t.Errorf("message = %q, want %q", reqErr.msg, tt.wantErr)
			}
		})
	}
}

func TestBudgetRequest_Input(t *testing.T) {
	cat := int64(7)
	in, err := budgetRequest{Amount: "12.345", CategoryID: &cat, Month: 2, Year: 2025}.input()
	if err != nil {
		t.Fatalf("input() error = %v", err)
	}
	if in.Amount.StringFixed(2) != "12.35" {
		t.Errorf("Amount = %s, want 12.35", in.Amount.StringFixed(2))
	}
	if in.CategoryID == nil || *in.CategoryID != 7 {
		t.Errorf("CategoryID = %v, want 7", in.CategoryID)
	}

	_, err = budgetRequest{Amount: "-5", Month: 2, Year: 2025}.input()
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("negative amount error = %v, want ErrInvalidAmount", err)
	}
	_, err = budgetRequest{Amount: "0", Month: 2, Year: 2025}.input()
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("zero amount error = %v, want ErrInvalidAmount", err)
	}
}

func TestDecodeJSON_Transaction(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"amount": 30, "description": "Groceries", "date": "2024-03-05"}`},
		{name: "with category", body: `{"amount": 30, "date": "2024-03-05", "categoryId": 2}`},
		{name: "missing date", body: `{"amount": 30}`, wantErr: "date is required"},
		{name: "bad date", body: `{"amount": 30, "date": "05/03/2024"}`, wantErr: "date must be a date in YYYY-MM-DD format"},
		{name: "long description", body: `{"amount": 30, "date": "2024-03-05", "description": "` + strings.Repeat("x", 256) + `"}`, wantErr: "description must be at most 255 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, r := newJSONRequest(tt.body)
			var req transactionRequest
			err := decodeJSON(w, r, &req)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("decodeJSON() error = %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("decodeJSON() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestTransactionRequest_Input(t *testing.T) {
	in, err := transactionRequest{Amount: "30,5", Description: "  Rent\x00  ", Date: "2024-03-05"}.input()
	if err != nil {
		t.Fatalf("input() error = %v", err)
	}
	if in.Amount.StringFixed(2) != "30.50" {
		t.Errorf("Amount = %s, want 30.50", in.Amount.StringFixed(2))
	}
	if in.Description != "Rent" {
		t.Errorf("Description = %q, want %q", in.Description, "Rent")
	}
	if in.Date.String() != "2024-03-05" {
		t.Errorf("Date = %s, want 2024-03-05", in.Date)
	}
	if in.CategoryID != nil {
		t.Errorf("CategoryID = %v, want nil", in.CategoryID)
	}
}

func TestPathID(t *testing.T) {
	tests := []struct {
		value   string
		want    int64
		wantErr bool
	}{
		{value: "42", want: 42},
		{value: "abc", wantErr: true},
		{value: "0", wantErr: true},
		{value: "-3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodDelete, "/api/budgets/x", nil)
			r.SetPathValue("id", tt.value)
			got, err := pathID(r)
			if (err != nil) != tt.wantErr {
				t.Fatalf("pathID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("pathID() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseStatusQuery(t *testing.T) {
	q, err := parseStatusQuery(url.Values{"categoryId": {"3"}, "month": {"4"}, "year": {"2024"}})
	if err != nil {
		t.Fatalf("parseStatusQuery() error = %v", err)
	}
	if q.UserID != nil {
		t.Errorf("UserID = %v, want nil", *q.UserID)
	}
	if q.CategoryID != 3 || q.Month != 4 || q.Year != 2024 {
		t.Errorf("query = %+v", q)
	}

	q, err = parseStatusQuery(url.Values{"userId": {"9"}, "categoryId": {"3"}, "month": {"4"}, "year": {"2024"}})
	if err != nil || q.UserID == nil || *q.UserID != 9 {
		t.Errorf("userId not parsed: %+v, %v", q, err)
	}

	_, err = parseStatusQuery(url.Values{"month": {"4"}, "year": {"2024"}})
	if err == nil || err.Error() != "categoryId is required" {
		t.Errorf("missing categoryId error = %v", err)
	}
	_, err = parseStatusQuery(url.Values{"categoryId": {"3"}, "month": {"four"}, "year": {"2024"}})
	if err == nil || err.Error() != "month must be an integer" {
		t.Errorf("bad month error = %v", err)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  hello  ", "hello"},
		{"hello\x00world", "helloworld"},
		{"line1\nline2", "line1\nline2"},
		{"tab\there", "tab\there"},
		{"\x07bell", "bell"},
	}

	for _, tt := range tests {
		if got := sanitizeInput(tt.input); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
