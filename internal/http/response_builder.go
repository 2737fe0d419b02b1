// Package http provides the JSON API server and its handlers.
//
// This file implements a small builder for JSON responses and the mapping
// from domain errors to status codes.

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"budgetwise/internal/auth"
	"budgetwise/internal/core"
	"budgetwise/internal/log"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	payload    any
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(key, value string) *JSONResponseBuilder {
	b.headers[key] = value
	return b
}

func (b *JSONResponseBuilder) Payload(v any) *JSONResponseBuilder {
	b.payload = v
	return b
}

// Write encodes the payload and sends it. An unencodable payload turns into
// a 500.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	body, err := json.Marshal(b.payload)
	status := b.statusCode
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		body = []byte(`{"error":"internal server error"}`)
		status = http.StatusInternalServerError
	}

	for k, v := range b.headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
	_, _ = w.Write([]byte("\n"))
}

// OK creates a 200 response carrying v.
func OK(v any) *JSONResponseBuilder {
	return NewJSONResponse().Payload(v)
}

// Message creates a 200 response with a {"message": ...} body.
func Message(msg string) *JSONResponseBuilder {
	return OK(map[string]string{"message": msg})
}

// ErrorMessage creates an error response with a {"error": ...} body.
func ErrorMessage(status int, msg string) *JSONResponseBuilder {
	return NewJSONResponse().Status(status).Payload(map[string]string{"error": msg})
}

// classifyError picks the status code and client-facing message for err.
// Unexpected errors never leak their text.
func classifyError(err error) (int, string) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return http.StatusBadRequest, reqErr.msg
	}
	if errors.Is(err, auth.ErrMissingToken) || errors.Is(err, auth.ErrInvalidToken) {
		return http.StatusUnauthorized, "authentication required"
	}

	var status int
	switch {
	case errors.Is(err, core.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrConflict):
		status = http.StatusConflict
	default:
		return http.StatusInternalServerError, "internal server error"
	}

	var kindErr *core.KindError
	if errors.As(err, &kindErr) {
		return status, kindErr.Error()
	}
	return status, http.StatusText(status)
}

// writeError maps err to a JSON error response and logs it through the
// request logger.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classifyError(err)
	logger := log.FromContext(r.Context())
	fields := log.NewFields()
	fields[log.FieldStatusCode] = status
	fields[log.FieldPath] = r.URL.Path
	fields[log.FieldErrorType] = errorType(status)

	if status >= http.StatusInternalServerError {
		log.NewStructuredLogger(logger).LogError(r.Context(), "Request failed", err, log.ComponentHTTP, r.Pattern, fields)
	} else {
		logger.WithComponent(log.ComponentHTTP).DebugContext(r.Context(), "Request rejected", fields.WithError(err).ToSlice()...)
	}
	ErrorMessage(status, msg).Write(w)
}

func errorType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return log.ErrorTypeValidation
	case http.StatusUnauthorized:
		return log.ErrorTypeAuth
	case http.StatusForbidden:
		return log.ErrorTypeForbidden
	case http.StatusNotFound:
		return log.ErrorTypeNotFound
	case http.StatusConflict:
		return log.ErrorTypeConflict
	default:
		return log.ErrorTypeInternal
	}
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, err)
}

func writeRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldPath, r.URL.Path)
	ErrorMessage(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
}

type categoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type transactionResponse struct {
	ID          int64             `json:"id"`
	Amount      json.Number       `json:"amount"`
	Description string            `json:"description"`
	Date        string            `json:"date"`
	Category    *categoryResponse `json:"category"`
	UserID      int64             `json:"userId"`
}

type budgetResponse struct {
	ID       int64            `json:"id"`
	Amount   json.Number      `json:"amount"`
	Month    int              `json:"month"`
	Year     int              `json:"year"`
	Category categoryResponse `json:"category"`
	UserID   int64            `json:"userId"`
}

type budgetStatusResponse struct {
	CategoryName    string      `json:"categoryName"`
	BudgetAmount    json.Number `json:"budgetAmount"`
	ActualSpent     json.Number `json:"actualSpent"`
	RemainingAmount json.Number `json:"remainingAmount"`
	Status          string      `json:"status"`
}

type reportResponse struct {
	TotalIncome  json.Number `json:"totalIncome"`
	TotalExpense json.Number `json:"totalExpense"`
	NetBalance   json.Number `json:"netBalance"`
}

// amount renders d with two decimals as a bare JSON number.
func amount(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func newCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Type: string(c.Type)}
}

func newCategoryList(cats []core.Category) []categoryResponse {
	out := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, newCategoryResponse(c))
	}
	return out
}

func newTransactionResponse(t core.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:          t.ID,
		Amount:      amount(t.Amount),
		Description: t.Description,
		Date:        t.Date.String(),
		UserID:      t.UserID,
	}
	if t.Category != nil {
		c := newCategoryResponse(*t.Category)
		resp.Category = &c
	}
	return resp
}

func newTransactionList(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, newTransactionResponse(t))
	}
	return out
}

func newBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{
		ID:       b.ID,
		Amount:   amount(b.Amount),
		Month:    b.Month,
		Year:     b.Year,
		Category: newCategoryResponse(b.Category),
		UserID:   b.UserID,
	}
}

func newBudgetList(budgets []core.Budget) []budgetResponse {
	out := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, newBudgetResponse(b))
	}
	return out
}

func newBudgetStatusResponse(s core.BudgetStatus) budgetStatusResponse {
	return budgetStatusResponse{
		CategoryName:    s.CategoryName,
		BudgetAmount:    amount(s.BudgetAmount),
		ActualSpent:     amount(s.ActualSpent),
		RemainingAmount: amount(s.RemainingAmount),
		Status:          string(s.Status),
	}
}

func newReportResponse(r core.Report) reportResponse {
	return reportResponse{
		TotalIncome:  amount(r.TotalIncome),
		TotalExpense: amount(r.TotalExpense),
		NetBalance:   amount(r.NetBalance),
	}
}
