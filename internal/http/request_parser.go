// Package http provides the JSON API server and its handlers.
//
// This file decodes and validates request bodies, path values and query
// parameters into service inputs.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"budgetwise/internal/core"
	"budgetwise/internal/services"
)

const maxBodyBytes = 1 << 20

// requestError is a malformed request detected before any service runs.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so messages match what the client sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type budgetRequest struct {
	Amount     json.Number `json:"amount" validate:"required"`
	CategoryID *int64      `json:"categoryId" validate:"omitempty,gt=0"`
	Month      int         `json:"month" validate:"required,min=1,max=12"`
	Year       int         `json:"year" validate:"required,min=1900,max=9999"`
}

func (req budgetRequest) input() (services.BudgetInput, error) {
	amount, err := core.ParseAmount(req.Amount.String())
	if err != nil {
		return services.BudgetInput{}, err
	}
	return services.BudgetInput{
		Amount:     amount,
		CategoryID: req.CategoryID,
		Month:      req.Month,
		Year:       req.Year,
	}, nil
}

type transactionRequest struct {
	Amount      json.Number `json:"amount" validate:"required"`
	Description string      `json:"description" validate:"max=255"`
	Date        string      `json:"date" validate:"required,datetime=2006-01-02"`
	CategoryID  *int64      `json:"categoryId" validate:"omitempty,gt=0"`
}

func (req transactionRequest) input() (services.TransactionInput, error) {
	amount, err := core.ParseAmount(req.Amount.String())
	if err != nil {
		return services.TransactionInput{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return services.TransactionInput{}, err
	}
	return services.TransactionInput{
		Amount:      amount,
		Description: sanitizeInput(req.Description),
		Date:        date,
		CategoryID:  req.CategoryID,
	}, nil
}

type categoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Type string `json:"type" validate:"required"`
}

// decodeJSON reads a single JSON object from the body into dst and runs the
// struct's validate tags.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return badRequest("request body is required")
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return badRequest("malformed JSON body")
		case errors.As(err, &typeErr) && typeErr.Field != "":
			return badRequest("invalid value for %s", typeErr.Field)
		case errors.As(err, &maxErr):
			return badRequest("request body too large")
		default:
			return badRequest("invalid request body")
		}
	}
	if dec.More() {
		return badRequest("request body must hold a single JSON object")
	}
	return validateStruct(dst)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &requestError{msg: describeField(verrs[0])}
	}
	return fmt.Errorf("validate request: %w", err)
}

func describeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fe.Field() + " must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fe.Field() + " must be at most " + fe.Param() + " characters"
		}
		return fe.Field() + " must be at most " + fe.Param()
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	case "datetime":
		return fe.Field() + " must be a date in YYYY-MM-DD format"
	default:
		return fe.Field() + " is invalid"
	}
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid id %q", raw)
	}
	return id, nil
}

// queryInt parses an integer query parameter. Missing optional parameters
// yield nil.
func queryInt(q url.Values, name string, required bool) (*int64, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		if required {
			return nil, badRequest("%s is required", name)
		}
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, badRequest("%s must be an integer", name)
	}
	return &v, nil
}

// parseStatusQuery reads userId, categoryId, month and year.
func parseStatusQuery(q url.Values) (services.StatusQuery, error) {
	userID, err := queryInt(q, "userId", false)
	if err != nil {
		return services.StatusQuery{}, err
	}
	categoryID, err := queryInt(q, "categoryId", true)
	if err != nil {
		return services.StatusQuery{}, err
	}
	month, err := queryInt(q, "month", true)
	if err != nil {
		return services.StatusQuery{}, err
	}
	year, err := queryInt(q, "year", true)
	if err != nil {
		return services.StatusQuery{}, err
	}
	return services.StatusQuery{
		UserID:     userID,
		CategoryID: *categoryID,
		Month:      int(*month),
		Year:       int(*year),
	}, nil
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
