package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// AnalysisQuery is the query string of the analysis view and export
// endpoints.
type AnalysisQuery struct {
	Department string `json:"department" validate:"omitempty,max=64,printascii"`
	Month      string `json:"month" validate:"omitempty,yearmonth"`
	View       string `json:"view" validate:"omitempty,oneof=records departments customers products reps alerts"`
}

// Filter converts a validated query into a pass filter.
func (q AnalysisQuery) Filter() (domain.Filter, error) {
	f := domain.Filter{Department: strings.TrimSpace(q.Department)}
	if q.Month != "" {
		ym, err := domain.ParseYearMonth(q.Month)
		if err != nil {
			return domain.Filter{}, err
		}
		f.Month = &ym
	}
	return f, nil
}

// Validator validates request values with struct tags and reports failures as
// field-level API errors.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a validator with the custom tags registered.
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New()
	_ = v.RegisterValidation("yearmonth", isYearMonth)

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{
		validate: v,
		logger:   logger.With(slog.String("component", "validator")),
	}
}

// ParseAnalysisQuery reads and validates the analysis query parameters.
func (v *Validator) ParseAnalysisQuery(r *http.Request) (AnalysisQuery, error) {
	q := r.URL.Query()
	query := AnalysisQuery{
		Department: strings.TrimSpace(q.Get("department")),
		Month:      strings.TrimSpace(q.Get("month")),
		View:       strings.ToLower(strings.TrimSpace(q.Get("view"))),
	}
	if err := v.Struct(query); err != nil {
		v.logger.DebugContext(r.Context(), "rejected analysis query",
			slog.String("query", r.URL.RawQuery),
			slog.String("error", err.Error()))
		return AnalysisQuery{}, err
	}
	return query, nil
}

// Struct validates s and converts failures into an APIError listing every
// offending field.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(out)
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "yearmonth":
		return fmt.Sprintf("%s must be a month in YYYY-MM form", field)
	case "printascii":
		return fmt.Sprintf("%s contains unsupported characters", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isYearMonth accepts YYYY-MM with a month between 01 and 12.
func isYearMonth(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 7 || s[4] != '-' {
		return false
	}
	_, err := domain.ParseYearMonth(s)
	return err == nil
}
