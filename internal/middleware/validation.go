package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	apierrors "basketlens/internal/errors"
)

// ValidationMiddleware decodes and validates request bodies using struct tags
type ValidationMiddleware struct {
	validator    *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	maxBodySize  int64
}

// NewValidationMiddleware creates a new validation middleware
func NewValidationMiddleware(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ValidationMiddleware {
	v := validator.New()

	v.RegisterValidation("threshold", isThreshold)
	v.RegisterValidation("itemlabel", isItemLabel)

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ValidationMiddleware{
		validator:    v,
		logger:       logger.With(slog.String("component", "validation_middleware")),
		errorHandler: errorHandler,
		maxBodySize:  1 << 20,
	}
}

// DecodeJSON reads a JSON body into dst and validates it. An empty body leaves dst
// untouched so optional payloads fall back to their zero values.
// On failure the problem response has already been written and false is returned.
func (m *ValidationMiddleware) DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if r.Body != nil {
		dec := json.NewDecoder(io.LimitReader(r.Body, m.maxBodySize))
		dec.DisallowUnknownFields()
		if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			m.logger.DebugContext(r.Context(), "rejected request body", slog.String("error", err.Error()))
			m.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return false
		}
	}

	if err := m.ValidateStruct(dst); err != nil {
		m.errorHandler.HandleError(w, r, err)
		return false
	}
	return true
}

// ValidateStruct validates a struct and returns validation errors
func (m *ValidationMiddleware) ValidateStruct(v interface{}) error {
	err := m.validator.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(validationErrors)
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "threshold":
		return fmt.Sprintf("%s must be in the interval (0, 1]", field)
	case "itemlabel":
		return fmt.Sprintf("%s must contain non-blank item names", field)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isThreshold accepts support and confidence values in (0, 1]
func isThreshold(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.Float32 && fl.Field().Kind() != reflect.Float64 {
		return false
	}
	v := fl.Field().Float()
	return !math.IsNaN(v) && v > 0 && v <= 1
}

// isItemLabel rejects blank names and names with control characters
func isItemLabel(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if strings.TrimSpace(s) == "" {
		return false
	}
	return strings.IndexFunc(s, unicode.IsControl) < 0
}

// QueryParamValidator validates query parameters
type QueryParamValidator struct {
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewQueryParamValidator creates a new query parameter validator
func NewQueryParamValidator(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *QueryParamValidator {
	return &QueryParamValidator{
		logger:       logger.With(slog.String("component", "query_validator")),
		errorHandler: errorHandler,
	}
}

// ValidateInt validates an integer query parameter
func (v *QueryParamValidator) ValidateInt(w http.ResponseWriter, r *http.Request, param string, min, max int, defaultValue int) (int, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, true
	}

	intValue, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be a valid integer", param)))
		return 0, false
	}

	if intValue < min || intValue > max {
		v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be between %d and %d", param, min, max)))
		return 0, false
	}

	return intValue, true
}

// ValidateFloat parses a float query parameter. Range checks are left to the
// caller so that mining thresholds surface as parameter errors.
func (v *QueryParamValidator) ValidateFloat(w http.ResponseWriter, r *http.Request, param string, defaultValue float64) (float64, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, true
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be a number", param)))
		return 0, false
	}
	return f, true
}

// ValidateEnum validates an enum query parameter
func (v *QueryParamValidator) ValidateEnum(w http.ResponseWriter, r *http.Request, param string, allowed []string, defaultValue string) (string, bool) {
	value := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(param)))
	if value == "" {
		return defaultValue, true
	}

	for _, a := range allowed {
		if value == a {
			return value, true
		}
	}

	v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be one of: %s", param, strings.Join(allowed, ", "))))
	return "", false
}

// ValidateItems parses a comma separated item allow-list. Repeated parameters are
// merged. An absent parameter or the value ALL yields nil, meaning no filter.
func (v *QueryParamValidator) ValidateItems(w http.ResponseWriter, r *http.Request, param string) ([]string, bool) {
	raw := r.URL.Query()[param]
	if len(raw) == 0 {
		return nil, true
	}

	var items []string
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			item := strings.TrimSpace(part)
			if item == "" {
				continue
			}
			if strings.EqualFold(item, "all") {
				return nil, true
			}
			if strings.IndexFunc(item, unicode.IsControl) >= 0 {
				v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s contains an invalid item name", param)))
				return nil, false
			}
			items = append(items, item)
		}
	}

	if len(items) == 0 {
		v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must name at least one item", param)))
		return nil, false
	}
	return items, true
}
