package middleware

import (
	"encoding/json"
	"mime"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// CPF (NNN.NNN.NNN-NN) or CNPJ (NN.NNN.NNN/NNNN-NN)
	legalDocumentPattern = regexp.MustCompile(`^\d{3}\.\d{3}\.\d{3}-\d{2}$|^\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}$`)
	postalCodePattern    = regexp.MustCompile(`^\d{5}-\d{3}$`)
	phonePattern         = regexp.MustCompile(`^\(?\d{2,3}\)?[-.\s]?\d{4,5}[-.\s]?\d{4}$`)
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// report fields by their JSON names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister("legal_document", legalDocumentPattern)
	mustRegister("postal_code", postalCodePattern)
	mustRegister("phone", phonePattern)

	if err := validate.RegisterValidation("price", validPrice); err != nil {
		panic(err)
	}
}

// maxPrice is the first value a NUMERIC(12, 2) column cannot hold
var maxPrice = decimal.New(1, 10)

// validPrice accepts non-negative decimals below maxPrice with at most two decimal places
func validPrice(fl validator.FieldLevel) bool {
	price, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	return !price.IsNegative() && price.LessThan(maxPrice) && price.Equal(price.Truncate(2))
}

func mustRegister(tag string, pattern *regexp.Regexp) {
	err := validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}
}

// ValidateRequest validates the request body against a struct with validation tags
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}

// RequireJSON rejects request bodies that are not declared as JSON
func RequireJSON(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
			default:
				next.ServeHTTP(w, r)
				return
			}

			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mediaType != "application/json" {
				logger.Debug("Unsupported content type",
					zap.String("content_type", r.Header.Get("Content-Type")),
					zap.String("path", r.URL.Path),
				)
				RespondWithError(w, http.StatusUnsupportedMediaType, "content type must be application/json")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// DecodeAndValidate decodes JSON request body and validates it
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return ValidateRequest(v)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationErrors converts validator errors to a readable format.
// Nested fields are reported with their path, e.g. supplier.address.postalCode.
func FormatValidationErrors(err error) []ValidationError {
	var errors []ValidationError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Namespace()
			if i := strings.Index(field, "."); i >= 0 {
				field = field[i+1:]
			}

			errors = append(errors, ValidationError{
				Field:   field,
				Message: getErrorMessage(e),
			})
		}
	}

	return errors
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return "Value is too short, minimum is " + e.Param()
	case "max":
		return "Value is too long, maximum is " + e.Param()
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "lte":
		return "Value must be less than or equal to " + e.Param()
	case "gt":
		return "Value must be greater than " + e.Param()
	case "lt":
		return "Value must be less than " + e.Param()
	case "oneof":
		return "Value must be one of: " + e.Param()
	case "legal_document":
		return "Legal document must match NNN.NNN.NNN-NN or NN.NNN.NNN/NNNN-NN"
	case "postal_code":
		return "Postal code must match NNNNN-NNN"
	case "phone":
		return "Invalid phone number"
	case "price":
		return "Price must be between 0 and 9999999999.99 with at most 2 decimal places"
	case "uuid":
		return "Invalid UUID"
	default:
		return "Invalid value"
	}
}
