package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their JSON names so error paths match the payload.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// FieldErrors maps a dotted payload path (products.0.quantity) to its messages
type FieldErrors map[string][]string

// Add records msg for path
func (fe FieldErrors) Add(path, msg string) {
	fe[path] = append(fe[path], msg)
}

// Has reports whether path already has an error
func (fe FieldErrors) Has(path string) bool {
	_, ok := fe[path]
	return ok
}

// Merge copies other into fe, skipping paths fe already reports
func (fe FieldErrors) Merge(other FieldErrors) {
	for path, msgs := range other {
		if !fe.Has(path) {
			fe[path] = msgs
		}
	}
}

// Fields returns the failing paths sorted
func (fe FieldErrors) Fields() []string {
	fields := make([]string, 0, len(fe))
	for path := range fe {
		fields = append(fields, path)
	}
	sort.Strings(fields)
	return fields
}

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, path := range fe.Fields() {
		parts = append(parts, fmt.Sprintf("%s: %s", path, strings.Join(fe[path], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ErrBodyNotObject is returned when the body is not a JSON object
var ErrBodyNotObject = errors.New("Expected object")

// BodyField is the details key used when the body as a whole is unusable
const BodyField = "body"

// DecodeJSONObject reads the request body as a JSON object, keeping numbers
// as json.Number so they can be coerced without precision loss
func DecodeJSONObject(r *http.Request) (map[string]interface{}, error) {
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()

	var body interface{}
	if err := decoder.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrBodyNotObject
		}
		return nil, fmt.Errorf("Invalid JSON: %w", err)
	}

	object, ok := body.(map[string]interface{})
	if !ok {
		return nil, ErrBodyNotObject
	}
	return object, nil
}

// ValidateStruct runs the validate tags of v and reports failures by JSON path
func ValidateStruct(v interface{}) FieldErrors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	return FormatValidationErrors(err)
}

var indexPattern = regexp.MustCompile(`\[(\d+)\]`)

// FormatValidationErrors converts validator errors to path → messages
func FormatValidationErrors(err error) FieldErrors {
	errs := FieldErrors{}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errs
	}

	for _, e := range validationErrors {
		errs.Add(fieldPath(e.Namespace()), getErrorMessage(e))
	}

	return errs
}

// fieldPath turns "CreateOrderRequest.products[0].quantity" into "products.0.quantity"
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		namespace = namespace[i+1:]
	}
	return indexPattern.ReplaceAllString(namespace, ".$1")
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "Required"
	case "oneof":
		options := strings.Fields(e.Param())
		return "Invalid enum value. Expected '" + strings.Join(options, "' | '") + "'"
	case "gte":
		return "Number must be greater than or equal to " + e.Param()
	case "gt":
		return "Number must be greater than " + e.Param()
	case "min":
		return "Must contain at least " + e.Param() + " element(s)"
	case "max":
		return "Must contain at most " + e.Param() + " element(s)"
	default:
		return "Invalid value"
	}
}
