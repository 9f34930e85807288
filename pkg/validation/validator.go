package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/users-api/pkg/helpers"
)

// Init configures the global validator used by Gin's binding.
// - Uses JSON (or form) tag names in errors.
// - Registers the pwd tag: 1 to helpers.MaxPasswordBytes bytes of input.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "" {
				tag = fld.Tag.Get("form")
			}
			name := strings.SplitN(tag, ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("pwd", validPassword)
	}
}

// validPassword measures bytes, not runes, so multi-byte input cannot slip
// past the bcrypt limit.
func validPassword(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.String {
		return false
	}
	n := len(f.String())
	return n >= 1 && n <= helpers.MaxPasswordBytes
}

// ToDetails converts validation/binding errors into a map[field]message
// suitable for the errors member of an error body.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		field := ute.Field
		if field == "" {
			field = "payload"
		}
		return map[string]string{field: "must be a " + ute.Type.String()}
	}
	if errors.As(err, &se) {
		return map[string]string{"payload": "invalid json"}
	}

	// Query/path integers
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return map[string]string{"query": "value " + strconv.Quote(ne.Num) + " is not a valid integer"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fieldPath(fe)] = formatFieldError(fe)
		}
		return out
	}

	if err.Error() == "EOF" {
		return map[string]string{"payload": "body is required"}
	}
	return map[string]string{"payload": "invalid payload"}
}

// fieldPath drops the top-level struct name: "userRequest.address.city"
// becomes "address.city".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func formatFieldError(fe validator.FieldError) string {
	param := fe.Param()
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min", "gte":
		if isString {
			return "must be at least " + param + " characters"
		}
		return "must be greater than or equal to " + param
	case "max", "lte":
		if isString {
			return "must be at most " + param + " characters"
		}
		return "must be less than or equal to " + param
	case "gt":
		return "must be greater than " + param
	case "lt":
		return "must be less than " + param
	case "oneof":
		return "must be one of [" + param + "]"
	case "numeric":
		return "must be numeric"
	case "pwd":
		return "must be between 1 and " + strconv.Itoa(helpers.MaxPasswordBytes) + " bytes"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
