package validation

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// UseJSONFieldNames makes gin's validator report fields by their json name
func UseJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(jsonFieldName)
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	default:
		return name
	}
}

// Messages turns a binding error into client facing messages. ok is false when
// err is not a validation or decoding problem.
func Messages(err error) (messages []string, ok bool) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			messages = append(messages, message(e))
		}
		return messages, true
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return []string{"request body must not be empty"}, true
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return []string{"request body is not valid JSON"}, true
	case errors.As(err, &typeErr):
		return []string{typeErr.Field + " has the wrong type, expected " + typeErr.Type.String()}, true
	}
	return nil, false
}

func message(e validator.FieldError) string {
	// "roles[0]" shares the messages of "roles"
	field, _, _ := strings.Cut(e.Field(), "[")
	if fieldMessages := CustomMessage(field); fieldMessages != nil {
		if msg, exists := fieldMessages[e.Tag()]; exists {
			return msg
		}
	}
	return DefaultMessage(e.Field(), e.Tag(), e.Param())
}
