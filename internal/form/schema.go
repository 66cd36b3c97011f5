// Package form is the boundary validator for submitted form data. Each entity
// declares one immutable Schema pairing a tagged struct with human labels;
// validation produces a field name -> message map that drives inline errors,
// and the same schema gates the mutation pipeline so persistence code can
// trust its inputs.
package form

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Field describes one form field of a schema: the input name used in markup
// and error maps, the human label used in messages, and optional per-tag
// message overrides.
type Field struct {
	Name     string
	Label    string
	Messages map[string]string
}

// Schema is a static, shared validation shape for one entity. It holds no
// entity state and is safe for concurrent use.
type Schema struct {
	fields map[string]Field
}

// NewSchema builds a Schema. Fields are keyed by the struct field name of the
// form struct passed to Validate.
func NewSchema(fields map[string]Field) *Schema {
	return &Schema{fields: fields}
}

// Validate checks v (a tagged form struct) and returns field name -> message.
// An empty map means the submission is valid.
func (s *Schema) Validate(v any) map[string]string {
	errs := make(map[string]string)
	err := validate.Struct(v)
	if err == nil {
		return errs
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs["general"] = "Submitted data could not be validated"
		return errs
	}
	for _, fe := range fieldErrs {
		field, known := s.fields[fe.StructField()]
		if !known {
			field = Field{Name: fe.StructField(), Label: fe.StructField()}
		}
		if msg, ok := field.Messages[fe.Tag()]; ok {
			errs[field.Name] = msg
			continue
		}
		errs[field.Name] = messageFor(field.Label, fe)
	}
	return errs
}

func messageFor(label string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "oneof":
		// Enum and mandatory fields report the concept, not the raw value.
		return label + " is required"
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, fe.Param())
	case "uuid4":
		return label + " must be a valid reference"
	case "email":
		return label + " must be a valid email address"
	case "hexcolor":
		return label + " must be a hex color"
	default:
		return label + " is invalid"
	}
}
