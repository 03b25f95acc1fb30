package schema

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a decoded tool argument struct against its `validate` tags.
// The returned error names every failing field so the model can correct the
// payload on a retry.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var buf strings.Builder
	for i, fe := range verrs {
		if i > 0 {
			buf.WriteString("; ")
		}
		switch fe.Tag() {
		case "required":
			buf.WriteString("missing required field " + fe.Field())
		case "oneof":
			buf.WriteString("field " + fe.Field() + " must be one of: " + fe.Param())
		default:
			buf.WriteString("field " + fe.Field() + " failed " + fe.Tag() + " check")
		}
	}
	return errors.New(buf.String())
}
