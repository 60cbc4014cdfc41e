package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "riffraff/internal/pkg/errors"
	"riffraff/internal/pkg/patch"
)

// Validator checks request structs against their `validate` tags and
// reports the first failure as a ValidationError named after the JSON key.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Absent and null fields validate as nil so "omitempty" skips them.
	v.RegisterCustomTypeFunc(fieldValue,
		patch.Field[string]{},
		patch.Field[int]{},
		patch.Field[int64]{},
		patch.Field[bool]{},
	)

	return &Validator{validate: v}
}

func fieldValue(v reflect.Value) interface{} {
	if f, ok := v.Interface().(interface{ Interface() interface{} }); ok {
		return f.Interface()
	}
	return nil
}

func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		fe := errs[0]
		return apperrors.NewValidation(fe.Field(), message(fe))
	}
	return apperrors.NewValidation("", err.Error())
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
