package model

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/YuminosukeSato/treeml/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields under their hyperparameter names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("param"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateParams checks a hyperparameter struct against its `validate` tags and
// converts the first violation into a ValidationError named after the field's
// `param` tag.
//
//	type params struct {
//	    MaxDepth int `param:"max_depth" validate:"gte=0"`
//	}
func ValidateParams(params interface{}) error {
	err := validate.Struct(params)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return errors.NewValidationError(fe.Field(), describeRule(fe), fe.Value())
	}
	return errors.Wrap(err, "invalid hyperparameters")
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("must be > %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "lt":
		return fmt.Sprintf("must be < %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "required":
		return "is required"
	default:
		return fmt.Sprintf("failed rule '%s'", fe.Tag())
	}
}
