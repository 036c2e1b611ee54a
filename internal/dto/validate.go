package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/SundayYogurt/member_service/internal/xerrors"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, key := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(key), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// Validate checks a request struct and returns a client error describing the first failure.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return xerrors.ErrInvalidInput
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return xerrors.Invalid(fmt.Sprintf("%s is required", fe.Field()))
	case "email":
		return xerrors.Invalid(fmt.Sprintf("%s must be a valid email", fe.Field()))
	case "min":
		return xerrors.Invalid(fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
	case "max":
		return xerrors.Invalid(fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
	case "oneof":
		return xerrors.Invalid(fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
	default:
		return xerrors.Invalid(fmt.Sprintf("invalid %s", fe.Field()))
	}
}
