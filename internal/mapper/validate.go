package mapper

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/theLastOfCats/novel-library-server/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks a request struct and returns an ErrInvalidInput error describing the first
// violated rule. Blank-only strings count as missing for required fields.
func Validate(req any) error {
	if v := reflect.ValueOf(req); !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return model.Errorf(model.ErrInvalidInput, "request body must not be null")
	}
	trimRequired(req)

	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate request: %w", err)
	}
	return model.Errorf(model.ErrInvalidInput, "%s", describe(verrs[0]))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " must not be blank"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	}
	return fmt.Sprintf("%s is invalid", field)
}

func trimRequired(req any) {
	if r, ok := req.(*NovelRequest); ok {
		r.Name = strings.TrimSpace(r.Name)
		r.Link = strings.TrimSpace(r.Link)
	}
}
