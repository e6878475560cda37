package console

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
)

const (
	msgRequired = "This field is required"
	msgURL      = "Please enter a valid URL"
	msgPhone    = "Please enter a valid phone number"
	msgUsername = "Username must be 3-20 characters and contain only letters, numbers, and underscores"
	msgPassword = "Password must be 8-40 characters"
	msgPositive = "Must be a positive number"
	msgQuantity = "Quantity must be at least 1"
	msgAge      = "Age must be between 1 and 120"
	msgSex      = "Gender must be male, female or other"
	msgID       = "Please select a valid record"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	phonePattern    = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
)

// Range and enum failures on these fields get a field specific message
var fieldMessages = map[string]string{
	"age":      msgAge,
	"quantity": msgQuantity,
	"sex":      msgSex,
}

var formValidator = newFormValidator()

type modeKey struct{}

func newFormValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their form (json) name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	mustRegister(v.RegisterValidation("notblank", validators.NotBlank))
	mustRegister(v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	}))
	mustRegister(v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	}))

	v.RegisterStructValidationCtx(customerPassword, CustomerForm{})
	return v
}

func mustRegister(err error) {
	if err != nil {
		panic(err)
	}
}

// customerPassword requires a password when adding a customer; on edit an
// empty password keeps the current one
func customerPassword(ctx context.Context, sl validator.StructLevel) {
	f := sl.Current().Interface().(CustomerForm)
	mode, _ := ctx.Value(modeKey{}).(Mode)
	if f.Password == "" && mode != ModeAdd {
		return
	}
	if n := utf8.RuneCountInString(f.Password); n < 8 || n > 40 {
		sl.ReportError(f.Password, "password", "Password", "password", "")
	}
}

// validateForm checks form against its validate tags. mode tells the
// rules that differ between adding and editing which flow is running.
func validateForm[F any](form F, mode Mode) FieldErrors {
	ctx := context.WithValue(context.Background(), modeKey{}, mode)
	err := formValidator.StructCtx(ctx, form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		panic(err)
	}

	errs := FieldErrors{}
	for _, fe := range verrs {
		if _, seen := errs[fe.Field()]; !seen {
			errs[fe.Field()] = fieldMessage(fe)
		}
	}
	return errs
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return msgRequired
	}
	if msg, ok := fieldMessages[fe.Field()]; ok {
		return msg
	}

	switch fe.Tag() {
	case "max":
		return fmt.Sprintf("Must be no more than %s characters", fe.Param())
	case "url":
		return msgURL
	case "phone":
		return msgPhone
	case "username":
		return msgUsername
	case "password":
		return msgPassword
	case "uuid":
		return msgID
	case "gte":
		return msgPositive
	}
	return "Invalid value"
}

// FieldErrors maps form fields to the rule they broke
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}
