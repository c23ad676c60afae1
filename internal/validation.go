package internal

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var hexColor6 = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// ruleMessages holds user-facing messages keyed by "Struct.field.rule" or "field.rule".
var ruleMessages = map[string]string{
	"LoginRequest.email.required":    "Please fill in all fields",
	"LoginRequest.password.required": "Please fill in all fields",

	"RegisterRequest.name.required":             "Full name is required",
	"RegisterRequest.name.min":                  "Full name must be at least 2 characters",
	"RegisterRequest.name.max":                  "Full name must not exceed 50 characters",
	"RegisterRequest.confirm_password.required": "Please confirm your password",
	"RegisterRequest.confirm_password.eqfield":  "Passwords must match",

	"email.required":    "Email is required",
	"email.email":       "Please enter a valid email address",
	"password.required": "Password is required",

	"title.notblank":   "Title is required",
	"due_date.duedate": "Due date must be YYYY-MM-DD or an RFC 3339 timestamp",
	"status.oneof":     "Status must be one of pending, in_progress, completed, cancelled",

	"CreateCategoryRequest.name.notblank": "Category name is required",
	"UpdateCategoryRequest.name.notblank": "Name cannot be empty",
	"color.required":                      "Color is required",
	"color.hexcolor6":                     "Color must be a valid hex color",
}

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(fieldName)
		rules := map[string]validator.Func{
			"notblank": validators.NotBlank,
			"hexcolor6": func(fl validator.FieldLevel) bool {
				return hexColor6.MatchString(fl.Field().String())
			},
			"duedate": func(fl validator.FieldLevel) bool {
				return IsDueDate(fl.Field().String())
			},
		}
		for tag, fn := range rules {
			if err := v.RegisterValidation(tag, fn); err != nil {
				panic(fmt.Sprintf("register validation %q: %v", tag, err))
			}
		}
		validate = v
	})
	return validate
}

// fieldName reports fields by their form or JSON name.
func fieldName(f reflect.StructField) string {
	if name := f.Tag.Get("form"); name != "" {
		return name
	}
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// IsDueDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
func IsDueDate(s string) bool {
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}

// Validate checks a request form and returns ValidationErrors listing every
// failed rule, or nil.
func Validate(form interface{}) error {
	err := validatorInstance().Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: ruleMessage(fe),
		})
	}
	return out
}

func ruleMessage(fe validator.FieldError) string {
	structName := strings.SplitN(fe.Namespace(), ".", 2)[0]
	if msg, ok := ruleMessages[structName+"."+fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := ruleMessages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s failed rule %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s failed rule %s", fe.Field(), fe.Tag())
}

// IsHexColor reports whether s is a #RRGGBB color.
func IsHexColor(s string) bool {
	return hexColor6.MatchString(s)
}
