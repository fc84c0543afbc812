// Package validation wraps go-playground/validator with the field rules used by
// the agenda forms and turns its errors into user-facing messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/cuida-app/cuida/internal/dateutil"
)

var hhmmPattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator with custom rules registered:
//
//	notblank  non-empty after trimming spaces
//	datekey   a real calendar date in YYYY-MM-DD form
//	hhmm      a 24-hour HH:MM clock time
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = v.RegisterValidation("datekey", func(fl validator.FieldLevel) bool {
			return dateutil.ValidKey(fl.Field().String())
		})
		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			return ValidClock(fl.Field().String())
		})
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if name := f.Tag.Get("label"); name != "" {
				return name
			}
			return strings.ToLower(f.Name)
		})
		instance = v
	})
	return instance
}

// ValidClock reports whether s is HH:MM with hours 00-23 and minutes 00-59.
func ValidClock(s string) bool {
	if !hhmmPattern.MatchString(s) {
		return false
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	return h < 24 && m < 60
}

// FieldError is a single invalid field with a message fit for display.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Message
}

// Errors collects the field errors of one form submission.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether the given field failed.
func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Struct validates s and converts failures into Errors.
// Messages maps "field.tag" (or just "field") to a custom message.
func Struct(s any, messages map[string]string) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		msg, ok := messages[field+"."+fe.Tag()]
		if !ok {
			msg, ok = messages[field]
		}
		if !ok {
			msg = defaultMessage(field, fe)
		}
		out = append(out, FieldError{Field: field, Message: msg})
	}
	return out
}

func defaultMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "datekey":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "hhmm":
		return fmt.Sprintf("%s must be in HH:MM format", field)
	case "email":
		return fmt.Sprintf("%s must be a valid e-mail address", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s characters", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s does not match", field)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
