package item

import (
	"errors"

	"github.com/cuida-app/cuida/internal/validation"
)

// Form is the raw input of an event or medication/procedure submission.
// Every edit resubmits the full form; there are no partial updates.
type Form struct {
	ID            string
	Kind          string
	Title         string `validate:"notblank"`
	Date          string `validate:"required,datekey"`
	Time          string `validate:"omitempty,hhmm"`
	Description   string
	Dose          string
	Repeated      bool
	Frequency     int    `validate:"gte=0"`
	FrequencyUnit string `label:"frequency_unit"`
}

// Validate checks the form before anything is saved or sent.
// The returned error is a validation.Errors; the first failure also matches
// one of this package's sentinel errors with errors.Is.
func (f Form) Validate() error {
	kind, err := ParseKind(f.Kind)
	if err != nil {
		return err
	}

	titleMsg := "enter the event title"
	if kind == KindMed {
		titleMsg = "enter the medication or procedure name"
	}

	if err := validation.Struct(f, map[string]string{
		"title":         titleMsg,
		"date.required": "enter the date",
		"date.datekey":  ErrInvalidDateFormat.Error(),
		"time":          ErrInvalidTimeFormat.Error(),
		"frequency":     ErrRepetitionRequired.Error(),
	}); err != nil {
		return &FormError{errs: err}
	}

	if kind != KindMed && f.Dose != "" {
		return ErrDoseOnlyForMed
	}

	unit, err := ParseFrequencyUnit(f.FrequencyUnit)
	if err != nil {
		return err
	}
	if f.Repeated && unit != FrequencyUnique && f.Frequency < 1 {
		return ErrRepetitionRequired
	}
	return nil
}

// FormError wraps the field errors of a rejected form.
type FormError struct {
	errs error
}

func (e *FormError) Error() string {
	return e.errs.Error()
}

// Fields returns the individual field failures.
func (e *FormError) Fields() validation.Errors {
	var ve validation.Errors
	if errors.As(e.errs, &ve) {
		return ve
	}
	return nil
}

// Is maps the first failing field onto the package's sentinel errors.
func (e *FormError) Is(target error) bool {
	fields := e.Fields()
	if len(fields) == 0 {
		return false
	}
	switch fields[0].Field {
	case "title":
		return target == ErrEmptyTitle
	case "date":
		return target == ErrInvalidDateFormat
	case "time":
		return target == ErrInvalidTimeFormat
	case "frequency":
		return target == ErrRepetitionRequired
	}
	return false
}

func (e *FormError) Unwrap() error {
	return e.errs
}
