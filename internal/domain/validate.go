package domain

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate runs ozzo-validation rules against value and converts a rule
// failure into a *ValidationError carrying the rule's message.
func Validate(value any, rules ...validation.Rule) error {
	err := validation.Validate(value, rules...)
	if err == nil {
		return nil
	}

	var internal validation.InternalError
	if errors.As(err, &internal) {
		return err
	}
	return Invalid(err.Error())
}
