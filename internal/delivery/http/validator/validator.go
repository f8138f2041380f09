// Package validator adapts go-playground/validator to Echo's Validator
// interface.
package validator

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator instance used by Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// New creates a validator for request structs.
func New() *CustomValidator {
	return &CustomValidator{
		validator: validator.New(),
	}
}

// Validate validates the given struct against its `validate` tags.
func (cv *CustomValidator) Validate(i any) error {
	return cv.validator.Struct(i)
}
