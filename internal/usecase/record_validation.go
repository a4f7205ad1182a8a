package usecase

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var recordValidator = validator.New(validator.WithRequiredStructEnabled())

// validateRecord rejects upstream records missing fields the store needs.
func validateRecord(record any) error {
	if err := recordValidator.Struct(record); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
