package validator

import (
	"errors"
	"fmt"
	"strings"

	"evshare/pkg/logger"
	"evshare/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type HistoryValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewHistoryValidator(log *logger.Logger) *HistoryValidator {
	return &HistoryValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *HistoryValidator) ValidateUsageRecord(record *model.UsageRecord) error {
	return v.translate(v.validate.Struct(record))
}

func (v *HistoryValidator) ValidateCostRecord(record *model.CostRecord) error {
	return v.translate(v.validate.Struct(record))
}

func (v *HistoryValidator) translate(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	var validationErrors ValidationErrors
	for _, fieldErr := range validationErrs {
		message := fieldErr.Error()

		switch fieldErr.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", fieldErr.Field())
		case "gte":
			message = fmt.Sprintf("%s must be at least %s", fieldErr.Field(), fieldErr.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", fieldErr.Field(), fieldErr.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", fieldErr.Field(), fieldErr.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", fieldErr.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", fieldErr.Field(), fieldErr.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", fieldErr.Field(), fieldErr.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   fieldErr.Field(),
			Message: message,
		})
	}

	return validationErrors
}
