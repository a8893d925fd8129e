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

type GroupValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewGroupValidator(log *logger.Logger) *GroupValidator {
	return &GroupValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *GroupValidator) ValidateGroup(group *model.Group) error {
	return v.translate(v.validate.Struct(group))
}

func (v *GroupValidator) ValidateVote(vote *model.Vote) error {
	return v.translate(v.validate.Struct(vote))
}

func (v *GroupValidator) ValidateBallot(ballot *model.Ballot) error {
	return v.translate(v.validate.Struct(ballot))
}

func (v *GroupValidator) translate(err error) error {
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
		case "min":
			message = fmt.Sprintf("%s must be at least %s", fieldErr.Field(), fieldErr.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", fieldErr.Field(), fieldErr.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", fieldErr.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", fieldErr.Field(), fieldErr.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   fieldErr.Field(),
			Message: message,
		})
	}

	return validationErrors
}
