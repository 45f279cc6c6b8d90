package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"slotbook/pkg/logger"
	"slotbook/pkg/model"
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

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	return &BookingValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *BookingValidator) ValidateClaim(input *model.ClaimInput) error {
	if err := v.validate.Struct(input); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *BookingValidator) ValidateRequestCreate(input *model.RequestCreate) error {
	if err := v.validate.Struct(input); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	hasWindow := input.WindowStart != nil && input.WindowEnd != nil
	hasSlots := len(input.Slots) > 0

	if !hasWindow && !hasSlots {
		return ValidationErrors{
			ValidationError{
				Field:   "Slots",
				Message: "either an explicit slot list or a window_start/window_end pair is required",
			},
		}
	}

	if hasWindow && !input.WindowEnd.After(*input.WindowStart) {
		return ValidationErrors{
			ValidationError{
				Field:   "WindowEnd",
				Message: "window_end must be after window_start",
			},
		}
	}

	for i, slot := range input.Slots {
		if !slot.EndTime.After(slot.StartTime) {
			return ValidationErrors{
				ValidationError{
					Field:   fmt.Sprintf("Slots[%d].EndTime", i),
					Message: "end_time must be after start_time",
				},
			}
		}
	}

	return nil
}

// ValidateSlotDurations checks explicit slots against the request's
// configured duration after defaults are applied.
func (v *BookingValidator) ValidateSlotDurations(slots []model.SlotInput, durationMin int) error {
	want := time.Duration(durationMin) * time.Minute
	for i, slot := range slots {
		if slot.EndTime.Sub(slot.StartTime) != want {
			return ValidationErrors{
				ValidationError{
					Field:   fmt.Sprintf("Slots[%d]", i),
					Message: fmt.Sprintf("slot duration must be %d minutes", durationMin),
				},
			}
		}
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +15551234567)", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
