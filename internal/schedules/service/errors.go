package service

import (
	"errors"
	scheduleerrors "salonbook/internal/schedules/errors"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/validation"
)

func mapRepoError(err error, resource, id, message string) error {
	switch {
	case errors.Is(err, scheduleerrors.ErrWorkingHoursNotFound), errors.Is(err, scheduleerrors.ErrBlackoutNotFound):
		return apperrors.NotFoundWithID(resource, id)
	case errors.Is(err, scheduleerrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid " + resource + " ID format")
	case apperrors.IsAppError(err):
		return err
	default:
		return apperrors.Internal(message, err)
	}
}

func validationError(message string, err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
