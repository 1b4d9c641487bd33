package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vladimiradmaev/nutrition-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-tracker/internal/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput runs struct tag validation and reports the first failing
// fields as one validation error.
func validateInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
	}
	return apperrors.NewValidationError(strings.Join(msgs, "; "))
}

func requireUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.NewValidationError("user id is required")
	}
	return nil
}

func parseCategoryStrict(s string) (domain.Category, error) {
	c, ok := domain.ParseCategory(s)
	if !ok {
		return "", apperrors.NewValidationErrorf("unknown category %q", s)
	}
	return c, nil
}

// checkNotFuture rejects instants beyond now plus the allowed clock skew.
func checkNotFuture(t, now time.Time, allowance time.Duration) error {
	if t.After(now.Add(allowance)) {
		return apperrors.NewValidationErrorf("recordedAt %s is in the future", t.UTC().Format(time.RFC3339))
	}
	return nil
}
