package usecase

import (
	"errors"
	"fmt"

	"watch-list/internal/data/repository"
	"watch-list/internal/tmdb"
	"watch-list/pkg/utils"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = repository.ErrNotFound
	ErrConflict     = repository.ErrDuplicate
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrUpstream     = errors.New("upstream service unavailable")
)

// ValidationError keeps the per-field messages so handlers can return them
// under "errors".
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + utils.FormatValidationErrors(e.Fields)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func validate(req any) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func parseID(value, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q: %w", what, value, ErrInvalidInput)
	}
	return id, nil
}

// upstreamError classifies TMDb and storage failures.
func upstreamError(what string, err error) error {
	if errors.Is(err, tmdb.ErrNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %v", what, ErrUpstream, err)
}
