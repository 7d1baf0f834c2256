package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrNotRegistered        = errors.New("profile not registered")
	ErrProfileAlreadyExists = errors.New("profile already exists")
	ErrQuotaExceeded        = errors.New("daily like limit reached")
	ErrNoCandidate          = errors.New("no candidate available")
	ErrMatchNotFound        = errors.New("match not found")
	ErrReportNotFound       = errors.New("report not found")
	ErrCannotLikeSelf       = errors.New("cannot like yourself")
	ErrCannotReportSelf     = errors.New("cannot report yourself")
	ErrProfileBanned        = errors.New("profile is banned")
	ErrStorage              = errors.New("storage failure")
	ErrInvalidToken         = errors.New("invalid token")
	ErrForbidden            = errors.New("forbidden")
	ErrValidation           = errors.New("validation failed")
	ErrConfiguration        = errors.New("invalid configuration")
)

// ValidationError is bad user input. The flow re-prompts on it; HTTP maps it to 400.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// WrapStorage marks err as a storage failure of op while keeping the cause reachable.
// Domain sentinels pass through unchanged.
func WrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	if isDomainError(err) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

func isDomainError(err error) bool {
	for _, target := range []error{
		ErrProfileNotFound, ErrNotRegistered, ErrProfileAlreadyExists, ErrQuotaExceeded,
		ErrNoCandidate, ErrMatchNotFound, ErrReportNotFound, ErrValidation, ErrStorage,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
