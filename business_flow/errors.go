// Package businessflow contains the core business logic for proximity matching workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Profile-related errors
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileInactive      = errors.New("profile service is inactive")
	ErrProfileUpdateEmpty   = errors.New("at least one field must be provided for update")
	ErrLocationNotFound     = errors.New("location not found")
	ErrLocationOutOfRange   = errors.New("coordinates are out of range")
	ErrConsentAlreadySet    = errors.New("matching consent already in requested state")
	ErrMatchingConsentOff   = errors.New("matching consent is disabled")
	ErrPreferenceNotFound   = errors.New("preference profile not found")
	ErrPersonalitySetEmpty  = errors.New("preferred personality set must not be empty")
	ErrInterestsSetEmpty    = errors.New("preferred interests set must not be empty")
	ErrInvalidPriority      = errors.New("invalid priority dimension")
	ErrAgeRangeInverted     = errors.New("age minimum cannot exceed age maximum")
	ErrHeightRangeInverted  = errors.New("height minimum cannot exceed height maximum")
	ErrInvalidRadius        = errors.New("radius must be positive")
	ErrMatchNotFound        = errors.New("match not found")
	ErrCacheNotAvailable    = errors.New("cache not available")
	ErrSelfMatchNotAllowed  = errors.New("a profile cannot be matched with itself")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsProfileNotFound(err error) bool {
	return errors.Is(err, ErrProfileNotFound)
}

func IsProfileInactive(err error) bool {
	return errors.Is(err, ErrProfileInactive)
}

func IsProfileUpdateEmpty(err error) bool {
	return errors.Is(err, ErrProfileUpdateEmpty)
}

func IsLocationNotFound(err error) bool {
	return errors.Is(err, ErrLocationNotFound)
}

func IsLocationOutOfRange(err error) bool {
	return errors.Is(err, ErrLocationOutOfRange)
}

func IsConsentAlreadySet(err error) bool {
	return errors.Is(err, ErrConsentAlreadySet)
}

func IsMatchingConsentOff(err error) bool {
	return errors.Is(err, ErrMatchingConsentOff)
}

func IsPreferenceNotFound(err error) bool {
	return errors.Is(err, ErrPreferenceNotFound)
}

func IsPersonalitySetEmpty(err error) bool {
	return errors.Is(err, ErrPersonalitySetEmpty)
}

func IsInterestsSetEmpty(err error) bool {
	return errors.Is(err, ErrInterestsSetEmpty)
}

func IsInvalidPriority(err error) bool {
	return errors.Is(err, ErrInvalidPriority)
}

func IsAgeRangeInverted(err error) bool {
	return errors.Is(err, ErrAgeRangeInverted)
}

func IsHeightRangeInverted(err error) bool {
	return errors.Is(err, ErrHeightRangeInverted)
}

func IsInvalidRadius(err error) bool {
	return errors.Is(err, ErrInvalidRadius)
}

func IsMatchNotFound(err error) bool {
	return errors.Is(err, ErrMatchNotFound)
}

func IsCacheNotAvailable(err error) bool {
	return errors.Is(err, ErrCacheNotAvailable)
}

func IsSelfMatchNotAllowed(err error) bool {
	return errors.Is(err, ErrSelfMatchNotAllowed)
}
