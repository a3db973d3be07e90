// Package businessflow contains the core business logic and use cases for the analytics dashboard
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// User-related errors
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidUserID = errors.New("user id is not a valid UUID")

	// Report parameter errors
	ErrInvalidActivityMode   = errors.New("activity mode must be day or week")
	ErrInvalidZoomHour       = errors.New("zoom hour must be between 0 and 23")
	ErrInvalidDateFormat     = errors.New("dates must use the YYYY-MM-DD format")
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")
	ErrInvalidExportFormat   = errors.New("export format must be csv or xlsx")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 200")

	// Insight errors
	ErrCacheNotAvailable   = errors.New("cache not available")
	ErrInsightsUnavailable = errors.New("insight generation is not available")
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

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsInvalidUserID(err error) bool {
	return errors.Is(err, ErrInvalidUserID)
}

func IsInvalidActivityMode(err error) bool {
	return errors.Is(err, ErrInvalidActivityMode)
}

func IsInvalidZoomHour(err error) bool {
	return errors.Is(err, ErrInvalidZoomHour)
}

func IsInvalidDateFormat(err error) bool {
	return errors.Is(err, ErrInvalidDateFormat)
}

func IsStartDateAfterEndDate(err error) bool {
	return errors.Is(err, ErrStartDateAfterEndDate)
}

func IsInvalidExportFormat(err error) bool {
	return errors.Is(err, ErrInvalidExportFormat)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}

func IsCacheNotAvailable(err error) bool {
	return errors.Is(err, ErrCacheNotAvailable)
}

func IsInsightsUnavailable(err error) bool {
	return errors.Is(err, ErrInsightsUnavailable)
}
