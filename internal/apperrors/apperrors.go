// Package apperrors defines sentinel business errors shared between
// repositories, services and handlers. Handlers map them to HTTP
// status codes with errors.Is.
package apperrors

import "errors"

var (
	// ErrCourseNotFound is returned when a course ID does not resolve in the catalog
	ErrCourseNotFound = errors.New("course not found")

	// ErrLectureNotFound is returned when a lecture does not exist in the course,
	// is not a servable media type, or has no backing file
	ErrLectureNotFound = errors.New("lecture not found")

	// ErrNoCourseAccess is returned when the user may not access a paid course
	ErrNoCourseAccess = errors.New("no course access")

	// ErrCourseIsFree is returned when attempting to purchase a free course
	ErrCourseIsFree = errors.New("course is free")

	// ErrAlreadyPurchased is returned when a course access record already exists
	ErrAlreadyPurchased = errors.New("course already purchased")

	// ErrAlreadyCompleted is returned when a lecture progress record already exists
	ErrAlreadyCompleted = errors.New("lecture already completed")

	// ErrNotEnoughCoins is returned when the coin debit fails due to insufficient balance
	ErrNotEnoughCoins = errors.New("not enough coins")

	// ErrTokenNotFound is returned when a streaming token is unknown or expired
	ErrTokenNotFound = errors.New("streaming token not found")

	// ErrInvalidRange is returned when a byte range spec cannot be parsed or
	// starts beyond the end of the file
	ErrInvalidRange = errors.New("invalid byte range")

	// ErrSkillNotFound is returned when a root or sub skill does not exist
	ErrSkillNotFound = errors.New("skill not found")

	// ErrAlreadyBookmarked is returned when a sub skill bookmark already exists
	ErrAlreadyBookmarked = errors.New("skill already bookmarked")

	// ErrBookmarkNotFound is returned when a bookmark to delete does not exist
	ErrBookmarkNotFound = errors.New("bookmark not found")

	// ErrDataFetch is returned when the external task data source fails or
	// returns malformed data
	ErrDataFetch = errors.New("failed to fetch task data")
)
