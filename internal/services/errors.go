package services

import "errors"

var (
	ErrHabitNotFound      = errors.New("habit not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidHabit       = errors.New("invalid habit")
	ErrInvalidID          = errors.New("invalid id")
	ErrCompletionConflict = errors.New("habit was completed concurrently")

	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidUser          = errors.New("invalid user")
	ErrEmailInUse           = errors.New("email already in use")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrNotificationNotFound = errors.New("notification not found")
)
