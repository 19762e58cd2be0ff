package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session has not been opened.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrInvalidTransition is returned when an action is not allowed on the current page.
	ErrInvalidTransition = errors.New("action not allowed on current page")
	// ErrNoQuestions indicates the question fetch returned an empty batch.
	ErrNoQuestions = errors.New("no questions available")
)
