package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrUnknownQuestion = fmt.Errorf("%w: question", ErrNotFound)
	ErrUnknownSection  = fmt.Errorf("%w: section", ErrNotFound)
	ErrPageNotFound    = fmt.Errorf("%w: page", ErrNotFound)

	// State errors
	ErrSessionNotLoaded = errors.New("feedback session not loaded")
	ErrPageClosed       = errors.New("results page closed")

	// Request errors
	ErrInvalidResultScope = errors.New("result query must be scoped by exactly one of question or section")
)

// Error constructors with context
func NewUnknownQuestionError(questionID string) error {
	return fmt.Errorf("%w %q", ErrUnknownQuestion, questionID)
}

func NewUnknownSectionError(sectionName string) error {
	return fmt.Errorf("%w %q", ErrUnknownSection, sectionName)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
