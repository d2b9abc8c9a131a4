package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PageID identifies one open results page
type PageID string

// NewPageID creates a new unique identifier using UUID v7 for time-ordered generation
func NewPageID() PageID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return PageID(id.String())
}

// String returns the string representation
func (id PageID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id PageID) IsEmpty() bool {
	return id == ""
}

// ParsePageID parses a string into PageID
func ParsePageID(s string) (PageID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("page ID cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid page ID %q: %w", s, err)
	}
	return PageID(parsed.String()), nil
}
