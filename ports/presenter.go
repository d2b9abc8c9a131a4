package ports

import (
	"context"
	"time"

	"sessionresults/domain/results"
)

// StatusMessenger surfaces failures to the user
type StatusMessenger interface {
	ShowErrorMessage(text string)
}

// ConfirmDialog asks the user to confirm a publish or unpublish.
// It returns false when the dialog is dismissed without confirming.
type ConfirmDialog interface {
	Confirm(ctx context.Context, prompt results.PublishPrompt) bool
}

// Navigator moves the user to another page
type Navigator interface {
	NavigateTo(path string)
}

// TimezoneFormatter renders instants in a named IANA time zone
type TimezoneFormatter interface {
	Format(t time.Time, zone string) string
}
