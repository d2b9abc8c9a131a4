package ui

import (
	"context"
	"sync"

	"sessionresults/domain/core"
	"sessionresults/domain/results"
	"sessionresults/internal/resultspage"
)

// Page is one open results page: its controller plus the browser-facing presenters
type Page struct {
	ID         core.PageID
	Controller *resultspage.Controller
	Options    results.ViewOptions

	flash *FlashMessenger
	nav   *PendingNavigator
}

// Close tears down the page controller
func (p *Page) Close() {
	p.Controller.Close()
}

// FlashMessenger queues status messages until the next render drains them
type FlashMessenger struct {
	mu       sync.Mutex
	messages []string
}

func (f *FlashMessenger) ShowErrorMessage(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
}

// Drain returns the queued messages and empties the queue
func (f *FlashMessenger) Drain() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages
	f.messages = nil
	return msgs
}

// PendingNavigator remembers a navigation request until the handler turns it into a redirect
type PendingNavigator struct {
	mu     sync.Mutex
	target string
}

func (n *PendingNavigator) NavigateTo(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.target = path
}

// Take returns the pending target, if any, and clears it
func (n *PendingNavigator) Take() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	target := n.target
	n.target = ""
	return target
}

// FormDialog replays the decision the user made in the rendered confirmation modal.
// A decision made on a modal of another variant than the current one counts as a dismissal.
type FormDialog struct {
	Confirmed bool
	Variant   results.DialogVariant
}

func (d FormDialog) Confirm(_ context.Context, prompt results.PublishPrompt) bool {
	return d.Confirmed && d.Variant == prompt.Variant
}
