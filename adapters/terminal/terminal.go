// Package terminal implements the results page presenter ports on a text terminal.
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"sessionresults/domain/results"
)

// Dialog asks for confirmation on a line-based terminal
type Dialog struct {
	in  *bufio.Reader
	out io.Writer
}

// NewDialog reads answers from in and writes prompts to out
func NewDialog(in io.Reader, out io.Writer) *Dialog {
	return &Dialog{in: bufio.NewReader(in), out: out}
}

// Confirm prints the prompt and waits for a y/N answer. Anything but yes, EOF or a done ctx
// counts as a dismissal.
func (d *Dialog) Confirm(ctx context.Context, prompt results.PublishPrompt) bool {
	fmt.Fprintf(d.out, "%s [y/N]: ", PromptText(prompt))

	answers := make(chan string, 1)
	go func() {
		line, _ := d.in.ReadString('\n')
		answers <- line
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(d.out)
		return false
	case line := <-answers:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	}
}

// PromptText is the question shown for a publish prompt
func PromptText(prompt results.PublishPrompt) string {
	if prompt.Variant == results.DialogUnpublish {
		return fmt.Sprintf("Unpublish the results of %q? Students will no longer see them.", prompt.SessionName)
	}
	return fmt.Sprintf("Publish the results of %q? Students will be able to see them.", prompt.SessionName)
}

// Messenger writes error messages, one per line
type Messenger struct {
	mu  sync.Mutex
	out io.Writer
}

func NewMessenger(out io.Writer) *Messenger {
	return &Messenger{out: out}
}

func (m *Messenger) ShowErrorMessage(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintf(m.out, "error: %s\n", text)
}

// Navigator prints where a browser would go next
type Navigator struct {
	out  io.Writer
	last string
}

func NewNavigator(out io.Writer) *Navigator {
	return &Navigator{out: out}
}

func (n *Navigator) NavigateTo(path string) {
	n.last = path
	fmt.Fprintf(n.out, "-> %s\n", path)
}

// Last returns the most recent navigation target
func (n *Navigator) Last() string {
	return n.last
}
