// Package clipboard copies text produced by value actions.
package clipboard

import (
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
)

// Copier copies text somewhere the user can paste it from.
type Copier interface {
	Copy(text string) error
}

// System writes to the system clipboard.
type System struct{}

var _ Copier = System{}

// Copy writes text to the system clipboard.
func (System) Copy(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard utility found (install xclip, xsel, or wl-clipboard)")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}

// Recorder keeps copied text in memory. It stands in for the system
// clipboard in snapshots and tests.
type Recorder struct {
	mu    sync.Mutex
	texts []string
}

var _ Copier = (*Recorder)(nil)

// Copy records text.
func (r *Recorder) Copy(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	return nil
}

// Texts returns everything copied so far.
func (r *Recorder) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}

// Last returns the most recent copy, or "" when nothing was copied.
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.texts) == 0 {
		return ""
	}
	return r.texts[len(r.texts)-1]
}
