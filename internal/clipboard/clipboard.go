// Package clipboard copies converted text to the system clipboard and manages
// the transient notice shown on the copy control.
package clipboard

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/mcncl/humlplay/internal/errors"
)

// Notices shown after a copy attempt
const (
	NoticeCopied = "Copied to clipboard!"
	NoticeEmpty  = "Nothing to copy!"
)

// DefaultNoticeDuration is how long a notice stays before the label reverts
const DefaultNoticeDuration = 2 * time.Second

// Writer puts text on a clipboard
type Writer interface {
	WriteText(text string) error
}

// System writes to the operating system clipboard
type System struct{}

// WriteText implements Writer
func (System) WriteText(text string) error {
	if clipboard.Unsupported {
		return errors.ErrClipboardUnavailable
	}
	return clipboard.WriteAll(text)
}

// Copy writes text with w and returns the notice to show. Failures are also
// returned as clipboard errors.
func Copy(w Writer, text string) (string, error) {
	if text == "" {
		return NoticeEmpty, nil
	}
	if err := w.WriteText(text); err != nil {
		appErr := errors.NewClipboardError("copy failed", err)
		return errors.UserFriendlyError(appErr), appErr
	}
	return NoticeCopied, nil
}

// Notice is a control label that temporarily shows a message. Each Show
// returns a sequence number; only the revert for the newest one takes effect.
type Notice struct {
	label    string
	current  string
	seq      uint64
	Duration time.Duration
}

// NewNotice creates a notice resting on label
func NewNotice(label string, d time.Duration) *Notice {
	if d <= 0 {
		d = DefaultNoticeDuration
	}
	return &Notice{label: label, current: label, Duration: d}
}

// Show displays text and returns the sequence number to revert with
func (n *Notice) Show(text string) uint64 {
	n.seq++
	n.current = text
	return n.seq
}

// Revert restores the resting label if seq is still the newest notice
func (n *Notice) Revert(seq uint64) bool {
	if seq != n.seq {
		return false
	}
	n.current = n.label
	return true
}

// Label returns the text to render
func (n *Notice) Label() string {
	return n.current
}

// Active reports whether a notice is showing
func (n *Notice) Active() bool {
	return n.current != n.label
}
