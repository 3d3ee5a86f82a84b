package session

import "github.com/mcncl/humlplay/internal/models"

// Editor is one side of the playground: a text buffer with a selected format
type Editor interface {
	Content() string
	SetContent(text string)
	Format() models.Format
	SetFormat(f models.Format)
}

// MemoryEditor is an Editor backed by plain fields
type MemoryEditor struct {
	content string
	format  models.Format
}

// NewMemoryEditor creates an editor holding content in format f
func NewMemoryEditor(f models.Format, content string) *MemoryEditor {
	return &MemoryEditor{content: content, format: f}
}

func (e *MemoryEditor) Content() string { return e.content }
func (e *MemoryEditor) SetContent(text string) { e.content = text }
func (e *MemoryEditor) Format() models.Format { return e.format }
func (e *MemoryEditor) SetFormat(f models.Format) { e.format = f }
