package formatter

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/mcncl/humlplay/internal/models"
	"golang.org/x/term"
)

// ColorMode controls when output is highlighted
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// DefaultStyle is the chroma style used when none is configured
const DefaultStyle = "monokai"

// ParseColorMode validates a color mode name. Empty means auto.
func ParseColorMode(name string) (ColorMode, error) {
	switch ColorMode(strings.ToLower(name)) {
	case "", ColorAuto:
		return ColorAuto, nil
	case ColorAlways:
		return ColorAlways, nil
	case ColorNever:
		return ColorNever, nil
	}
	return "", fmt.Errorf("invalid color mode %q (expected auto, always or never)", name)
}

// ShouldColor decides whether to highlight output written to the file
// descriptor fd. Auto mode honours NO_COLOR and only colors terminals.
func ShouldColor(mode ColorMode, fd uintptr) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(fd))
}

// Formatter prepares converted text for a terminal
type Formatter struct {
	style string
	color bool
}

// Option configures a Formatter
type Option func(*Formatter)

// WithColor enables syntax highlighting
func WithColor(color bool) Option {
	return func(f *Formatter) {
		f.color = color
	}
}

// WithStyle selects the chroma style
func WithStyle(name string) Option {
	return func(f *Formatter) {
		if name != "" {
			f.style = name
		}
	}
}

// NewFormatter creates a new Formatter instance
func NewFormatter(opts ...Option) *Formatter {
	f := &Formatter{style: DefaultStyle}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format ends non-empty text with exactly one newline and, when color is
// enabled, highlights it as the given format
func (f *Formatter) Format(text string, format models.Format) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	text = strings.TrimRight(text, "\n") + "\n"
	if !f.color {
		return text, nil
	}
	return f.highlight(text, format)
}

func (f *Formatter) highlight(text string, format models.Format) (string, error) {
	lexer := lexers.Get(lexerName(format))
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(f.style)
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return "", fmt.Errorf("failed to tokenise %s output: %w", format, err)
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return "", fmt.Errorf("failed to highlight %s output: %w", format, err)
	}
	return buf.String(), nil
}

// lexerName maps a format to a chroma lexer. HUML has no lexer of its own and
// reads close enough to YAML.
func lexerName(format models.Format) string {
	if format == models.FormatHUML {
		return "yaml"
	}
	return string(format)
}
