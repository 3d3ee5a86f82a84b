// Package codec maps formats to the parse/serialize pairs that translate between
// text and the format-agnostic value model.
package codec

import (
	"sync"

	"github.com/mcncl/humlplay/internal/errors"
	"github.com/mcncl/humlplay/internal/models"
)

// Codec translates between text in one format and a models.Value.
// Parse and Serialize must report failure rather than return a partial value.
type Codec interface {
	Format() models.Format
	Parse(text string) (models.Value, error)
	Serialize(v models.Value) (string, error)
}

// Options controls how the built-in codecs render their output
type Options struct {
	// Indent is the number of spaces used by tree-shaped output formats
	Indent int
	// RepairJSON lets the JSON codec repair malformed input before giving up
	RepairJSON bool
}

// DefaultOptions returns the conventional rendering options
func DefaultOptions() Options {
	return Options{Indent: 2}
}

// Registry maps a Format to its Codec. Contents are fixed once the registry is
// handed to a converter; lookups are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	codecs map[models.Format]Codec
}

// NewRegistry creates a registry holding the four built-in codecs
func NewRegistry(opts Options) *Registry {
	if opts.Indent <= 0 {
		opts.Indent = DefaultOptions().Indent
	}
	r := &Registry{codecs: make(map[models.Format]Codec)}
	r.Register(NewHUMLCodec())
	r.Register(NewJSONCodec(opts.Indent, opts.RepairJSON))
	r.Register(NewYAMLCodec(opts.Indent))
	r.Register(NewTOMLCodec())
	return r
}

// NewEmptyRegistry creates a registry without any codecs
func NewEmptyRegistry() *Registry {
	return &Registry{codecs: make(map[models.Format]Codec)}
}

// Register adds or replaces the codec for c.Format()
func (r *Registry) Register(c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[c.Format()] = c
}

// Resolve returns the codec registered for format
func (r *Registry) Resolve(format models.Format) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[format]
	if !ok {
		return nil, errors.NewUnknownFormatError(string(format))
	}
	return c, nil
}

// MustResolve is Resolve for wiring code: an unknown format panics
func (r *Registry) MustResolve(format models.Format) Codec {
	c, err := r.Resolve(format)
	if err != nil {
		panic(err)
	}
	return c
}

// Formats returns the registered formats in selector order, followed by any
// extra formats registered for tests
func (r *Registry) Formats() []models.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Format, 0, len(r.codecs))
	seen := make(map[models.Format]bool, len(r.codecs))
	for _, f := range models.Formats {
		if _, ok := r.codecs[f]; ok {
			out = append(out, f)
			seen[f] = true
		}
	}
	for f := range r.codecs {
		if !seen[f] {
			out = append(out, f)
		}
	}
	return out
}
