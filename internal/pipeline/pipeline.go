// Package pipeline drives a single conversion: parse the source text, apply
// any transforms, serialize for the target format, and classify failures by side.
package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	stderrors "errors"

	"github.com/mcncl/humlplay/internal/codec"
	"github.com/mcncl/humlplay/internal/errors"
	"github.com/mcncl/humlplay/internal/models"
	"github.com/mcncl/humlplay/internal/transform"
)

// Converter runs conversions against a codec registry. It holds no per-request
// state and never panics past Convert.
type Converter struct {
	registry   *codec.Registry
	transforms transform.Chain
	logger     *slog.Logger
}

// Option configures a Converter
type Option func(*Converter)

// WithTransforms applies chain between parse and serialize
func WithTransforms(chain transform.Chain) Option {
	return func(c *Converter) {
		c.transforms = chain
	}
}

// WithLogger overrides the default slog logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// New creates a Converter. Every built-in format must resolve; a missing codec
// is a wiring defect and is reported here instead of at conversion time.
func New(registry *codec.Registry, opts ...Option) (*Converter, error) {
	for _, f := range models.Formats {
		if _, err := registry.Resolve(f); err != nil {
			return nil, err
		}
	}

	c := &Converter{registry: registry, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Registry returns the registry the converter resolves codecs from
func (c *Converter) Registry() *codec.Registry {
	return c.registry
}

// Convert turns req.Content from req.From into req.To
func (c *Converter) Convert(req models.Request) models.Outcome {
	start := time.Now()
	out := c.convert(req)

	attrs := []any{
		"from", req.From,
		"to", req.To,
		"bytes", len(req.Content),
		"duration", time.Since(start),
	}
	if out.Failed {
		attrs = append(attrs, "side", out.Side, "message", out.Message)
	}
	c.logger.Debug("conversion finished", attrs...)
	return out
}

func (c *Converter) convert(req models.Request) models.Outcome {
	// Empty input maps to empty output without touching any codec
	if req.Content == "" {
		return models.Converted("")
	}

	source, err := c.resolve(req.From)
	if err != nil {
		return models.Failed(models.SideSource, err.Error())
	}
	value, err := guard(func() (models.Value, error) { return source.Parse(req.Content) })
	if err != nil {
		return models.Failed(models.SideSource, "Parse error: "+describe(err))
	}

	if len(c.transforms) > 0 {
		value, err = guard(func() (models.Value, error) { return c.transforms.Apply(value) })
		if err != nil {
			return models.Failed(models.SideTarget, "Transform error: "+describe(err))
		}
	}

	target, err := c.resolve(req.To)
	if err != nil {
		return models.Failed(models.SideTarget, err.Error())
	}
	text, err := guard(func() (string, error) { return target.Serialize(value) })
	if err != nil {
		return models.Failed(models.SideTarget, "Serialize error: "+describe(err))
	}
	return models.Converted(text)
}

func (c *Converter) resolve(f models.Format) (codec.Codec, error) {
	found, err := c.registry.Resolve(f)
	if err != nil {
		c.logger.Error("codec lookup failed", "format", f, "error", err)
		return nil, err
	}
	return found, nil
}

// guard runs fn and turns a panic into an error
func guard[T any](fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()
	return fn()
}

// describe returns the most specific description of err: the wrapped cause for
// AppErrors, otherwise the error text
func describe(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Cause()
	}
	return err.Error()
}
