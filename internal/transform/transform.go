// Package transform rewrites parsed values before they are serialized
package transform

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/mcncl/humlplay/internal/errors"
	"github.com/mcncl/humlplay/internal/models"
)

// Transformer rewrites a value. Implementations must not mutate their input.
type Transformer interface {
	Name() string
	Apply(v models.Value) (models.Value, error)
}

// KeyCase names a key rewriting style
type KeyCase string

const (
	KeyCasePreserve   KeyCase = "preserve"
	KeyCaseSnake      KeyCase = "snake"
	KeyCaseCamel      KeyCase = "camel"
	KeyCaseLowerCamel KeyCase = "lower_camel"
	KeyCaseKebab      KeyCase = "kebab"
)

// KeyCases lists the accepted key case names
var KeyCases = []KeyCase{KeyCasePreserve, KeyCaseSnake, KeyCaseCamel, KeyCaseLowerCamel, KeyCaseKebab}

// ParseKeyCase validates a key case name. The empty string means preserve.
func ParseKeyCase(name string) (KeyCase, error) {
	if strings.TrimSpace(name) == "" {
		return KeyCasePreserve, nil
	}
	for _, kc := range KeyCases {
		if string(kc) == name {
			return kc, nil
		}
	}
	return "", errors.NewConfigError(fmt.Sprintf("invalid key case %q", name), nil)
}

// KeyCaseTransformer rewrites every mapping key with strcase
type KeyCaseTransformer struct {
	convert func(string) string
	style   KeyCase
}

// NewKeyCase creates a transformer for style. It returns nil for preserve.
func NewKeyCase(style KeyCase) Transformer {
	var convert func(string) string
	switch style {
	case KeyCaseSnake:
		convert = strcase.ToSnake
	case KeyCaseCamel:
		convert = strcase.ToCamel
	case KeyCaseLowerCamel:
		convert = strcase.ToLowerCamel
	case KeyCaseKebab:
		convert = strcase.ToKebab
	default:
		return nil
	}
	return &KeyCaseTransformer{convert: convert, style: style}
}

// Name implements Transformer
func (k *KeyCaseTransformer) Name() string {
	return "key_case:" + string(k.style)
}

// Apply implements Transformer. Two keys collapsing into the same name is an error.
func (k *KeyCaseTransformer) Apply(v models.Value) (models.Value, error) {
	switch t := v.(type) {
	case *models.Object:
		out := models.NewObject()
		origin := make(map[string]string, t.Len())
		for _, key := range t.Keys() {
			renamed := k.convert(key)
			if prev, clash := origin[renamed]; clash {
				return nil, fmt.Errorf("keys %q and %q both become %q", prev, key, renamed)
			}
			origin[renamed] = key

			child, _ := t.Get(key)
			converted, err := k.Apply(child)
			if err != nil {
				return nil, err
			}
			out.Set(renamed, converted)
		}
		return out, nil
	case models.Array:
		out := make(models.Array, len(t))
		for i, item := range t {
			converted, err := k.Apply(item)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	default:
		return v, nil
	}
}

// Chain applies transformers in order
type Chain []Transformer

// Apply runs every transformer, wrapping the first failure with its name
func (c Chain) Apply(v models.Value) (models.Value, error) {
	for _, t := range c {
		out, err := t.Apply(v)
		if err != nil {
			return nil, errors.NewTransformError(t.Name(), err)
		}
		v = out
	}
	return v, nil
}

// Options selects the transforms to build
type Options struct {
	KeyCase string
	Query   string
}

// Build validates opts and returns the resulting chain; an empty chain is valid
func Build(opts Options) (Chain, error) {
	var chain Chain

	kc, err := ParseKeyCase(opts.KeyCase)
	if err != nil {
		return nil, err
	}
	if t := NewKeyCase(kc); t != nil {
		chain = append(chain, t)
	}

	if strings.TrimSpace(opts.Query) != "" {
		q, err := NewQuery(opts.Query)
		if err != nil {
			return nil, err
		}
		chain = append(chain, q)
	}
	return chain, nil
}
