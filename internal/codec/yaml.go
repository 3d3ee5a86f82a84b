package codec

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	stderrors "errors"

	"github.com/mcncl/humlplay/internal/errors"
	"github.com/mcncl/humlplay/internal/models"
	"gopkg.in/yaml.v3"
)

const yamlMergeTag = "!!merge"

// YAMLCodec reads and writes a single YAML document through the yaml.v3 node
// tree so mapping order survives
type YAMLCodec struct {
	indent int
}

// NewYAMLCodec creates a YAML codec that indents nested blocks by indent spaces
func NewYAMLCodec(indent int) *YAMLCodec {
	return &YAMLCodec{indent: indent}
}

// Format implements Codec
func (c *YAMLCodec) Format() models.Format {
	return models.FormatYAML
}

// Parse implements Codec
func (c *YAMLCodec) Parse(text string) (models.Value, error) {
	dec := yaml.NewDecoder(strings.NewReader(text))

	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if stderrors.Is(err, io.EOF) {
			// a document holding only comments or whitespace
			return nil, nil
		}
		return nil, errors.NewParseError("invalid YAML", err)
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); !stderrors.Is(err, io.EOF) {
		if err != nil {
			return nil, errors.NewParseError("invalid YAML", err)
		}
		return nil, errors.NewParseError("invalid YAML", fmt.Errorf("expected a single document, found more than one"))
	}

	v, err := fromYAMLNode(&doc)
	if err != nil {
		return nil, errors.NewParseError("invalid YAML", err)
	}
	return v, nil
}

// maxYAMLAliasNodes caps how many values alias expansion may produce
const maxYAMLAliasNodes = 1_000_000

// yamlWalker converts a node tree into values, expanding aliases. It tracks the
// anchors on the current expansion path to reject self-referencing documents.
type yamlWalker struct {
	expanding map[*yaml.Node]bool
	expanded  int
}

func fromYAMLNode(n *yaml.Node) (models.Value, error) {
	w := &yamlWalker{expanding: make(map[*yaml.Node]bool)}
	return w.value(n)
}

// alias resolves n to its anchored node and marks it as being expanded. The
// returned func must be called once the anchored value has been walked.
func (w *yamlWalker) alias(n *yaml.Node) (*yaml.Node, func(), error) {
	target := n.Alias
	if target == nil {
		return nil, nil, fmt.Errorf("line %d: unknown anchor %q", n.Line, n.Value)
	}
	if w.expanding[target] {
		return nil, nil, fmt.Errorf("line %d: anchor %q value contains itself", n.Line, n.Value)
	}
	w.expanding[target] = true
	return target, func() { delete(w.expanding, target) }, nil
}

func (w *yamlWalker) value(n *yaml.Node) (models.Value, error) {
	if len(w.expanding) > 0 {
		w.expanded++
		if w.expanded > maxYAMLAliasNodes {
			return nil, fmt.Errorf("line %d: document expands aliases into more than %d values", n.Line, maxYAMLAliasNodes)
		}
	}

	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return w.value(n.Content[0])
	case yaml.AliasNode:
		target, done, err := w.alias(n)
		if err != nil {
			return nil, err
		}
		defer done()
		return w.value(target)
	case yaml.SequenceNode:
		arr := make(models.Array, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := w.value(item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.MappingNode:
		obj := models.NewObject()
		if err := w.mapping(obj, n); err != nil {
			return nil, err
		}
		return obj, nil
	case yaml.ScalarNode:
		var raw interface{}
		if err := n.Decode(&raw); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return models.Normalize(raw)
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}

func (w *yamlWalker) mapping(obj *models.Object, n *yaml.Node) error {
	if len(n.Content)%2 != 0 {
		return fmt.Errorf("line %d: malformed mapping", n.Line)
	}
	for i := 0; i < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.ShortTag() == yamlMergeTag {
			if err := w.merge(obj, valNode); err != nil {
				return err
			}
			continue
		}

		key, err := yamlKey(keyNode)
		if err != nil {
			return err
		}
		v, err := w.value(valNode)
		if err != nil {
			return err
		}
		obj.Set(key, v)
	}
	return nil
}

// merge handles "<<: *anchor" and "<<: [*a, *b]". Explicit keys in the
// mapping win over merged ones.
func (w *yamlWalker) merge(obj *models.Object, n *yaml.Node) error {
	if n.Kind == yaml.AliasNode {
		target, done, err := w.alias(n)
		if err != nil {
			return err
		}
		defer done()
		n = target
	}
	switch n.Kind {
	case yaml.MappingNode:
		merged := models.NewObject()
		if err := w.mapping(merged, n); err != nil {
			return err
		}
		for _, k := range merged.Keys() {
			if !obj.Has(k) {
				v, _ := merged.Get(k)
				obj.Set(k, v)
			}
		}
		return nil
	case yaml.SequenceNode:
		for _, item := range n.Content {
			if err := w.merge(obj, item); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("line %d: merge value must be a mapping or a list of mappings", n.Line)
}

func yamlKey(n *yaml.Node) (string, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("line %d: only scalar mapping keys are supported", n.Line)
	}
	return n.Value, nil
}

// Serialize implements Codec
func (c *YAMLCodec) Serialize(v models.Value) (string, error) {
	node, err := toYAMLNode(v)
	if err != nil {
		return "", errors.NewSerializeError("cannot encode YAML", err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(c.indent)
	if err := enc.Encode(node); err != nil {
		return "", errors.NewSerializeError("cannot encode YAML", err)
	}
	if err := enc.Close(); err != nil {
		return "", errors.NewSerializeError("cannot encode YAML", err)
	}
	return buf.String(), nil
}

func toYAMLNode(v models.Value) (*yaml.Node, error) {
	switch t := v.(type) {
	case *models.Object:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range t.Keys() {
			child, _ := t.Get(k)
			valNode, err := toYAMLNode(child)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
			n.Content = append(n.Content, keyNode, valNode)
		}
		return n, nil
	case models.Array:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, item := range t {
			child, err := toYAMLNode(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			n.Content = append(n.Content, child)
		}
		return n, nil
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}

	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return n, nil
}
