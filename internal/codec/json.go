package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	stderrors "errors"

	"github.com/kaptinlin/jsonrepair"
	"github.com/mcncl/humlplay/internal/errors"
	"github.com/mcncl/humlplay/internal/models"
)

// JSONCodec reads and writes JSON while keeping object key order
type JSONCodec struct {
	indent string
	repair bool
}

// NewJSONCodec creates a JSON codec. indent is the number of spaces per level;
// repair enables jsonrepair as a fallback for malformed input.
func NewJSONCodec(indent int, repair bool) *JSONCodec {
	return &JSONCodec{indent: strings.Repeat(" ", indent), repair: repair}
}

// Format implements Codec
func (c *JSONCodec) Format() models.Format {
	return models.FormatJSON
}

// Parse implements Codec
func (c *JSONCodec) Parse(text string) (models.Value, error) {
	v, err := decodeJSON(text)
	if err == nil {
		return v, nil
	}

	var syntaxErr *json.SyntaxError
	if c.repair && stderrors.As(err, &syntaxErr) {
		fixed, repairErr := jsonrepair.JSONRepair(text)
		if repairErr == nil {
			if v, retryErr := decodeJSON(fixed); retryErr == nil {
				return v, nil
			}
		}
	}
	return nil, errors.NewParseError("invalid JSON", describeJSONError(err))
}

func decodeJSON(text string) (models.Value, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	v, err := decodeJSONValue(dec, 0)
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	// Anything but whitespace after the first value is an error
	if _, err := dec.Token(); !stderrors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("unexpected data after top-level value at offset %d", dec.InputOffset())
	}
	return v, nil
}

// maxJSONDepth matches the nesting limit of encoding/json's Unmarshal
const maxJSONDepth = 10000

func decodeJSONValue(dec *json.Decoder, depth int) (models.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if _, nested := tok.(json.Delim); nested && depth >= maxJSONDepth {
		return nil, fmt.Errorf("exceeded max depth of %d at offset %d", maxJSONDepth, dec.InputOffset())
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := models.NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key at offset %d", dec.InputOffset())
				}
				val, err := decodeJSONValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := models.Array{}
			for dec.More() {
				val, err := decodeJSONValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected %q at offset %d", t, dec.InputOffset())
	case json.Number:
		return models.Normalize(t)
	default:
		// string, bool or nil
		return t, nil
	}
}

func describeJSONError(err error) error {
	var syntaxErr *json.SyntaxError
	if stderrors.As(err, &syntaxErr) {
		return fmt.Errorf("%s (offset %d)", syntaxErr.Error(), syntaxErr.Offset)
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("unexpected end of JSON input")
	}
	return err
}

// Serialize implements Codec
func (c *JSONCodec) Serialize(v models.Value) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", c.indent)
	if err := enc.Encode(v); err != nil {
		return "", errors.NewSerializeError("cannot encode JSON", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
