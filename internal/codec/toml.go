package codec

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mcncl/humlplay/internal/errors"
	"github.com/mcncl/humlplay/internal/models"
)

// TOMLCodec reads and writes TOML documents. Parsing restores key order from the
// decoder metadata; the encoder decides ordering on output.
type TOMLCodec struct{}

// NewTOMLCodec creates a TOML codec
func NewTOMLCodec() *TOMLCodec {
	return &TOMLCodec{}
}

// Format implements Codec
func (c *TOMLCodec) Format() models.Format {
	return models.FormatTOML
}

// Parse implements Codec
func (c *TOMLCodec) Parse(text string) (models.Value, error) {
	var raw map[string]interface{}
	md, err := toml.Decode(text, &raw)
	if err != nil {
		return nil, errors.NewParseError("invalid TOML", err)
	}

	rank := make(map[string]int)
	for i, key := range md.Keys() {
		path := strings.Join(key, "\x00")
		if _, seen := rank[path]; !seen {
			rank[path] = i
		}
	}

	v, err := orderTOML(raw, nil, rank)
	if err != nil {
		return nil, errors.NewParseError("invalid TOML", err)
	}
	return v, nil
}

func orderTOML(raw interface{}, path []string, rank map[string]int) (models.Value, error) {
	switch t := raw.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		position := func(k string) int {
			child := append(append([]string{}, path...), k)
			if r, ok := rank[strings.Join(child, "\x00")]; ok {
				return r
			}
			return math.MaxInt
		}
		sort.SliceStable(keys, func(i, j int) bool {
			pi, pj := position(keys[i]), position(keys[j])
			if pi != pj {
				return pi < pj
			}
			return keys[i] < keys[j]
		})

		obj := models.NewObject()
		for _, k := range keys {
			child := append(append([]string{}, path...), k)
			v, err := orderTOML(t[k], child, rank)
			if err != nil {
				return nil, err
			}
			obj.Set(k, v)
		}
		return obj, nil
	case []map[string]interface{}:
		arr := make(models.Array, len(t))
		for i, item := range t {
			v, err := orderTOML(item, path, rank)
			if err != nil {
				return nil, err
			}
			arr[i] = v
		}
		return arr, nil
	case []interface{}:
		arr := make(models.Array, len(t))
		for i, item := range t {
			v, err := orderTOML(item, path, rank)
			if err != nil {
				return nil, err
			}
			arr[i] = v
		}
		return arr, nil
	case time.Time:
		return formatTOMLTime(t), nil
	}
	return models.Normalize(raw)
}

// formatTOMLTime keeps local dates and times in their TOML shape instead of
// inventing a UTC offset
func formatTOMLTime(t time.Time) string {
	switch t.Location().String() {
	case "date-local":
		return t.Format("2006-01-02")
	case "time-local":
		return t.Format("15:04:05.999999999")
	case "datetime-local":
		return t.Format("2006-01-02T15:04:05.999999999")
	}
	return t.Format(time.RFC3339Nano)
}

// Serialize implements Codec
func (c *TOMLCodec) Serialize(v models.Value) (string, error) {
	if _, ok := v.(*models.Object); !ok {
		return "", errors.NewSerializeError(
			"TOML documents must be a table at the top level",
			fmt.Errorf("%w: top-level value is %s", errors.ErrUnsupportedShape, describeShape(v)),
		)
	}

	err := models.Walk(v, func(path string, item models.Value) error {
		if item == nil {
			return fmt.Errorf("%w: TOML cannot represent null (at %s)", errors.ErrUnsupportedShape, path)
		}
		return nil
	})
	if err != nil {
		return "", errors.NewSerializeError("value cannot be expressed in TOML", err)
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(models.Plain(v)); err != nil {
		return "", errors.NewSerializeError("cannot encode TOML", err)
	}
	return buf.String(), nil
}

func describeShape(v models.Value) string {
	switch v.(type) {
	case nil:
		return "null"
	case models.Array:
		return "an array"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case int64, float64:
		return "a number"
	}
	return fmt.Sprintf("%T", v)
}
