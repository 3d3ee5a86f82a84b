package codec

import (
	"github.com/huml-lang/go-huml"
	"github.com/mcncl/humlplay/internal/errors"
	"github.com/mcncl/humlplay/internal/models"
)

// HUMLCodec reads and writes HUML documents through go-huml. The library works
// on Go maps, so mapping keys come back sorted.
type HUMLCodec struct{}

// NewHUMLCodec creates a HUML codec
func NewHUMLCodec() *HUMLCodec {
	return &HUMLCodec{}
}

// Format implements Codec
func (c *HUMLCodec) Format() models.Format {
	return models.FormatHUML
}

// Parse implements Codec
func (c *HUMLCodec) Parse(text string) (models.Value, error) {
	var raw interface{}
	if err := huml.Unmarshal([]byte(text), &raw); err != nil {
		return nil, errors.NewParseError("invalid HUML", err)
	}
	v, err := models.Normalize(raw)
	if err != nil {
		return nil, errors.NewParseError("invalid HUML", err)
	}
	return v, nil
}

// Serialize implements Codec
func (c *HUMLCodec) Serialize(v models.Value) (string, error) {
	out, err := huml.Marshal(models.Plain(v))
	if err != nil {
		return "", errors.NewSerializeError("cannot encode HUML", err)
	}
	return string(out), nil
}
