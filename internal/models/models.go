package models

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Format identifies one of the supported serialization syntaxes
type Format string

const (
	FormatHUML Format = "huml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Formats lists every supported format in selector order
var Formats = []Format{FormatHUML, FormatJSON, FormatYAML, FormatTOML}

// extensionPattern matches the file extensions a document can be loaded from
var extensionPattern = regexp.MustCompile(`(?i)\.(huml|json|toml|yaml|yml)$`)

// ParseFormat converts a user supplied identifier into a Format.
// "yml" is accepted as an alias of "yaml".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "huml":
		return FormatHUML, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unsupported format %q (expected one of huml, json, yaml, toml)", name)
}

// FormatFromFilename infers the format from a file name's extension (case-insensitive)
func FormatFromFilename(name string) (Format, bool) {
	match := extensionPattern.FindStringSubmatch(filepath.Base(name))
	if match == nil {
		return "", false
	}
	f, err := ParseFormat(match[1])
	if err != nil {
		return "", false
	}
	return f, true
}

// Next returns the format after f in selector order, wrapping around
func (f Format) Next() Format {
	for i, candidate := range Formats {
		if candidate == f {
			return Formats[(i+1)%len(Formats)]
		}
	}
	return Formats[0]
}

// Extensions returns the file extensions associated with the format
func (f Format) Extensions() []string {
	if f == FormatYAML {
		return []string{".yaml", ".yml"}
	}
	return []string{"." + string(f)}
}

func (f Format) String() string {
	return string(f)
}

// Side identifies which editor a message belongs to
type Side string

const (
	SideSource Side = "source"
	SideTarget Side = "target"
)

// Request is a single conversion request
type Request struct {
	Content string
	From    Format
	To      Format
}

// Outcome is the result of a conversion: either converted text or a failure
// attributed to one side.
type Outcome struct {
	Text    string
	Failed  bool
	Side    Side
	Message string
}

// Converted builds a successful outcome
func Converted(text string) Outcome {
	return Outcome{Text: text}
}

// Failed builds a failed outcome attributed to side
func Failed(side Side, message string) Outcome {
	return Outcome{Failed: true, Side: side, Message: message}
}

// OK reports whether the conversion succeeded
func (o Outcome) OK() bool {
	return !o.Failed
}
