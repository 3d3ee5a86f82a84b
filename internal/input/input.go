// Package input loads source documents for the command-line front ends.
package input

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcncl/humlplay/internal/errors"
	"github.com/mcncl/humlplay/internal/models"
)

// Document is a loaded source document
type Document struct {
	// Path is empty for stdin
	Path    string
	Content string
	// Format is inferred from the file extension, empty when unknown
	Format models.Format
}

// ReadFile loads a document from path
func ReadFile(path string) (Document, error) {
	if strings.TrimSpace(path) == "" {
		return Document{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, errors.NewInputError(fmt.Sprintf("file '%s' not found", path), errors.ErrFileNotFound)
		}
		return Document{}, errors.NewInputError(fmt.Sprintf("failed to open file '%s'", path), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return Document{}, errors.NewInputError(fmt.Sprintf("failed to get file stats for '%s'", path), err)
	}
	if stat.IsDir() {
		return Document{}, errors.NewInputError(fmt.Sprintf("'%s' is a directory", path), errors.ErrInvalidFilePath)
	}
	if stat.Size() == 0 {
		return Document{}, errors.NewInputError(fmt.Sprintf("input file '%s' is empty", path), errors.ErrFileEmpty)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return Document{}, errors.NewInputError(fmt.Sprintf("failed to read file '%s'", path), err)
	}

	doc := Document{Path: path, Content: string(data)}
	if f, ok := models.FormatFromFilename(path); ok {
		doc.Format = f
	}
	return doc, nil
}

// ReadStdin loads a document piped on stdin. An interactive terminal is not
// read from and yields ErrNoInput.
func ReadStdin(stdin *os.File) (Document, error) {
	info, err := stdin.Stat()
	if err != nil {
		return Document{}, errors.NewInputError("failed to access stdin", err)
	}
	if (info.Mode() & os.ModeCharDevice) != 0 {
		return Document{}, errors.NewInputError("no input provided", errors.ErrNoInput)
	}
	return ReadReader(stdin)
}

// ReadReader loads a document from r
func ReadReader(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, errors.NewInputError("failed to read from stdin", err)
	}
	if len(data) == 0 {
		return Document{}, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	return Document{Content: string(data)}, nil
}

// Load reads path when set, otherwise stdin
func Load(path string, stdin *os.File) (Document, error) {
	if path != "" {
		return ReadFile(path)
	}
	return ReadStdin(stdin)
}

// SourceFormat picks the format to parse doc with: an explicit name wins, then
// the file extension, then fallback.
func SourceFormat(doc Document, explicit string, fallback models.Format) (models.Format, error) {
	if explicit != "" {
		f, err := models.ParseFormat(explicit)
		if err != nil {
			return "", errors.NewConfigError("invalid source format", err)
		}
		return f, nil
	}
	if doc.Format != "" {
		return doc.Format, nil
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", errors.NewInputError("cannot infer the source format, pass --from", errors.ErrUnknownFormat)
}
