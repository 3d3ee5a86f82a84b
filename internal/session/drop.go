package session

import (
	"fmt"

	"github.com/mcncl/humlplay/internal/errors"
	"github.com/mcncl/humlplay/internal/models"
)

// ReadFunc loads the contents of a named file
type ReadFunc func(name string) ([]byte, error)

// ValidateDrop checks a set of dropped file names and returns the format implied
// by the single accepted name
func ValidateDrop(names []string) (models.Format, error) {
	if len(names) != 1 {
		return "", errors.NewDropError(MsgSingleFile)
	}
	f, ok := models.FormatFromFilename(names[0])
	if !ok {
		return "", errors.NewDropError(MsgUnsupportedFile)
	}
	return f, nil
}

// Drop loads a dropped file into the source editor and selects its format.
// Rejected drops leave the session untouched.
func (s *Session) Drop(names []string, read ReadFunc) error {
	f, err := ValidateDrop(names)
	if err != nil {
		s.logger.Debug("drop rejected", "files", len(names), "error", err)
		return err
	}

	data, err := read(names[0])
	if err != nil {
		return errors.NewInputError(fmt.Sprintf("failed to read %s", names[0]), err)
	}

	s.Source.SetFormat(f)
	s.Source.SetContent(string(data))
	s.machine.Edit()
	return nil
}
