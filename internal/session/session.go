// Package session owns the two editors of a playground together with the
// converter and the feedback machine, and implements the user actions on them.
package session

import (
	"fmt"
	"log/slog"

	"github.com/mcncl/humlplay/internal/errors"
	"github.com/mcncl/humlplay/internal/feedback"
	"github.com/mcncl/humlplay/internal/models"
	"github.com/mcncl/humlplay/internal/pipeline"
)

// Drop rejection messages
const (
	MsgSingleFile      = "Please drop a single file."
	MsgUnsupportedFile = "Only files with extensions .huml, .json, .yaml, .yml, or .toml are supported"
)

// Session is not safe for concurrent use
type Session struct {
	Source Editor
	Target Editor

	converter *pipeline.Converter
	machine   *feedback.Machine
	logger    *slog.Logger
}

// Option configures a Session
type Option func(*Session)

// WithLogger overrides the default slog logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New creates a session over the given editors
func New(converter *pipeline.Converter, source, target Editor, opts ...Option) *Session {
	s := &Session{
		Source:    source,
		Target:    target,
		converter: converter,
		machine:   feedback.NewMachine(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// View renders the feedback state
func (s *Session) View() feedback.View {
	return s.machine.View()
}

// Request builds a conversion request from the current editors
func (s *Session) Request() models.Request {
	return models.Request{
		Content: s.Source.Content(),
		From:    s.Source.Format(),
		To:      s.Target.Format(),
	}
}

// EditSource replaces the source content and marks the output stale
func (s *Session) EditSource(text string) {
	s.Source.SetContent(text)
	s.machine.Edit()
}

// ContentChanged marks the output stale after the source editor changed on its own
func (s *Session) ContentChanged() {
	s.machine.Edit()
}

// SelectFormat changes the format of one side and marks the output stale
func (s *Session) SelectFormat(side models.Side, f models.Format) {
	s.editor(side).SetFormat(f)
	s.machine.Edit()
}

func (s *Session) editor(side models.Side) Editor {
	if side == models.SideTarget {
		return s.Target
	}
	return s.Source
}

// Convert runs the pipeline synchronously. It fails with ErrBusy while an
// asynchronous conversion started with Begin is still in flight.
func (s *Session) Convert() (models.Outcome, error) {
	ticket, req, err := s.Begin()
	if err != nil {
		return models.Outcome{}, err
	}
	out := s.converter.Convert(req)
	s.Finish(ticket, out)
	return out, nil
}

// Begin starts a conversion and returns its ticket and request. The caller
// runs the request through Run and hands the outcome to Finish.
func (s *Session) Begin() (feedback.Ticket, models.Request, error) {
	ticket, err := s.machine.Start()
	if err != nil {
		return 0, models.Request{}, err
	}
	return ticket, s.Request(), nil
}

// Run executes req on the session's converter. It touches no session state and
// may be called from another goroutine.
func (s *Session) Run(req models.Request) models.Outcome {
	return s.converter.Convert(req)
}

// Finish applies the outcome of the conversion identified by ticket. Stale
// outcomes are discarded and Finish reports false.
func (s *Session) Finish(ticket feedback.Ticket, out models.Outcome) bool {
	if !s.machine.Resolve(ticket, out) {
		s.logger.Debug("discarded stale conversion", "ticket", ticket)
		return false
	}
	s.Target.SetContent(s.machine.View().Output)
	return true
}

// Swap exchanges the formats and contents of both editors, then converts the
// new source. If the exchange fails part way both editors are restored.
func (s *Session) Swap() (models.Outcome, error) {
	if err := s.exchange(); err != nil {
		return models.Outcome{}, err
	}

	ticket := s.machine.Supersede()
	out := s.converter.Convert(s.Request())
	s.Finish(ticket, out)
	return out, nil
}

type snapshot struct {
	format  models.Format
	content string
}

func take(e Editor) snapshot {
	return snapshot{format: e.Format(), content: e.Content()}
}

func (sn snapshot) restore(e Editor) {
	e.SetFormat(sn.format)
	e.SetContent(sn.content)
}

func (s *Session) exchange() (err error) {
	src, dst := take(s.Source), take(s.Target)

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		s.logger.Warn("swap interrupted, restoring editors", "panic", r)
		if rerr := s.rollback(src, dst); rerr != nil {
			err = errors.NewSwapError("could not restore editors", rerr)
			return
		}
		err = errors.NewSwapError("editors restored", fmt.Errorf("%v", r))
	}()

	s.Source.SetFormat(dst.format)
	s.Target.SetFormat(src.format)
	s.Source.SetContent(dst.content)
	s.Target.SetContent(src.content)
	return nil
}

func (s *Session) rollback(src, dst snapshot) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	src.restore(s.Source)
	dst.restore(s.Target)
	return nil
}
