package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"golang.org/x/term"

	"github.com/mcncl/humlplay/internal/clipboard"
	"github.com/mcncl/humlplay/internal/codec"
	"github.com/mcncl/humlplay/internal/config"
	"github.com/mcncl/humlplay/internal/errors"
	"github.com/mcncl/humlplay/internal/formatter"
	"github.com/mcncl/humlplay/internal/input"
	"github.com/mcncl/humlplay/internal/models"
	"github.com/mcncl/humlplay/internal/pipeline"
	"github.com/mcncl/humlplay/internal/session"
	"github.com/mcncl/humlplay/internal/transform"
	"github.com/mcncl/humlplay/internal/tui"
	"github.com/mcncl/humlplay/internal/watch"
)

// Globals are flags shared by every command
type Globals struct {
	Config  string `help:"Path to a config file. Defaults to the nearest .humlplay.yml." type:"path"`
	Debug   bool   `help:"Enable debug logging." short:"d"`
	Version bool   `help:"Show version information." short:"v"`
}

// CLI defines the command-line interface
var CLI struct {
	Globals

	Convert ConvertCmd `cmd:"" default:"withargs" help:"Convert a document between formats (default command)."`
	Play    PlayCmd    `cmd:"" help:"Start the interactive terminal playground."`
	Watch   WatchCmd   `cmd:"" help:"Convert a file again every time it changes."`
	Formats FormatsCmd `cmd:"" help:"List the supported formats."`
}

// Context holds the runtime context
type Context struct {
	Globals *Globals
	Stdin   *os.File
	Stdout  io.Writer
	Stderr  io.Writer
}

// Version information
const (
	Version = "0.1.0"
)

// debugLogFile receives playground logs; the terminal belongs to the UI
const debugLogFile = "humlplay-debug.log"

func main() {
	// Parse CLI arguments with Kong
	parser := kong.Must(&CLI,
		kong.Name("humlplay"),
		kong.Description("Convert between HUML, JSON, YAML and TOML"),
		kong.UsageOnError(),
	)

	ctx, err := parser.Parse(defaultArgs(os.Args[1:], term.IsTerminal(int(os.Stdin.Fd()))))
	// Prints the error with usage and exits on failure
	parser.FatalIfErrorf(err)

	// Show version and exit if requested
	if CLI.Version {
		fmt.Printf("humlplay version %s\n", Version)
		return
	}

	err = ctx.Run(&Context{
		Globals: &CLI.Globals,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	})
	if err != nil {
		// Use our custom error handling to provide user-friendly error messages
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}
}

// defaultArgs starts the playground when humlplay is run from a terminal with
// no arguments. Piped input without arguments is converted.
func defaultArgs(args []string, interactive bool) []string {
	if len(args) == 0 && interactive {
		return []string{"play"}
	}
	return args
}

// setup loads the configuration and installs the default logger. Logs go to w.
func (c *Context) setup(overrides config.Overrides, w io.Writer) (*config.Config, *slog.Logger, error) {
	overrides.Debug = c.Globals.Debug
	cfg, err := config.LoadConfigWithCLI(c.Globals.Config, overrides)
	if err != nil {
		return nil, nil, errors.NewConfigError("failed to load configuration", err)
	}

	level := slog.LevelInfo
	if cfg.Dev.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// newConverter wires the codec registry and transforms described by cfg
func newConverter(cfg *config.Config, logger *slog.Logger) (*pipeline.Converter, error) {
	registry := codec.NewRegistry(codec.Options{
		Indent:     cfg.Output.Indent,
		RepairJSON: cfg.JSON.Repair,
	})

	chain, err := transform.Build(cfg.TransformOptions())
	if err != nil {
		return nil, err
	}

	return pipeline.New(registry, pipeline.WithTransforms(chain), pipeline.WithLogger(logger))
}

// ConvertCmd converts a single document
type ConvertCmd struct {
	Input   string `help:"Path to input file. If not specified, reads from stdin." short:"i" type:"path"`
	Output  string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	From    string `help:"Source format (huml, json, yaml, toml). Inferred from the input file extension when omitted." short:"f"`
	To      string `help:"Target format (huml, json, yaml, toml)." short:"t"`
	KeyCase string `help:"Rewrite keys: preserve, snake, camel, lower_camel or kebab." name:"key-case"`
	Query   string `help:"jq expression applied to the parsed document." short:"q"`
	Repair  bool   `help:"Repair malformed JSON input before parsing."`
	Copy    bool   `help:"Also copy the result to the clipboard."`
	Color   string `help:"Highlight output: auto, always or never."`
}

// Run executes the convert command
func (c *ConvertCmd) Run(ctx *Context) error {
	cfg, logger, err := ctx.setup(config.Overrides{
		From:    c.From,
		To:      c.To,
		KeyCase: c.KeyCase,
		Query:   c.Query,
		Color:   c.Color,
		Repair:  c.Repair,
	}, ctx.Stderr)
	if err != nil {
		return err
	}

	conv, err := newConverter(cfg, logger)
	if err != nil {
		return err
	}

	// 1. Read the document
	doc, err := input.Load(c.Input, ctx.Stdin)
	if err != nil {
		return err
	}

	from, err := input.SourceFormat(doc, c.From, cfg.Source())
	if err != nil {
		return err
	}

	// 2. Convert it
	out := conv.Convert(models.Request{Content: doc.Content, From: from, To: cfg.Target()})
	if out.Failed {
		return errors.NewConversionError(out.Message)
	}

	// 3. Copy if requested
	if c.Copy {
		notice, err := clipboard.Copy(clipboard.System{}, out.Text)
		if err != nil {
			logger.Warn("clipboard write failed", "error", err)
		}
		fmt.Fprintln(ctx.Stderr, notice)
	}

	// 4. Output the result
	return writeOutput(ctx, cfg, c.Output, out.Text, cfg.Target())
}

// writeOutput writes text to path, or to stdout highlighted per the color mode
func writeOutput(ctx *Context, cfg *config.Config, path, text string, f models.Format) error {
	if path != "" {
		formatted, err := formatter.NewFormatter().Format(text, f)
		if err != nil {
			return errors.NewOutputError("failed to format output", err)
		}
		if err := os.WriteFile(path, []byte(formatted), 0644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
		}
		fmt.Fprintf(ctx.Stderr, "Converted output written to %s\n", path)
		return nil
	}

	mode, err := formatter.ParseColorMode(cfg.Output.Color)
	if err != nil {
		return errors.NewConfigError("invalid color mode", err)
	}
	var color bool
	if out, ok := ctx.Stdout.(*os.File); ok {
		color = formatter.ShouldColor(mode, out.Fd())
	} else {
		color = mode == formatter.ColorAlways
	}

	formatted, err := formatter.NewFormatter(formatter.WithColor(color), formatter.WithStyle(cfg.Output.Style)).Format(text, f)
	if err != nil {
		return errors.NewOutputError("failed to format output", err)
	}
	if _, err := io.WriteString(ctx.Stdout, formatted); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// PlayCmd starts the terminal playground
type PlayCmd struct {
	Input string `help:"Document to open in the source pane." short:"i" type:"path"`
	From  string `help:"Source format." short:"f"`
	To    string `help:"Target format." short:"t"`
}

// Run executes the play command
func (c *PlayCmd) Run(ctx *Context) error {
	logOut := io.Discard
	if ctx.Globals.Debug {
		f, err := os.OpenFile(debugLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return errors.NewOutputError("failed to open debug log", err)
		}
		defer func() { _ = f.Close() }()
		logOut = f
	}

	cfg, logger, err := ctx.setup(config.Overrides{From: c.From, To: c.To}, logOut)
	if err != nil {
		return err
	}

	conv, err := newConverter(cfg, logger)
	if err != nil {
		return err
	}

	opts := tui.Options{
		Source:         cfg.Source(),
		Target:         cfg.Target(),
		NoticeDuration: cfg.Clipboard.NoticeDuration,
		Logger:         logger,
	}
	if c.Input != "" {
		doc, err := input.ReadFile(c.Input)
		if err != nil {
			return err
		}
		if opts.Source, err = input.SourceFormat(doc, c.From, cfg.Source()); err != nil {
			return err
		}
		opts.Content = doc.Content
	} else if opts.Source == models.FormatHUML {
		opts.Content = tui.SampleHUML
	}

	logger.Debug("starting playground", "source", opts.Source, "target", opts.Target)
	return tui.Run(conv, opts)
}

// WatchCmd re-converts a file whenever it changes
type WatchCmd struct {
	Input  string `help:"File to watch." short:"i" type:"path" required:""`
	Output string `help:"File to write each conversion to. If not specified, writes to stdout." short:"o" type:"path"`
	From   string `help:"Source format. Inferred from the input file extension when omitted." short:"f"`
	To     string `help:"Target format." short:"t"`
}

// Run executes the watch command
func (c *WatchCmd) Run(ctx *Context) error {
	cfg, logger, err := ctx.setup(config.Overrides{From: c.From, To: c.To}, ctx.Stderr)
	if err != nil {
		return err
	}

	conv, err := newConverter(cfg, logger)
	if err != nil {
		return err
	}

	doc := input.Document{Path: c.Input}
	if f, ok := models.FormatFromFilename(c.Input); ok {
		doc.Format = f
	}
	from, err := input.SourceFormat(doc, c.From, cfg.Source())
	if err != nil {
		return err
	}

	s := session.New(conv,
		session.NewMemoryEditor(from, ""),
		session.NewMemoryEditor(cfg.Target(), ""),
		session.WithLogger(logger),
	)

	handler := func(out models.Outcome) {
		if out.Failed {
			fmt.Fprintln(ctx.Stderr, out.Message)
			return
		}
		if err := writeOutput(ctx, cfg, c.Output, out.Text, cfg.Target()); err != nil {
			fmt.Fprintln(ctx.Stderr, errors.UserFriendlyError(err))
		}
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("watching", "path", c.Input, "from", from, "to", cfg.Target())
	w := watch.New(c.Input, s, handler, watch.WithDebounce(cfg.Watch.Debounce), watch.WithLogger(logger))
	return w.Run(runCtx)
}

// FormatsCmd lists the supported formats
type FormatsCmd struct{}

// Run executes the formats command
func (c *FormatsCmd) Run(ctx *Context) error {
	for _, f := range codec.NewRegistry(codec.DefaultOptions()).Formats() {
		fmt.Fprintf(ctx.Stdout, "%-5s %s\n", f, strings.Join(f.Extensions(), ", "))
	}
	return nil
}
