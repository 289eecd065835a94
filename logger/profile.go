package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/driftlog/driftlog/config"
	"github.com/driftlog/driftlog/core"
	"github.com/driftlog/driftlog/formatter"
	"github.com/driftlog/driftlog/handler"
	"github.com/driftlog/driftlog/processor"
)

// ProfileOptions tune the named profiles.
type ProfileOptions struct {
	// Level is the handler level (default: config.Level()).
	Level any
	// Stream overrides the output writer for stream-based profiles.
	Stream io.Writer
	// Filename is used by the file profiles (default "driftlog.log").
	Filename string
	// ActionLevel, BufferSize and Reset tune the fingerscrossed
	// profiles (see handler.FingersCrossedConfig).
	ActionLevel int
	BufferSize  int
	Reset       bool
}

// Configure replaces the core's handlers and options with the default
// chain plus whatever the caller overrides. A nil Handlers slice in
// cfg keeps existing handlers (see core.Configure).
func Configure(c *core.Core, cfg core.ConfigureConfig) ([]core.HandlerRecord, error) {
	if cfg.Preprocessors == nil {
		cfg.Preprocessors = processor.DefaultPreprocessors()
	}
	if cfg.Processors == nil {
		cfg.Processors = processor.DefaultProcessors()
	}
	return c.Configure(cfg)
}

// ConfigureProfile applies a named configuration profile to a Core:
//
//	default             stdout, default formatter, default chains
//	develop             stderr, caller info and duration measuring
//	simple              stdout, simple formatter
//	fast                stderr, simple formatter, empty chains
//	cloud               one-line JSON to stdout
//	json                indented JSON to stdout
//	file                append to Filename
//	fingerscrossed      buffered console, flush on ERROR
//	fingerscrossed_file buffered file, flush on ERROR
//	nothing             no handlers, empty chains
//
// An empty name selects "default"; an unknown name is an error.
func ConfigureProfile(c *core.Core, name string, opts ProfileOptions) error {
	if name == "" {
		name = "default"
	}
	if opts.Level == nil {
		opts.Level = config.Level()
	}
	if opts.Filename == "" {
		opts.Filename = "driftlog.log"
	}

	spec := func(h core.Handler) []core.HandlerSpec {
		return []core.HandlerSpec{{Handler: h, Level: opts.Level, PrintErrors: true}}
	}

	switch name {
	case "default":
		_, err := Configure(c, core.ConfigureConfig{
			Handlers: spec(handler.NewDefaultHandler()),
		})
		return err

	case "develop":
		dur := processor.NewDuration()
		_, err := c.Configure(core.ConfigureConfig{
			Handlers: spec(handler.NewStreamHandler(handler.StreamConfig{
				Writer:    streamOr(opts.Stream, os.Stderr),
				Formatter: formatter.NewDefaultFormatter(),
			})),
			Preprocessors: append(processor.DefaultPreprocessors(), processor.CallerInfo(processor.DefaultCallerSkip)),
			Processors:    append(processor.DefaultProcessors(), dur.Processor()),
		})
		return err

	case "simple":
		_, err := Configure(c, core.ConfigureConfig{
			Handlers: spec(handler.NewStreamHandler(handler.StreamConfig{
				Writer: streamOr(opts.Stream, os.Stdout),
			})),
		})
		return err

	case "fast":
		_, err := c.Configure(core.ConfigureConfig{
			Handlers: spec(handler.NewStreamHandler(handler.StreamConfig{
				Writer: streamOr(opts.Stream, os.Stderr),
			})),
			Preprocessors: []core.Processor{},
			Processors:    []core.Processor{},
		})
		return err

	case "cloud":
		_, err := Configure(c, core.ConfigureConfig{
			Handlers: spec(handler.NewJSONHandler(streamOr(opts.Stream, os.Stdout), formatter.JSONConfig{})),
		})
		return err

	case "json":
		_, err := Configure(c, core.ConfigureConfig{
			Handlers: spec(handler.NewJSONHandler(streamOr(opts.Stream, os.Stdout), formatter.JSONConfig{Indent: "  "})),
		})
		return err

	case "file":
		fh, err := handler.NewFileHandler(handler.FileConfig{Path: opts.Filename})
		if err != nil {
			return err
		}
		_, err = Configure(c, core.ConfigureConfig{Handlers: spec(fh)})
		return err

	case "fingerscrossed":
		fc := handler.NewFingersCrossedHandler(
			handler.NewStreamHandler(handler.StreamConfig{
				Writer:    streamOr(opts.Stream, os.Stderr),
				Formatter: formatter.NewDefaultFormatter(),
			}),
			handler.FingersCrossedConfig{
				ActionLevel: opts.ActionLevel,
				BufferSize:  opts.BufferSize,
				Reset:       opts.Reset,
			},
		)
		_, err := Configure(c, core.ConfigureConfig{Handlers: spec(fc)})
		return err

	case "fingerscrossed_file":
		fh, err := handler.NewFileHandler(handler.FileConfig{Path: opts.Filename})
		if err != nil {
			return err
		}
		fc := handler.NewFingersCrossedHandler(fh, handler.FingersCrossedConfig{
			ActionLevel: opts.ActionLevel,
			BufferSize:  opts.BufferSize,
			Reset:       opts.Reset,
		})
		_, err = Configure(c, core.ConfigureConfig{Handlers: spec(fc)})
		return err

	case "nothing":
		_, err := c.Configure(core.ConfigureConfig{
			Handlers:      []core.HandlerSpec{},
			Preprocessors: []core.Processor{},
			Processors:    []core.Processor{},
		})
		return err
	}

	return fmt.Errorf("unknown log profile %q", name)
}

func streamOr(w io.Writer, def io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return def
}
