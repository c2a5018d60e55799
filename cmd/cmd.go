package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rubiojr/cusplit/partition"
	"github.com/rubiojr/cusplit/profile"
	"github.com/rubiojr/cusplit/splitter"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Exit statuses.
const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

// UsageError reports a malformed invocation. No work has begun when it is
// returned.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string { return e.Message }

// Execute runs the cusplit CLI with os.Args and exits with its status.
func Execute(version string) {
	os.Exit(Run(context.Background(), version, os.Args, os.Stdout, os.Stderr))
}

// Run executes the CLI and returns the process exit status.
func Run(ctx context.Context, version string, args []string, stdout, stderr io.Writer) int {
	var logger *zap.Logger
	cmd := &cli.Command{
		Name:      "cusplit",
		Usage:     "Split a C source file into one dispatchable unit per function",
		ArgsUsage: "<input_file>",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "profile",
				Aliases: []string{"p"},
				Usage:   "Profile to apply (builtin: split, rewrite)",
				Value:   profile.Default,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "HCL file defining extra profiles",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output directory (overrides the profile)",
			},
			&cli.StringFlag{
				Name:  "ext",
				Usage: "Output file extension (overrides the profile)",
			},
			&cli.BoolFlag{
				Name:    "keep-going",
				Aliases: []string{"k"},
				Usage:   "Skip blocks whose end marker names another function instead of aborting",
			},
			&cli.BoolFlag{
				Name:  "fail-fast",
				Usage: "Abort on the first unit that cannot be written",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log debug information to stderr",
			},
			&cli.BoolFlag{
				Name:    "no-color",
				Aliases: []string{"C"},
				Usage:   "Disable ANSI color output",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			var err error
			logger, err = newLogger(stderr, cmd.Bool("verbose"))
			if err != nil {
				return ctx, fmt.Errorf("failed to initialize logger: %w", err)
			}
			return ctx, nil
		},
		After: func(ctx context.Context, cmd *cli.Command) error {
			if logger != nil {
				_ = logger.Sync()
			}
			return nil
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return splitAction(cmd, logger, stdout, stderr)
		},
		OnUsageError: func(ctx context.Context, cmd *cli.Command, err error, isSubcommand bool) error {
			return &UsageError{Message: err.Error()}
		},
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}

	err := cmd.Run(ctx, args)
	if err == nil {
		return exitOK
	}
	d := newDiag(stderr, cmd.Bool("no-color"))
	var usage *UsageError
	if errors.As(err, &usage) {
		d.print(err)
		return exitUsage
	}
	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		d.print(err)
		return exitCoder.ExitCode()
	}
	d.print(err)
	return exitFail
}

func splitAction(cmd *cli.Command, logger *zap.Logger, stdout, stderr io.Writer) error {
	if cmd.NArg() != 1 {
		return &UsageError{Message: "usage: cusplit [options] <input_file>"}
	}
	input := cmd.Args().First()
	if input == "" {
		return &UsageError{Message: "No file path provided."}
	}

	p, err := resolveProfile(cmd)
	if err != nil {
		return err
	}
	logger.Debug("profile resolved", zap.String("profile", p.Name), zap.String("output_dir", p.OutputDir))

	d := newDiag(stderr, cmd.Bool("no-color"))
	s := &splitter.Splitter{
		Profile: p,
		Policy: splitter.Policy{
			KeepGoing: cmd.Bool("keep-going"),
			FailFast:  cmd.Bool("fail-fast"),
		},
		Stdout:  stdout,
		OnError: d.print,
		Logger:  logger,
	}
	res, err := s.Run(input)
	var notFound *splitter.InputNotFoundError
	if errors.As(err, &notFound) {
		d.print(err)
		return nil
	}
	if err != nil {
		return describe(err)
	}
	return res.Err()
}

func resolveProfile(cmd *cli.Command) (*profile.Profile, error) {
	set := profile.NewSet()
	if path := cmd.String("config"); path != "" {
		var err error
		if set, err = profile.LoadFile(path); err != nil {
			return nil, err
		}
	}
	p, err := set.Get(cmd.String("profile"))
	if err != nil {
		return nil, &UsageError{Message: err.Error()}
	}
	if out := cmd.String("out"); out != "" {
		p.OutputDir = out
	}
	if ext := cmd.String("ext"); ext != "" {
		p.Extension = ext
	}
	if err := p.Validate(); err != nil {
		return nil, &UsageError{Message: err.Error()}
	}
	return p, nil
}

// describe adds run context to structural errors.
func describe(err error) error {
	var mismatch *partition.NameMismatchError
	if errors.As(err, &mismatch) {
		return fmt.Errorf("aborting, units written before this block are kept: %w", err)
	}
	var unterminated *partition.UnterminatedBlockError
	if errors.As(err, &unterminated) {
		return fmt.Errorf("aborting: %w", err)
	}
	return err
}

func newLogger(stderr io.Writer, verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if stderr == os.Stderr {
		return config.Build()
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(config.EncoderConfig), zapcore.AddSync(stderr), config.Level)
	return zap.New(core), nil
}

// diag prints single-line diagnostics, in red when stderr is a terminal.
type diag struct {
	w     io.Writer
	color bool
}

func newDiag(w io.Writer, noColor bool) *diag {
	color := false
	if f, ok := w.(*os.File); ok && !noColor && os.Getenv("NO_COLOR") == "" {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &diag{w: w, color: color}
}

func (d *diag) print(err error) {
	if d.color {
		fmt.Fprintf(d.w, "\033[31merror:\033[0m %v\n", err)
		return
	}
	fmt.Fprintf(d.w, "error: %v\n", err)
}
