// Package splitter runs the partitioning pipeline: classify and extract
// blocks, rewrite their bodies, and emit one unit per block.
package splitter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rubiojr/cusplit/emit"
	"github.com/rubiojr/cusplit/partition"
	"github.com/rubiojr/cusplit/profile"
	"github.com/rubiojr/cusplit/rewrite"
	"go.uber.org/zap"
	"modernc.org/token"
)

// InputNotFoundError reports a missing input file.
type InputNotFoundError struct {
	Path string
}

func (e *InputNotFoundError) Error() string {
	return fmt.Sprintf("File '%s' does not exist.", e.Path)
}

// Policy decides which failures stop a run.
type Policy struct {
	// KeepGoing skips blocks whose end marker names another function
	// instead of aborting the run.
	KeepGoing bool
	// FailFast aborts the run on the first unit that cannot be written.
	FailFast bool
}

// Result summarizes a run.
type Result struct {
	Written    []string
	Skipped    []*partition.NameMismatchError
	Failed     []*emit.OutputWriteError
	Directives int
	// Rewrites counts fired rules by name.
	Rewrites map[string]int
}

// Err returns an error when some units could not be written.
func (r *Result) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	return fmt.Errorf("%d unit(s) could not be written, first: %w", len(r.Failed), r.Failed[0])
}

// Splitter partitions documents according to a profile.
type Splitter struct {
	Profile *profile.Profile
	Policy  Policy
	// Stdout receives captured directives and written paths.
	Stdout io.Writer
	// OnError receives failures the policy lets the run survive.
	OnError func(error)
	Logger  *zap.Logger
}

// Run partitions the file at path.
func (s *Splitter) Run(path string) (*Result, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &InputNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("cannot access %s: %w", path, err)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return s.Split(string(src), path)
}

// Split partitions src; filename is used in diagnostics only. The result
// is returned even when the run aborts, describing what was done so far.
func (s *Splitter) Split(src, filename string) (*Result, error) {
	table, err := s.Profile.Table()
	if err != nil {
		return nil, err
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	stdout := s.Stdout
	if stdout == nil {
		stdout = io.Discard
	}

	r := &run{
		s:      s,
		logger: logger,
		stdout: stdout,
		table:  table,
		res:    &Result{Rewrites: make(map[string]int)},
		emitter: &emit.Emitter{
			Dir:       s.Profile.OutputDir,
			Extension: s.Profile.Extension,
			Header:    s.Profile.Header,
			Macro:     s.Profile.DispatchMacro,
			Stdout:    stdout,
		},
	}
	logger.Debug("partitioning",
		zap.String("file", filename),
		zap.String("profile", s.Profile.Name),
		zap.Strings("rules", table.Names()),
		zap.String("output_dir", s.Profile.OutputDir))

	// The output directory exists once a run starts, even if no block is
	// found. A failure here resurfaces on every unit Emit tries to write.
	if err := r.emitter.Prepare(); err != nil {
		logger.Warn("output directory not created",
			zap.String("output_dir", s.Profile.OutputDir), zap.Error(err))
	}

	names := partition.NewNameMatcher(s.Profile.Strip)
	ex := partition.NewExtractor(partition.NewClassifier(s.Profile.Directives, names), filename)
	_, err = ex.Extract(src, r)

	logger.Info("partition finished",
		zap.String("file", filename),
		zap.Int("written", len(r.res.Written)),
		zap.Int("skipped", len(r.res.Skipped)),
		zap.Int("failed", len(r.res.Failed)),
		zap.Int("directives", r.res.Directives),
		zap.Any("rewrites", r.res.Rewrites),
		zap.Error(err))
	return r.res, err
}

// run is the extraction handler for one Split call.
type run struct {
	s       *Splitter
	logger  *zap.Logger
	stdout  io.Writer
	table   rewrite.Table
	emitter *emit.Emitter
	res     *Result
}

func (r *run) HandleDirective(line partition.Line, pos token.Position) {
	r.res.Directives++
	fmt.Fprintln(r.stdout, strings.TrimSpace(line.Text))
	r.logger.Debug("directive captured", zap.Stringer("pos", pos))
}

func (r *run) HandleBlock(b *partition.Block, pre partition.Preamble) error {
	lines := make([]string, len(b.Lines))
	copy(lines, b.Lines)
	fired := 0
	for i := 1; i < len(lines)-1; i++ {
		out, rule := r.table.Rewrite(lines[i])
		if rule == "" {
			continue
		}
		lines[i] = out
		r.res.Rewrites[rule]++
		fired++
	}

	path, err := r.emitter.Emit(b.Name, pre, lines)
	if err != nil {
		var werr *emit.OutputWriteError
		if !errors.As(err, &werr) {
			return err
		}
		r.res.Failed = append(r.res.Failed, werr)
		r.logger.Warn("unit not written", zap.String("block", b.Name), zap.Error(err))
		if r.s.Policy.FailFast {
			return err
		}
		r.report(err)
		return nil
	}
	r.res.Written = append(r.res.Written, path)
	r.logger.Debug("unit written",
		zap.String("block", b.Name),
		zap.String("path", path),
		zap.Stringer("start", b.Start),
		zap.Int("lines", len(lines)),
		zap.Int("rewrites", fired))
	return nil
}

func (r *run) HandleMismatch(err *partition.NameMismatchError) error {
	if !r.s.Policy.KeepGoing {
		return err
	}
	r.res.Skipped = append(r.res.Skipped, err)
	r.logger.Warn("block skipped", zap.String("expected", err.Expected), zap.String("found", err.Found))
	r.report(err)
	return nil
}

func (r *run) report(err error) {
	if r.s.OnError != nil {
		r.s.OnError(err)
	}
}
