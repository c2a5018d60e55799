// Package emit writes partitioned function blocks to disk, one unit per
// block, each prefixed with the include preamble, the dispatch macro and
// the directives captured so far.
package emit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rubiojr/cusplit/partition"
)

// OutputWriteError reports a unit that could not be written.
type OutputWriteError struct {
	Path string
	Err  error
}

func (e *OutputWriteError) Error() string {
	return fmt.Sprintf("Error writing file %s: %v", e.Path, e.Err)
}

func (e *OutputWriteError) Unwrap() error { return e.Err }

// Emitter writes units into Dir.
type Emitter struct {
	Dir       string
	Extension string
	// Header is the fixed include preamble written first in every unit.
	Header string
	// Macro is the dispatch-macro placeholder written after Header.
	Macro string
	// Stdout receives the path of every written unit.
	Stdout io.Writer

	dirReady bool
}

// Path returns the file path for a block name.
func (e *Emitter) Path(name string) string {
	return filepath.Join(e.Dir, name+"."+e.Extension)
}

// Render builds the text of a unit without touching the filesystem.
func (e *Emitter) Render(pre partition.Preamble, lines []string) string {
	w := &unitWriter{}
	w.Raw(e.Header)
	if e.Macro != "" {
		w.Line("")
		w.Line(e.Macro)
	}
	w.Raw(pre.String())
	w.Lines(lines)
	return w.String()
}

// Prepare creates Dir if it does not exist. Emit calls it when the
// directory has not been created yet.
func (e *Emitter) Prepare() error {
	if e.dirReady {
		return nil
	}
	if err := os.MkdirAll(e.Dir, 0755); err != nil {
		return err
	}
	e.dirReady = true
	return nil
}

// Emit writes the unit for name and reports its path on Stdout.
func (e *Emitter) Emit(name string, pre partition.Preamble, lines []string) (string, error) {
	path := e.Path(name)
	if err := e.Prepare(); err != nil {
		return "", &OutputWriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, []byte(e.Render(pre, lines)), 0644); err != nil {
		return "", &OutputWriteError{Path: path, Err: err}
	}
	if e.Stdout != nil {
		fmt.Fprintln(e.Stdout, path)
	}
	return path, nil
}
