package emit

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rubiojr/cusplit/partition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "#include<configure.h>\n\n#include<memorypool.h>\n#include<cdisort.h>\n"

func newEmitter(t *testing.T, out *bytes.Buffer) *Emitter {
	t.Helper()
	return &Emitter{
		Dir:       filepath.Join(t.TempDir(), "cu_src"),
		Extension: "cu",
		Header:    header,
		Macro:     "DISPATCH_MACRO",
		Stdout:    out,
	}
}

func TestRender(t *testing.T) {
	e := &Emitter{Header: header, Macro: "DISPATCH_MACRO"}
	got := e.Render(
		partition.Preamble{"#define N 4\n"},
		[]string{"/* f() */\n", "int f(void) { return N; }\n", "/* end of f() */\n"},
	)
	want := header + "\nDISPATCH_MACRO\n" +
		"#define N 4\n" +
		"/* f() */\nint f(void) { return N; }\n/* end of f() */\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Render mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_NoMacro(t *testing.T) {
	e := &Emitter{Header: "#include <x.h>\n"}
	assert.Equal(t, "#include <x.h>\nbody\n", e.Render(nil, []string{"body\n"}))
}

func TestEmit(t *testing.T) {
	var out bytes.Buffer
	e := newEmitter(t, &out)

	path, err := e.Emit("c_disort", nil, []string{"/* c_disort() */\n", "/* end of c_disort() */\n"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(e.Dir, "c_disort.cu"), path)
	assert.Equal(t, path+"\n", out.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := header + "\nDISPATCH_MACRO\n/* c_disort() */\n/* end of c_disort() */\n"
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("unit mismatch (-want +got):\n%s", diff)
	}
}

func TestEmit_Overwrites(t *testing.T) {
	var out bytes.Buffer
	e := newEmitter(t, &out)

	_, err := e.Emit("f", nil, []string{"old\n"})
	require.NoError(t, err)
	path, err := e.Emit("f", nil, []string{"new\n"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "old")
	assert.Contains(t, string(data), "new\n")
}

func TestEmit_WriteError(t *testing.T) {
	var out bytes.Buffer
	e := newEmitter(t, &out)
	require.NoError(t, os.MkdirAll(filepath.Join(e.Dir, "dir.cu"), 0755))

	_, err := e.Emit("dir", nil, []string{"x\n"})
	var werr *OutputWriteError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, filepath.Join(e.Dir, "dir.cu"), werr.Path)
	assert.Contains(t, err.Error(), "Error writing file")
	assert.Empty(t, out.String())

	// Later units are unaffected.
	_, err = e.Emit("ok", nil, []string{"x\n"})
	require.NoError(t, err)
}

func TestEmit_DirectoryError(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	e := &Emitter{Dir: filepath.Join(blocker, "out"), Extension: "cu"}
	_, err := e.Emit("f", nil, nil)
	var werr *OutputWriteError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, filepath.Join(blocker, "out", "f.cu"), werr.Path)
}

func TestPrepare(t *testing.T) {
	e := newEmitter(t, nil)
	require.NoError(t, e.Prepare())
	assert.DirExists(t, e.Dir)
	require.NoError(t, e.Prepare())
}
