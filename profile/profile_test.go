package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rubiojr/cusplit/partition"
	"github.com/rubiojr/cusplit/rewrite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltins(t *testing.T) {
	split, ok := Builtin(Split)
	require.True(t, ok)
	assert.Equal(t, partition.AllDirectives, split.Directives)
	assert.Empty(t, split.Rules)
	assert.Equal(t, "cu_src", split.OutputDir)
	assert.Equal(t, "cu", split.Extension)
	require.NoError(t, split.Validate())

	rw, ok := Builtin(Rewrite)
	require.True(t, ok)
	assert.Equal(t, partition.DefineDirectives, rw.Directives)
	assert.Equal(t, rewrite.RuleNames, rw.Rules)
	assert.Contains(t, rw.Strip, "_")
	require.NoError(t, rw.Validate())

	_, ok = Builtin("nope")
	assert.False(t, ok)
}

func TestBuiltin_ReturnsCopy(t *testing.T) {
	p, _ := Builtin(Rewrite)
	p.Rules[0] = "changed"
	p.OutputDir = "elsewhere"

	again, _ := Builtin(Rewrite)
	assert.Equal(t, rewrite.RuleFprintf, again.Rules[0])
	assert.Equal(t, "cu_src", again.OutputDir)
}

func TestSet_Get(t *testing.T) {
	s := NewSet()
	p, err := s.Get("")
	require.NoError(t, err)
	assert.Equal(t, Default, p.Name)

	_, err = s.Get("gpu")
	assert.EqualError(t, err, `unknown profile "gpu" (available: rewrite, split)`)
	assert.Equal(t, []string{Rewrite, Split}, s.Names())
}

func TestValidate(t *testing.T) {
	p, _ := Builtin(Split)
	p.Directives = "some"
	assert.ErrorContains(t, p.Validate(), "directives must be")

	p, _ = Builtin(Split)
	p.Extension = "a/b"
	assert.ErrorContains(t, p.Validate(), "invalid extension")

	p, _ = Builtin(Split)
	p.OutputDir = ""
	assert.ErrorContains(t, p.Validate(), "output_dir is empty")

	p, _ = Builtin(Split)
	p.Rules = []string{"printf"}
	assert.ErrorContains(t, p.Validate(), `unknown rewrite rule "printf"`)
}

const config = `
profile "gpu" {
  base       = "split"
  output_dir = "gpu_src"
  rules      = ["malloc", "calloc", "exit"]
}

profile "cpu" {
  extension      = "cpp"
  preamble       = builtin.split.preamble
  dispatch_macro = ""
  directives     = builtin.split.directives
}

profile "gpu-noexit" {
  base  = "gpu"
  rules = []
  strip = "=/* ()"
}
`

func TestLoadSource(t *testing.T) {
	set, err := LoadSource([]byte(config), "profiles.hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{"cpu", "gpu", "gpu-noexit", Rewrite, Split}, set.Names())

	gpu, err := set.Get("gpu")
	require.NoError(t, err)
	assert.Equal(t, "gpu", gpu.Name)
	assert.Equal(t, "gpu_src", gpu.OutputDir)
	assert.Equal(t, partition.AllDirectives, gpu.Directives)
	assert.Equal(t, []string{"malloc", "calloc", "exit"}, gpu.Rules)

	cpu, err := set.Get("cpu")
	require.NoError(t, err)
	split, _ := Builtin(Split)
	assert.Equal(t, "cpp", cpu.Extension)
	assert.Equal(t, split.Header, cpu.Header)
	assert.Equal(t, "", cpu.DispatchMacro)
	assert.Equal(t, partition.AllDirectives, cpu.Directives)
	assert.Equal(t, rewrite.RuleNames, cpu.Rules, "inherits the default profile")

	noexit, err := set.Get("gpu-noexit")
	require.NoError(t, err)
	assert.Empty(t, noexit.Rules)
	assert.Equal(t, "gpu_src", noexit.OutputDir)
	assert.Equal(t, partition.DefaultStrip, noexit.Strip)
}

func TestLoadSource_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", `profile "x" {`, "failed to parse profile file"},
		{"unknown attribute", `profile "x" { colour = "red" }`, "failed to decode profile file"},
		{"unknown base", `profile "x" { base = "nope" }`, `unknown profile "nope"`},
		{"bad rule", `profile "x" { rules = ["nope"] }`, `unknown rewrite rule "nope"`},
		{"bad directives", `profile "x" { directives = "some" }`, "directives must be"},
		{"duplicate", "profile \"x\" {}\nprofile \"x\" {}\n", `profile "x" defined twice`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSource([]byte(tt.src), "p.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.hcl")
	require.NoError(t, os.WriteFile(path, []byte(config), 0644))
	set, err := LoadFile(path)
	require.NoError(t, err)
	_, err = set.Get("gpu")
	require.NoError(t, err)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.Error(t, err)
}
