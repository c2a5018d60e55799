package profile

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rubiojr/cusplit/partition"
	"github.com/zclconf/go-cty/cty"
)

// hclConfigFile is the top-level structure of a profile file.
type hclConfigFile struct {
	Profiles []*hclProfile `hcl:"profile,block"`
}

type hclProfile struct {
	Name          string    `hcl:"name,label"`
	Base          *string   `hcl:"base,optional"`
	Directives    *string   `hcl:"directives,optional"`
	Strip         *string   `hcl:"strip,optional"`
	Extension     *string   `hcl:"extension,optional"`
	OutputDir     *string   `hcl:"output_dir,optional"`
	Preamble      *string   `hcl:"preamble,optional"`
	DispatchMacro *string   `hcl:"dispatch_macro,optional"`
	Rules         *[]string `hcl:"rules,optional"`
}

// LoadFile parses an HCL profile file and returns the builtin profiles
// extended with the ones it defines. A profile may name a base profile
// (builtin or defined earlier in the file) and override any attribute.
func LoadFile(path string) (*Set, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse profile file %s: %w", path, diags)
	}
	return decode(file, path)
}

// LoadSource is LoadFile for in-memory content; filename is used in
// diagnostics.
func LoadSource(src []byte, filename string) (*Set, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse profile file %s: %w", filename, diags)
	}
	return decode(file, filename)
}

func decode(file *hcl.File, path string) (*Set, error) {
	var cfg hclConfigFile
	if diags := gohcl.DecodeBody(file.Body, evalContext(), &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode profile file %s: %w", path, diags)
	}

	set := NewSet()
	seen := make(map[string]bool, len(cfg.Profiles))
	for _, hp := range cfg.Profiles {
		if seen[hp.Name] {
			return nil, fmt.Errorf("%s: profile %q defined twice", path, hp.Name)
		}
		seen[hp.Name] = true

		base := Default
		if hp.Base != nil {
			base = *hp.Base
		}
		p, err := set.Get(base)
		if err != nil {
			return nil, fmt.Errorf("%s: profile %q: %w", path, hp.Name, err)
		}
		p.Name = hp.Name
		hp.applyTo(p)
		if err := set.add(p); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return set, nil
}

func (hp *hclProfile) applyTo(p *Profile) {
	if hp.Directives != nil {
		p.Directives = partition.DirectiveMode(*hp.Directives)
	}
	if hp.Strip != nil {
		p.Strip = *hp.Strip
	}
	if hp.Extension != nil {
		p.Extension = *hp.Extension
	}
	if hp.OutputDir != nil {
		p.OutputDir = *hp.OutputDir
	}
	if hp.Preamble != nil {
		p.Header = *hp.Preamble
	}
	if hp.DispatchMacro != nil {
		p.DispatchMacro = *hp.DispatchMacro
	}
	if hp.Rules != nil {
		p.Rules = append([]string{}, (*hp.Rules)...)
	}
}

// evalContext exposes the builtin profiles as builtin.<name>.<attribute>.
func evalContext() *hcl.EvalContext {
	profiles := make(map[string]cty.Value, len(builtins))
	for n, p := range builtins {
		profiles[n] = profileValue(p)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"builtin": cty.ObjectVal(profiles),
		},
	}
}

func profileValue(p *Profile) cty.Value {
	rules := cty.ListValEmpty(cty.String)
	if len(p.Rules) > 0 {
		vals := make([]cty.Value, len(p.Rules))
		for i, r := range p.Rules {
			vals[i] = cty.StringVal(r)
		}
		rules = cty.ListVal(vals)
	}
	return cty.ObjectVal(map[string]cty.Value{
		"directives":     cty.StringVal(string(p.Directives)),
		"strip":          cty.StringVal(p.Strip),
		"extension":      cty.StringVal(p.Extension),
		"output_dir":     cty.StringVal(p.OutputDir),
		"preamble":       cty.StringVal(p.Header),
		"dispatch_macro": cty.StringVal(p.DispatchMacro),
		"rules":          rules,
	})
}
