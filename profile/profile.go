// Package profile holds the named configurations of the partitioner: which
// lines count as directives, which punctuation is stripped from marker
// names, what each emitted unit starts with and which rewrite rules run.
package profile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rubiojr/cusplit/partition"
	"github.com/rubiojr/cusplit/rewrite"
)

// Builtin profile names.
const (
	Split   = "split"
	Rewrite = "rewrite"
	// Default is used when no profile is requested.
	Default = Rewrite
)

// Profile is one named configuration.
type Profile struct {
	Name          string
	Directives    partition.DirectiveMode
	Strip         string
	Extension     string
	OutputDir     string
	Header        string
	DispatchMacro string
	Rules         []string
}

// Table resolves the profile's rule names.
func (p *Profile) Table() (rewrite.Table, error) {
	return rewrite.Lookup(p.Rules)
}

// Validate reports the first problem with p.
func (p *Profile) Validate() error {
	switch p.Directives {
	case partition.AllDirectives, partition.DefineDirectives:
	default:
		return fmt.Errorf("profile %q: directives must be %q or %q, got %q",
			p.Name, partition.AllDirectives, partition.DefineDirectives, p.Directives)
	}
	if p.Extension == "" || strings.ContainsAny(p.Extension, `/\`) {
		return fmt.Errorf("profile %q: invalid extension %q", p.Name, p.Extension)
	}
	if p.OutputDir == "" {
		return fmt.Errorf("profile %q: output_dir is empty", p.Name)
	}
	if _, err := p.Table(); err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return nil
}

// Clone returns a deep copy of p.
func (p *Profile) Clone() *Profile {
	c := *p
	c.Rules = append([]string(nil), p.Rules...)
	return &c
}

var builtins = map[string]*Profile{
	Split: {
		Name:          Split,
		Directives:    partition.AllDirectives,
		Strip:         partition.DefaultStrip,
		Extension:     "cu",
		OutputDir:     "cu_src",
		Header:        "#include<configure.h>\n\n#include<memorypool.h>\n#include<cdisort.h>\n",
		DispatchMacro: "DISPATCH_MACRO",
		Rules:         []string{},
	},
	Rewrite: {
		Name:          Rewrite,
		Directives:    partition.DefineDirectives,
		Strip:         partition.DefaultStrip + "_",
		Extension:     "cu",
		OutputDir:     "cu_src",
		Header:        "#include <configure.h>\n#include <cdisort.h>\n#include <memorypool.h>\n",
		DispatchMacro: "DISPATCH_MACRO",
		Rules:         append([]string(nil), rewrite.RuleNames...),
	},
}

// Builtin returns a copy of a builtin profile.
func Builtin(name string) (*Profile, bool) {
	p, ok := builtins[name]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// Set is a collection of profiles addressable by name.
type Set struct {
	profiles map[string]*Profile
}

// NewSet returns a set holding the builtin profiles.
func NewSet() *Set {
	s := &Set{profiles: make(map[string]*Profile, len(builtins))}
	for name, p := range builtins {
		s.profiles[name] = p.Clone()
	}
	return s
}

// Get returns a copy of the named profile.
func (s *Set) Get(name string) (*Profile, error) {
	if name == "" {
		name = Default
	}
	p, ok := s.profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q (available: %s)", name, strings.Join(s.Names(), ", "))
	}
	return p.Clone(), nil
}

// Names lists the profiles in the set, sorted.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.profiles))
	for n := range s.profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (s *Set) add(p *Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.profiles[p.Name] = p
	return nil
}
