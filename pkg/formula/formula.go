package formula

import (
	"sort"
)

// Phase says when a dependency is needed
type Phase string

const (
	// PhaseRun dependencies are needed by the installed software
	PhaseRun Phase = "run"
	// PhaseBuild dependencies are only needed while building
	PhaseBuild Phase = "build"
)

// Binding says which package source resolves a dependency
type Binding string

const (
	// BindingSystem dependencies go through the system package manager
	BindingSystem Binding = ""
	// BindingPython dependencies go through pip
	BindingPython Binding = "python"
	// BindingCellar dependencies are kegs installed by cellar itself. Nothing
	// installs them during a dependent's install; their keg must exist.
	BindingCellar Binding = "cellar"
)

// TestOption is the toggle that enables test steps
const TestOption = "with-test"

// Formula is one declarative build recipe
type Formula struct {
	Name         string              `toml:"name" yaml:"name" json:"name"`
	Desc         string              `toml:"desc" yaml:"desc" json:"desc,omitempty"`
	Homepage     string              `toml:"homepage" yaml:"homepage" json:"homepage,omitempty"`
	Version      string              `toml:"version" yaml:"version" json:"version,omitempty"`
	URL          string              `toml:"url" yaml:"url" json:"url,omitempty"`
	SHA256       string              `toml:"sha256" yaml:"sha256" json:"sha256,omitempty"`
	Head         *Head               `toml:"head" yaml:"head" json:"head,omitempty"`
	Dependencies []Dependency        `toml:"depends_on" yaml:"depends_on" json:"depends_on,omitempty"`
	Options      []Option            `toml:"options" yaml:"options" json:"options,omitempty"`
	Build        []Step              `toml:"build" yaml:"build" json:"build,omitempty"`
	Test         []Step              `toml:"test" yaml:"test" json:"test,omitempty"`
	Install      []Step              `toml:"install" yaml:"install" json:"install,omitempty"`
	PostInstall  []PostInstallAction `toml:"post_install" yaml:"post_install" json:"post_install,omitempty"`
	Caveats      string              `toml:"caveats" yaml:"caveats" json:"caveats,omitempty"`

	// Path is the file the formula was read from, empty for embedded ones
	Path string `toml:"-" yaml:"-" json:"-"`
}

// Head is the unstable, live source locator
type Head struct {
	URL    string `toml:"url" yaml:"url" json:"url"`
	Branch string `toml:"branch" yaml:"branch" json:"branch,omitempty"`
}

// Dependency is one declared requirement
type Dependency struct {
	Name     string  `toml:"name" yaml:"name" json:"name"`
	Phase    Phase   `toml:"phase" yaml:"phase" json:"phase,omitempty"`
	Binding  Binding `toml:"binding" yaml:"binding" json:"binding,omitempty"`
	Version  string  `toml:"version" yaml:"version" json:"version,omitempty"`
	Optional bool    `toml:"optional" yaml:"optional" json:"optional,omitempty"`
}

// Option is a user-selectable build toggle
type Option struct {
	Name string `toml:"name" yaml:"name" json:"name"`
	Desc string `toml:"desc" yaml:"desc" json:"desc,omitempty"`
}

// Step is one external command invocation
type Step struct {
	Program      string              `toml:"program" yaml:"program" json:"program"`
	Args         []string            `toml:"args" yaml:"args" json:"args,omitempty"`
	Dir          string              `toml:"dir" yaml:"dir" json:"dir,omitempty"`
	Env          map[string]string   `toml:"env" yaml:"env" json:"env,omitempty"`
	IfOption     string              `toml:"if_option" yaml:"if_option" json:"if_option,omitempty"`
	UnlessOption string              `toml:"unless_option" yaml:"unless_option" json:"unless_option,omitempty"`
	With         map[string][]string `toml:"with" yaml:"with" json:"with,omitempty"`
	Without      map[string][]string `toml:"without" yaml:"without" json:"without,omitempty"`
}

// PostInstallAction is either a chmod of prefix files or a command
type PostInstallAction struct {
	Chmod string   `toml:"chmod" yaml:"chmod" json:"chmod,omitempty"`
	Paths []string `toml:"paths" yaml:"paths" json:"paths,omitempty"`
	Run   *Step    `toml:"run" yaml:"run" json:"run,omitempty"`
}

// IsChmod reports whether the action adjusts permissions
func (a PostInstallAction) IsChmod() bool {
	return a.Chmod != ""
}

// EffectivePhase defaults an unset phase to run
func (d Dependency) EffectivePhase() Phase {
	if d.Phase == "" {
		return PhaseRun
	}
	return d.Phase
}

// OptionName is the option that enables an optional dependency
func (d Dependency) OptionName() string {
	return "with-" + d.Name
}

// HasStableSource reports whether a pinned archive is declared
func (f *Formula) HasStableSource() bool {
	return f.URL != ""
}

// HasHead reports whether a VCS locator is declared
func (f *Formula) HasHead() bool {
	return f.Head != nil && f.Head.URL != ""
}

// OptionNames returns the declared and implicit options, sorted
func (f *Formula) OptionNames() []string {
	seen := make(map[string]bool)
	for _, o := range f.Options {
		seen[o.Name] = true
	}
	if len(f.Test) > 0 {
		seen[TestOption] = true
	}
	for _, d := range f.Dependencies {
		if d.Optional {
			seen[d.OptionName()] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasOption reports whether name is declared, explicitly or implicitly
func (f *Formula) HasOption(name string) bool {
	for _, n := range f.OptionNames() {
		if n == name {
			return true
		}
	}
	return false
}

// RuntimeDependencies returns the run-phase dependencies enabled by options
func (f *Formula) RuntimeDependencies(enabled OptionSet) []Dependency {
	var deps []Dependency
	for _, d := range f.Dependencies {
		if d.EffectivePhase() != PhaseRun {
			continue
		}
		if d.Optional && !enabled.Has(d.OptionName()) {
			continue
		}
		deps = append(deps, d)
	}
	return deps
}

// OptionSet is the set of enabled options for one install
type OptionSet map[string]bool

// NewOptionSet builds a set from option names
func NewOptionSet(names ...string) OptionSet {
	s := make(OptionSet, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}

// Has reports whether name is enabled
func (s OptionSet) Has(name string) bool {
	return s[name]
}

// Sorted returns the enabled option names in order
func (s OptionSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for n, on := range s {
		if on {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// Active reports whether the step runs under the enabled options
func (s Step) Active(enabled OptionSet) bool {
	if s.IfOption != "" && !enabled.Has(s.IfOption) {
		return false
	}
	if s.UnlessOption != "" && enabled.Has(s.UnlessOption) {
		return false
	}
	return true
}

// ResolvedArgs returns Args followed by the with/without extras that apply.
// Extras are appended in option-name order so plans are deterministic.
func (s Step) ResolvedArgs(enabled OptionSet) []string {
	args := append([]string(nil), s.Args...)
	for _, opt := range sortedKeys(s.With) {
		if enabled.Has(opt) {
			args = append(args, s.With[opt]...)
		}
	}
	for _, opt := range sortedKeys(s.Without) {
		if !enabled.Has(opt) {
			args = append(args, s.Without[opt]...)
		}
	}
	return args
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
