package formula

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/arthur-debert/cellar/pkg/errors"
)

var (
	sha256Pattern = regexp.MustCompile(`^[0-9a-f]{64}$`)
	namePattern   = regexp.MustCompile(`^[a-z0-9][a-z0-9_.+-]*$`)
)

// Validate checks a decoded formula and normalises the sha256 to lower case
func Validate(f *Formula) error {
	var problems []string
	addf := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if f.Name == "" {
		addf("name is required")
	} else if !namePattern.MatchString(f.Name) {
		addf("name %q must be lower case letters, digits, '_', '.', '+' or '-'", f.Name)
	}

	if !f.HasStableSource() && !f.HasHead() {
		addf("either url or head.url is required")
	}
	if f.Head != nil && f.Head.URL == "" {
		addf("head.url is required when head is declared")
	}

	f.SHA256 = strings.ToLower(strings.TrimSpace(f.SHA256))
	if f.SHA256 != "" {
		if !f.HasStableSource() {
			addf("sha256 declared without url")
		}
		if !sha256Pattern.MatchString(f.SHA256) {
			addf("sha256 must be 64 hex characters")
		}
	}

	seenDeps := make(map[string]bool)
	for i, d := range f.Dependencies {
		if d.Name == "" {
			addf("depends_on[%d]: name is required", i)
			continue
		}
		if seenDeps[d.Name] {
			addf("depends_on[%d]: duplicate dependency %q", i, d.Name)
		}
		seenDeps[d.Name] = true

		switch d.Phase {
		case "", PhaseRun, PhaseBuild:
		default:
			addf("depends_on[%d] %s: unknown phase %q", i, d.Name, d.Phase)
		}
		switch d.Binding {
		case BindingSystem, BindingPython:
		case BindingCellar:
			if d.Version == "" {
				addf("depends_on[%d] %s: cellar dependencies need the keg version", i, d.Name)
			}
		default:
			addf("depends_on[%d] %s: unknown binding %q", i, d.Name, d.Binding)
		}
	}

	seenOpts := make(map[string]bool)
	for i, o := range f.Options {
		if o.Name == "" {
			addf("options[%d]: name is required", i)
			continue
		}
		if seenOpts[o.Name] {
			addf("options[%d]: duplicate option %q", i, o.Name)
		}
		seenOpts[o.Name] = true
	}

	known := f.OptionNames()
	for stage, steps := range map[string][]Step{"build": f.Build, "test": f.Test, "install": f.Install} {
		for i, s := range steps {
			validateStep(fmt.Sprintf("%s[%d]", stage, i), s, known, addf)
		}
	}

	for i, a := range f.PostInstall {
		where := fmt.Sprintf("post_install[%d]", i)
		switch {
		case a.IsChmod() && a.Run != nil:
			addf("%s: chmod and run are mutually exclusive", where)
		case a.IsChmod():
			if _, err := ParseMode(a.Chmod); err != nil {
				addf("%s: %v", where, err)
			}
			if len(a.Paths) == 0 {
				addf("%s: chmod needs at least one path", where)
			}
			for _, p := range a.Paths {
				if !IsPrefixRelative(p) {
					addf("%s: path %q must be relative to the prefix", where, p)
				}
			}
		case a.Run != nil:
			validateStep(where+".run", *a.Run, known, addf)
		default:
			addf("%s: one of chmod or run is required", where)
		}
	}

	if len(problems) == 0 {
		return nil
	}

	name := f.Name
	if name == "" {
		name = "<unnamed>"
	}
	return errors.Newf(errors.ErrFormulaInvalid, "formula %s is invalid: %s", name, strings.Join(problems, "; ")).
		WithDetail("problems", problems)
}

func validateStep(where string, s Step, known []string, addf func(string, ...interface{})) {
	if strings.TrimSpace(s.Program) == "" {
		addf("%s: program is required", where)
	}
	if s.Dir != "" && !IsPrefixRelative(s.Dir) {
		addf("%s: dir %q must stay inside the source tree", where, s.Dir)
	}
	check := func(opt string) {
		if opt == "" {
			return
		}
		for _, k := range known {
			if k == opt {
				return
			}
		}
		addf("%s: option %q is not declared", where, opt)
	}
	check(s.IfOption)
	check(s.UnlessOption)
	for opt := range s.With {
		check(opt)
	}
	for opt := range s.Without {
		check(opt)
	}
}

// ParseMode reads an octal permission string such as "0555"
func ParseMode(s string) (uint32, error) {
	mode, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("mode %q is not octal", s)
	}
	if mode > 0o7777 {
		return 0, fmt.Errorf("mode %q out of range", s)
	}
	return uint32(mode), nil
}

// IsPrefixRelative reports whether p is a relative path that does not climb
// out of its base directory
func IsPrefixRelative(p string) bool {
	if p == "" || path.IsAbs(p) {
		return false
	}
	clean := path.Clean(p)
	return clean != ".." && !strings.HasPrefix(clean, "../")
}
