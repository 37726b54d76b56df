package formula

import (
	"regexp"
	"sort"
	"strings"

	"github.com/arthur-debert/cellar/pkg/errors"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-z0-9_]+)\s*\}\}`)

// Placeholder names understood by Expand
const (
	VarPrefix  = "prefix"
	VarPython  = "python"
	VarJobs    = "jobs"
	VarSource  = "source"
	VarVersion = "version"
	VarName    = "name"
	VarKegs    = "kegs"
)

// PrefixVar names the placeholder holding the keg of a cellar-bound
// dependency, {{triqs_prefix}} for triqs
func PrefixVar(dep string) string {
	return strings.ReplaceAll(strings.ToLower(dep), "-", "_") + "_prefix"
}

// Vars maps placeholder names to values
type Vars map[string]string

// Expand substitutes every {{name}} in s. Unknown names are an error.
func (v Vars) Expand(s string) (string, error) {
	var missing []string
	out := placeholderPattern.ReplaceAllStringFunc(s, func(m string) string {
		key := placeholderPattern.FindStringSubmatch(m)[1]
		val, ok := v[key]
		if !ok {
			missing = append(missing, key)
			return m
		}
		return val
	})
	if len(missing) > 0 {
		return "", errors.Newf(errors.ErrFormulaInvalid, "unknown placeholder {{%s}} in %q (known: %s)", missing[0], s, v.Names()).
			WithDetail("placeholder", missing[0])
	}
	return out, nil
}

// ExpandAll expands every string in ss
func (v Vars) ExpandAll(ss []string) ([]string, error) {
	out := make([]string, len(ss))
	for i, s := range ss {
		e, err := v.Expand(s)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// ExpandEnv expands env values and returns them as sorted KEY=VALUE pairs
func (v Vars) ExpandEnv(env map[string]string) ([]string, error) {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(env))
	for _, k := range keys {
		val, err := v.Expand(env[k])
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, k+"="+val)
	}
	return pairs, nil
}

// Names lists the known placeholders for error messages
func (v Vars) Names() string {
	names := make([]string, 0, len(v))
	for k := range v {
		names = append(names, "{{"+k+"}}")
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
