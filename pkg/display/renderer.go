package display

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/cellar/pkg/deps"
	"github.com/arthur-debert/cellar/pkg/errors"
	"github.com/arthur-debert/cellar/pkg/executor"
	"github.com/arthur-debert/cellar/pkg/fetch"
	"github.com/arthur-debert/cellar/pkg/formula"
)

// Renderer writes command results in the selected format
type Renderer struct {
	out      io.Writer
	format   Format
	styles   *Styles
	markdown MarkdownRenderer
	logFile  string
}

// NewRenderer returns a renderer writing to out
func NewRenderer(out io.Writer, format Format, styles *Styles, color bool) *Renderer {
	if styles == nil {
		styles = DefaultStyles()
	}
	md := MarkdownRenderer{Style: "auto"}
	if !color {
		md.Style = "notty"
	}
	return &Renderer{out: out, format: format, styles: styles, markdown: md}
}

// SetLogFile names the log that failure reports point to when a command
// failed, since the log holds the command's output
func (r *Renderer) SetLogFile(path string) {
	r.logFile = path
}

// Format returns the output format
func (r *Renderer) Format() Format {
	return r.format
}

func (r *Renderer) json(v interface{}) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r *Renderer) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// Plan prints the ordered steps an install would run
func (r *Renderer) Plan(p *executor.Plan) error {
	if r.format == FormatJSON {
		return r.json(p)
	}
	r.printf("%s\n", r.styles.Render("Title", fmt.Sprintf("%s %s", p.Formula, p.Version)))
	r.printf("%s %s\n", r.styles.Render("Muted", "prefix:"), r.styles.Render("Path", p.Prefix))
	if len(p.Options) > 0 {
		r.printf("%s %s\n", r.styles.Render("Muted", "options:"), strings.Join(p.Options, ", "))
	}
	r.printf("\n")
	for _, s := range p.Steps {
		r.printf("%s %s\n", r.styles.Render("Stage", stageLabel(s)), r.styles.Render("Command", s.String()))
	}
	return nil
}

func stageLabel(s executor.PlannedStep) string {
	return fmt.Sprintf("%s/%d", s.Stage, s.Index)
}

type installJSON struct {
	*executor.Result
	Error *errorJSON `json:"error,omitempty"`
}

type errorJSON struct {
	Code    errors.ErrorCode       `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (r *Renderer) errorJSON(err error) *errorJSON {
	if err == nil {
		return nil
	}
	return &errorJSON{
		Code:    errors.GetErrorCode(err),
		Message: err.Error(),
		Details: r.errorDetails(err),
	}
}

func (r *Renderer) errorDetails(err error) map[string]interface{} {
	details := errors.GetErrorDetails(err)
	if r.logFile != "" && errors.HasErrorCode(err, errors.ErrCommandFailed) {
		if details == nil {
			details = make(map[string]interface{})
		}
		details[errors.DetailLog] = r.logFile
	}
	return details
}

// Install prints the outcome of an install. Caveats are shown after a
// successful one.
func (r *Renderer) Install(f *formula.Formula, result *executor.Result, installErr error) error {
	if r.format == FormatJSON {
		return r.json(installJSON{Result: result, Error: r.errorJSON(installErr)})
	}
	if installErr != nil {
		return r.Error(installErr)
	}
	if result.DryRun {
		r.printf("%s\n", r.styles.Render("Warning", "Dry run, nothing was changed"))
		return nil
	}
	r.printf("%s %s %s in %s\n",
		r.styles.Render("Success", "Installed"),
		f.Name,
		result.Plan.Version,
		result.Duration.Round(time.Millisecond))
	r.printf("%s %s\n", r.styles.Render("Muted", "prefix:"), r.styles.Render("Path", result.Plan.Prefix))
	if len(result.Dependencies) > 0 {
		r.printf("\n%s\n", r.styles.Render("Heading", "Dependencies"))
		r.dependencies(result.Dependencies)
	}
	if f.Caveats != "" {
		r.printf("\n%s\n", r.styles.Render("Heading", "Caveats"))
		r.printf("%s", r.markdown.Render(f.Caveats))
	}
	return nil
}

// Error prints a failure with its stage, command and exit status
func (r *Renderer) Error(err error) error {
	if r.format == FormatJSON {
		return r.json(map[string]interface{}{"error": r.errorJSON(err)})
	}
	r.printf("%s %s\n", r.styles.Render("Error", "Error:"), err.Error())
	details := r.errorDetails(err)
	for _, key := range []string{errors.DetailStage, errors.DetailCommand, errors.DetailExitCode, errors.DetailPath, errors.DetailTree, errors.DetailLog} {
		if v, ok := details[key]; ok {
			r.printf("%s\n", r.styles.Render("Item", fmt.Sprintf("%s: %v", key, v)))
		}
	}
	if problems, ok := details["problems"].([]string); ok {
		for _, p := range problems {
			r.printf("%s\n", r.styles.Render("Item", "- "+p))
		}
	}
	return nil
}

// Info prints formula metadata, dependencies, options and caveats
func (r *Renderer) Info(f *formula.Formula) error {
	if r.format == FormatJSON {
		return r.json(f)
	}
	header := f.Name
	if f.Version != "" {
		header += " " + f.Version
	}
	r.printf("%s\n", r.styles.Render("Title", header))
	if f.Desc != "" {
		r.printf("%s\n", f.Desc)
	}
	if f.Homepage != "" {
		r.printf("%s\n", r.styles.Render("Path", f.Homepage))
	}
	if f.Path != "" {
		r.printf("%s %s\n", r.styles.Render("Muted", "from:"), f.Path)
	}

	r.printf("\n%s\n", r.styles.Render("Heading", "Source"))
	if f.HasStableSource() {
		line := "stable: " + f.URL
		if f.SHA256 != "" {
			line += " (sha256 " + f.SHA256 + ")"
		}
		r.printf("%s\n", r.styles.Render("Item", line))
	}
	if f.HasHead() {
		line := "head: " + f.Head.URL
		if f.Head.Branch != "" {
			line += " (" + f.Head.Branch + ")"
		}
		r.printf("%s\n", r.styles.Render("Item", line))
	}

	if len(f.Dependencies) > 0 {
		r.printf("\n%s\n", r.styles.Render("Heading", "Dependencies"))
		for _, d := range f.Dependencies {
			r.printf("%s\n", r.styles.Render("Item", dependencyLine(d)))
		}
	}

	if names := f.OptionNames(); len(names) > 0 {
		descs := make(map[string]string)
		for _, o := range f.Options {
			descs[o.Name] = o.Desc
		}
		r.printf("\n%s\n", r.styles.Render("Heading", "Options"))
		for _, n := range names {
			line := "--with " + n
			if d := descs[n]; d != "" {
				line += "  " + r.styles.Render("Muted", d)
			}
			r.printf("%s\n", r.styles.Render("Item", line))
		}
	}

	if f.Caveats != "" {
		r.printf("\n%s\n", r.styles.Render("Heading", "Caveats"))
		r.printf("%s", r.markdown.Render(f.Caveats))
	}
	return nil
}

func dependencyLine(d formula.Dependency) string {
	var tags []string
	if d.EffectivePhase() == formula.PhaseBuild {
		tags = append(tags, "build")
	}
	if d.Binding == formula.BindingPython {
		tags = append(tags, "pip")
	}
	if d.Optional {
		tags = append(tags, "optional, "+d.OptionName())
	}
	name := d.Name
	if d.Version != "" {
		name += " " + d.Version
	}
	if len(tags) == 0 {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, strings.Join(tags, ", "))
}

// List prints the available formulas
func (r *Renderer) List(sources []formula.Source) error {
	if r.format == FormatJSON {
		return r.json(sources)
	}
	sorted := append([]formula.Source(nil), sources...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	for _, s := range sorted {
		origin := "embedded"
		if s.Path != "" {
			origin = s.Path
		}
		r.printf("%s %s\n", s.Name, r.styles.Render("Muted", "("+origin+")"))
	}
	return nil
}

// Fetched prints the cached archive and its checksum
func (r *Renderer) Fetched(f *formula.Formula, src *fetch.Source) error {
	if r.format == FormatJSON {
		return r.json(src)
	}
	if src.Head {
		r.printf("%s %s into %s\n", r.styles.Render("Success", "Cloned"), f.Name, r.styles.Render("Path", src.Tree))
		return nil
	}
	verified := "sha256"
	if f.SHA256 == "" {
		verified = "sha256 (not declared, unverified)"
	}
	r.printf("%s %s\n", r.styles.Render("Success", "Fetched"), r.styles.Render("Path", src.Archive))
	r.printf("%s\n", r.styles.Render("Item", verified+": "+src.Checksum))
	return nil
}

func (r *Renderer) dependencies(resolved []deps.Resolved) {
	for _, d := range resolved {
		r.printf("%s\n", r.styles.Render("Item", fmt.Sprintf("%s: %s", d.Dependency.Name, d.Outcome)))
	}
}
