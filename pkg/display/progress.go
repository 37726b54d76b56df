package display

import (
	"fmt"
	"io"
	"time"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/cellar/pkg/executor"
)

// Progress reports install steps as they run. On a terminal each step gets
// a pterm spinner; otherwise one line per started and finished step is
// written.
type Progress struct {
	out         io.Writer
	interactive bool
	styles      *Styles
	spinner     *pterm.SpinnerPrinter
}

// NewProgress returns an executor.Observer writing to out
func NewProgress(out io.Writer, interactive bool, styles *Styles) *Progress {
	if styles == nil {
		styles = DefaultStyles()
	}
	return &Progress{out: out, interactive: interactive, styles: styles}
}

var _ executor.Observer = (*Progress)(nil)

func (p *Progress) StepStarted(step executor.PlannedStep) {
	text := fmt.Sprintf("%s %s", p.styles.Render("Stage", stageLabel(step)), step.String())
	if !p.interactive {
		_, _ = fmt.Fprintf(p.out, "==> %s\n", text)
		return
	}
	spinner, err := pterm.DefaultSpinner.WithWriter(p.out).WithRemoveWhenDone(false).Start(text)
	if err != nil {
		_, _ = fmt.Fprintf(p.out, "==> %s\n", text)
		return
	}
	p.spinner = spinner
}

func (p *Progress) StepFinished(result executor.StepResult) {
	text := fmt.Sprintf("%s %s", stageLabel(result.Step), result.Step.String())
	switch {
	case result.Skipped:
		text += " (skipped)"
	case result.Duration > 0:
		text += fmt.Sprintf(" (%s)", result.Duration.Round(time.Millisecond))
	}

	if p.spinner == nil {
		if !result.Succeeded() {
			_, _ = fmt.Fprintf(p.out, "%s %s\n", p.styles.Render("Error", "FAILED"), text)
		}
		return
	}
	if result.Succeeded() {
		p.spinner.Success(text)
	} else {
		p.spinner.Fail(text)
	}
	p.spinner = nil
}
