package app

import (
	stderrors "errors"
	"fmt"

	"github.com/arthur-debert/cellar/pkg/display"
	"github.com/arthur-debert/cellar/pkg/logging"
)

// ReportedError marks an error the command already printed
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return e.Err.Error() }
func (e *ReportedError) Unwrap() error { return e.Err }

// Reported wraps err so ReportError does not print it twice
func Reported(err error) error {
	if err == nil {
		return nil
	}
	return &ReportedError{Err: err}
}

// ReportError prints a command failure. Text goes to stderr, JSON to
// stdout so it stays machine readable.
func (a *App) ReportError(err error) {
	var reported *ReportedError
	if err == nil || stderrors.As(err, &reported) {
		return
	}
	if a.renderer == nil {
		_, _ = fmt.Fprintf(a.Stderr, "Error: %v\n", err)
		return
	}
	if a.renderer.Format() == display.FormatJSON {
		_ = a.renderer.Error(err)
		return
	}
	r := display.NewRenderer(a.Stderr, display.FormatText, a.styles, a.color)
	r.SetLogFile(logging.LogFilePath())
	_ = r.Error(err)
}
