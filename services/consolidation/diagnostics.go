package consolidation

import (
	"fmt"
	"io"
	"log/slog"

	"hwboard-backend/lib/timezone"
)

// Diagnostics collects run-level warnings and errors. It is passed
// explicitly into every component call; there is no ambient global.
// ERROR entries end up in the payload's errors array, WARNINGs only
// reach the log.
type Diagnostics struct {
	logFile io.Writer
	errors  []string
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

// NewDiagnosticsWithLog mirrors every entry to an append-only log in
// "<timestamp> - <LEVEL> - <message>" form.
func NewDiagnosticsWithLog(w io.Writer) *Diagnostics {
	return &Diagnostics{logFile: w}
}

func (d *Diagnostics) writeLine(level string, message string) {
	if d.logFile == nil {
		return
	}
	_, err := fmt.Fprintf(
		d.logFile, "%s - %s - %s\n",
		timezone.Now().Format("2006-01-02 15:04:05"), level, message,
	)
	if err != nil {
		slog.Warn("failed to write diagnostics log line", "err", err)
	}
}

func (d *Diagnostics) Infof(format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	slog.Info(message)
	d.writeLine("INFO", message)
}

func (d *Diagnostics) Warnf(format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	slog.Warn(message)
	d.writeLine("WARNING", message)
}

func (d *Diagnostics) Errorf(format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	slog.Error(message)
	d.writeLine("ERROR", message)
	d.errors = append(d.errors, fmt.Sprintf(
		"%s - %s",
		timezone.Now().Format("2006-01-02 15:04:05"), message,
	))
}

// Errors returns the captured error messages, never nil.
func (d *Diagnostics) Errors() []string {
	if d.errors == nil {
		return []string{}
	}
	return d.errors
}
