package logger

import (
	"fmt"

	"github.com/fatih/color" // Import the fatih/color package for colored console output
)

// Define colorized printing functions for different log levels using fatih/color.
// These are package-level variables holding functions that behave like fmt.Printf,
// but with text colored appropriately for the log level. Everything is written to
// color.Output, so redirecting that writer redirects the whole console.

// Info logs informational messages in green color.
var Info = color.New(color.FgGreen).PrintfFunc()

// Warn logs warning messages in bright magenta color.
var Warn = color.New(color.FgHiMagenta).PrintfFunc()

// Error logs error messages in red color.
var Error = color.New(color.FgRed).PrintfFunc()

// Debug logs debug messages in cyan color once enabled through Init.
// It starts as a no-op so packages can call it before the CLI has parsed its flags.
var Debug = func(format string, a ...any) {}

// Init initializes the logger package, specifically enabling or disabling debug logging.
// When enabled, Debug will print messages in cyan color.
// When disabled, Debug will be a no-op function that silently ignores debug logs.
func Init(enableDebug bool) {
	if enableDebug {
		// Assign Debug to print cyan-colored debug messages.
		Debug = color.New(color.FgCyan).PrintfFunc()
	} else {
		// Assign Debug to a no-op function.
		Debug = func(format string, a ...any) {}
	}
}

// Status lines rendered around every task. The symbols are printed on their own
// so a user scrolling back through streamed child output can still spot them.
var (
	banner   = color.New(color.FgYellow)
	label    = color.New(color.FgCyan)
	success  = color.New(color.FgGreen)
	failure  = color.New(color.FgRed)
	skipped  = color.New(color.FgYellow)
	infoTag  = color.New(color.BgBlue, color.FgWhite)
	warnTag  = color.New(color.BgYellow, color.FgBlack)
	question = color.New(color.FgWhite)
	comment  = color.New(color.FgHiBlack)
)

// Banner prints a block of text in the warning color (used for the ASCII art and
// the start/end markers of a run).
func Banner(text string) {
	banner.Fprintln(color.Output, text)
}

// Step prints the heading line of a task before any of its commands run.
func Step(icon, text string) {
	fmt.Fprintf(color.Output, " ➤  %s %s\n", icon, label.Sprint(text))
}

// Done prints the success line of a task.
func Done(text string) {
	fmt.Fprintf(color.Output, "    %s %s\n", success.Sprint("✔"), text)
}

// Failed prints the failure line of a task, with an optional reason.
func Failed(text, reason string) {
	if reason != "" {
		fmt.Fprintf(color.Output, "    %s %s: %s\n", failure.Sprint("✘"), text, reason)
		return
	}
	fmt.Fprintf(color.Output, "    %s %s\n", failure.Sprint("✘"), text)
}

// Skipped prints the line of a task that decided not to run.
func Skipped(text, reason string) {
	fmt.Fprintf(color.Output, "    %s %s: %s\n", skipped.Sprint("–"), text, reason)
}

// InfoBadge prints "  INFO  message" with a blue badge.
func InfoBadge(msg string) {
	fmt.Fprintf(color.Output, "  %s %s\n\n", infoTag.Sprint(" INFO "), label.Sprint(msg))
}

// WarnBadge prints "  WARN  message" with a yellow badge.
func WarnBadge(msg string) {
	fmt.Fprintf(color.Output, "  %s %s\n\n", warnTag.Sprint(" WARN "), msg)
}

// Question formats a confirmation question with its optional grey comment line
// underneath, the way every prompt of the run is rendered.
func Question(text, note string) string {
	q := "❓ " + question.Sprint(text)
	if note != "" {
		q += "\n " + comment.Sprint(note)
	}
	return q
}
