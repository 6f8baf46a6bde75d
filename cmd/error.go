package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Warning prints a warning message to standard error, colorized when the
// terminal supports it.
func Warning(message string) {
	fmt.Fprintln(color.Error, color.YellowString("Warning:"), message)
}

// Error prints a command failure to standard error.
func Error(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
}

// Fatal reports a command failure and exits the process with a non-zero
// status; it's what Mainify calls when a subcommand's entry point fails.
func Fatal(err error) {
	Error(err)
	os.Exit(1)
}
