package cmd

import (
	"github.com/spf13/cobra"
)

// Mainify adapts a subcommand's error-returning entry point into the plain
// func(*cobra.Command, []string) signature Cobra's Run field expects. Letting
// the entry point return an error instead of calling os.Exit directly means
// its deferred cleanup (closing listeners, flushing substreams) always runs
// before the process exits.
func Mainify(entry func(*cobra.Command, []string) error) func(*cobra.Command, []string) {
	return func(command *cobra.Command, arguments []string) {
		if err := entry(command, arguments); err != nil {
			Fatal(err)
		}
	}
}
