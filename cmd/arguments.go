package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

// DisallowArguments is a Cobra arguments validator that rejects positional
// arguments, used by notify-relay's subcommands since all of their inputs
// come from flags and configuration files. It gives a clearer error than
// cobra.NoArgs, which treats stray arguments as unrecognized command names.
func DisallowArguments(_ *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New("command does not accept arguments")
	}
	return nil
}
