// Command notify-relay is a small demonstration client/server for the
// notifications substream protocol (pkg/notify): a root Cobra command with
// Mainify-wrapped subcommands and a shared configuration struct per
// subcommand.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ddorgan/substrate/cmd"
	"github.com/ddorgan/substrate/pkg/substrate"
)

func rootMain(command *cobra.Command, arguments []string) {
	if rootConfiguration.version {
		fmt.Println(substrate.Version)
		return
	}
	command.Help()
}

var rootCommand = &cobra.Command{
	Use:   "notify-relay",
	Short: "notify-relay sends and receives notifications over the substream protocol",
	Run:   rootMain,
}

var rootConfiguration struct {
	// help indicates whether help information was requested.
	help bool
	// version indicates whether version information was requested.
	version bool
}

func init() {
	rootCommand.AddCommand(
		listenCommand,
		sendCommand,
		versionCommand,
	)

	flags := rootCommand.PersistentFlags()
	flags.SortFlags = false
	flags.BoolVarP(&rootConfiguration.help, "help", "h", false, "Show help information")
	flags.BoolVarP(&rootConfiguration.version, "version", "v", false, "Show version information")
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		cmd.Fatal(err)
	}
}
