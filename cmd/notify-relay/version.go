package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ddorgan/substrate/cmd"
	"github.com/ddorgan/substrate/pkg/substrate"
)

func versionMain(command *cobra.Command, arguments []string) error {
	fmt.Println(substrate.Version)
	return nil
}

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run:   cmd.Mainify(versionMain),
	Args:  cmd.DisallowArguments,
}
