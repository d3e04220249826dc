// ABOUTME: The version command
// ABOUTME: Prints product and version
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harperreed/crossing-radio/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", version.Product, version.Version)
		},
	}
}
