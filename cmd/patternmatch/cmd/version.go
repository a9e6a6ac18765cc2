package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uigen/patternmatch/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "patternmatch %s (%s)\n", version.Version, version.Commit)
		},
	}
}
