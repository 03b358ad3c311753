package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/veilbreak/internal/version"
)

func newVersionCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// No config or env file is needed to report the version.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.GetInfo()

			line := info.String()

			if jsonOutput {
				j, err := info.JSON()
				if err != nil {
					return err
				}

				line = j
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), line)

			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print build information as JSON")

	return cmd
}
