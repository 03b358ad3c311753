package cli

import (
	"github.com/spf13/cobra"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/hupe1980/veilbreak/internal/config"
)

// effectiveConfig is the document printed by "veilbreak config".
type effectiveConfig struct {
	*config.Config

	ConfigFile string            `json:"configFile,omitempty"`
	Locations  map[string]string `json:"locations"`
}

func newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the settings every command would run with, after merging the
config file, VEILBREAK_* environment variables and defaults, together
with the game locations read from the environment or .env file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			paths := config.PathsFromContext(ctx)

			doc := effectiveConfig{
				Config:     cfg,
				ConfigFile: cfg.ConfigFile,
				Locations: map[string]string{
					config.EnvMagiclysmDir: paths.MagiclysmDir,
					config.EnvDDADataDir:   paths.DDADataDir,
					config.EnvUserModDir:   paths.UserModDir,
				},
			}

			data, err := sigsyaml.Marshal(doc)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(data)

			return err
		},
	}
}
