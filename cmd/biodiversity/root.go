package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"biodiversity/internal/config"
)

// cliOptions carries flag values that are not configuration keys.
type cliOptions struct {
	configFile string
	envFile    string
}

func newRootCommand() *cobra.Command {
	v := config.New()
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "biodiversity",
		Short: "Belly button biodiversity JSON API",
		Long: `Serves the belly button biodiversity dataset as a read-only JSON API
together with a small dashboard page.

Running the binary without a subcommand is the same as "biodiversity serve".`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), v, opts)
		},
	}
	root.SetVersionTemplate("biodiversity {{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (yaml, json or toml)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.String("database-url", "", "SQLite path or postgres:// URL of the dataset")
	flags.String("addr", "", "listen address, e.g. :5000")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: json or console")
	bindFlags(v, root)

	root.AddCommand(
		newServeCommand(v, opts),
		newInspectCommand(v, opts),
		newVersionCommand(),
	)
	return root
}

// bindFlags maps persistent flags onto their configuration keys. A flag only
// wins over env and file values when it is set explicitly.
func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	bindings := map[string]string{
		"database.url": "database-url",
		"server.addr":  "addr",
		"log.level":    "log-level",
		"log.format":   "log-format",
	}
	for key, flag := range bindings {
		// Lookup never returns nil for the flags registered above.
		_ = v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag))
	}
}

func loadConfig(v *viper.Viper, opts *cliOptions) (*config.Config, error) {
	return config.Load(v, opts.configFile, opts.envFile)
}
