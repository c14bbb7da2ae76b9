package main

import (
	"fmt"
	"strings"

	"github.com/phrazzld/slack-github-tracker/internal/config"
	"github.com/phrazzld/slack-github-tracker/internal/platform/postgres"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newRootCmd builds the command tree. Running the root command serves.
func newRootCmd() *cobra.Command {
	v := config.New()
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "tracker",
		Short: "Track GitHub pull requests from Slack",
		Long: `tracker receives Slack slash commands and GitHub webhook deliveries
and processes them in the background, shutting down gracefully on SIGINT or
SIGTERM.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadAppConfig(v, configPath)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default is ./config.yaml if present)")
	rootCmd.Flags().Int("port", config.DefaultPort, "port to listen on")
	rootCmd.Flags().Bool("dev-logging", false, "human readable logs instead of JSON")
	bindFlag(v, rootCmd, "server.port", "port")
	bindFlag(v, rootCmd, "server.dev_logging", "dev-logging")

	rootCmd.AddCommand(newMigrateCmd(v, &configPath))
	return rootCmd
}

func newMigrateCmd(v *viper.Viper, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:       fmt.Sprintf("migrate [%s]", strings.Join(postgres.MigrationCommands, "|")),
		Short:     "Run database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: postgres.MigrationCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadAppConfig(v, *configPath)
			if err != nil {
				return err
			}
			return handleMigrations(cmd.Context(), cfg, args[0])
		},
	}
}

// bindFlag binds a command line flag to a config key. Flags override the
// environment and the config file.
func bindFlag(v *viper.Viper, cmd *cobra.Command, key, flag string) {
	// BindPFlag only fails for a nil flag, which is a programming error.
	if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("failed to bind flag %s: %v", flag, err))
	}
}
