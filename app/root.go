// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/lumenboard/lumenboard/internal/config"
)

var (
	configPath string // directory holding main.toml

	cfg config.Config

	rootCmd = &cobra.Command{
		Use:   "lumenboard",
		Short: "Lumenboard is a self-hosted business intelligence web application",
		Long: `Lumenboard is a self-hosted business intelligence web application.
On first start it waits for an administrator to finish the setup in the browser:
create the admin account, connect a database and choose the site preferences.`,
		Args:    cobra.OnlyValidArgs,
		Version: config.Version,
	}
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "Directory of main.toml")
}

// readConfig loads the configuration for commands that need it.
func readConfig() error {
	var err error

	cfg, err = config.ReadConfig(configPath)

	return err
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
