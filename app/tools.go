package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumenboard/lumenboard/internal/config"
	"github.com/lumenboard/lumenboard/internal/daemon"
	"github.com/lumenboard/lumenboard/internal/setup"
)

const maskedSecret = "**********"

func init() { //nolint: gochecknoinits
	dumpConfigCmd.Flags().BoolVar(&dumpJSON, "json", false, "Print JSON instead of TOML")

	rootCmd.AddCommand(setupTokenCmd, dumpConfigCmd)
}

var (
	dumpJSON bool

	setupTokenCmd = &cobra.Command{
		Use:   "setup-token",
		Short: "Print the setup token while no user exists",
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return readConfig()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := daemon.Open(&cfg)
			if err != nil {
				return err
			}

			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			token, err := setup.EnsureToken(db)
			if err != nil {
				return err
			}

			if token == "" {
				return setup.ErrAlreadySetUp
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)

			return err
		},
	}

	dumpConfigCmd = &cobra.Command{
		Use:   "dump-config",
		Short: "Print the effective configuration with secrets masked",
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return readConfig()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := dumpConfig(cfg, dumpJSON)
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), out)

			return err
		},
	}
)

// dumpConfig renders c with passwords and api keys masked.
func dumpConfig(c config.Config, asJSON bool) (string, error) {
	if c.DB.Password != "" {
		c.DB.Password = maskedSecret
	}

	if c.Log.DataDog.APIKey != "" {
		c.Log.DataDog.APIKey = maskedSecret
	}

	if asJSON {
		return config.DumpConfigJSON(&c)
	}

	return config.DumpConfig(&c)
}
