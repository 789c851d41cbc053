package commands

import (
	"dungji/pkg/output"

	"github.com/spf13/cobra"
)

func newMigrateCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.New(cmd.OutOrStdout())
			cfg, log, err := bootstrap(*envFile)
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg, log)
			if err != nil {
				return err
			}
			defer closeDB(db, log)

			out.Success("Schema is up to date (%s)", cfg.DBDriver)
			return nil
		},
	}
}
