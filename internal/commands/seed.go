package commands

import (
	"dungji/internal/seed"
	"dungji/pkg/output"

	"github.com/spf13/cobra"
)

func newSeedCmd(envFile *string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the catalogue and group buys with test data",
		Long: `Seed clears categories, products, group buys and participations, then
creates a fixed catalogue, a buyer and an organizer account, and four open
group buys. Existing accounts are reused. Everything runs in one transaction.

Seeding is refused when APP_ENV=production unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.New(cmd.OutOrStdout())

			cfg, log, err := bootstrap(*envFile)
			if err != nil {
				return err
			}
			if err := seed.Guard(cfg.AppEnv, force); err != nil {
				out.Error("%v", err)
				return err
			}

			db, err := openDatabase(cfg, log)
			if err != nil {
				return err
			}
			defer closeDB(db, log)

			out.Info("Seeding %s database...", cfg.DBDriver)
			summary, err := seed.New(db, log).Run(cmd.Context())
			if err != nil {
				out.Error("%v", err)
				return err
			}

			out.Section("Test data")
			out.KeyValue("categories", summary.Categories)
			out.KeyValue("products", summary.Products)
			out.KeyValue("new users", summary.UsersCreated)
			out.KeyValue("group buys", summary.GroupBuys)
			out.KeyValue("participations", summary.Participations)
			out.Success("Successfully created test data")
			out.Muted("Log in as %s or %s with password %s", seed.TestUsername, seed.OrganizerUsername, seed.Password)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Seed even when APP_ENV=production")
	return cmd
}
