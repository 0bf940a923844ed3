package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/recurring"
)

func materializeCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "materialize",
		Short: "Create due recurring expenses once and exit",
		Long: `Run a single recurring expense pass, for use from cron when the server's
background materializer is disabled. Templates already materialized for the
month are skipped, so repeated runs are safe.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day := time.Now()
			if date != "" {
				parsed, err := time.ParseInLocation(models.DateLayout, date, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --date %q: must use YYYY-MM-DD", date)
				}
				day = parsed
			}

			ctx := cmd.Context()
			store, err := openStore(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer store.Close()

			var opts []ledger.Option
			if broker := dialBroker(cfg.AMQP); broker != nil {
				defer broker.Close()
				opts = append(opts, ledger.WithPublisher(broker))
			}

			created, err := recurring.NewMaterializer(ledger.New(store, opts...), nil).RunOnce(ctx, day)
			fmt.Fprintf(cmd.OutOrStdout(), "Created %d expenses for %s\n", created, day.Format(models.DateLayout))
			return err
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "process as of this day (YYYY-MM-DD, default today)")
	return cmd
}
