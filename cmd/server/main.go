package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/pkg/logging"
)

var (
	cfgFile string
	cfg     *config.Config
	v       = viper.New()

	rootCmd = &cobra.Command{
		Use:   "splitledger",
		Short: "Shared expense ledger server",
		Long: `splitledger records shared expenses inside groups, splits them between
members and settles the resulting debts.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./splitledger.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	_ = v.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(materializeCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	// Local development keeps secrets in .env; it is absent in production.
	_ = godotenv.Load()

	var err error
	cfg, err = config.Load(v, cfgFile)
	if err != nil {
		return err
	}

	if err := logging.Setup(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	return nil
}
