package main

import (
	"os"

	"github.com/rotisserie/eris"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ukydev/fleet-fuel-audit/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "fuel-audit",
	Short:         "Ambulance fuel reconciliation",
	Long:          "Compares billed fuel logs against GPS fuel-sensor fillings, flags discrepancies above 5% for audit and records operator decisions.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}
