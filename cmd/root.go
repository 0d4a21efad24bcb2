package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/buyer-signals/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "buyer-signals",
	Short: "Buyer deployment-pressure signal pipeline",
	Long:  "Ingests public press communications for a fixed roster of institutional capital allocators, extracts structured signal fields, scores deployment pressure and reports changes since the previous run.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
