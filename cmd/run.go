package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/buyer-signals/internal/fetcher"
	"github.com/sells-group/buyer-signals/internal/pipeline"
	"github.com/sells-group/buyer-signals/internal/registry"
	"github.com/sells-group/buyer-signals/pkg/brave"
)

var (
	runOutDir      string
	runConcurrency int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one signal run over the full buyer roster",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if runOutDir != "" {
			cfg.Store.OutDir = runOutDir
		}
		if runConcurrency > 0 {
			cfg.Pipeline.MaxConcurrentBuyers = runConcurrency
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		reg, err := registry.Load(cfg.Sources.BuyersPath, cfg.Sources.FallbacksPath, cfg.Sources.RulesPath)
		if err != nil {
			return eris.Wrap(err, "load source registry")
		}
		zap.L().Info("registry loaded", zap.Int("buyers", len(reg.Buyers)))

		fetchClient := fetcher.New(fetcher.Options{
			UserAgent: cfg.Fetch.UserAgent,
			Timeout:   time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		})
		searchClient := brave.NewClient(cfg.Brave.Key,
			brave.WithBaseURL(cfg.Brave.BaseURL),
			brave.WithCount(cfg.Brave.Count),
			brave.WithTimeout(time.Duration(cfg.Brave.TimeoutSecs)*time.Second),
		)

		p := pipeline.New(cfg, reg, fetchClient, searchClient, st)
		run, err := p.Run(ctx)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

func init() {
	runCmd.Flags().StringVar(&runOutDir, "out", "", "artifact directory (overrides store.out_dir)")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 0, "max buyers processed in parallel")
	rootCmd.AddCommand(runCmd)
}
