package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/buyer-signals/internal/fetcher"
	"github.com/sells-group/buyer-signals/internal/model"
	"github.com/sells-group/buyer-signals/internal/pipeline"
	"github.com/sells-group/buyer-signals/internal/registry"
	"github.com/sells-group/buyer-signals/internal/server"
	"github.com/sells-group/buyer-signals/pkg/brave"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve run history and remote run triggering over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

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

		api := server.New(st, func(runCtx context.Context) (*model.Run, error) {
			return p.Run(runCtx)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.Router(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
