package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sandwichcheck/cache"
	"sandwichcheck/config"
	"sandwichcheck/logger"
	"sandwichcheck/server"
	"sandwichcheck/sol"

	"github.com/spf13/cobra"
)

var (
	serveAddr string
	serveMock bool
)

var serveCmd = cobra.Command{
	Use:   "serve",
	Short: "Serve wallet checks over HTTP at /api/sandwich-check/{wallet}",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.InitLogs("serve")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		analyzer, closeFn := newAnalyzer(serveMock)
		defer closeFn()

		var reportCache cache.ReportCache = cache.NewMemoryCache(config.REPORT_CACHE_ENTRIES, config.REPORT_CACHE_TTL)
		rc, err := cache.NewRedisCacheFromConfig(ctx)
		if err != nil {
			logger.GlobalLogger.Warn("Redis unavailable, caching reports in memory", "err", err)
		} else if rc != nil {
			logger.GlobalLogger.Info("Caching reports in Redis")
			reportCache = rc
		}

		srv := server.NewServer(serveAddr, analyzer, sol.ValidateAddress, reportCache)
		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			logger.GlobalLogger.Info("Shutting down HTTP server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", config.DefaultHTTPAddr, "listen address")
	serveCmd.Flags().BoolVar(&serveMock, "mock", false, "answer with deterministic synthetic attacks")
	RootCmd.AddCommand(&serveCmd)
}
