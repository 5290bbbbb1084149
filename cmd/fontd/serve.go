package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fontd/internal/httpapi"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		addr          string
		corsOrigins   string
		maxBodyBytes  int64
		binaryTimeout time.Duration
	)
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP daemon",
		Example: "  fontd serve --addr :8080 --config fontd.yaml",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			if cfg.Addr == "" || cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("cors-origins") {
				cfg.CORSOrigins = splitCSV(corsOrigins)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c := build(cfg, logConsumer(log.With().Str("component", "consumer").Logger()), log)
			defer c.mgr.Close()

			httpapi.SetLogger(log.With().Str("component", "http").Logger())
			httpapi.SetBaseContext(ctx)
			httpapi.SetMaxBodyBytes(maxBodyBytes)
			httpapi.SetBinaryTimeout(binaryTimeout)
			if len(cfg.CORSOrigins) > 0 {
				httpapi.SetCORSOptions(true, cfg.CORSOrigins, nil, nil)
			}

			c.mgr.Start(ctx)
			if err := c.mgr.LoadStatic(cfg.StaticFamilies); err != nil {
				log.Warn().Err(err).Msg("static families not admitted")
			}
			if n := c.mgr.Prewarm(); n > 0 {
				log.Info().Int("families", n).Msg("prewarming recent families")
			}

			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           httpapi.NewMux(c.mgr),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", cfg.Addr).Str("catalog", cfg.CatalogURL).Msg("fontd listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return err
				}
			case <-ctx.Done():
			}

			// Graceful shutdown (Ctrl+C / SIGTERM)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("graceful shutdown error")
			}
			log.Info().Msg("fontd stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", envOr("FONTD_ADDR", ":8080"), "HTTP listen address; defaults to FONTD_ADDR or :8080")
	cmd.Flags().StringVar(&corsOrigins, "cors-origins", "", "Comma-separated CORS origins; empty disables CORS")
	cmd.Flags().Int64Var(&maxBodyBytes, "max-body-bytes", 1<<20, "Maximum JSON request body size")
	cmd.Flags().DurationVar(&binaryTimeout, "binary-timeout", 30*time.Second, "Timeout for a binary download request (0 disables)")
	return cmd
}
