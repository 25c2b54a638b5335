package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aizatto/favicons/internal/config"
	"github.com/aizatto/favicons/internal/server"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve favicons over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return serve(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func serve(cmd *cobra.Command, cfg *config.Config) error {
	logger := newLogger(cfg.Log, os.Stderr)

	pipeline, err := newPipeline(cfg, logger)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	metrics := server.NewMetrics()
	handler := server.NewIconHandler(pipeline, server.HandlerConfig{
		HomeURL:        cfg.Server.HomeURL,
		CacheMaxAge:    cfg.Icon.CacheMaxAge,
		Debug:          cfg.Icon.Debug,
		ResolveTimeout: cfg.Icon.ResolveTimeout,
	}, metrics, logger)
	router := server.NewRouter(handler, server.NewRequestLog(logger, metrics))

	logger.Info("favicons ready",
		"version", config.Version,
		"extractor", cfg.Icon.Extractor,
		"user_agent", cfg.Fetch.UserAgent,
	)
	return server.NewServer(cfg.Server, router, metrics.Handler(), logger).Run(cmd.Context())
}
