package main

import (
	"io"
	"log/slog"
	"strings"

	phuslog "github.com/phuslu/log"

	"github.com/aizatto/favicons/internal/config"
	"github.com/aizatto/favicons/internal/favicon"
)

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(phuslog.SlogNewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func newPipeline(cfg *config.Config, logger *slog.Logger) (*favicon.Pipeline, error) {
	icon, err := favicon.LoadDefaultIcon(cfg.Icon.DefaultPath)
	if err != nil {
		return nil, err
	}

	fetcher := favicon.NewFetcher(favicon.FetcherConfig{
		UserAgent:    cfg.Fetch.UserAgent,
		Timeout:      cfg.Fetch.Timeout,
		MaxRedirects: cfg.Fetch.MaxRedirects,
		Attempts:     cfg.Fetch.Attempts,
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
	}, logger)

	return favicon.NewPipeline(fetcher, favicon.NewLinkExtractor(cfg.Icon.Extractor), icon, logger)
}
