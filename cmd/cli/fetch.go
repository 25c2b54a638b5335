package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aizatto/favicons/internal/favicon"
	"github.com/aizatto/favicons/internal/present"
)

func fetchCmd(flags *globalFlags) *cobra.Command {
	var (
		output    string
		secure    bool
		userAgent string
	)

	cmd := &cobra.Command{
		Use:   "fetch <domain>...",
		Short: "Resolve the favicon of each domain and print it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, ok := present.ParseFormat(output)
			if !ok && output != "image" {
				return fmt.Errorf("unknown output format: %s", output)
			}

			cfg, err := flags.load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Log, cmd.ErrOrStderr())

			pipeline, err := newPipeline(cfg, logger)
			if err != nil {
				return fmt.Errorf("build pipeline: %w", err)
			}

			for _, domain := range args {
				req := favicon.Request{
					Domain:    favicon.StripProtocol(domain),
					Secure:    secure,
					UserAgent: userAgent,
				}
				if err := fetchOne(cmd.Context(), cmd.OutOrStdout(), pipeline, req, format); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s: %v\n", domain, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format (image, raw, base64, json, html, xhtml)")
	cmd.Flags().BoolVar(&secure, "ssl", false, "Probe over https")
	cmd.Flags().StringVar(&userAgent, "user-agent", "", "User agent for retries")
	return cmd
}

func fetchOne(ctx context.Context, w io.Writer, p *favicon.Pipeline, req favicon.Request, format present.Format) error {
	res := p.Resolve(ctx, req)
	body, err := present.Body(res, present.Options{
		Format: format,
		Origin: req.Scheme() + "://" + req.Domain,
	})
	if err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	if format != present.FormatImage && format != present.FormatRaw {
		_, err = fmt.Fprintln(w)
	}
	return err
}
