package main

import (
	"context"
	"time"

	"github.com/codepix/codepix/internal/assist"
	"github.com/codepix/codepix/internal/metrics"
	"github.com/codepix/codepix/internal/provider"
	"github.com/codepix/codepix/internal/server"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	addr        string
	corsOrigins []string
	timeout     time.Duration
	keychain    bool
}

var runServer = func(ctx context.Context, srv *server.Server, addr string, shutdownTimeout time.Duration) error {
	return srv.Run(ctx, addr, shutdownTimeout)
}

func newServeCmd(g *globalOptions) *cobra.Command {
	opts := serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, g, &opts)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	addServeFlags(cmd, &opts)
	return cmd
}

func addServeFlags(cmd *cobra.Command, opts *serveOptions) {
	f := cmd.Flags()
	f.StringVar(&opts.addr, "addr", "", "Listen address (env CODEPIX_ADDR, default :5000)")
	f.StringSliceVar(&opts.corsOrigins, "cors-origin", nil, "Allowed CORS origin, repeatable; * allows any (env CODEPIX_CORS_ORIGINS)")
	f.DurationVar(&opts.timeout, "timeout", 0, "Outbound provider request timeout (env CODEPIX_REQUEST_TIMEOUT, default 2m)")
	f.BoolVar(&opts.keychain, "keychain", false, "Fall back to OS keychain for API keys missing from the environment")
}

func runServe(cmd *cobra.Command, g *globalOptions, opts *serveOptions) error {
	cfg := g.cfg
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}
	if len(opts.corsOrigins) > 0 {
		cfg.CORSOrigins = opts.corsOrigins
	}
	if opts.timeout > 0 {
		cfg.RequestTimeout = opts.timeout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	rec, err := metrics.NewRecorder(nil)
	if err != nil {
		return err
	}
	gw, err := buildGateway(ctx, cfg, opts.keychain, provider.WithObserver(rec.ObserveProviderCall))
	if err != nil {
		return err
	}

	srv := server.New(assist.NewService(gw), gw, server.Options{
		CORSOrigins: cfg.CORSOrigins,
		Metrics:     rec,
	})
	return runServer(ctx, srv, cfg.Addr, cfg.ShutdownTimeout)
}
