package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jongio/urlkit/cliout"
	"github.com/jongio/urlkit/internal/config"
	"github.com/jongio/urlkit/internal/server"
	"github.com/jongio/urlkit/logutil"
)

func newServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a redirect server from a rules file",
		Example: `  urlkit serve -c rules.yaml --addr :9000 --rate 20 --burst 40

rules.yaml:
  rules:
    - path: /docs
      target: https://docs.example.com/
      status: 301
    - path: /search
      target: https://search.example.com/?source=short
      preserveQuery: true`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServe(configPath)
			if err != nil {
				return err
			}

			if err := applyServeFlags(cmd.Flags(), cfg); err != nil {
				return err
			}
			logutil.Info("loaded redirect rules", "path", configPath, "rules", len(cfg.Rules))

			srv, err := server.New(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cliout.Info("Serving %d redirect rules on %s", len(cfg.Rules), srv.Addr())
			if err := srv.ListenAndServe(ctx); err != nil {
				logutil.Error("redirect server stopped", "error", err)
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML rules file (required)")
	flags.String("addr", config.DefaultAddr, "Listen address")
	flags.Float64("rate", 0, "Requests per second across all rules, 0 disables limiting")
	flags.Int("burst", 0, "Largest request burst when --rate is set")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

// applyServeFlags overrides cfg with the flags set on the command line.
func applyServeFlags(flags *pflag.FlagSet, cfg *config.Serve) error {
	var err error
	if flags.Changed("addr") {
		if cfg.Addr, err = flags.GetString("addr"); err != nil {
			return err
		}
	}
	if flags.Changed("rate") {
		if cfg.RateLimit, err = flags.GetFloat64("rate"); err != nil {
			return err
		}
	}
	if flags.Changed("burst") {
		if cfg.Burst, err = flags.GetInt("burst"); err != nil {
			return err
		}
	}
	return nil
}
