package main

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jongio/urlkit/cliout"
	"github.com/jongio/urlkit/logutil"
	"github.com/jongio/urlkit/version"
)

const appName = "urlkit"

func newRootCommand() *cobra.Command {
	var (
		output     string
		debug      bool
		structured bool
		logLevel   string
	)

	root := &cobra.Command{
		Use:           appName,
		Short:         "Parse, build and redirect URLs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logutil.SetupLogger(debug, structured)
			if cmd.Flags().Changed("log-level") {
				applyLogLevel(logLevel)
			}
			if logutil.IsDebugEnabled() {
				logutil.Debug("debug logging enabled", "command", cmd.CommandPath())
			}
			return cliout.SetFormat(output)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&output, "output", "o", string(cliout.FormatDefault), "Output format (default, json)")
	flags.BoolVar(&debug, "debug", false, "Enable debug logging (also "+logutil.EnvDebug+"=true)")
	flags.BoolVar(&structured, "log-json", false, "Write logs as JSON")
	flags.StringVar(&logLevel, "log-level", "info", "Minimum log level (debug, info, warn, error)")

	root.AddCommand(
		newParseCommand(),
		newBuildCommand(),
		newQueryCommand(),
		newValidateCommand(),
		newCheckCommand(),
		newOpenCommand(),
		newServeCommand(),
		newMCPCommand(),
		version.NewCommand(version.New(appName)),
	)
	return root
}

// applyLogLevel sets the minimum log level. Unknown names fall back to info.
func applyLogLevel(name string) {
	l := logutil.ParseLevel(name)
	logutil.SetLevel(l)
	if l == slog.LevelInfo && strings.ToLower(strings.TrimSpace(name)) != "info" {
		logutil.Warn("unknown log level, using info", "level", name)
	}
}
