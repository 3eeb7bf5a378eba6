package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jongio/urlkit/browser"
	"github.com/jongio/urlkit/cliout"
	"github.com/jongio/urlkit/urlutil"
)

func newOpenCommand() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "open <url>",
		Short: "Normalize a URL and open it in the browser",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if !browser.IsValid(target) {
				return fmt.Errorf("invalid --browser %q (valid options: %s)", target, browser.FormatValidTargets())
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := urlutil.Parse(args[0])
			if err != nil {
				return err
			}
			built := u.String()
			if err := browser.Launch(browser.LaunchOptions{
				URL:    built,
				Target: browser.Target(target),
				Output: os.Stderr,
			}); err != nil {
				return err
			}
			return cliout.Print(map[string]string{"url": built}, func() {
				cliout.Info("Opening %s", cliout.URL(built))
			})
		},
	}
	cmd.Flags().StringVar(&target, "browser", string(browser.TargetDefault), "Browser target ("+browser.FormatValidTargets()+")")
	return cmd
}
