package main

import (
	"github.com/spf13/cobra"

	"github.com/jongio/urlkit/cliout"
	"github.com/jongio/urlkit/urlutil"
)

type validateOutput struct {
	URL   string `json:"url"`
	Valid bool   `json:"valid"`
}

func newValidateCommand() *cobra.Command {
	var httpsOnly bool

	cmd := &cobra.Command{
		Use:   "validate <url>",
		Short: "Check that a URL is an absolute http(s) URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			check := urlutil.Validate
			if httpsOnly {
				check = urlutil.ValidateHTTPSOnly
			}
			if err := check(args[0]); err != nil {
				return err
			}
			return cliout.Print(validateOutput{URL: args[0], Valid: true}, func() {
				cliout.Success("%s is valid", cliout.URL(args[0]))
			})
		},
	}
	cmd.Flags().BoolVar(&httpsOnly, "https-only", false, "Require https (http allowed for localhost)")
	return cmd
}
