package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jongio/urlkit/cliout"
	"github.com/jongio/urlkit/urlutil"
)

type queryValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func newQueryCommand() *cobra.Command {
	var separator string

	cmd := &cobra.Command{
		Use:   "query <url> [name]",
		Short: "Print the query string of a URL or one of its parameters",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := urlutil.Parse(args[0])
			if err != nil {
				return err
			}

			if len(args) == 1 {
				encoded := u.QueryString(separator)
				return cliout.Print(u.Query(), func() {
					cliout.Plain("%s", encoded)
				})
			}

			name := args[1]
			value, ok := u.QueryParameter(name)
			if !ok {
				return fmt.Errorf("query parameter %q not found", name)
			}
			return cliout.Print(queryValue{Name: name, Value: value}, func() {
				cliout.Plain("%s", value)
			})
		},
	}
	cmd.Flags().StringVar(&separator, "separator", urlutil.DefaultQuerySeparator, "Separator placed between encoded pairs")
	return cmd
}
