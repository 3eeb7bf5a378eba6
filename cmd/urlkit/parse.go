package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jongio/urlkit/cliout"
	"github.com/jongio/urlkit/internal/config"
	"github.com/jongio/urlkit/urlutil"
)

func newParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <url>",
		Short: "Split a URL into its components",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := urlutil.Parse(args[0])
			if err != nil {
				return err
			}
			return printComponents(u)
		},
	}
}

func printComponents(u *urlutil.URL) error {
	return cliout.Print(config.ComponentsOf(u), func() {
		cliout.Header(u.String())
		cliout.Label("Scheme", u.Scheme())
		cliout.Label("Host", u.Host())
		port := ""
		if u.Port() != 0 {
			port = strconv.Itoa(u.Port())
		}
		cliout.Label("Port", port)
		cliout.Label("User", u.User())
		cliout.Label("Password", u.Password())
		cliout.Label("Path", u.Path())
		cliout.Label("Fragment", u.Fragment())

		if u.Query().Len() == 0 {
			cliout.Label("Query", "")
			return
		}
		cliout.Plain("")
		rows := make([]cliout.TableRow, 0, u.Query().Len())
		u.Query().Each(func(name, value string) {
			rows = append(rows, cliout.TableRow{"Name": name, "Value": value})
		})
		cliout.Table([]string{"Name", "Value"}, rows)
	})
}
