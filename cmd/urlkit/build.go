package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jongio/urlkit/cliout"
	"github.com/jongio/urlkit/internal/config"
	"github.com/jongio/urlkit/urlutil"
)

type buildOutput struct {
	URL        string             `json:"url"`
	Components *config.Components `json:"components"`
}

func newBuildCommand() *cobra.Command {
	var (
		file string
		opts urlutil.BuildOptions
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Assemble a URL from components",
		Long: `Assemble a URL from a components file, flags, or both.

Flags override values read from --file. Repeated --query flags keep their order.`,
		Example: `  urlkit build --host example.com --path /docs --query b=2 --query a=1
  urlkit build -f url.yaml --omit-fragment`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := &config.Components{}
			if file != "" {
				loaded, err := config.LoadComponents(file)
				if err != nil {
					return err
				}
				c = loaded
			}
			if err := applyComponentFlags(cmd.Flags(), c); err != nil {
				return err
			}
			if err := c.Validate(); err != nil {
				return err
			}

			built := c.URL().Build(opts)
			return cliout.Print(buildOutput{URL: built, Components: c}, func() {
				cliout.Plain("%s", built)
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&file, "file", "f", "", "YAML components file")
	addComponentFlags(flags)
	flags.BoolVar(&opts.OmitHost, "omit-host", false, "Leave out scheme, credentials, host and port")
	flags.BoolVar(&opts.OmitUser, "omit-user", false, "Leave out user and password")
	flags.BoolVar(&opts.OmitPort, "omit-port", false, "Leave out the port")
	flags.BoolVar(&opts.OmitQuery, "omit-query", false, "Leave out the query")
	flags.BoolVar(&opts.OmitFragment, "omit-fragment", false, "Leave out the fragment")
	return cmd
}

func addComponentFlags(fs *pflag.FlagSet) {
	fs.String("scheme", "", "URL scheme (http when a host is set without one)")
	fs.String("host", "", "Host name or IP literal")
	fs.Int("port", 0, "Port, omitted when it is the scheme default")
	fs.String("user", "", "User name")
	fs.String("password", "", "Password")
	fs.String("path", "", "Path, emitted verbatim")
	fs.StringArray("query", nil, "Query parameter as name=value (repeatable)")
	fs.String("fragment", "", "Fragment")
}

// applyComponentFlags copies every flag the user set into c.
func applyComponentFlags(fs *pflag.FlagSet, c *config.Components) error {
	strs := map[string]*string{
		"scheme":   &c.Scheme,
		"host":     &c.Host,
		"user":     &c.User,
		"password": &c.Password,
		"path":     &c.Path,
		"fragment": &c.Fragment,
	}
	for name, dst := range strs {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	if fs.Changed("port") {
		port, err := fs.GetInt("port")
		if err != nil {
			return err
		}
		c.Port = port
	}

	if fs.Changed("query") {
		pairs, err := fs.GetStringArray("query")
		if err != nil {
			return err
		}
		if c.Query == nil {
			c.Query = urlutil.NewQuery()
		}
		for _, pair := range pairs {
			name, value, _ := strings.Cut(pair, "=")
			if name == "" {
				continue
			}
			c.Query.Set(name, value)
		}
	}
	return nil
}
