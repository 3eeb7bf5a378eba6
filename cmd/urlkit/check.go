package main

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jongio/urlkit/cliout"
	"github.com/jongio/urlkit/probe"
)

var errCheckFailed = errors.New("redirect chain did not end in a 2xx response")

func newCheckCommand() *cobra.Command {
	cfg := probe.Config{}

	cmd := &cobra.Command{
		Use:   "check <url>",
		Short: "Follow the redirect chain of a URL and report every hop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := probe.New(cfg).Follow(cmd.Context(), args[0])

			if err := cliout.Print(res, func() { printChain(res) }); err != nil {
				return err
			}
			if cfg.EnableMetrics && !cliout.IsJSON() {
				var buf bytes.Buffer
				if err := probe.WriteMetrics(&buf, nil); err != nil {
					return err
				}
				cliout.Header("Metrics")
				cliout.Plain("%s", strings.TrimRight(buf.String(), "\n"))
			}
			if res.Error != "" {
				return errors.New(res.Error)
			}
			if !res.OK() {
				return errCheckFailed
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&cfg.MaxHops, "max-hops", probe.DefaultMaxHops, "Largest number of redirects to follow")
	flags.DurationVar(&cfg.Timeout, "timeout", probe.DefaultTimeout, "Timeout for each request")
	flags.StringVar(&cfg.Method, "method", "HEAD", "Request method (HEAD or GET)")
	flags.IntVar(&cfg.RateLimit, "rate", 0, "Requests per second allowed per host, 0 disables limiting")
	flags.BoolVar(&cfg.EnableCircuitBreaker, "circuit-breaker", false, "Stop contacting a host after repeated failures")
	flags.IntVar(&cfg.CircuitBreakerFailures, "breaker-failures", 3, "Requests to a host before its failure ratio can open the breaker")
	flags.DurationVar(&cfg.CircuitBreakerTimeout, "breaker-timeout", 30*time.Second, "How long an open breaker rejects requests")
	flags.BoolVar(&cfg.EnableMetrics, "metrics", false, "Print probe metrics after the chain (text output only)")
	return cmd
}

func printChain(res probe.Result) {
	cliout.Header(res.Start)
	rows := make([]cliout.TableRow, 0, len(res.Hops))
	for i, hop := range res.Hops {
		status := hop.Error
		if status == "" {
			status = strconv.Itoa(hop.StatusCode)
		}
		rows = append(rows, cliout.TableRow{
			"#":        strconv.Itoa(i + 1),
			"URL":      hop.URL,
			"Status":   status,
			"Location": hop.Location,
			"Time":     hop.ResponseTime.Round(time.Millisecond).String(),
		})
	}
	cliout.Table([]string{"#", "URL", "Status", "Location", "Time"}, rows)
	if res.OK() {
		cliout.Success("%s", cliout.URL(res.Final))
	}
}
