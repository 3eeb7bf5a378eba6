// Command urlkit parses, builds and validates URLs, and serves redirect rules.
package main

import (
	"os"

	"github.com/jongio/urlkit/cliout"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		cliout.Error("%v", err)
		os.Exit(1)
	}
}
