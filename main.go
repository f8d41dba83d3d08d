package main

import (
	"fmt"
	"os"

	"github.com/oktatools/okta-creds/cli"
)

// Version is the program version, injected at build time.
var Version = "0.0.0-dev"

func main() {
	cli.App.Version = Version

	if err := cli.App.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
