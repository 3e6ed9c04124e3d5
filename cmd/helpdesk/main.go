package main

import (
	"os"

	"github.com/spec-kit/helpdesk-client/internal/cli"
)

var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
