package main

import (
	"os"

	"github.com/mrlokans/weengz-air/internal/cli"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	os.Exit(cli.Execute(Version+" ("+Commit+")", os.Args[1:], os.Stdout, os.Stderr))
}
