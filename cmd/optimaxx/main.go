// Command optimaxx computes ETF portfolio statistics from the terminal and
// serves the same tools over MCP stdio.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// register adds the OptiMaxx subcommands.
func register(c *subcommands.Commander) {
	c.Register(&catalogCmd{}, "instruments")
	c.Register(&periodsCmd{}, "instruments")
	c.Register(&statsCmd{}, "statistics")
	c.Register(&calculateCmd{}, "statistics")
	c.Register(&warmCmd{}, "statistics")
	c.Register(&mcpCmd{}, "server")
	c.Register(&versionCmd{}, "")
}
