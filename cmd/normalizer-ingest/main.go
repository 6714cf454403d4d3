// Command normalizer-ingest loads Babel compendium and conflation files into
// the node normalization service's backing store. See internal/interfaces/cli
// for the subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/nodenorm/node-normalizer/internal/interfaces/cli"
)

var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.Version = version
	cli.GitCommit = gitCommit
	cli.BuildDate = buildDate

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
