// Package cli implements the node-normalizer-ingest command line tool: it
// loads Babel compendia and conflation files into the backing MultiStore
// (spec.md §4.H), driven by a YAML config file shared with the HTTP server.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nodenorm/node-normalizer/internal/config"
	redisclient "github.com/nodenorm/node-normalizer/internal/infrastructure/database/redis"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/monitoring/logging"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/store"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/store/redisstore"
	"github.com/nodenorm/node-normalizer/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds global CLI flags shared by every subcommand.
type RootOptions struct {
	ConfigPath   string
	OntologyPath string
	LogLevel     string
	BlockSize    int
}

// NewRootCommand builds the root cobra command and every ingestion
// subcommand, mirroring the original's load_compendia/load_conflation
// scripts as a single statically-linked binary.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "node-normalizer-ingest",
		Short:   "Load Babel compendia and conflation files into the node normalizer's store",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "config.yaml", "path to the service config file")
	pf.StringVar(&opts.OntologyPath, "ontology", "", "path to the biolink category ancestor table (JSON)")
	pf.StringVar(&opts.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.IntVar(&opts.BlockSize, "block-size", 0, "write-pipeline flush block size (0: use resolver.pipeline_block_size from config)")

	cmd.AddCommand(
		newLoadCompendiaCmd(opts),
		newLoadConflationCmd(opts),
	)

	return cmd
}

// Execute is the CLI binary's entry point.
func Execute() error {
	return NewRootCommand().Execute()
}

// buildContext holds the dependencies every subcommand needs: a logger and
// a MultiStore wired from the shared config file.
type buildContext struct {
	logger    logging.Logger
	multiStore store.MultiStore
	blockSize int
}

// newBuildContext loads config, constructs a logger, and dials Redis,
// returning everything a loader subcommand needs to run.
func newBuildContext(opts *RootOptions) (*buildContext, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:            opts.LogLevel,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	client, err := redisclient.NewClient(cfg.Redis, logger)
	if err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	blockSize := opts.BlockSize
	if blockSize <= 0 {
		blockSize = cfg.Resolver.PipelineBlockSize
	}

	s := redisstore.New(client, nil, cfg.Resolver.EQBatchSize, blockSize, logger)

	return &buildContext{logger: logger, multiStore: s, blockSize: blockSize}, nil
}

// openFile opens path for reading, wrapping a missing-file error in a
// domain error so subcommand callers get a consistent error shape.
func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeNotFound, fmt.Sprintf("cannot open %s", path))
	}
	return f, nil
}

// PrintSuccess writes a formatted, timestamped success line to stdout.
func PrintSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.OutOrStdout(), "[%s] OK: %s\n", time.Now().UTC().Format(time.RFC3339), msg)
}

// PrintError writes a formatted error line to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}

