package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nodenorm/node-normalizer/internal/application/ingestion"
	"github.com/nodenorm/node-normalizer/internal/domain/category"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/monitoring/logging"
)

// newLoadCompendiaCmd builds `load-compendia`, the Go equivalent of the
// original's load_compendia.py: it reads one or more NDJSON compendium
// files and writes their cliques into the configured MultiStore. Each
// file's per-category prefix counts are flushed as their own blob
// (spec.md §4.H), relying on the store's lazy merge-on-read to combine them
// at query time rather than merging in-process here.
func newLoadCompendiaCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load-compendia <file...>",
		Short: "Load Babel compendium files (one NDJSON clique per line) into the store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.OntologyPath == "" {
				return fmt.Errorf("--ontology is required for load-compendia")
			}

			bc, err := newBuildContext(opts)
			if err != nil {
				return err
			}

			ontologyFile, err := openFile(opts.OntologyPath)
			if err != nil {
				return err
			}
			defer ontologyFile.Close()

			ontology, err := category.LoadStaticOntology(ontologyFile)
			if err != nil {
				return fmt.Errorf("loading ontology table: %w", err)
			}

			loader := ingestion.NewCompendiumLoader(bc.multiStore, ontology, bc.blockSize, bc.logger)
			ctx := context.Background()

			for _, path := range args {
				if err := loadOneCompendiumFile(ctx, loader, path); err != nil {
					return fmt.Errorf("loading %s: %w", path, err)
				}
				bc.logger.Info("finished compendium file", logging.String("file", path))
			}

			PrintSuccess(cmd, fmt.Sprintf("loaded %d compendium file(s)", len(args)))
			return nil
		},
	}
}

func loadOneCompendiumFile(ctx context.Context, loader *ingestion.CompendiumLoader, path string) error {
	f, err := openFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	counts, err := loader.LoadFile(ctx, f)
	if err != nil {
		return err
	}
	return loader.FlushPrefixCounts(ctx, counts)
}
