package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nodenorm/node-normalizer/internal/application/ingestion"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/monitoring/logging"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/store"
)

// conflationTargets maps the --conflation-type flag's accepted values to the
// logical store each populates (spec.md §4.H).
var conflationTargets = map[string]store.StoreName{
	"gene-protein":  store.StoreConflationGeneProtein,
	"drug-chemical": store.StoreConflationDrugChemical,
}

// newLoadConflationCmd builds `load-conflation`, the Go equivalent of the
// original's load_conflation.py: it reads one conflation NDJSON file (each
// line a flat array of canonical member ids) and points every member at the
// whole record.
func newLoadConflationCmd(opts *RootOptions) *cobra.Command {
	var conflationType string

	cmd := &cobra.Command{
		Use:   "load-conflation <file>",
		Short: "Load a gene/protein or drug/chemical conflation file into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, ok := conflationTargets[conflationType]
			if !ok {
				return fmt.Errorf("--conflation-type must be one of gene-protein, drug-chemical (got %q)", conflationType)
			}

			bc, err := newBuildContext(opts)
			if err != nil {
				return err
			}

			f, err := openFile(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			loader := ingestion.NewConflationLoader(bc.multiStore, target, bc.blockSize, bc.logger)
			ctx := context.Background()
			if err := loader.LoadFile(ctx, f); err != nil {
				return fmt.Errorf("loading %s: %w", args[0], err)
			}

			bc.logger.Info("finished conflation file", logging.String("file", args[0]), logging.String("target", conflationType))
			PrintSuccess(cmd, fmt.Sprintf("loaded conflation file %s", args[0]))
			return nil
		},
	}

	cmd.Flags().StringVar(&conflationType, "conflation-type", "", "conflation target: gene-protein or drug-chemical")
	_ = cmd.MarkFlagRequired("conflation-type")

	return cmd
}
