package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/catalograg/internal/catalog"
)

func newIndexCmd(opts *rootOptions) *cobra.Command {
	var (
		recreate  bool
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "index <catalog-file>",
		Short: "Embed a product catalog and write it to the vector index",
		Long: `Loads products from a JSON or YAML file, validates them, embeds their text
and stores them in the vector index. Invalid products are reported and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}
			if len(cat.Products) == 0 {
				renderIndexReport(cmd.OutOrStdout(), cat.Invalid, nil)
				return errors.New("catalog has no valid products")
			}

			a, err := opts.bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			svc := a.indexer
			if batchSize > 0 {
				svc = svc.WithBatchSize(batchSize)
			}

			rep, err := svc.Index(cmd.Context(), cat.Products, recreate)
			if err != nil {
				return fmt.Errorf("index catalog: %w", err)
			}
			renderIndexReport(cmd.OutOrStdout(), cat.Invalid, rep)

			if sum := rep.Summary(); sum.OK == 0 {
				return errors.New("no products were indexed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&recreate, "recreate", false, "drop the index and its products before indexing")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "products per embedding request (default from config)")
	return cmd
}
