package main

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"fairdraw/app"
	"fairdraw/domain/core"
	"fairdraw/internal/errors"

	"github.com/spf13/cobra"
)

// withBatchService runs fn against the recorded draw log
func withBatchService(cmd *cobra.Command, stderr io.Writer, fn func(*app.BatchService) error) error {
	c, err := newContainer(stderr)
	if err != nil {
		return err
	}
	defer c.Shutdown(cmd.Context())

	if err := c.InitWithDatabase(cmd.Context()); err != nil {
		return err
	}
	return fn(c.BatchService(nil))
}

// batchLookupError reports a missing batch as a NOT_FOUND application error
func batchLookupError(id core.BatchID, err error) error {
	if core.IsNotFoundError(err) {
		return errors.NotFound(fmt.Sprintf("batch %s", id))
	}
	return err
}

func parseBatchID(s string) (core.BatchID, error) {
	id, err := core.ParseBatchID(s)
	if err != nil {
		return id, errors.InvalidInput(fmt.Sprintf("invalid batch id %q", s), err)
	}
	return id, nil
}

func newExportCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "export <batch-id>",
		Short: "Write the values of a recorded batch to stdout",
		Long: `Streams a recorded batch in line order, in the same format the tester writes,
and checks the stored fingerprint.

Example: prngtest export 0190c4d2-7a51-7b1c-9f0e-3c5d2a8b6e41 | validator 100`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBatchID(args[0])
			if err != nil {
				return err
			}
			return batchLookupError(id, withBatchService(cmd, stderr, func(batches *app.BatchService) error {
				w := bufio.NewWriter(stdout)
				batch, err := batches.Export(cmd.Context(), id, func(values []uint64) error {
					writeLine(w, values)
					return nil
				})
				if flushErr := w.Flush(); err == nil {
					err = flushErr
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(stderr, "exported %d lines of batch %s (range %s, %s/%s)\n",
					batch.LineCount, batch.ID, batch.Range, batch.Hash, batch.Policy)
				return nil
			}))
		},
	}
}

func newVerifyCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <batch-id>",
		Short: "Replay a recorded batch from its seeds and compare every line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBatchID(args[0])
			if err != nil {
				return err
			}
			return batchLookupError(id, withBatchService(cmd, stderr, func(batches *app.BatchService) error {
				start := time.Now()
				n, err := batches.Verify(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(stdout, "batch %s: %d lines verified in %s\n", id, n, elapsedSince(start))
				return nil
			}))
		},
	}
}

func newBatchesCmd(stdout, stderr io.Writer) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "batches",
		Short: "List recently recorded batches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBatchService(cmd, stderr, func(batches *app.BatchService) error {
				recent, err := batches.Recent(cmd.Context(), limit)
				if err != nil {
					return err
				}
				for _, b := range recent {
					fmt.Fprintf(stdout, "%s\t%s\tlines=%d\trange=%s\tcolumns=%d\t%s/%s\n",
						b.ID, b.CreatedAt.Format(time.RFC3339), b.LineCount, b.Range, b.Columns, b.Hash, b.Policy)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of batches")
	return cmd
}
