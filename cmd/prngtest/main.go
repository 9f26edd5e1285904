package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"fairdraw/adapters/entropy"
	"fairdraw/app"
	"fairdraw/internal/config"
	"fairdraw/internal/container"
	"fairdraw/internal/errors"
	"fairdraw/ports"

	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		printError(stderr, err)
		return 1
	}
	return 0
}

// printError prefixes application errors with their code
func printError(w io.Writer, err error) {
	if errors.IsAppError(err) {
		fmt.Fprintf(w, "%s: %v\n", errors.GetCode(err), err)
		return
	}
	fmt.Fprintln(w, err)
}

// newContainer loads configuration and wires dependencies, logging to stderr
func newContainer(stderr io.Writer) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return container.New(cfg, stderr)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var seed uint64
	var count int
	var rng uint64
	var columns uint32
	var outPath string
	var workers int

	rootCmd := &cobra.Command{
		Use:   "prngtest",
		Short: "Generate lines of bounded draws, one fresh session per line",
		Long: `Opens --count sessions, each with a fresh seed, draws --columns values in
[0, --range) from every session and writes them as one tab separated line.
Pipe the output into the validator to check the distribution.

Example: prngtest --seed 42 --count 100000 --range 100 | validator 100`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(stderr)
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())
			if cmd.Flags().Changed("workers") {
				c.Config.Batch.Workers = workers
			}

			// human readable status must not mix with values on stdout
			status := stderr
			out := stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return errors.InvalidInput("cannot create output file", err)
				}
				defer f.Close()
				out = f
				status = stdout
			}

			fmt.Fprint(status, greeting)
			var seeds ports.SeedSource = entropy.NewCryptoSource()
			if cmd.Flags().Changed("seed") {
				seeds = entropy.NewDerivedSource(seed)
				fmt.Fprintf(status, "Seed source RESEEDED to %d\n\n", seed)
			}
			if outPath != "" {
				fmt.Fprintf(status, "Results will be saved to '%s' file\n", outPath)
			}

			return runBatch(cmd.Context(), c, seeds, app.BatchRequest{
				Range:      rng,
				Columns:    columns,
				Iterations: count,
			}, out, status, outPath != "")
		},
	}

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.Flags().Uint64VarP(&seed, "seed", "s", 0, "Base for a reproducible seed sequence (default: crypto/rand seeds)")
	rootCmd.Flags().IntVarP(&count, "count", "c", 10, "Iterations amount")
	rootCmd.Flags().Uint64VarP(&rng, "range", "r", math.MaxUint64, "Random range")
	rootCmd.Flags().Uint32Var(&columns, "columns", 1, "Values drawn per session")
	rootCmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default: stdout)")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "Concurrent sessions (default: BATCH_WORKERS)")

	rootCmd.AddCommand(
		newExportCmd(stdout, stderr),
		newVerifyCmd(stdout, stderr),
		newBatchesCmd(stdout, stderr),
	)

	return rootCmd
}

const greeting = `=================================================
============== STARTING PRNG TEST ===============
=================================================
`

// runBatch writes the batch to out. Progress lines go to status only when
// out is a file.
func runBatch(ctx context.Context, c *container.Container, seeds ports.SeedSource, req app.BatchRequest, out, status io.Writer, progress bool) error {
	if c.Config.Database.Enabled() {
		if err := c.InitWithDatabase(ctx); err != nil {
			return err
		}
	}
	batches := c.BatchService(seeds)

	w := bufio.NewWriter(out)
	every := c.Config.Batch.ProgressEvery
	summary, err := batches.Run(ctx, req, func(line app.BatchLine) error {
		writeLine(w, line.Values)
		done := line.Index + 1
		if progress && (done%every == 0 || done == req.Iterations) {
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(status, "Current status: %d/%d, processed %.2f%%\n", done, req.Iterations, float64(done)/float64(req.Iterations)*100)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(status, "\nTest successfully completed, elapsed time: %.6fs\n", summary.Elapsed.Seconds())
	if c.DrawLog != nil {
		fmt.Fprintf(status, "Batch %s recorded, fingerprint %s\n", summary.BatchID, summary.Fingerprint)
	}
	return nil
}

// writeLine writes every value followed by a tab, then a newline
func writeLine(w *bufio.Writer, values []uint64) {
	var buf [20]byte
	for _, v := range values {
		w.Write(strconv.AppendUint(buf[:0], v, 10))
		w.WriteByte('\t')
	}
	w.WriteByte('\n')
}

func elapsedSince(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}
