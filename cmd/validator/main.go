package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"fairdraw/adapters/excel"
	"fairdraw/adapters/report"
	"fairdraw/internal"
	"fairdraw/internal/config"
	"fairdraw/internal/errors"
	"fairdraw/internal/validator"

	"github.com/spf13/cobra"
)

// exitNotFlat is returned by --strict when the relative spread reaches the threshold
const exitNotFlat = 2

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	code := 0
	cmd := newRootCmd(stdin, stdout, stderr, &code)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		printError(stderr, err)
		return 1
	}
	return code
}

// printError prefixes application errors with their code
func printError(w io.Writer, err error) {
	if errors.IsAppError(err) {
		fmt.Fprintf(w, "%s: %v\n", errors.GetCode(err), err)
		return
	}
	fmt.Fprintln(w, err)
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer, code *int) *cobra.Command {
	var format string
	var xlsxPath string
	var intervals uint64
	var strict bool
	var logLevel string

	cmd := &cobra.Command{
		Use:   "validator <finish>",
		Short: "Check that bounded draws read from stdin are uniformly distributed",
		Long: `Reads whitespace separated unsigned integers in [0, finish) from stdin and
reports how evenly they fall into intervals.

Example: prngtest --range 100 --count 100000 | validator 100`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			finish, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return errors.InvalidInput(fmt.Sprintf("finish %q must be a positive integer", args[0]), err)
			}
			f, err := report.ParseFormat(format)
			if err != nil {
				return errors.InvalidInput("invalid --format", err)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
			logger.SetOutput(stderr)
			if logLevel != "" {
				logger.SetLevel(internal.ParseLogLevel(logLevel))
			}

			r, err := validator.Run(finish, stdin, validator.Options{Intervals: intervals, Logger: logger})
			if err != nil {
				return errors.Wrap(err, "validation failed")
			}
			if r.Skipped > 0 {
				logger.Warn("skipped %d malformed tokens", r.Skipped)
			}
			if r.OutOfRange > 0 {
				logger.Warn("%d values were not below %d", r.OutOfRange, finish)
			}

			if err := report.Write(stdout, r, f); err != nil {
				return err
			}
			if xlsxPath != "" {
				if err := excel.WriteReport(xlsxPath, r); err != nil {
					return errors.Wrap(err, "failed to write xlsx report")
				}
				logger.Info("report saved to %s", xlsxPath)
			}

			if !r.IsFlat(cfg.Validator.SpreadThreshold) {
				logger.Warn("relative spread %.6f is not below %.6f", r.SpreadRel, cfg.Validator.SpreadThreshold)
				if strict {
					*code = exitNotFlat
				}
			}
			return nil
		},
	}

	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.Flags().StringVar(&format, "format", "text", "Report format: text, markdown or html")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also save the report as an xlsx workbook")
	cmd.Flags().Uint64Var(&intervals, "intervals", 0, "Number of intervals (default: finish, or finish/10 above 1000; at most 4194304)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level for stderr output (default: LOG_LEVEL)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with status 2 when the distribution is not flat")

	return cmd
}
