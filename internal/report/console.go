// Package report renders and persists back-test results.
package report

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/yourusername/stratlab/internal/backtest"
)

const msRound = time.Millisecond

// ConsoleWriter renders results as a ranked table. Results arrive already
// sorted by final total value.
type ConsoleWriter struct {
	out io.Writer
}

// NewConsoleWriter creates a console writer targeting out.
func NewConsoleWriter(out io.Writer) *ConsoleWriter {
	return &ConsoleWriter{out: out}
}

// WriteBackTestResults renders one row per configuration.
func (w *ConsoleWriter) WriteBackTestResults(_ context.Context, results []backtest.BackTestResult) error {
	tw := tabwriter.NewWriter(w.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tCONFIG\tFINAL VALUE\tPROFIT\tRELATIVE\tTRADES\tELAPSED\tERROR")
	for i, result := range results {
		if result.Failed() {
			fmt.Fprintf(tw, "%d\t%s\t-\t-\t-\t-\t%s\t%s\n",
				i+1, result.Config.Description(), result.Elapsed.Round(msRound), result.Error)
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%s\t\n",
			i+1,
			result.Config.Description(),
			result.Balance.FinalTotalValue.StringFixed(2),
			result.Profit.Absolute.StringFixed(2),
			result.Profit.Relative.StringFixed(5),
			len(result.Trades),
			result.Elapsed.Round(msRound),
		)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush report table: %w", err)
	}
	return nil
}
