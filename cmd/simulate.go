package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dailydollars/dailydollars/pkg/simulation"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <scenario.yaml>",
	Short: "Replay a scenario in memory and print the day-by-day ledger",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	scenario, err := simulation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	result, err := simulation.Run(cmd.Context(), scenario)
	if err != nil {
		return err
	}
	printResult(os.Stdout, result)
	return nil
}

func printResult(out io.Writer, result simulation.Result) {
	for _, p := range result.Periods {
		extra := ""
		if p.ExtraPaycheckDetected {
			extra = "  (extra paycheck)"
		}
		fmt.Fprintf(out, "\n  %s period %s .. %s  discretionary %s  opening slush %s  to savings %s%s\n",
			p.Cadence, p.StartDate, p.EndDate, dollars(p.DiscretionaryTotalCents), dollars(p.OpeningSlushCents),
			dollars(p.SentToSavingsCents), extra)
	}
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "date\tallowance\tspent\tslush\tstatus\tblue\torange\t")
	for _, d := range result.Days {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t\n", d.Date, dollars(d.AllowanceCents),
			dollars(d.PostedSpendCents), dollars(d.SlushAfterCents), d.Status, d.BlueStreakCount, d.OrangeStreakCount)
	}
	w.Flush()

	fmt.Fprintf(out, "\n  closed %d days, slush %s\n", len(result.Days), dollars(result.Final.Slush.BalanceCents))
}

func dollars(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%s.%02d", sign, humanize.Comma(cents/100), cents%100)
}
