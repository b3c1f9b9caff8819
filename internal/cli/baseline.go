package cli

import (
	"fmt"

	"github.com/faanross/m365dns/internal/report"
	"github.com/spf13/cobra"
)

var baselineOutput string

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Save or compare against a DNS comparison snapshot",
}

var baselineSaveCmd = &cobra.Command{
	Use:   "save <domain>...",
	Short: "Run a comparison pass and save the results as a baseline",
	Long: `baseline save runs the same comparison pass as check and writes the
flat result rows to a JSON file. The file can later serve as the
expected-record source for check --baseline, or for baseline compare.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBaselineSave,
}

var baselineCompareCmd = &cobra.Command{
	Use:   "compare <domain>...",
	Short: "Compare live DNS against a previously saved baseline",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBaselineCompare,
}

func init() {
	baselineCmd.AddCommand(baselineSaveCmd)
	baselineCmd.AddCommand(baselineCompareCmd)

	baselineSaveCmd.Flags().StringVarP(&baselineOutput, "output", "o", "baseline.json", "File to write the baseline to")
	baselineCompareCmd.Flags().StringVar(&baselinePath, "baseline", "", "Baseline snapshot to compare against")
	baselineCompareCmd.MarkFlagRequired("baseline")
}

func runBaselineSave(cmd *cobra.Command, args []string) error {
	results, err := runBatch(cmd, args)
	if err != nil {
		return err
	}

	w, done, err := openOutput(baselineOutput)
	if err != nil {
		return err
	}
	defer done()

	if err := report.WriteJSON(w, results); err != nil {
		return err
	}

	fmt.Printf("Baseline saved to %s\n", baselineOutput)
	return nil
}

func runBaselineCompare(cmd *cobra.Command, args []string) error {
	// baselinePath steers selectProvider to the snapshot source; the
	// comparison pass itself is identical to check
	return runCheck(cmd, args)
}
