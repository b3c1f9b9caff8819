package cli

import (
	"fmt"
	"strings"

	"github.com/faanross/m365dns/internal/checker"
	"github.com/faanross/m365dns/internal/records"
	"github.com/faanross/m365dns/internal/report"
	"github.com/spf13/cobra"
)

var (
	csvPath      string
	jsonPath     string
	baselinePath string
	tenant       string

	checkSPF        bool
	checkDMARC      bool
	checkDKIM       bool
	checkDeprecated bool
	checkAll        bool

	reportFormat string
	reportOutput string
)

var checkCmd = &cobra.Command{
	Use:   "check <domain>...",
	Short: "Compare live DNS against the expected Microsoft 365 records",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&csvPath, "csv", "", "Read expected records from a CSV file")
	checkCmd.Flags().StringVar(&jsonPath, "json", "", "Read expected records from a JSON file")
	checkCmd.Flags().StringVar(&baselinePath, "baseline", "", "Read expected records from a saved baseline snapshot")
	checkCmd.MarkFlagsMutuallyExclusive("csv", "json", "baseline")

	checkCmd.Flags().StringVar(&tenant, "tenant", "", "Tenant name for deriving DKIM targets in the built-in catalogue")

	checkCmd.Flags().BoolVar(&checkSPF, "spf", false, "Include the SPF check")
	checkCmd.Flags().BoolVar(&checkDMARC, "dmarc", false, "Include the DMARC check")
	checkCmd.Flags().BoolVar(&checkDKIM, "dkim", false, "Include the DKIM check")
	checkCmd.Flags().BoolVar(&checkDeprecated, "deprecated", false, "Include the deprecated-record check")
	checkCmd.Flags().BoolVar(&checkAll, "all", false, "Include every auxiliary check")

	checkCmd.Flags().StringVar(&reportFormat, "format", "", "Report format: table, csv, json, html")
	checkCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Write the report to a file instead of stdout")
}

// selectProvider picks the expected-record source; file sources are
// mutually exclusive and fall back to the built-in catalogue
func selectProvider() records.Provider {
	switch {
	case csvPath != "":
		return records.CSVProvider{Path: csvPath}
	case jsonPath != "":
		return records.JSONProvider{Path: jsonPath}
	case baselinePath != "":
		return records.BaselineProvider{Path: baselinePath}
	default:
		t := tenant
		if t == "" {
			t = cfg.Tenant
		}
		return records.Catalog{Tenant: t}
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	results, err := runBatch(cmd, args)
	if err != nil {
		return err
	}

	format := reportFormat
	if format == "" {
		format = cfg.Report.Format
	}
	output := reportOutput
	if output == "" {
		output = cfg.Report.Output
	}

	w, done, err := openOutput(output)
	if err != nil {
		return err
	}
	defer done()

	switch strings.ToLower(format) {
	case "table":
		report.WriteTable(w, results)
		return nil
	case "csv":
		return report.WriteCSV(w, results)
	case "json":
		return report.WriteAssessmentsJSON(w, results)
	case "html":
		return report.WriteHTML(w, results)
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}

// runBatch performs the comparison pass shared by check and baseline
func runBatch(cmd *cobra.Command, domains []string) ([]checker.DomainResult, error) {
	resolver, err := newResolver()
	if err != nil {
		return nil, err
	}

	checks := cfg.Checks
	if checkAll {
		checks.SPF, checks.DMARC, checks.DKIM, checks.Deprecated = true, true, true, true
	} else {
		checks.SPF = checks.SPF || checkSPF
		checks.DMARC = checks.DMARC || checkDMARC
		checks.DKIM = checks.DKIM || checkDKIM
		checks.Deprecated = checks.Deprecated || checkDeprecated
	}

	runner := &checker.Runner{
		Provider: selectProvider(),
		Resolver: resolver,
		Workers:  cfg.Workers,
		Checks:   checks,
		Log:      log,
	}

	return runner.Run(cmd.Context(), domains), nil
}
