package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/StinkyLord/rjs-builder/internal/output"
)

var (
	flagScanOutput    string
	flagScanFormat    string
	flagShowResources bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List the asset formulae of every namespace",
	Long: `Walk every namespace root and list one asset per script file together
with the module path it is served under.

Examples:
  rjs-builder scan
  rjs-builder scan --format json --output assets.json
  rjs-builder scan --show-resources`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&flagScanOutput, "output", "o", "-", "Output file path for JSON (use '-' for stdout)")
	scanCmd.Flags().StringVarP(&flagScanFormat, "format", "f", "table", "Output format: table, json")
	scanCmd.Flags().BoolVar(&flagShowResources, "show-resources", false, "Print which resources produced assets after scanning")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	result, err := p.Formulae(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	logger.Info().Int("assets", len(result.Formulae)).Msg("scan finished")

	if flagShowResources || flagVerbose {
		if len(result.ResourcesUsed) > 0 {
			fmt.Fprintf(os.Stderr, "Resources with assets:    %v\n", result.ResourcesUsed)
		}
		if len(result.ResourcesSkipped) > 0 {
			fmt.Fprintf(os.Stderr, "Resources without assets: %v\n", result.ResourcesSkipped)
		}
	}

	switch flagScanFormat {
	case "table":
		return output.FormulaeTable(os.Stdout, result.Sorted())
	case "json":
		if err := output.WriteJSON(flagScanOutput, result.Sorted()); err != nil {
			return fmt.Errorf("failed to write JSON output: %w", err)
		}
		if flagScanOutput != "-" {
			fmt.Fprintf(os.Stderr, "Assets written to: %s\n", flagScanOutput)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q (supported: table, json)", flagScanFormat)
	}
}
