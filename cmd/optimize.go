package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/StinkyLord/rjs-builder/internal/optimizer"
)

var flagOptimizeOutput string

var optimizeCmd = &cobra.Command{
	Use:   "optimize FILE",
	Short: "Run the r.js optimizer on a script",
	Long: `Optimize FILE with r.js using the configured paths, shim, modules and
build options, and write the result.

Examples:
  rjs-builder optimize src/app/main.js --output web/js/main.js
  rjs-builder optimize src/app/main.js --output -`,
	Args: cobra.ExactArgs(1),
	RunE: runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVarP(&flagOptimizeOutput, "output", "o", "-", "Output file path (use '-' for stdout)")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	content, err := p.OptimizeFile(cmd.Context(), args[0])
	if err != nil {
		var procErr *optimizer.ProcessError
		if errors.As(err, &procErr) {
			logger.Debug().Int("exit_code", procErr.ExitCode).Msg("r.js failed")
		}
		return fmt.Errorf("optimization of %q failed: %w", args[0], err)
	}

	if flagOptimizeOutput == "-" {
		_, err = os.Stdout.Write(content)
		return err
	}
	if err := os.WriteFile(flagOptimizeOutput, content, 0644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Optimized script written to: %s\n", flagOptimizeOutput)
	return nil
}
