package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/StinkyLord/rjs-builder/internal/output"
)

var flagModulesFormat string

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "Show the include/exclude tree of the optimizer modules",
	Long: `Show every configured optimizer module with the modules it bundles (+)
and excludes (-), expanded recursively.

Examples:
  rjs-builder modules
  rjs-builder modules --format json`,
	RunE: runModules,
}

func init() {
	modulesCmd.Flags().StringVarP(&flagModulesFormat, "format", "f", "tree", "Output format: tree, json")
	rootCmd.AddCommand(modulesCmd)
}

func runModules(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	tree, err := p.ModuleTree()
	if err != nil {
		return err
	}

	switch flagModulesFormat {
	case "tree":
		return output.RenderModuleTree(os.Stdout, tree)
	case "json":
		return output.WriteModuleTree(tree, "-")
	default:
		return fmt.Errorf("unsupported format %q (supported: tree, json)", flagModulesFormat)
	}
}
