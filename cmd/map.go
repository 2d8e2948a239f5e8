package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/StinkyLord/rjs-builder/internal/output"
)

var flagMapJSON bool

var mapCmd = &cobra.Command{
	Use:   "map [FILE...]",
	Short: "Resolve files to their RequireJS module paths",
	Long: `Resolve each FILE to the module path it is served under. Files outside
every namespace are reported as false. Without arguments the namespace table
is printed in match order.

Examples:
  rjs-builder map src/app/main.js src/lib/util.coffee
  rjs-builder map --json src/app/main.js
  rjs-builder map`,
	RunE: runMap,
}

func init() {
	mapCmd.Flags().BoolVar(&flagMapJSON, "json", false, "Print JSON instead of a table")
	rootCmd.AddCommand(mapCmd)
}

func runMap(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		if flagMapJSON {
			return output.WriteJSON("-", p.Mapping.Namespaces())
		}
		return output.NamespacesTable(os.Stdout, p.Mapping.Namespaces())
	}

	files := make([]output.MappedFile, 0, len(args))
	for _, arg := range args {
		modulePath, ok := p.Mapping.ModulePath(arg)
		files = append(files, output.MappedFile{File: arg, ModulePath: modulePath, Mapped: ok})
		if !ok {
			logger.Debug().Str("file", arg).Msg("file is not in any namespace")
		}
	}

	if flagMapJSON {
		return output.WriteJSON("-", files)
	}
	if err := output.MappingTable(os.Stdout, files); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}
