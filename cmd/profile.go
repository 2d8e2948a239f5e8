package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagProfileOut string

var profileCmd = &cobra.Command{
	Use:   "profile MODULE",
	Short: "Print the r.js build profile generated for a module",
	Long: `Print the build profile that optimizing MODULE would hand to r.js. The
module is read from the base directory.

Examples:
  rjs-builder profile app/main
  rjs-builder profile app/main --out build/main.js`,
	Args: cobra.ExactArgs(1),
	RunE: runProfile,
}

func init() {
	profileCmd.Flags().StringVar(&flagProfileOut, "out", "output.js", "Value of the profile's out key")
	rootCmd.AddCommand(profileCmd)
}

func runProfile(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	profile, err := p.Profile(args[0], flagProfileOut)
	if err != nil {
		return err
	}

	data, err := profile.Encode()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(os.Stdout, "%s\n", data)
	return err
}
