package cmd

import (
	"github.com/spf13/cobra"

	"github.com/StinkyLord/rjs-builder/internal/output"
	"github.com/StinkyLord/rjs-builder/internal/requirejs"
)

var (
	flagAssetsBaseURL string
	flagLocale        string
	flagDebug         bool
)

var clientConfigCmd = &cobra.Command{
	Use:   "client-config",
	Short: "Print the require.config() document",
	Long: `Print the configuration passed to require.config() on the client.

Examples:
  rjs-builder client-config --locale en
  rjs-builder client-config --assets-base-url https://cdn.example.com/?v=3 --debug`,
	RunE: runClientConfig,
}

func init() {
	clientConfigCmd.Flags().StringVar(&flagAssetsBaseURL, "assets-base-url", "", "URL prefix assets are served from")
	clientConfigCmd.Flags().StringVar(&flagLocale, "locale", "en", "Locale reported to the client")
	clientConfigCmd.Flags().BoolVar(&flagDebug, "debug", false, "Generate the debug configuration (no almond)")
	rootCmd.AddCommand(clientConfigCmd)
}

func runClientConfig(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	return output.WriteJSON("-", p.ClientConfiguration(requirejs.RequestContext{
		AssetsBaseURL: flagAssetsBaseURL,
		Locale:        flagLocale,
		Debug:         flagDebug,
	}))
}
