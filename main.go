// webgu is a minimal browser shell: it fetches a page, scans its markup into
// a flat list of elements, and renders them to the terminal or over HTTP.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	devLogs    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "webgu",
		Short: "A minimal terminal browser shell",
		Long: `webgu fetches a page, extracts its elements with a flat scan and renders
them as styled text.

Example:
  webgu print https://example.com
  webgu serve --addr 127.0.0.1:8080`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/webgu/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&devLogs, "dev", false, "Human-readable development logs")

	rootCmd.AddCommand(
		printCmd(),
		openCmd(),
		elementsCmd(),
		serveCmd(),
		initConfigCmd(),
		sessionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
