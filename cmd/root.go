package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the onesignal-mcp application
var rootCmd = &cobra.Command{
	Use:   "onesignal-mcp",
	Short: "MCP server for the OneSignal REST API",
	Long: `onesignal-mcp exposes the OneSignal push, email and SMS REST API as
Model Context Protocol tools. It can manage several OneSignal apps at once and
routes every call to the right app credentials.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "onesignal-mcp version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAppsCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
