package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/weirdbrains/onesignal-mcp/internal/logging"
	"github.com/weirdbrains/onesignal-mcp/internal/onesignal"
	"github.com/weirdbrains/onesignal-mcp/internal/registry"
)

func newAppsCmd() *cobra.Command {
	var opts runtimeOptions

	cmd := &cobra.Command{
		Use:   "apps",
		Short: "List the OneSignal apps the server would start with",
		Long: `Print the app registry that serve would start with: apps from the apps
file, apps discovered in the environment and the default app. Credentials are
never printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(opts)
			if err != nil {
				return err
			}
			sc, err := newServerContext(context.Background(), cfg, logger, false)
			if err != nil {
				return err
			}
			defer func() {
				_ = sc.Shutdown()
			}()
			return printApps(cmd.OutOrStdout(), sc.Dispatcher())
		},
	}

	cmd.Flags().StringVar(&opts.envFile, "env-file", "", "Path to a dotenv file (default: .env when present)")
	cmd.Flags().StringVar(&opts.appsFile, "apps-file", "", "Apps file to read (overrides ONESIGNAL_APPS_FILE)")

	return cmd
}

func printApps(w io.Writer, d *onesignal.Dispatcher) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tNAME\tAPP ID\tAPI KEY\tORG API KEY\tCURRENT")

	reg := d.Registry()
	var perApp []string
	for _, view := range reg.List() {
		cfg, err := reg.Get(view.Key)
		if err != nil {
			return err
		}
		writeAppRow(tw, cfg, view.Current)
		if cfg.OrgAPIKey != "" {
			perApp = append(perApp, cfg.Key)
		}
	}
	if app, ok := d.DefaultApp(); ok {
		writeAppRow(tw, app, reg.CurrentKey() == "")
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	switch {
	case d.HasOrgAPIKey():
		fmt.Fprintln(w, "\nOrganization API key: configured")
	case len(perApp) > 0:
		fmt.Fprintf(w, "\nOrganization API key: configured for %s\n", strings.Join(perApp, ", "))
	default:
		fmt.Fprintln(w, "\nOrganization API key: not configured (org tools need ONESIGNAL_ORG_API_KEY or a per-app org key)")
	}
	return nil
}

func writeAppRow(w io.Writer, cfg registry.AppConfig, current bool) {
	marker := ""
	if current {
		marker = "*"
	}
	orgKey := "-"
	if cfg.OrgAPIKey != "" {
		orgKey = logging.SanitizeSecret(cfg.OrgAPIKey)
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		cfg.Key, cfg.DisplayName(), cfg.AppID, logging.SanitizeSecret(cfg.APIKey), orgKey, marker)
}
