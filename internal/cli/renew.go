package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ksyq12/wpstack/internal/output"
	"github.com/ksyq12/wpstack/internal/site"
	"github.com/spf13/cobra"
)

var renewCmd = &cobra.Command{
	Use:   "renew <site>",
	Short: "Renew the SSL certificate for a site now",
	Long: `Run certificate renewal immediately instead of waiting for the
weekly cron job, reinstall the renewed material into the site, and restart
the WordPress service.

Examples:
  sudo wpstack renew mysite`,
	Args: cobra.ExactArgs(1),
	RunE: runRenew,
}

func init() {
	rootCmd.AddCommand(renewCmd)
}

func runRenew(cmd *cobra.Command, args []string) error {
	siteName := args[0]

	if err := requireRoot(); err != nil {
		return err
	}

	cfg, err := deps.ConfigLoader.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	domain, ok := cfg.Sites[siteName]
	if !ok {
		return fmt.Errorf("site %s not found. Create it first with: wpstack setup", siteName)
	}

	st := &site.Site{Name: siteName, BaseDir: filepath.Join(cfg.SitesDir, siteName)}
	if _, err := os.Stat(st.BaseDir); err != nil {
		return fmt.Errorf("site directory %s is missing: %w", st.BaseDir, err)
	}

	prov := deps.Provisioner.Create(cfg.LetsEncryptDir)
	if !prov.IsInstalled() {
		return fmt.Errorf("certbot is not installed. Run: wpstack setup")
	}

	output.Info("Renewing certificate for %s...", domain)
	if err := prov.Renew(); err != nil {
		return err
	}
	if err := prov.Verify(domain); err != nil {
		return err
	}
	bundle, err := prov.Install(domain, st)
	if err != nil {
		return err
	}

	// Reload the renewed material. A restart failure is not fatal: the
	// weekly cron job will pick it up, and the operator can restart by hand.
	if tool, err := deps.Compose.Resolve(); err != nil {
		output.Warn("Certificate installed but stack not restarted: %v", err)
	} else if err := tool.Restart(st.BaseDir, "wordpress"); err != nil {
		output.Warn("Certificate installed but restart failed: %v", err)
	}

	return outputResult(
		map[string]interface{}{
			"success":   true,
			"site":      siteName,
			"domain":    domain,
			"cert_path": bundle.CertPath,
		},
		"Certificate renewed for %s", domain,
	)
}
