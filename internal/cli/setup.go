package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ksyq12/wpstack/internal/compose"
	"github.com/ksyq12/wpstack/internal/config"
	"github.com/ksyq12/wpstack/internal/errors"
	"github.com/ksyq12/wpstack/internal/output"
	"github.com/ksyq12/wpstack/internal/ports"
	"github.com/ksyq12/wpstack/internal/site"
	"github.com/ksyq12/wpstack/internal/validate"
	"github.com/spf13/cobra"
)

var defaultsFile string

// healthTimeout bounds the post-up wait for the stack to report running.
const healthTimeout = 2 * time.Minute

// requiredPorts are checked before setup touches the system. 80 and 443 are
// served by the stack itself (and 80 by certbot during the challenge), 8080
// by phpMyAdmin.
var requiredPorts = []int{80, 443, 8080}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Provision a WordPress site with SSL",
	Long: `Provision a complete WordPress site: install Docker and Certbot,
generate a per-site Docker Compose environment (WordPress, MariaDB,
phpMyAdmin), obtain a Let's Encrypt certificate, start the stack, and
schedule weekly renewal.

Examples:
  sudo wpstack setup
  sudo wpstack setup --defaults site.env`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().StringVar(&defaultsFile, "defaults", "", "Env file with prompt defaults (WPSTACK_* keys)")

	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	if err := requireRoot(); err != nil {
		return err
	}

	cfg, err := deps.ConfigLoader.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Preflight: the stack needs 80, 443 and 8080 once it is up. Busy ports
	// are surfaced now rather than as a container start failure later.
	if busy := ports.Busy(deps.PortChecker, requiredPorts...); len(busy) > 0 {
		output.Warn("Ports in use: %s", joinPorts(busy))
		if !promptYesNo("Continue anyway?", false) {
			return errors.Aborted("setup cancelled: required ports are in use")
		}
	}

	params, err := collectParams()
	if err != nil {
		return err
	}

	mat := deps.Materializer.Create(cfg.SitesDir)
	baseDir := mat.BaseDir(params.SiteName)

	// Overwrite confirmation happens before anything is installed or
	// written, so a decline leaves the system untouched.
	existing := false
	if _, err := os.Stat(baseDir); err == nil {
		existing = true
		output.Warn("Site directory %s already exists", baseDir)
		if !promptYesNo("Overwrite its configuration?", false) {
			return errors.Aborted("setup cancelled: site directory already exists")
		}
	}

	dist := deps.Detector.Detect()
	output.Info("Detected distribution: %s %s (%s family)", dist.ID, dist.Version, dist.Family())

	inst := deps.Installer.Create(dist)
	if err := inst.InstallDocker(); err != nil {
		return err
	}
	if err := inst.InstallCertbot(); err != nil {
		return err
	}

	tool, err := deps.Compose.Resolve()
	if err != nil {
		return err
	}

	output.Info("Generating site environment in %s...", baseDir)
	st, err := mat.Materialize(params)
	if err != nil {
		return err
	}

	// An overwritten site may still have its old stack running on the
	// ports certbot and the new stack need.
	if existing {
		if err := tool.Down(baseDir); err != nil {
			output.Warn("Could not stop existing stack: %v", err)
		}
	}

	prov := deps.Provisioner.Create(cfg.LetsEncryptDir)
	if deps.PortChecker.InUse(80) {
		output.Warn("Port 80 is in use; certbot needs it for the HTTP challenge")
		if !promptYesNo("Stop conflicting web services?", true) {
			return errors.Aborted("setup cancelled: port 80 is not available for the certificate challenge")
		}
		if !prov.StopConflictingServices(dist.Family()) {
			return errors.Aborted("free port 80 manually and re-run setup")
		}
	}

	bundle, err := prov.Provision(params.Domain, params.Email, st)
	if err != nil {
		return err
	}

	chownToInvoker(baseDir)

	output.Info("Starting services with %s...", tool.Command())
	if err := tool.Up(baseDir); err != nil {
		return err
	}
	if err := compose.WaitRunning(tool, baseDir, healthTimeout); err != nil {
		output.Warn("Services did not report running within %s: %v", healthTimeout, err)
	}

	sched := deps.Scheduler.Create(cfg.RenewalSchedule)
	if err := sched.Schedule(params.Domain, st); err != nil {
		return err
	}

	cfg.Sites[params.SiteName] = params.Domain
	if err := deps.ConfigLoader.Save(cfg); err != nil {
		output.Warn("Site is up but config save failed: %v", err)
	}

	if jsonOutput {
		return output.JSON(map[string]interface{}{
			"success":    true,
			"site":       params.SiteName,
			"domain":     params.Domain,
			"directory":  baseDir,
			"cert_path":  bundle.CertPath,
			"key_path":   bundle.KeyPath,
			"renewal":    sched.Entry(st),
			"site_url":   "https://" + params.Domain,
			"phpmyadmin": fmt.Sprintf("http://%s:8080", params.Domain),
		})
	}

	output.Print("")
	output.Header("Setup complete")
	output.Summary([][2]string{
		{"Site", "https://" + params.Domain},
		{"Also serving", "https://www." + params.Domain},
		{"phpMyAdmin", fmt.Sprintf("http://%s:8080", params.Domain)},
		{"Directory", baseDir},
		{"Certificate", bundle.CertPath},
		{"Renewal", sched.Entry(st)},
		{"Helpers", strings.Join([]string{"start.sh", "stop.sh", "restart.sh", "backup.sh"}, ", ")},
	})
	output.Success("WordPress site %s is ready", params.Domain)
	return nil
}

// collectParams prompts for the site parameters, prefilled from the
// defaults file when one was given.
func collectParams() (site.Params, error) {
	var defaults config.Defaults
	if defaultsFile != "" {
		d, err := config.LoadDefaults(defaultsFile)
		if err != nil {
			return site.Params{}, err
		}
		defaults = *d
	}

	domain, err := promptString("Domain name (e.g. example.com)", defaults.Domain, validate.Domain)
	if err != nil {
		return site.Params{}, err
	}

	email, err := promptString("Email for Let's Encrypt notices", defaults.Email, validate.Email)
	if err != nil {
		return site.Params{}, err
	}

	siteDefault := defaults.SiteName
	if siteDefault == "" {
		siteDefault = strings.SplitN(domain, ".", 2)[0]
	}
	siteName, err := promptString("Site name", siteDefault, validate.SiteName)
	if err != nil {
		return site.Params{}, err
	}

	dbName, err := promptString("Database name", orDefault(defaults.DBName, "wordpress"), func(s string) error {
		return validate.NotEmpty("database name", s)
	})
	if err != nil {
		return site.Params{}, err
	}

	dbUser, err := promptString("Database user", orDefault(defaults.DBUser, "wpuser"), func(s string) error {
		return validate.NotEmpty("database user", s)
	})
	if err != nil {
		return site.Params{}, err
	}

	dbPassword := defaults.DBPassword
	if dbPassword == "" {
		dbPassword, err = promptPassword("Database password")
		if err != nil {
			return site.Params{}, err
		}
	}

	return site.Params{
		Domain:     domain,
		Email:      email,
		DBUser:     dbUser,
		DBPassword: dbPassword,
		DBName:     dbName,
		SiteName:   siteName,
	}, nil
}

// chownToInvoker hands the site directory back to the sudo invoker so the
// helper scripts can be run without root.
func chownToInvoker(baseDir string) {
	sudoUser := os.Getenv("SUDO_USER")
	if sudoUser == "" || sudoUser == "root" {
		return
	}
	if out, err := deps.Executor.Execute("chown", "-R", sudoUser+":"+sudoUser, baseDir); err != nil {
		output.Warn("Could not chown %s to %s: %v (%s)", baseDir, sudoUser, err, out)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func joinPorts(p []int) string {
	parts := make([]string, len(p))
	for i, port := range p {
		parts[i] = fmt.Sprintf("%d", port)
	}
	return strings.Join(parts, ", ")
}
