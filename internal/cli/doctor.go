package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ksyq12/wpstack/internal/config"
	"github.com/ksyq12/wpstack/internal/distro"
	"github.com/ksyq12/wpstack/internal/installer"
	"github.com/ksyq12/wpstack/internal/output"
	"github.com/ksyq12/wpstack/internal/site"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system status and diagnose issues",
	Long: `Run diagnostic checks on the system and managed sites.

Checks:
  - Distribution support for Docker and Certbot installation
  - Docker, Docker Compose, and Certbot availability
  - Port availability (80, 443, 8080)
  - Configuration file validity
  - Managed site directories and certificate material

Examples:
  wpstack doctor
  wpstack doctor --json`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// CheckResult represents a single diagnostic check result
type CheckResult struct {
	Status  string `json:"status"` // "success", "warning", "error"
	Message string `json:"message"`
}

// SiteStatus represents the status of a single managed site
type SiteStatus struct {
	Name    string        `json:"name"`
	Domain  string        `json:"domain"`
	Running bool          `json:"running"`
	Checks  []CheckResult `json:"checks"`
}

// DoctorReport contains all diagnostic results
type DoctorReport struct {
	SystemRequirements []CheckResult `json:"system_requirements"`
	Configuration      []CheckResult `json:"configuration"`
	Sites              []SiteStatus  `json:"sites"`
}

var dockerVersionPattern = regexp.MustCompile(`Docker version (\d+\.\d+\.\d+)`)

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := deps.ConfigLoader.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	report := &DoctorReport{}
	report.SystemRequirements = checkSystemRequirements(cfg)
	report.Configuration = checkConfiguration()
	report.Sites = checkSites(cfg)

	if jsonOutput {
		return output.JSON(report)
	}

	displayDoctorResults(report)
	return nil
}

func checkSystemRequirements(cfg *config.Config) []CheckResult {
	results := []CheckResult{}

	dist := deps.Detector.Detect()
	_, dockerOK := installer.DockerCommands(dist)
	_, certbotOK := installer.CertbotCommands(dist)

	if dist.Family() != distro.FamilyUnknown {
		results = append(results, CheckResult{
			Status:  "success",
			Message: fmt.Sprintf("Distribution %s %s recognized (%s family)", dist.ID, dist.Version, dist.Family()),
		})
	} else {
		results = append(results, CheckResult{
			Status:  "warning",
			Message: fmt.Sprintf("Distribution %s not recognized", dist.ID),
		})
	}

	// Docker
	if _, err := deps.Executor.LookPath("docker"); err == nil {
		version := "unknown"
		if out, err := deps.Executor.Execute("docker", "--version"); err == nil {
			if matches := dockerVersionPattern.FindStringSubmatch(string(out)); len(matches) >= 2 {
				version = matches[1]
			}
		}
		results = append(results, CheckResult{
			Status:  "success",
			Message: fmt.Sprintf("Docker installed (%s)", version),
		})
	} else if dockerOK {
		results = append(results, CheckResult{
			Status:  "warning",
			Message: "Docker not installed (setup will install it)",
		})
	} else {
		results = append(results, CheckResult{
			Status:  "error",
			Message: "Docker not installed and automatic installation is not supported here",
		})
	}

	// Compose
	if tool, err := deps.Compose.Resolve(); err == nil {
		results = append(results, CheckResult{
			Status:  "success",
			Message: fmt.Sprintf("Docker Compose available (%s)", tool.Command()),
		})
	} else {
		results = append(results, CheckResult{
			Status:  "warning",
			Message: "Docker Compose not available (setup will install it)",
		})
	}

	// Certbot
	prov := deps.Provisioner.Create(cfg.LetsEncryptDir)
	if prov.IsInstalled() {
		results = append(results, CheckResult{
			Status:  "success",
			Message: "Certbot installed",
		})
	} else if certbotOK {
		results = append(results, CheckResult{
			Status:  "warning",
			Message: "Certbot not installed (setup will install it)",
		})
	} else {
		results = append(results, CheckResult{
			Status:  "error",
			Message: "Certbot not installed and automatic installation is not supported here",
		})
	}

	// Ports
	for _, port := range requiredPorts {
		if deps.PortChecker.InUse(port) {
			results = append(results, CheckResult{
				Status:  "warning",
				Message: fmt.Sprintf("Port %d is in use", port),
			})
		} else {
			results = append(results, CheckResult{
				Status:  "success",
				Message: fmt.Sprintf("Port %d is free", port),
			})
		}
	}

	return results
}

func checkConfiguration() []CheckResult {
	results := []CheckResult{}

	configPath, pathErr := config.ConfigPath()
	if pathErr == nil {
		if _, err := os.Stat(configPath); err == nil {
			displayPath := strings.Replace(configPath, os.Getenv("HOME"), "~", 1)
			results = append(results, CheckResult{
				Status:  "success",
				Message: fmt.Sprintf("Config file exists (%s)", displayPath),
			})
		} else {
			results = append(results, CheckResult{
				Status:  "warning",
				Message: "Config file not found (defaults in effect)",
			})
		}
	} else {
		results = append(results, CheckResult{
			Status:  "error",
			Message: "Could not determine config path",
		})
	}

	return results
}

func checkSites(cfg *config.Config) []SiteStatus {
	statuses := []SiteStatus{}

	for name, domain := range cfg.Sites {
		st := &site.Site{Name: name, BaseDir: filepath.Join(cfg.SitesDir, name)}
		status := SiteStatus{Name: name, Domain: domain, Checks: []CheckResult{}}
		allOK := true

		if _, err := os.Stat(st.BaseDir); os.IsNotExist(err) {
			status.Checks = append(status.Checks, CheckResult{
				Status:  "error",
				Message: "site directory missing",
			})
			statuses = append(statuses, status)
			continue
		}

		if _, err := os.Stat(st.ComposeFile()); os.IsNotExist(err) {
			status.Checks = append(status.Checks, CheckResult{
				Status:  "error",
				Message: "compose file missing",
			})
			allOK = false
		}

		for _, cert := range []string{site.CertFileName, site.KeyFileName} {
			if _, err := os.Stat(filepath.Join(st.SSLDir(), cert)); os.IsNotExist(err) {
				status.Checks = append(status.Checks, CheckResult{
					Status:  "error",
					Message: fmt.Sprintf("%s missing", cert),
				})
				allOK = false
			}
		}

		if tool, err := deps.Compose.Resolve(); err == nil {
			if running, err := tool.Running(st.BaseDir); err == nil {
				status.Running = running
			}
		}

		if allOK {
			statusText := "stopped"
			if status.Running {
				statusText = "running"
			}
			status.Checks = append(status.Checks, CheckResult{
				Status:  "success",
				Message: fmt.Sprintf("%s, environment intact", statusText),
			})
		}

		statuses = append(statuses, status)
	}

	return statuses
}

func displayDoctorResults(report *DoctorReport) {
	output.Print("Checking system requirements...")
	for _, check := range report.SystemRequirements {
		displayCheck(check)
	}
	output.Print("")

	output.Print("Checking configuration...")
	for _, check := range report.Configuration {
		displayCheck(check)
	}
	output.Print("")

	if len(report.Sites) > 0 {
		output.Print("Checking sites...")
		for _, st := range report.Sites {
			if len(st.Checks) > 0 {
				mainCheck := st.Checks[len(st.Checks)-1]
				switch mainCheck.Status {
				case "success":
					output.Success("%s (%s) - %s", st.Name, st.Domain, mainCheck.Message)
				case "warning":
					output.Warn("%s (%s) - %s", st.Name, st.Domain, mainCheck.Message)
				case "error":
					output.Error("%s (%s) - %s", st.Name, st.Domain, mainCheck.Message)
				}
			}
		}
	} else {
		output.Print("No sites configured")
	}
}

func displayCheck(check CheckResult) {
	switch check.Status {
	case "success":
		output.Success("%s", check.Message)
	case "warning":
		output.Warn("%s", check.Message)
	case "error":
		output.Error("%s", check.Message)
	}
}
