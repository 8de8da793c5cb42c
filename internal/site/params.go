// Package site materializes the on-disk environment for a WordPress site:
// Apache vhost configs, the container build file, the compose definition,
// and the lifecycle helper scripts.
package site

import (
	"path/filepath"

	"github.com/ksyq12/wpstack/internal/validate"
)

// Params carries the validated operator input for one provisioning run.
// Constructed once by the orchestrator and passed down; never persisted.
type Params struct {
	Domain     string
	Email      string
	DBUser     string
	DBPassword string
	DBName     string
	SiteName   string
}

// Validate re-checks every field. The orchestrator validates during its
// prompt loops; this is the guard for non-interactive construction paths.
func (p Params) Validate() error {
	if err := validate.Domain(p.Domain); err != nil {
		return err
	}
	if err := validate.Email(p.Email); err != nil {
		return err
	}
	if err := validate.SiteName(p.SiteName); err != nil {
		return err
	}
	if err := validate.NotEmpty("database user", p.DBUser); err != nil {
		return err
	}
	if err := validate.NotEmpty("database password", p.DBPassword); err != nil {
		return err
	}
	return validate.NotEmpty("database name", p.DBName)
}

// Site describes a materialized environment rooted at BaseDir.
type Site struct {
	Name    string
	BaseDir string
}

// Generated file and directory names under BaseDir.
const (
	SSLDirName        = "ssl"
	ApacheConfDirName = "apache-conf"
	BackupsDirName    = "backups"
	ComposeFileName   = "docker-compose.yml"
	DockerfileName    = "Dockerfile"
	RenewScriptName   = "renew-ssl.sh"

	CertFileName = "certificate.crt"
	KeyFileName  = "private.key"
	CAFileName   = "ca_bundle.crt"
)

// SSLDir returns the directory holding the copied certificate material.
func (s *Site) SSLDir() string {
	return filepath.Join(s.BaseDir, SSLDirName)
}

// ApacheConfDir returns the directory holding the generated vhost configs.
func (s *Site) ApacheConfDir() string {
	return filepath.Join(s.BaseDir, ApacheConfDirName)
}

// ComposeFile returns the path of the compose definition.
func (s *Site) ComposeFile() string {
	return filepath.Join(s.BaseDir, ComposeFileName)
}

// RenewScript returns the path of the renewal helper script.
func (s *Site) RenewScript() string {
	return filepath.Join(s.BaseDir, RenewScriptName)
}
