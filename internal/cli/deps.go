package cli

import (
	"os"

	"github.com/ksyq12/wpstack/internal/certs"
	"github.com/ksyq12/wpstack/internal/compose"
	"github.com/ksyq12/wpstack/internal/config"
	"github.com/ksyq12/wpstack/internal/cron"
	"github.com/ksyq12/wpstack/internal/distro"
	"github.com/ksyq12/wpstack/internal/errors"
	"github.com/ksyq12/wpstack/internal/executor"
	"github.com/ksyq12/wpstack/internal/input"
	"github.com/ksyq12/wpstack/internal/installer"
	"github.com/ksyq12/wpstack/internal/ports"
	"github.com/ksyq12/wpstack/internal/site"
)

// Dependencies aggregates all CLI external dependencies for testability
type Dependencies struct {
	ConfigLoader   ConfigLoader
	RootChecker    RootChecker
	StdinReader    input.Reader
	PasswordReader input.PasswordReader
	Detector       DistroDetector
	Executor       executor.CommandExecutor
	PortChecker    ports.Checker
	Installer      InstallerFactory
	Materializer   MaterializerFactory
	Provisioner    ProvisionerFactory
	Scheduler      SchedulerFactory
	Compose        ComposeResolver
}

// ConfigLoader handles configuration loading and saving
type ConfigLoader interface {
	Load() (*config.Config, error)
	Save(cfg *config.Config) error
}

// RootChecker checks root privileges
type RootChecker interface {
	RequireRoot() error
}

// DistroDetector identifies the host Linux distribution
type DistroDetector interface {
	Detect() distro.Info
}

// SystemInstaller installs Docker and Certbot for a distribution
type SystemInstaller interface {
	InstallDocker() error
	InstallCertbot() error
}

// InstallerFactory creates installers bound to a detected distribution
type InstallerFactory interface {
	Create(dist distro.Info) SystemInstaller
}

// SiteMaterializer generates per-site environments on disk
type SiteMaterializer interface {
	BaseDir(siteName string) string
	Materialize(p site.Params) (*site.Site, error)
}

// MaterializerFactory creates materializers bound to a parent directory
type MaterializerFactory interface {
	Create(parentDir string) SiteMaterializer
}

// CertProvisioner drives certbot issuance and installation
type CertProvisioner interface {
	IsInstalled() bool
	StopConflictingServices(family distro.Family) bool
	Provision(domain, email string, s *site.Site) (*certs.Bundle, error)
	Renew() error
	Verify(domain string) error
	Install(domain string, s *site.Site) (*certs.Bundle, error)
}

// ProvisionerFactory creates provisioners bound to a certbot live directory
type ProvisionerFactory interface {
	Create(liveDir string) CertProvisioner
}

// RenewalScheduler registers unattended renewal
type RenewalScheduler interface {
	Schedule(domain string, st *site.Site) error
	Entry(st *site.Site) string
}

// SchedulerFactory creates schedulers bound to a renewal slot
type SchedulerFactory interface {
	Create(schedule config.Schedule) RenewalScheduler
}

// ComposeTool drives the resolved compose implementation for a site
type ComposeTool interface {
	Up(dir string) error
	Down(dir string) error
	Restart(dir, service string) error
	Running(dir string) (bool, error)
	Command() string
}

// ComposeResolver finds a usable compose implementation on the host
type ComposeResolver interface {
	Resolve() (ComposeTool, error)
}

// Package-level dependencies (can be overridden for testing)
var deps = newRealDeps()

func newRealDeps() *Dependencies {
	exec := executor.NewSystemExecutor()
	return &Dependencies{
		ConfigLoader:   &realConfigLoader{},
		RootChecker:    &realRootChecker{},
		StdinReader:    input.NewStdinReader(),
		PasswordReader: input.NewTerminalPasswordReader(),
		Detector:       distro.NewDetector(),
		Executor:       exec,
		PortChecker:    ports.NewBindChecker(),
		Installer:      &realInstallerFactory{exec: exec},
		Materializer:   &realMaterializerFactory{},
		Provisioner:    &realProvisionerFactory{exec: exec},
		Scheduler:      &realSchedulerFactory{exec: exec},
		Compose:        &realComposeResolver{exec: exec},
	}
}

// SetDeps replaces the package dependencies (for testing)
func SetDeps(d *Dependencies) {
	deps = d
}

// GetDeps returns the current dependencies (for testing)
func GetDeps() *Dependencies {
	return deps
}

// Real implementations that delegate to the domain packages

type realConfigLoader struct{}

func (r *realConfigLoader) Load() (*config.Config, error) {
	return config.Load()
}

func (r *realConfigLoader) Save(cfg *config.Config) error {
	return cfg.Save()
}

type realRootChecker struct{}

func (r *realRootChecker) RequireRoot() error {
	if os.Geteuid() != 0 {
		return errors.ErrRootRequired
	}
	return nil
}

type realInstallerFactory struct {
	exec executor.CommandExecutor
}

func (f *realInstallerFactory) Create(dist distro.Info) SystemInstaller {
	return installer.New(dist, f.exec)
}

type realMaterializerFactory struct{}

func (f *realMaterializerFactory) Create(parentDir string) SiteMaterializer {
	return site.NewMaterializer(parentDir)
}

type realProvisionerFactory struct {
	exec executor.CommandExecutor
}

func (f *realProvisionerFactory) Create(liveDir string) CertProvisioner {
	return certs.NewProvisioner(f.exec, liveDir)
}

type realSchedulerFactory struct {
	exec executor.CommandExecutor
}

func (f *realSchedulerFactory) Create(schedule config.Schedule) RenewalScheduler {
	return cron.NewScheduler(f.exec, schedule)
}

type realComposeResolver struct {
	exec executor.CommandExecutor
}

func (r *realComposeResolver) Resolve() (ComposeTool, error) {
	t, err := compose.Resolve(r.exec)
	if err != nil {
		return nil, err
	}
	return t, nil
}
