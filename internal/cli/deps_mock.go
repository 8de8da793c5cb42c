package cli

import (
	"errors"

	"github.com/ksyq12/wpstack/internal/certs"
	"github.com/ksyq12/wpstack/internal/config"
	"github.com/ksyq12/wpstack/internal/distro"
	wperrors "github.com/ksyq12/wpstack/internal/errors"
	"github.com/ksyq12/wpstack/internal/executor"
	"github.com/ksyq12/wpstack/internal/input"
	"github.com/ksyq12/wpstack/internal/ports"
	"github.com/ksyq12/wpstack/internal/site"
)

// MockConfigLoader is a test double for ConfigLoader
type MockConfigLoader struct {
	Cfg       *config.Config
	LoadErr   error
	SaveErr   error
	SaveCalls int
}

func (m *MockConfigLoader) Load() (*config.Config, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Cfg == nil {
		m.Cfg = config.New()
	}
	return m.Cfg, nil
}

func (m *MockConfigLoader) Save(cfg *config.Config) error {
	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Cfg = cfg
	return nil
}

// MockRootChecker is a test double for RootChecker
type MockRootChecker struct {
	IsRoot bool
	Calls  int
}

func (m *MockRootChecker) RequireRoot() error {
	m.Calls++
	if !m.IsRoot {
		return wperrors.ErrRootRequired
	}
	return nil
}

// MockDetector is a test double for DistroDetector
type MockDetector struct {
	Info distro.Info
}

func (m *MockDetector) Detect() distro.Info {
	if m.Info.ID == "" {
		return distro.Info{ID: "ubuntu", Version: "24.04"}
	}
	return m.Info
}

// MockInstaller is a test double for SystemInstaller
type MockInstaller struct {
	DockerErr    error
	CertbotErr   error
	DockerCalls  int
	CertbotCalls int
}

func (m *MockInstaller) InstallDocker() error {
	m.DockerCalls++
	return m.DockerErr
}

func (m *MockInstaller) InstallCertbot() error {
	m.CertbotCalls++
	return m.CertbotErr
}

// MockInstallerFactory is a test double for InstallerFactory
type MockInstallerFactory struct {
	Installer *MockInstaller
	Dist      distro.Info
}

func (m *MockInstallerFactory) Create(dist distro.Info) SystemInstaller {
	m.Dist = dist
	if m.Installer == nil {
		m.Installer = &MockInstaller{}
	}
	return m.Installer
}

// MockProvisioner is a test double for CertProvisioner
type MockProvisioner struct {
	Installed     bool
	ProvisionErr  error
	RenewErr      error
	VerifyErr     error
	InstallErr    error
	StopResult    bool
	Bundle        *certs.Bundle
	ProvisionArgs []string
	RenewCalls    int
	StopCalls     int
}

func (m *MockProvisioner) IsInstalled() bool {
	return m.Installed
}

func (m *MockProvisioner) StopConflictingServices(family distro.Family) bool {
	m.StopCalls++
	return m.StopResult
}

func (m *MockProvisioner) Provision(domain, email string, s *site.Site) (*certs.Bundle, error) {
	m.ProvisionArgs = []string{domain, email, s.Name}
	if m.ProvisionErr != nil {
		return nil, m.ProvisionErr
	}
	return m.bundle(s), nil
}

func (m *MockProvisioner) Renew() error {
	m.RenewCalls++
	return m.RenewErr
}

func (m *MockProvisioner) Verify(domain string) error {
	return m.VerifyErr
}

func (m *MockProvisioner) Install(domain string, s *site.Site) (*certs.Bundle, error) {
	if m.InstallErr != nil {
		return nil, m.InstallErr
	}
	return m.bundle(s), nil
}

func (m *MockProvisioner) bundle(s *site.Site) *certs.Bundle {
	if m.Bundle != nil {
		return m.Bundle
	}
	return &certs.Bundle{
		CertPath: s.SSLDir() + "/" + site.CertFileName,
		KeyPath:  s.SSLDir() + "/" + site.KeyFileName,
		CAPath:   s.SSLDir() + "/" + site.CAFileName,
	}
}

// MockProvisionerFactory is a test double for ProvisionerFactory
type MockProvisionerFactory struct {
	Provisioner *MockProvisioner
	LiveDir     string
}

func (m *MockProvisionerFactory) Create(liveDir string) CertProvisioner {
	m.LiveDir = liveDir
	if m.Provisioner == nil {
		m.Provisioner = &MockProvisioner{Installed: true, StopResult: true}
	}
	return m.Provisioner
}

// MockScheduler is a test double for RenewalScheduler
type MockScheduler struct {
	Err           error
	ScheduleCalls int
	Domain        string
}

func (m *MockScheduler) Schedule(domain string, st *site.Site) error {
	m.ScheduleCalls++
	m.Domain = domain
	return m.Err
}

func (m *MockScheduler) Entry(st *site.Site) string {
	return "0 3 * * 1 " + st.RenewScript()
}

// MockSchedulerFactory is a test double for SchedulerFactory
type MockSchedulerFactory struct {
	Scheduler *MockScheduler
}

func (m *MockSchedulerFactory) Create(schedule config.Schedule) RenewalScheduler {
	if m.Scheduler == nil {
		m.Scheduler = &MockScheduler{}
	}
	return m.Scheduler
}

// MockComposeTool is a test double for ComposeTool
type MockComposeTool struct {
	UpErr      error
	DownErr    error
	RestartErr error
	RunningVal bool
	RunningErr error
	Calls      [][]string
}

func (m *MockComposeTool) Up(dir string) error {
	m.Calls = append(m.Calls, []string{"up", dir})
	return m.UpErr
}

func (m *MockComposeTool) Down(dir string) error {
	m.Calls = append(m.Calls, []string{"down", dir})
	return m.DownErr
}

func (m *MockComposeTool) Restart(dir, service string) error {
	m.Calls = append(m.Calls, []string{"restart", dir, service})
	return m.RestartErr
}

func (m *MockComposeTool) Running(dir string) (bool, error) {
	return m.RunningVal, m.RunningErr
}

func (m *MockComposeTool) Command() string {
	return "docker compose"
}

// MockComposeResolver is a test double for ComposeResolver
type MockComposeResolver struct {
	Tool *MockComposeTool
	Err  error
}

func (m *MockComposeResolver) Resolve() (ComposeTool, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Tool == nil {
		m.Tool = &MockComposeTool{RunningVal: true}
	}
	return m.Tool, nil
}

// MockDependenciesBuilder helps create mock dependencies for tests
type MockDependenciesBuilder struct {
	deps *Dependencies
}

// NewMockDeps creates a new MockDependenciesBuilder with sensible defaults
func NewMockDeps() *MockDependenciesBuilder {
	return &MockDependenciesBuilder{
		deps: &Dependencies{
			ConfigLoader:   &MockConfigLoader{Cfg: config.New()},
			RootChecker:    &MockRootChecker{IsRoot: true},
			StdinReader:    input.NewStringReader(),
			PasswordReader: &input.StaticPasswordReader{Passwords: []string{"secret"}},
			Detector:       &MockDetector{},
			Executor:       &executor.MockExecutor{},
			PortChecker:    &ports.StaticChecker{},
			Installer:      &MockInstallerFactory{},
			Materializer:   &realMaterializerFactory{},
			Provisioner:    &MockProvisionerFactory{},
			Scheduler:      &MockSchedulerFactory{},
			Compose:        &MockComposeResolver{},
		},
	}
}

// WithConfig sets the config for the mock
func (b *MockDependenciesBuilder) WithConfig(cfg *config.Config) *MockDependenciesBuilder {
	b.deps.ConfigLoader = &MockConfigLoader{Cfg: cfg}
	return b
}

// WithRootAccess sets whether root access is available
func (b *MockDependenciesBuilder) WithRootAccess(isRoot bool) *MockDependenciesBuilder {
	b.deps.RootChecker = &MockRootChecker{IsRoot: isRoot}
	return b
}

// WithStdinInput sets the line-oriented stdin answers for the mock
func (b *MockDependenciesBuilder) WithStdinInput(lines ...string) *MockDependenciesBuilder {
	b.deps.StdinReader = input.NewStringReader(lines...)
	return b
}

// WithPasswords sets the hidden password answers for the mock
func (b *MockDependenciesBuilder) WithPasswords(passwords ...string) *MockDependenciesBuilder {
	b.deps.PasswordReader = &input.StaticPasswordReader{Passwords: passwords}
	return b
}

// WithDistro sets the detected distribution
func (b *MockDependenciesBuilder) WithDistro(info distro.Info) *MockDependenciesBuilder {
	b.deps.Detector = &MockDetector{Info: info}
	return b
}

// WithBusyPorts marks the given ports as in use
func (b *MockDependenciesBuilder) WithBusyPorts(busy ...int) *MockDependenciesBuilder {
	bound := make(map[int]bool, len(busy))
	for _, p := range busy {
		bound[p] = true
	}
	b.deps.PortChecker = &ports.StaticChecker{Bound: bound}
	return b
}

// WithInstaller sets a custom installer
func (b *MockDependenciesBuilder) WithInstaller(inst *MockInstaller) *MockDependenciesBuilder {
	b.deps.Installer = &MockInstallerFactory{Installer: inst}
	return b
}

// WithProvisioner sets a custom provisioner
func (b *MockDependenciesBuilder) WithProvisioner(prov *MockProvisioner) *MockDependenciesBuilder {
	b.deps.Provisioner = &MockProvisionerFactory{Provisioner: prov}
	return b
}

// WithComposeError makes compose resolution fail
func (b *MockDependenciesBuilder) WithComposeError(err error) *MockDependenciesBuilder {
	b.deps.Compose = &MockComposeResolver{Err: err}
	return b
}

// Build returns the configured Dependencies
func (b *MockDependenciesBuilder) Build() *Dependencies {
	return b.deps
}

// errNotFound is a generic miss for LookPath-style mocks in tests
var errNotFound = errors.New("not found")
