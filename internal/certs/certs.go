// Package certs obtains Let's Encrypt certificates through the external
// certbot client and installs the resulting material into a site's ssl
// directory under canonical names.
//
// certbot runs in standalone mode: it binds port 80 itself to answer the
// HTTP-01 challenge, so any existing listener must be stopped first. The
// ACME protocol itself is never implemented here.
package certs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ksyq12/wpstack/internal/distro"
	"github.com/ksyq12/wpstack/internal/errors"
	"github.com/ksyq12/wpstack/internal/executor"
	"github.com/ksyq12/wpstack/internal/logger"
	"github.com/ksyq12/wpstack/internal/output"
	"github.com/ksyq12/wpstack/internal/site"
)

// Bundle holds the installed certificate material for a site.
type Bundle struct {
	CertPath string // world-readable certificate
	KeyPath  string // owner-only private key
	CAPath   string // world-readable chain
}

// Permission bits applied to installed material.
const (
	certMode = os.FileMode(0644)
	keyMode  = os.FileMode(0600)
)

// Provisioner drives certbot and installs its output.
type Provisioner struct {
	exec    executor.CommandExecutor
	liveDir string // certbot certificate store, normally /etc/letsencrypt/live
}

// NewProvisioner creates a Provisioner reading from the given certbot live
// directory.
func NewProvisioner(exec executor.CommandExecutor, liveDir string) *Provisioner {
	return &Provisioner{exec: exec, liveDir: liveDir}
}

// IsInstalled checks whether certbot is resolvable.
func (p *Provisioner) IsInstalled() bool {
	_, err := p.exec.LookPath("certbot")
	return err == nil
}

// conflictServices names the host web servers stopped per family before the
// standalone challenge claims port 80.
var conflictServices = map[distro.Family][]string{
	distro.FamilyDebian: {"apache2", "nginx"},
	distro.FamilyRHEL:   {"httpd", "nginx"},
	distro.FamilyFedora: {"httpd", "nginx"},
	distro.FamilySUSE:   {"apache2", "nginx"},
	distro.FamilyArch:   {"httpd", "nginx"},
}

// StopConflictingServices stops the common host web servers for the family
// so certbot can bind port 80. Individual stop failures are tolerated: the
// service may simply not exist on this host. Returns false when the family
// is unrecognized and the operator must pause the listener manually.
func (p *Provisioner) StopConflictingServices(family distro.Family) bool {
	services, ok := conflictServices[family]
	if !ok {
		output.Warn("Unknown distribution family: stop the service holding port 80 manually, then re-run")
		return false
	}
	for _, svc := range services {
		if out, err := p.exec.Execute("systemctl", "stop", svc); err != nil {
			logger.Debug("systemctl stop %s: %v (%s)", svc, err, out)
			continue
		}
		output.Info("Stopped %s", svc)
	}
	return true
}

// Issue runs certbot in standalone mode for the domain and its www alias.
func (p *Provisioner) Issue(domain, email string) error {
	args := []string{
		"certonly",
		"--standalone",
		"-d", domain,
		"-d", "www." + domain,
		"--email", email,
		"--agree-tos",
		"--non-interactive",
		"--no-eff-email",
	}

	output.Info("Requesting certificate for %s and www.%s...", domain, domain)
	if out, err := p.exec.Execute("certbot", args...); err != nil {
		return errors.Wrap(errors.ErrCodeExternal, fmt.Sprintf("certbot failed: %s", out), err)
	}
	return nil
}

// Renew runs certbot's renewal pass for every certificate it manages.
// certbot itself decides which certificates are close enough to expiry.
func (p *Provisioner) Renew() error {
	if out, err := p.exec.Execute("certbot", "renew", "--quiet"); err != nil {
		return errors.Wrap(errors.ErrCodeExternal, fmt.Sprintf("certbot renew failed: %s", out), err)
	}
	return nil
}

// livePath returns the certbot store path for an artifact of the domain.
func (p *Provisioner) livePath(domain, file string) string {
	return filepath.Join(p.liveDir, domain, file)
}

// Verify checks the postcondition that certbot actually produced a store
// entry for the domain. This is the one explicit check on an external
// tool's output beyond its exit code.
func (p *Provisioner) Verify(domain string) error {
	if _, err := os.Stat(p.livePath(domain, "fullchain.pem")); err != nil {
		return errors.Postcondition("certificate not found after issuance", domain)
	}
	return nil
}

// Install copies the issued material into the site ssl directory under
// canonical names and applies the permission invariant: the private key is
// owner read/write only, certificate and chain stay world-readable.
func (p *Provisioner) Install(domain string, s *site.Site) (*Bundle, error) {
	bundle := &Bundle{
		CertPath: filepath.Join(s.SSLDir(), site.CertFileName),
		KeyPath:  filepath.Join(s.SSLDir(), site.KeyFileName),
		CAPath:   filepath.Join(s.SSLDir(), site.CAFileName),
	}

	copies := []struct {
		src  string
		dst  string
		mode os.FileMode
	}{
		{p.livePath(domain, "fullchain.pem"), bundle.CertPath, certMode},
		{p.livePath(domain, "privkey.pem"), bundle.KeyPath, keyMode},
		{p.livePath(domain, "chain.pem"), bundle.CAPath, certMode},
	}

	for _, c := range copies {
		if err := copyFile(c.src, c.dst, c.mode); err != nil {
			return nil, errors.WrapSite(errors.ErrCodeInternal, domain, err)
		}
	}

	logger.InfoFields("Installed certificate material", map[string]interface{}{
		"domain": domain,
		"dir":    s.SSLDir(),
	})
	return bundle, nil
}

// Provision executes the full issuance sequence: issue, verify, install.
// Port conflict resolution and compose shutdown are interactive decisions
// owned by the orchestrator and happen before this call.
func (p *Provisioner) Provision(domain, email string, s *site.Site) (*Bundle, error) {
	if err := p.Issue(domain, email); err != nil {
		return nil, err
	}
	if err := p.Verify(domain); err != nil {
		return nil, err
	}
	return p.Install(domain, s)
}

// copyFile copies src to dst, resolving symlinks (the certbot live directory
// is a tree of symlinks into archive/), and sets the final mode explicitly.
func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	// OpenFile mode is masked by umask and ignored for pre-existing files.
	return os.Chmod(dst, mode)
}
