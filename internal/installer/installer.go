// Package installer maps a detected distribution onto the package-manager
// command sequences that install Docker and Certbot.
//
// The dispatch is table-driven per distribution family so it can be tested
// without touching a real package database. Both installers short-circuit to
// a no-op when the tool is already on PATH. An unrecognized family degrades
// differently per tool: Docker installation continues with a warning
// (assuming a pre-installed daemon), Certbot installation fails the run.
package installer

import (
	"fmt"
	"os"
	"strings"

	"github.com/ksyq12/wpstack/internal/distro"
	"github.com/ksyq12/wpstack/internal/errors"
	"github.com/ksyq12/wpstack/internal/executor"
	"github.com/ksyq12/wpstack/internal/logger"
	"github.com/ksyq12/wpstack/internal/output"
)

// composeFallbackURL is the standalone release installed when neither the
// compose plugin nor a docker-compose binary can be resolved.
const composeFallbackURL = "https://github.com/docker/compose/releases/download/v2.29.2/docker-compose-linux-x86_64"

// Installer runs distribution-specific installation sequences.
type Installer struct {
	dist distro.Info
	exec executor.CommandExecutor
}

// New creates an Installer for the detected distribution.
func New(dist distro.Info, exec executor.CommandExecutor) *Installer {
	return &Installer{dist: dist, exec: exec}
}

// aptRepoID maps Debian-family ids onto the upstream Docker repo path.
// Mint and Pop!_OS track Ubuntu package archives.
func aptRepoID(id string) string {
	switch id {
	case "debian":
		return "debian"
	default:
		return "ubuntu"
	}
}

// DockerCommands returns the ordered install sequence for the family, or
// false for an unrecognized family.
func DockerCommands(dist distro.Info) ([][]string, bool) {
	switch dist.Family() {
	case distro.FamilyDebian:
		repo := aptRepoID(dist.ID)
		return [][]string{
			{"apt-get", "update"},
			{"apt-get", "install", "-y", "ca-certificates", "curl", "gnupg", "lsb-release"},
			{"install", "-m", "0755", "-d", "/etc/apt/keyrings"},
			{"sh", "-c", fmt.Sprintf("curl -fsSL https://download.docker.com/linux/%s/gpg -o /etc/apt/keyrings/docker.asc", repo)},
			{"sh", "-c", fmt.Sprintf(`echo "deb [arch=$(dpkg --print-architecture) signed-by=/etc/apt/keyrings/docker.asc] https://download.docker.com/linux/%s $(lsb_release -cs) stable" > /etc/apt/sources.list.d/docker.list`, repo)},
			{"apt-get", "update"},
			{"apt-get", "install", "-y", "docker-ce", "docker-ce-cli", "containerd.io", "docker-compose-plugin"},
		}, true
	case distro.FamilyRHEL:
		return [][]string{
			{"yum", "install", "-y", "yum-utils"},
			{"yum-config-manager", "--add-repo", "https://download.docker.com/linux/centos/docker-ce.repo"},
			{"yum", "install", "-y", "docker-ce", "docker-ce-cli", "containerd.io", "docker-compose-plugin"},
		}, true
	case distro.FamilyFedora:
		return [][]string{
			{"dnf", "-y", "install", "dnf-plugins-core"},
			{"dnf", "config-manager", "--add-repo", "https://download.docker.com/linux/fedora/docker-ce.repo"},
			{"dnf", "install", "-y", "docker-ce", "docker-ce-cli", "containerd.io", "docker-compose-plugin"},
		}, true
	case distro.FamilySUSE:
		return [][]string{
			{"zypper", "--non-interactive", "install", "docker", "docker-compose"},
		}, true
	case distro.FamilyArch:
		return [][]string{
			{"pacman", "-S", "--noconfirm", "docker", "docker-compose"},
		}, true
	default:
		return nil, false
	}
}

// CertbotCommands returns the ordered install sequence for the family, or
// false for an unrecognized family.
func CertbotCommands(dist distro.Info) ([][]string, bool) {
	switch dist.Family() {
	case distro.FamilyDebian:
		return [][]string{
			{"apt-get", "update"},
			{"apt-get", "install", "-y", "certbot"},
		}, true
	case distro.FamilyRHEL:
		return [][]string{
			{"yum", "install", "-y", "epel-release"},
			{"yum", "install", "-y", "certbot"},
		}, true
	case distro.FamilyFedora:
		return [][]string{
			{"dnf", "install", "-y", "certbot"},
		}, true
	case distro.FamilySUSE:
		return [][]string{
			{"zypper", "--non-interactive", "install", "certbot"},
		}, true
	case distro.FamilyArch:
		return [][]string{
			{"pacman", "-S", "--noconfirm", "certbot"},
		}, true
	default:
		return nil, false
	}
}

// runSequence streams each command, failing fast on the first non-zero exit.
func (i *Installer) runSequence(commands [][]string) error {
	for _, cmd := range commands {
		logger.Debug("Running %s", strings.Join(cmd, " "))
		if err := i.exec.Stream(cmd[0], cmd[1:]...); err != nil {
			return errors.Wrap(errors.ErrCodeExternal, strings.Join(cmd, " ")+" failed", err)
		}
	}
	return nil
}

// InstallDocker installs the Docker engine for the detected distribution,
// starts and enables the service, grants the invoking user access, and
// ensures a compose tool is resolvable.
//
// An unrecognized distribution is non-fatal here: installation is skipped
// with guidance and the run continues assuming a pre-installed daemon.
func (i *Installer) InstallDocker() error {
	if _, err := i.exec.LookPath("docker"); err == nil {
		output.Info("Docker is already installed, skipping installation")
		return i.postInstallDocker()
	}

	commands, ok := DockerCommands(i.dist)
	if !ok {
		output.Warn("Unsupported distribution %q: skipping Docker installation", i.dist.ID)
		output.Warn("Install Docker manually if it is not already present, then re-run")
		return nil
	}

	output.Info("Installing Docker for %s...", i.dist.ID)
	if err := i.runSequence(commands); err != nil {
		return err
	}

	return i.postInstallDocker()
}

// postInstallDocker ensures the daemon is up, the invoking user can talk to
// it, and a compose tool exists.
func (i *Installer) postInstallDocker() error {
	for _, cmd := range [][]string{
		{"systemctl", "start", "docker"},
		{"systemctl", "enable", "docker"},
	} {
		if err := i.exec.Stream(cmd[0], cmd[1:]...); err != nil {
			return errors.Wrap(errors.ErrCodeExternal, strings.Join(cmd, " ")+" failed", err)
		}
	}

	if err := i.ensureDockerGroup(); err != nil {
		return err
	}
	return i.EnsureCompose()
}

// invokingUser returns the user that ran sudo, falling back to root.
func invokingUser() string {
	if u := os.Getenv("SUDO_USER"); u != "" {
		return u
	}
	return "root"
}

// ensureDockerGroup adds the invoking user to the docker group unless they
// are already a member.
func (i *Installer) ensureDockerGroup() error {
	user := invokingUser()
	if user == "root" {
		return nil
	}

	out, err := i.exec.Execute("id", "-nG", user)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExternal, "failed to read group membership for "+user, err)
	}
	for _, g := range strings.Fields(string(out)) {
		if g == "docker" {
			logger.Debug("User %s is already in the docker group", user)
			return nil
		}
	}

	output.Info("Adding %s to the docker group...", user)
	if _, err := i.exec.Execute("usermod", "-aG", "docker", user); err != nil {
		return errors.Wrap(errors.ErrCodeExternal, "usermod -aG docker failed", err)
	}
	return nil
}

// EnsureCompose verifies a compose invocation exists, installing the pinned
// standalone release when neither the plugin nor the binary is found.
func (i *Installer) EnsureCompose() error {
	if _, err := i.exec.Execute("docker", "compose", "version"); err == nil {
		return nil
	}
	if _, err := i.exec.LookPath("docker-compose"); err == nil {
		return nil
	}

	output.Info("Installing standalone docker-compose...")
	for _, cmd := range [][]string{
		{"curl", "-fsSL", composeFallbackURL, "-o", "/usr/local/bin/docker-compose"},
		{"chmod", "+x", "/usr/local/bin/docker-compose"},
	} {
		if err := i.exec.Stream(cmd[0], cmd[1:]...); err != nil {
			return errors.Wrap(errors.ErrCodeExternal, "docker-compose fallback install failed", err)
		}
	}
	return nil
}

// InstallCertbot installs certbot for the detected distribution.
//
// Unlike Docker, an unrecognized distribution is fatal here: without certbot
// the certificate provisioning step cannot proceed at all.
func (i *Installer) InstallCertbot() error {
	if _, err := i.exec.LookPath("certbot"); err == nil {
		output.Info("Certbot is already installed, skipping installation")
		return nil
	}

	commands, ok := CertbotCommands(i.dist)
	if !ok {
		output.Error("Unsupported distribution %q: cannot install certbot", i.dist.ID)
		output.Print("Install certbot manually (https://certbot.eff.org) and re-run")
		return errors.Unsupported(i.dist.ID)
	}

	output.Info("Installing Certbot for %s...", i.dist.ID)
	return i.runSequence(commands)
}
