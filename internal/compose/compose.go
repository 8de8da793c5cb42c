// Package compose drives the Docker Compose tooling for a provisioned site.
//
// Modern Docker ships compose as the `docker compose` plugin; older hosts
// carry a standalone `docker-compose` binary. Resolution prefers the plugin
// and falls back to the binary; neither being present is an error callers
// decide how to handle.
package compose

import (
	"strings"

	"github.com/ksyq12/wpstack/internal/errors"
	"github.com/ksyq12/wpstack/internal/executor"
)

// Tool invokes compose commands against a site directory.
type Tool struct {
	exec executor.CommandExecutor

	// command and baseArgs hold the resolved invocation, e.g.
	// ("docker", ["compose"]) or ("docker-compose", []).
	command  string
	baseArgs []string
}

// Runner is the compose surface consumed by the provisioner and orchestrator.
type Runner interface {
	Up(dir string) error
	Down(dir string) error
	Restart(dir, service string) error
	Running(dir string) (bool, error)
}

// Resolve locates a usable compose invocation. Returns an error when neither
// the docker plugin nor a standalone binary is available.
func Resolve(exec executor.CommandExecutor) (*Tool, error) {
	if _, err := exec.LookPath("docker"); err == nil {
		// Plugin availability is probed with `docker compose version`.
		if _, err := exec.Execute("docker", "compose", "version"); err == nil {
			return &Tool{exec: exec, command: "docker", baseArgs: []string{"compose"}}, nil
		}
	}
	if _, err := exec.LookPath("docker-compose"); err == nil {
		return &Tool{exec: exec, command: "docker-compose"}, nil
	}
	return nil, errors.Wrap(errors.ErrCodeExternal, "no compose tool found", nil)
}

// Command returns the resolved command name (for user-facing messages).
func (t *Tool) Command() string {
	if len(t.baseArgs) > 0 {
		return t.command + " " + strings.Join(t.baseArgs, " ")
	}
	return t.command
}

// run invokes compose in the given project directory.
func (t *Tool) run(dir string, args ...string) error {
	full := append(append([]string{}, t.baseArgs...), "--project-directory", dir)
	full = append(full, args...)
	if err := t.exec.Stream(t.command, full...); err != nil {
		return errors.Wrap(errors.ErrCodeExternal, "compose "+args[0]+" failed", err)
	}
	return nil
}

// Up builds and starts the site's services detached.
func (t *Tool) Up(dir string) error {
	return t.run(dir, "up", "-d", "--build")
}

// Down stops and removes the site's services.
func (t *Tool) Down(dir string) error {
	return t.run(dir, "down")
}

// Restart restarts a single service, leaving the others untouched.
func (t *Tool) Restart(dir, service string) error {
	return t.run(dir, "restart", service)
}

// Running reports whether any service of the project has a running container.
func (t *Tool) Running(dir string) (bool, error) {
	full := append(append([]string{}, t.baseArgs...), "--project-directory", dir, "ps", "--services", "--filter", "status=running")
	out, err := t.exec.Execute(t.command, full...)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeExternal, "compose ps failed", err)
	}
	return strings.TrimSpace(string(out)) != "", nil
}
