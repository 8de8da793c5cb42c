package installer

import (
	"errors"
	"strings"
	"testing"

	"github.com/ksyq12/wpstack/internal/distro"
	wperrors "github.com/ksyq12/wpstack/internal/errors"
	"github.com/ksyq12/wpstack/internal/executor"
)

// notInstalled makes LookPath fail for everything, forcing full installs.
func notInstalled(file string) (string, error) {
	return "", errors.New("not found")
}

func TestDockerCommands_TableCompleteness(t *testing.T) {
	supported := []string{
		"ubuntu", "debian", "linuxmint", "pop",
		"centos", "rhel", "rocky", "almalinux",
		"fedora", "opensuse-leap", "sles", "arch", "manjaro",
	}

	for _, id := range supported {
		t.Run(id, func(t *testing.T) {
			commands, ok := DockerCommands(distro.Info{ID: id})
			if !ok {
				t.Fatalf("expected install commands for %s", id)
			}
			if len(commands) == 0 {
				t.Fatalf("empty command sequence for %s", id)
			}
		})
	}

	for _, id := range []string{"solaris", "unknown", ""} {
		t.Run("unsupported "+id, func(t *testing.T) {
			if _, ok := DockerCommands(distro.Info{ID: id}); ok {
				t.Errorf("expected no commands for %q", id)
			}
		})
	}
}

func TestCertbotCommands_TableCompleteness(t *testing.T) {
	for _, id := range []string{"ubuntu", "centos", "fedora", "sles", "arch"} {
		commands, ok := CertbotCommands(distro.Info{ID: id})
		if !ok || len(commands) == 0 {
			t.Errorf("expected install commands for %s", id)
		}
	}
	if _, ok := CertbotCommands(distro.Info{ID: "solaris"}); ok {
		t.Error("expected no certbot commands for solaris")
	}
}

func TestDockerCommands_DebianRepoSelection(t *testing.T) {
	// Mint and Pop track Ubuntu archives; Debian keeps its own.
	for id, wantRepo := range map[string]string{
		"ubuntu":    "linux/ubuntu",
		"linuxmint": "linux/ubuntu",
		"pop":       "linux/ubuntu",
		"debian":    "linux/debian",
	} {
		commands, ok := DockerCommands(distro.Info{ID: id})
		if !ok {
			t.Fatalf("expected commands for %s", id)
		}
		joined := ""
		for _, cmd := range commands {
			joined += strings.Join(cmd, " ") + "\n"
		}
		if !strings.Contains(joined, wantRepo) {
			t.Errorf("%s: expected repo %s in commands:\n%s", id, wantRepo, joined)
		}
	}
}

func TestInstallDocker_RunsSequenceAndPostInstall(t *testing.T) {
	t.Setenv("SUDO_USER", "")

	mock := &executor.MockExecutor{LookPathFunc: notInstalled}
	inst := New(distro.Info{ID: "ubuntu", Version: "24.04"}, mock)

	if err := inst.InstallDocker(); err != nil {
		t.Fatalf("InstallDocker failed: %v", err)
	}

	var names []string
	for _, c := range mock.Calls {
		names = append(names, c.Name+" "+strings.Join(c.Args, " "))
	}
	joined := strings.Join(names, "\n")

	for _, want := range []string{
		"apt-get update",
		"apt-get install -y docker-ce docker-ce-cli containerd.io docker-compose-plugin",
		"systemctl start docker",
		"systemctl enable docker",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing command %q in:\n%s", want, joined)
		}
	}
}

func TestInstallDocker_AlreadyInstalledSkipsPackages(t *testing.T) {
	t.Setenv("SUDO_USER", "")

	mock := &executor.MockExecutor{} // every LookPath succeeds
	inst := New(distro.Info{ID: "ubuntu"}, mock)

	if err := inst.InstallDocker(); err != nil {
		t.Fatalf("InstallDocker failed: %v", err)
	}

	for _, c := range mock.Calls {
		if c.Name == "apt-get" {
			t.Errorf("package install ran despite docker being present: %v", c)
		}
	}
}

func TestInstallDocker_UnsupportedDistroIsNonFatal(t *testing.T) {
	mock := &executor.MockExecutor{LookPathFunc: notInstalled}
	inst := New(distro.Info{ID: "solaris"}, mock)

	if err := inst.InstallDocker(); err != nil {
		t.Fatalf("unsupported distro must not be fatal for docker: %v", err)
	}
	// No package manager or systemctl calls should have been made.
	if len(mock.Calls) != 0 {
		t.Errorf("unexpected commands for unsupported distro: %v", mock.Calls)
	}
}

func TestInstallDocker_FailureAborts(t *testing.T) {
	t.Setenv("SUDO_USER", "")

	mock := &executor.MockExecutor{
		LookPathFunc: notInstalled,
		StreamFunc: func(name string, args ...string) error {
			if name == "apt-get" && len(args) > 0 && args[0] == "update" {
				return errors.New("exit status 100")
			}
			return nil
		},
	}
	inst := New(distro.Info{ID: "ubuntu"}, mock)

	err := inst.InstallDocker()
	if err == nil {
		t.Fatal("expected fatal error on package manager failure")
	}
	var se *wperrors.SetupError
	if !wperrors.As(err, &se) || se.Code != wperrors.ErrCodeExternal {
		t.Errorf("expected EXTERNAL error, got %v", err)
	}
}

func TestEnsureDockerGroup_Idempotent(t *testing.T) {
	t.Setenv("SUDO_USER", "deploy")

	t.Run("already a member", func(t *testing.T) {
		mock := &executor.MockExecutor{
			ExecuteFunc: func(name string, args ...string) ([]byte, error) {
				if name == "id" {
					return []byte("deploy docker sudo\n"), nil
				}
				return []byte(""), nil
			},
		}
		inst := New(distro.Info{ID: "ubuntu"}, mock)

		if err := inst.ensureDockerGroup(); err != nil {
			t.Fatalf("ensureDockerGroup failed: %v", err)
		}
		for _, c := range mock.Calls {
			if c.Name == "usermod" {
				t.Error("usermod ran despite existing membership")
			}
		}
	})

	t.Run("not yet a member", func(t *testing.T) {
		mock := &executor.MockExecutor{
			ExecuteFunc: func(name string, args ...string) ([]byte, error) {
				if name == "id" {
					return []byte("deploy sudo\n"), nil
				}
				return []byte(""), nil
			},
		}
		inst := New(distro.Info{ID: "ubuntu"}, mock)

		if err := inst.ensureDockerGroup(); err != nil {
			t.Fatalf("ensureDockerGroup failed: %v", err)
		}
		found := false
		for _, c := range mock.Calls {
			if c.Name == "usermod" && strings.Join(c.Args, " ") == "-aG docker deploy" {
				found = true
			}
		}
		if !found {
			t.Error("expected usermod -aG docker deploy")
		}
	})
}

func TestEnsureCompose_FallbackInstall(t *testing.T) {
	mock := &executor.MockExecutor{
		LookPathFunc: notInstalled,
		ExecuteFunc: func(name string, args ...string) ([]byte, error) {
			return nil, errors.New("no compose plugin")
		},
		StreamFunc: func(name string, args ...string) error {
			return nil
		},
	}
	inst := New(distro.Info{ID: "ubuntu"}, mock)

	if err := inst.EnsureCompose(); err != nil {
		t.Fatalf("EnsureCompose failed: %v", err)
	}

	var sawCurl, sawChmod bool
	for _, c := range mock.Calls {
		if c.Name == "curl" {
			sawCurl = true
		}
		if c.Name == "chmod" {
			sawChmod = true
		}
	}
	if !sawCurl || !sawChmod {
		t.Error("expected standalone docker-compose download and chmod")
	}
}

func TestEnsureCompose_PluginPresent(t *testing.T) {
	mock := &executor.MockExecutor{} // docker compose version succeeds
	inst := New(distro.Info{ID: "ubuntu"}, mock)

	if err := inst.EnsureCompose(); err != nil {
		t.Fatalf("EnsureCompose failed: %v", err)
	}
	for _, c := range mock.Calls {
		if c.Name == "curl" {
			t.Error("fallback install ran despite plugin being available")
		}
	}
}

func TestInstallCertbot_UnsupportedDistroIsFatal(t *testing.T) {
	mock := &executor.MockExecutor{LookPathFunc: notInstalled}
	inst := New(distro.Info{ID: "solaris"}, mock)

	err := inst.InstallCertbot()
	if err == nil {
		t.Fatal("unsupported distro must be fatal for certbot")
	}
	if !wperrors.Is(err, wperrors.ErrUnsupportedDistro) {
		t.Errorf("expected ErrUnsupportedDistro, got %v", err)
	}
}

func TestInstallCertbot_RHELInstallsEPELFirst(t *testing.T) {
	mock := &executor.MockExecutor{LookPathFunc: notInstalled}
	inst := New(distro.Info{ID: "rocky"}, mock)

	if err := inst.InstallCertbot(); err != nil {
		t.Fatalf("InstallCertbot failed: %v", err)
	}

	var yumCalls []string
	for _, c := range mock.Calls {
		if c.Name == "yum" {
			yumCalls = append(yumCalls, strings.Join(c.Args, " "))
		}
	}
	if len(yumCalls) != 2 || !strings.Contains(yumCalls[0], "epel-release") || !strings.Contains(yumCalls[1], "certbot") {
		t.Errorf("expected epel-release then certbot, got %v", yumCalls)
	}
}

func TestInstallCertbot_AlreadyInstalled(t *testing.T) {
	mock := &executor.MockExecutor{} // LookPath succeeds
	inst := New(distro.Info{ID: "solaris"}, mock)

	// Even on an unsupported distro, a pre-installed certbot short-circuits.
	if err := inst.InstallCertbot(); err != nil {
		t.Fatalf("pre-installed certbot should short-circuit: %v", err)
	}
}
