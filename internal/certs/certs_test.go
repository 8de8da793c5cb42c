package certs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ksyq12/wpstack/internal/distro"
	wperrors "github.com/ksyq12/wpstack/internal/errors"
	"github.com/ksyq12/wpstack/internal/executor"
	"github.com/ksyq12/wpstack/internal/site"
)

// newLiveDir creates a fake certbot store with material for the domain.
func newLiveDir(t *testing.T, domain string) string {
	t.Helper()
	liveDir := t.TempDir()
	domainDir := filepath.Join(liveDir, domain)
	if err := os.MkdirAll(domainDir, 0755); err != nil {
		t.Fatal(err)
	}
	for name, content := range map[string]string{
		"fullchain.pem": "FULLCHAIN",
		"privkey.pem":   "PRIVKEY",
		"chain.pem":     "CHAIN",
	} {
		if err := os.WriteFile(filepath.Join(domainDir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return liveDir
}

// newSite creates a site directory with an ssl subdirectory.
func newSite(t *testing.T) *site.Site {
	t.Helper()
	s := &site.Site{Name: "mysite", BaseDir: filepath.Join(t.TempDir(), "mysite")}
	if err := os.MkdirAll(s.SSLDir(), 0755); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestIssue_CertbotArguments(t *testing.T) {
	mock := &executor.MockExecutor{}
	p := NewProvisioner(mock, t.TempDir())

	if err := p.Issue("example.com", "admin@example.com"); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if len(mock.Calls) != 1 || mock.Calls[0].Name != "certbot" {
		t.Fatalf("expected one certbot call, got %+v", mock.Calls)
	}

	args := strings.Join(mock.Calls[0].Args, " ")
	for _, want := range []string{
		"certonly",
		"--standalone",
		"-d example.com",
		"-d www.example.com",
		"--email admin@example.com",
		"--agree-tos",
		"--non-interactive",
		"--no-eff-email",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("certbot args missing %q: %s", want, args)
		}
	}
}

func TestIssue_FailurePropagates(t *testing.T) {
	mock := &executor.MockExecutor{
		ExecuteFunc: func(name string, args ...string) ([]byte, error) {
			return []byte("challenge failed"), errors.New("exit status 1")
		},
	}
	p := NewProvisioner(mock, t.TempDir())

	err := p.Issue("example.com", "admin@example.com")
	if err == nil {
		t.Fatal("expected error from failing certbot")
	}
	if !strings.Contains(err.Error(), "challenge failed") {
		t.Errorf("error should carry certbot output: %v", err)
	}
}

func TestRenew_Arguments(t *testing.T) {
	mock := &executor.MockExecutor{}
	p := NewProvisioner(mock, t.TempDir())

	if err := p.Renew(); err != nil {
		t.Fatalf("Renew failed: %v", err)
	}
	if len(mock.Calls) != 1 || mock.Calls[0].Name != "certbot" {
		t.Fatalf("expected one certbot call, got %+v", mock.Calls)
	}
	if got := strings.Join(mock.Calls[0].Args, " "); got != "renew --quiet" {
		t.Errorf("renew args = %q, want %q", got, "renew --quiet")
	}
}

func TestVerify_Postcondition(t *testing.T) {
	t.Run("store entry present", func(t *testing.T) {
		liveDir := newLiveDir(t, "example.com")
		p := NewProvisioner(&executor.MockExecutor{}, liveDir)

		if err := p.Verify("example.com"); err != nil {
			t.Errorf("Verify failed with material present: %v", err)
		}
	})

	t.Run("store entry missing", func(t *testing.T) {
		p := NewProvisioner(&executor.MockExecutor{}, t.TempDir())

		err := p.Verify("example.com")
		if err == nil {
			t.Fatal("expected postcondition error")
		}
		if !wperrors.Is(err, wperrors.ErrCertMissing) {
			t.Errorf("expected ErrCertMissing, got %v", err)
		}
	})
}

func TestInstall_CanonicalNamesAndPermissions(t *testing.T) {
	liveDir := newLiveDir(t, "example.com")
	s := newSite(t)
	p := NewProvisioner(&executor.MockExecutor{}, liveDir)

	bundle, err := p.Install("example.com", s)
	if err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	checks := []struct {
		path    string
		content string
		mode    os.FileMode
	}{
		{bundle.CertPath, "FULLCHAIN", 0644},
		{bundle.KeyPath, "PRIVKEY", 0600},
		{bundle.CAPath, "CHAIN", 0644},
	}
	for _, c := range checks {
		data, err := os.ReadFile(c.path)
		if err != nil {
			t.Fatalf("missing %s: %v", c.path, err)
		}
		if string(data) != c.content {
			t.Errorf("%s: content %q, want %q", c.path, data, c.content)
		}
		info, err := os.Stat(c.path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != c.mode {
			t.Errorf("%s: mode %v, want %v", c.path, info.Mode().Perm(), c.mode)
		}
	}

	if filepath.Base(bundle.CertPath) != "certificate.crt" ||
		filepath.Base(bundle.KeyPath) != "private.key" ||
		filepath.Base(bundle.CAPath) != "ca_bundle.crt" {
		t.Errorf("bundle not installed under canonical names: %+v", bundle)
	}
}

func TestInstall_RefreshTightensPermissions(t *testing.T) {
	// A renewal re-copy must restore the key mode even if the target file
	// already exists with wider permissions.
	liveDir := newLiveDir(t, "example.com")
	s := newSite(t)
	p := NewProvisioner(&executor.MockExecutor{}, liveDir)

	keyPath := filepath.Join(s.SSLDir(), "private.key")
	if err := os.WriteFile(keyPath, []byte("OLD"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := p.Install("example.com", s); err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	info, err := os.Stat(keyPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("refreshed key mode %v, want 0600", info.Mode().Perm())
	}
}

func TestProvision_EndToEnd(t *testing.T) {
	liveDir := newLiveDir(t, "example.com")
	s := newSite(t)
	p := NewProvisioner(&executor.MockExecutor{}, liveDir)

	bundle, err := p.Provision("example.com", "admin@example.com", s)
	if err != nil {
		t.Fatalf("Provision failed: %v", err)
	}
	if bundle == nil || bundle.CertPath == "" {
		t.Fatal("expected populated bundle")
	}
}

func TestProvision_MissingStoreAborts(t *testing.T) {
	// certbot exits 0 but produced nothing.
	s := newSite(t)
	p := NewProvisioner(&executor.MockExecutor{}, t.TempDir())

	_, err := p.Provision("example.com", "admin@example.com", s)
	if !wperrors.Is(err, wperrors.ErrCertMissing) {
		t.Errorf("expected ErrCertMissing, got %v", err)
	}

	// Nothing may be written under ssl/ on the failure path.
	entries, readErr := os.ReadDir(s.SSLDir())
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(entries) != 0 {
		t.Errorf("ssl directory should be empty after aborted provisioning, has %d entries", len(entries))
	}
}

func TestStopConflictingServices(t *testing.T) {
	t.Run("debian family stops apache2 and nginx", func(t *testing.T) {
		mock := &executor.MockExecutor{}
		p := NewProvisioner(mock, t.TempDir())

		if ok := p.StopConflictingServices(distro.FamilyDebian); !ok {
			t.Fatal("expected success for debian family")
		}

		var stopped []string
		for _, c := range mock.Calls {
			if c.Name == "systemctl" && len(c.Args) == 2 && c.Args[0] == "stop" {
				stopped = append(stopped, c.Args[1])
			}
		}
		if len(stopped) != 2 || stopped[0] != "apache2" || stopped[1] != "nginx" {
			t.Errorf("expected [apache2 nginx], got %v", stopped)
		}
	})

	t.Run("rhel family stops httpd", func(t *testing.T) {
		mock := &executor.MockExecutor{}
		p := NewProvisioner(mock, t.TempDir())

		p.StopConflictingServices(distro.FamilyRHEL)

		found := false
		for _, c := range mock.Calls {
			if c.Name == "systemctl" && len(c.Args) == 2 && c.Args[1] == "httpd" {
				found = true
			}
		}
		if !found {
			t.Error("expected systemctl stop httpd")
		}
	})

	t.Run("stop failures tolerated", func(t *testing.T) {
		mock := &executor.MockExecutor{
			ExecuteFunc: func(name string, args ...string) ([]byte, error) {
				return []byte("unit not found"), errors.New("exit status 5")
			},
		}
		p := NewProvisioner(mock, t.TempDir())

		if ok := p.StopConflictingServices(distro.FamilyDebian); !ok {
			t.Error("stop failures must be tolerated")
		}
	})

	t.Run("unknown family requires manual pause", func(t *testing.T) {
		mock := &executor.MockExecutor{}
		p := NewProvisioner(mock, t.TempDir())

		if ok := p.StopConflictingServices(distro.FamilyUnknown); ok {
			t.Error("unknown family should report false")
		}
		if len(mock.Calls) != 0 {
			t.Errorf("no services should be stopped for unknown family: %v", mock.Calls)
		}
	})
}

func TestIsInstalled(t *testing.T) {
	p := NewProvisioner(&executor.MockExecutor{}, t.TempDir())
	if !p.IsInstalled() {
		t.Error("default mock LookPath should report certbot installed")
	}

	missing := &executor.MockExecutor{
		LookPathFunc: func(file string) (string, error) {
			return "", errors.New("not found")
		},
	}
	if NewProvisioner(missing, t.TempDir()).IsInstalled() {
		t.Error("expected IsInstalled false when certbot is absent")
	}
}
