package cron

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ksyq12/wpstack/internal/config"
	"github.com/ksyq12/wpstack/internal/executor"
	"github.com/ksyq12/wpstack/internal/site"
)

func weeklySchedule() config.Schedule {
	return config.Schedule{Minute: 0, Hour: 3, DayOfWeek: 1}
}

func newSite(t *testing.T) *site.Site {
	t.Helper()
	base := filepath.Join(t.TempDir(), "mysite")
	if err := os.MkdirAll(base, 0755); err != nil {
		t.Fatal(err)
	}
	return &site.Site{Name: "mysite", BaseDir: base}
}

func TestEntry(t *testing.T) {
	s := NewScheduler(&executor.MockExecutor{}, weeklySchedule())
	st := &site.Site{Name: "mysite", BaseDir: "/opt/wpstack/mysite"}

	got := s.Entry(st)
	want := "0 3 * * 1 /opt/wpstack/mysite/renew-ssl.sh"
	if got != want {
		t.Errorf("Entry() = %q, want %q", got, want)
	}
}

func TestWriteRenewScript(t *testing.T) {
	st := newSite(t)
	s := NewScheduler(&executor.MockExecutor{}, weeklySchedule())

	if err := s.WriteRenewScript("example.com", st); err != nil {
		t.Fatalf("WriteRenewScript failed: %v", err)
	}

	data, err := os.ReadFile(st.RenewScript())
	if err != nil {
		t.Fatalf("script not written: %v", err)
	}
	content := string(data)

	for _, want := range []string{
		"certbot renew --quiet",
		"/etc/letsencrypt/live/example.com",
		"certificate.crt",
		"private.key",
		"ca_bundle.crt",
		"chmod 600",
		"restart wordpress",
		st.BaseDir,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("renewal script missing %q", want)
		}
	}

	info, err := os.Stat(st.RenewScript())
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0111 == 0 {
		t.Errorf("renewal script not executable: %v", info.Mode())
	}
}

func TestRegister_EmptyCrontab(t *testing.T) {
	mock := &executor.MockExecutor{
		ExecuteFunc: func(name string, args ...string) ([]byte, error) {
			if len(args) > 0 && args[0] == "-l" {
				return []byte("no crontab for root"), errors.New("exit status 1")
			}
			return nil, nil
		},
	}
	s := NewScheduler(mock, weeklySchedule())
	st := &site.Site{Name: "mysite", BaseDir: "/opt/wpstack/mysite"}

	if err := s.Register(st); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	install := findCall(t, mock.Calls, "crontab", "-")
	want := "0 3 * * 1 /opt/wpstack/mysite/renew-ssl.sh\n"
	if install.Stdin != want {
		t.Errorf("installed table %q, want %q", install.Stdin, want)
	}
}

func TestRegister_AppendsWithoutDeduplicating(t *testing.T) {
	existing := "30 2 * * * /usr/local/bin/logrotate-extra\n" +
		"0 3 * * 1 /opt/wpstack/mysite/renew-ssl.sh\n"
	mock := &executor.MockExecutor{
		ExecuteFunc: func(name string, args ...string) ([]byte, error) {
			if len(args) > 0 && args[0] == "-l" {
				return []byte(existing), nil
			}
			return nil, nil
		},
	}
	s := NewScheduler(mock, weeklySchedule())
	st := &site.Site{Name: "mysite", BaseDir: "/opt/wpstack/mysite"}

	if err := s.Register(st); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	install := findCall(t, mock.Calls, "crontab", "-")
	if !strings.HasPrefix(install.Stdin, existing) {
		t.Errorf("existing entries not preserved:\n%s", install.Stdin)
	}
	if n := strings.Count(install.Stdin, "renew-ssl.sh"); n != 2 {
		t.Errorf("expected entry appended alongside the existing one, found %d occurrences", n)
	}
}

func TestRegister_MissingTrailingNewline(t *testing.T) {
	mock := &executor.MockExecutor{
		ExecuteFunc: func(name string, args ...string) ([]byte, error) {
			if len(args) > 0 && args[0] == "-l" {
				return []byte("@reboot /usr/local/bin/warmup"), nil
			}
			return nil, nil
		},
	}
	s := NewScheduler(mock, weeklySchedule())
	st := &site.Site{Name: "mysite", BaseDir: "/opt/wpstack/mysite"}

	if err := s.Register(st); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	install := findCall(t, mock.Calls, "crontab", "-")
	if strings.Contains(install.Stdin, "warmup0 3") {
		t.Errorf("entries ran together without a newline:\n%s", install.Stdin)
	}
	if !strings.HasSuffix(install.Stdin, "renew-ssl.sh\n") {
		t.Errorf("table should end with the new entry and a newline:\n%s", install.Stdin)
	}
}

func TestRegister_InstallFailure(t *testing.T) {
	mock := &executor.MockExecutor{
		ExecuteFunc: func(name string, args ...string) ([]byte, error) {
			if len(args) > 0 && args[0] == "-" {
				return []byte("crontab: installing new crontab: permission denied"), errors.New("exit status 1")
			}
			return nil, nil
		},
	}
	s := NewScheduler(mock, weeklySchedule())
	st := &site.Site{Name: "mysite", BaseDir: "/opt/wpstack/mysite"}

	if err := s.Register(st); err == nil {
		t.Fatal("expected error when crontab install fails")
	}
}

func TestSchedule_EndToEnd(t *testing.T) {
	st := newSite(t)
	mock := &executor.MockExecutor{}
	s := NewScheduler(mock, weeklySchedule())

	if err := s.Schedule("example.com", st); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	if _, err := os.Stat(st.RenewScript()); err != nil {
		t.Errorf("renewal script not written: %v", err)
	}
	findCall(t, mock.Calls, "crontab", "-")
}

func findCall(t *testing.T, calls []executor.CommandCall, name, firstArg string) executor.CommandCall {
	t.Helper()
	for _, c := range calls {
		if c.Name == name && len(c.Args) > 0 && c.Args[0] == firstArg {
			return c
		}
	}
	t.Fatalf("no %s %s call recorded in %+v", name, firstArg, calls)
	return executor.CommandCall{}
}
