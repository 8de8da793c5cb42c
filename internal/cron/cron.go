// Package cron schedules unattended certificate renewal through the user's
// crontab. The renewal itself runs as a generated shell script inside the
// site directory so it survives independently of this tool.
package cron

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/ksyq12/wpstack/internal/config"
	"github.com/ksyq12/wpstack/internal/errors"
	"github.com/ksyq12/wpstack/internal/executor"
	"github.com/ksyq12/wpstack/internal/logger"
	"github.com/ksyq12/wpstack/internal/site"
)

//go:embed templates/renew-ssl.sh.tmpl
var templates embed.FS

// Scheduler writes the renewal script and registers it in the crontab.
type Scheduler struct {
	exec     executor.CommandExecutor
	schedule config.Schedule
}

// NewScheduler creates a Scheduler with the given renewal schedule.
func NewScheduler(exec executor.CommandExecutor, schedule config.Schedule) *Scheduler {
	return &Scheduler{exec: exec, schedule: schedule}
}

// renewData is the substitution context for the renewal script.
type renewData struct {
	Domain  string
	BaseDir string
}

// WriteRenewScript materializes the renewal script into the site directory
// and marks it executable.
func (s *Scheduler) WriteRenewScript(domain string, st *site.Site) error {
	raw, err := templates.ReadFile("templates/renew-ssl.sh.tmpl")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "reading renewal template", err)
	}

	tmpl, err := template.New(site.RenewScriptName).Parse(string(raw))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "parsing renewal template", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, renewData{Domain: domain, BaseDir: st.BaseDir}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "rendering renewal script", err)
	}

	path := st.RenewScript()
	if err := os.WriteFile(path, []byte(buf.String()), 0755); err != nil {
		return errors.WrapSite(errors.ErrCodeInternal, st.Name, err)
	}
	// WriteFile's mode is masked by umask.
	if err := os.Chmod(path, 0755); err != nil {
		return errors.WrapSite(errors.ErrCodeInternal, st.Name, err)
	}

	logger.Debug("Wrote renewal script %s", path)
	return nil
}

// Entry returns the crontab line registering the renewal script.
func (s *Scheduler) Entry(st *site.Site) string {
	return fmt.Sprintf("%s %s", s.schedule.CronSpec(), st.RenewScript())
}

// Register appends the renewal entry to the invoking user's crontab. The
// existing table is read with `crontab -l` and written back with the new
// line appended; an empty or absent crontab is treated as a blank table.
// The entry is appended unconditionally, so re-running setup for the same
// site adds a second identical line.
func (s *Scheduler) Register(st *site.Site) error {
	current, err := s.exec.Execute("crontab", "-l")
	if err != nil {
		// `crontab -l` exits non-zero when the user has no crontab yet.
		logger.Debug("crontab -l: %v (assuming empty table)", err)
		current = nil
	}

	table := string(current)
	if table != "" && !strings.HasSuffix(table, "\n") {
		table += "\n"
	}
	table += s.Entry(st) + "\n"

	if out, err := s.exec.ExecuteInput(table, "crontab", "-"); err != nil {
		return errors.Wrap(errors.ErrCodeExternal, fmt.Sprintf("installing crontab: %s", out), err)
	}

	logger.InfoFields("Registered renewal job", map[string]interface{}{
		"site":     st.Name,
		"schedule": s.schedule.CronSpec(),
	})
	return nil
}

// Schedule writes the renewal script and registers it in one step.
func (s *Scheduler) Schedule(domain string, st *site.Site) error {
	if err := s.WriteRenewScript(domain, st); err != nil {
		return err
	}
	return s.Register(st)
}
