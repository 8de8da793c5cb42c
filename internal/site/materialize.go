package site

import (
	"bytes"
	"embed"
	"os"
	"path/filepath"
	"text/template"

	"github.com/ksyq12/wpstack/internal/errors"
	"github.com/ksyq12/wpstack/internal/logger"
)

//go:embed templates/*.tmpl
var templates embed.FS

// templateData is the substitution context for all generated artifacts.
// Only literal values, no conditional logic in the templates.
type templateData struct {
	Domain     string
	DBUser     string
	DBPassword string
	DBName     string
	SiteName   string
	BaseDir    string
}

// Materializer writes a site environment under a fixed parent directory.
type Materializer struct {
	parentDir string
}

// NewMaterializer creates a Materializer rooted at parentDir.
func NewMaterializer(parentDir string) *Materializer {
	return &Materializer{parentDir: parentDir}
}

// BaseDir computes the target directory for a site name.
func (m *Materializer) BaseDir(siteName string) string {
	return filepath.Join(m.parentDir, siteName)
}

// Materialize renders the full artifact set for the given parameters.
// The overwrite decision for a pre-existing directory belongs to the caller;
// this method assumes a confirmed target and overwrites in place. Writes are
// fatal on first failure and leave no partial cleanup behind.
func (m *Materializer) Materialize(p Params) (*Site, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s := &Site{Name: p.SiteName, BaseDir: m.BaseDir(p.SiteName)}
	data := templateData{
		Domain:     p.Domain,
		DBUser:     p.DBUser,
		DBPassword: p.DBPassword,
		DBName:     p.DBName,
		SiteName:   p.SiteName,
		BaseDir:    s.BaseDir,
	}

	for _, dir := range []string{s.BaseDir, s.SSLDir(), s.ApacheConfDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.WrapSite(errors.ErrCodeInternal, p.SiteName, err)
		}
	}

	// name -> relative target path and mode
	artifacts := []struct {
		template string
		target   string
		mode     os.FileMode
	}{
		{"default-ssl.conf.tmpl", filepath.Join(ApacheConfDirName, "default-ssl.conf"), 0644},
		{"000-default.conf.tmpl", filepath.Join(ApacheConfDirName, "000-default.conf"), 0644},
		{"Dockerfile.tmpl", DockerfileName, 0644},
		{"start.sh.tmpl", "start.sh", 0755},
		{"stop.sh.tmpl", "stop.sh", 0755},
		{"restart.sh.tmpl", "restart.sh", 0755},
		{"backup.sh.tmpl", "backup.sh", 0755},
	}

	for _, a := range artifacts {
		content, err := render(a.template, data)
		if err != nil {
			return nil, err
		}
		target := filepath.Join(s.BaseDir, a.target)
		if err := os.WriteFile(target, content, a.mode); err != nil {
			return nil, errors.WrapSite(errors.ErrCodeInternal, p.SiteName, err)
		}
		// WriteFile does not change the mode of a pre-existing file.
		if err := os.Chmod(target, a.mode); err != nil {
			return nil, errors.WrapSite(errors.ErrCodeInternal, p.SiteName, err)
		}
	}

	composeContent, err := renderCompose(p)
	if err != nil {
		return nil, errors.WrapSite(errors.ErrCodeInternal, p.SiteName, err)
	}
	if err := os.WriteFile(s.ComposeFile(), composeContent, 0644); err != nil {
		return nil, errors.WrapSite(errors.ErrCodeInternal, p.SiteName, err)
	}

	logger.InfoFields("Materialized site environment", map[string]interface{}{
		"site": p.SiteName,
		"dir":  s.BaseDir,
	})
	return s, nil
}

// render executes the named embedded template with the substitution data.
func render(name string, data templateData) ([]byte, error) {
	content, err := templates.ReadFile("templates/" + name)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "template not found: "+name, err)
	}

	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to parse template "+name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to render template "+name, err)
	}
	return buf.Bytes(), nil
}
