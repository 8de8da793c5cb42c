// Package distro detects the host Linux distribution from release metadata
// files and groups distributions into installation families.
//
// Detection is a priority-ordered fallback chain, not a merge: the first
// release source that exists determines the result. An unrecognized host
// yields ID "unknown", which is not fatal; the installer degrades to its
// default behavior.
package distro

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ksyq12/wpstack/internal/logger"
)

// Info identifies a detected distribution.
type Info struct {
	ID      string `json:"id"`      // lowercase distribution id, e.g. "ubuntu"
	Version string `json:"version"` // release version, may be empty
}

// Family groups distributions that share a package manager and install
// procedure.
type Family string

// Distribution families.
const (
	FamilyDebian  Family = "debian"
	FamilyRHEL    Family = "rhel"
	FamilyFedora  Family = "fedora"
	FamilySUSE    Family = "suse"
	FamilyArch    Family = "arch"
	FamilyUnknown Family = "unknown"
)

// familyByID maps distribution ids onto families. IDs not present here fall
// back to FamilyUnknown.
var familyByID = map[string]Family{
	"ubuntu":      FamilyDebian,
	"debian":      FamilyDebian,
	"linuxmint":   FamilyDebian,
	"pop":         FamilyDebian,
	"centos":      FamilyRHEL,
	"rhel":        FamilyRHEL,
	"rocky":       FamilyRHEL,
	"almalinux":   FamilyRHEL,
	"fedora":      FamilyFedora,
	"opensuse":    FamilySUSE,
	"sles":        FamilySUSE,
	"suse":        FamilySUSE,
	"arch":        FamilyArch,
	"manjaro":     FamilyArch,
	"endeavouros": FamilyArch,
}

// FamilyOf returns the installation family for a distribution id.
func FamilyOf(id string) Family {
	id = strings.ToLower(id)
	if f, ok := familyByID[id]; ok {
		return f
	}
	// opensuse ships ids like "opensuse-leap" and "opensuse-tumbleweed"
	if strings.HasPrefix(id, "opensuse") {
		return FamilySUSE
	}
	return FamilyUnknown
}

// Family returns the installation family for the detected distribution.
func (i Info) Family() Family {
	return FamilyOf(i.ID)
}

// Detector probes release metadata files under a configurable root.
// The root is "/" in production and a temp directory in tests.
type Detector struct {
	root string
}

// NewDetector creates a detector probing the real filesystem root.
func NewDetector() *Detector {
	return &Detector{root: "/"}
}

// NewDetectorWithRoot creates a detector probing under the given root.
func NewDetectorWithRoot(root string) *Detector {
	return &Detector{root: root}
}

// Detect inspects release metadata sources in priority order and returns the
// normalized distribution info. The first existing source wins.
func (d *Detector) Detect() Info {
	probes := []struct {
		path  string
		parse func(data string) Info
	}{
		{"etc/os-release", parseOSRelease},
		{"etc/lsb-release", parseLSBRelease},
		{"etc/debian_version", parseDebianVersion},
		{"etc/redhat-release", parseRedHatRelease},
		{"etc/fedora-release", parseFedoraRelease},
	}

	for _, p := range probes {
		data, err := os.ReadFile(filepath.Join(d.root, p.path))
		if err != nil {
			continue
		}
		info := p.parse(string(data))
		info.ID = strings.ToLower(info.ID)
		logger.Info("Detected distribution %s %s (via %s)", info.ID, info.Version, p.path)
		return info
	}

	logger.Warn("Could not detect distribution, no release metadata found")
	return Info{ID: "unknown"}
}

// parseOSRelease reads ID= and VERSION_ID= from os-release formatted data.
func parseOSRelease(data string) Info {
	var info Info
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "ID="):
			info.ID = unquote(strings.TrimPrefix(line, "ID="))
		case strings.HasPrefix(line, "VERSION_ID="):
			info.Version = unquote(strings.TrimPrefix(line, "VERSION_ID="))
		}
	}
	return info
}

// parseLSBRelease reads DISTRIB_ID= and DISTRIB_RELEASE= from lsb-release data.
func parseLSBRelease(data string) Info {
	var info Info
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "DISTRIB_ID="):
			info.ID = unquote(strings.TrimPrefix(line, "DISTRIB_ID="))
		case strings.HasPrefix(line, "DISTRIB_RELEASE="):
			info.Version = unquote(strings.TrimPrefix(line, "DISTRIB_RELEASE="))
		}
	}
	return info
}

// parseDebianVersion handles the bare version marker at /etc/debian_version.
func parseDebianVersion(data string) Info {
	return Info{ID: "debian", Version: strings.TrimSpace(data)}
}

// parseRedHatRelease handles text like
// "CentOS Linux release 7.9.2009 (Core)".
func parseRedHatRelease(data string) Info {
	text := strings.TrimSpace(data)
	info := Info{ID: "rhel"}
	fields := strings.Fields(text)
	if len(fields) > 0 {
		info.ID = fields[0]
	}
	for i, f := range fields {
		if f == "release" && i+1 < len(fields) {
			info.Version = fields[i+1]
			break
		}
	}
	return info
}

// parseFedoraRelease handles text like "Fedora release 40 (Forty)".
func parseFedoraRelease(data string) Info {
	info := parseRedHatRelease(data)
	info.ID = "fedora"
	return info
}

func unquote(s string) string {
	return strings.Trim(s, `"'`)
}
