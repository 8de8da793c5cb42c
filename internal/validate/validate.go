// Package validate checks operator-supplied domain and email strings before
// any side effect occurs. Both checks are pure; prompt retry loops belong to
// the caller.
package validate

import (
	"regexp"
	"strings"

	"github.com/ksyq12/wpstack/internal/errors"
)

// domainLabel matches a single hostname label: 1-63 chars, alphanumeric with
// internal hyphens only.
var domainLabel = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)

// emailPattern matches local@host.tld with a tld of at least two letters.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Domain reports whether s is a valid hostname of dot-separated labels.
func Domain(s string) error {
	if s == "" {
		return errors.Validation("domain cannot be empty")
	}
	for _, label := range strings.Split(s, ".") {
		if !domainLabel.MatchString(label) {
			return errors.ErrInvalidDomain
		}
	}
	return nil
}

// Email reports whether s is a plausible local@host.tld address.
func Email(s string) error {
	if s == "" {
		return errors.Validation("email cannot be empty")
	}
	if !emailPattern.MatchString(s) {
		return errors.ErrInvalidEmail
	}
	return nil
}

// SiteName reports whether s is usable as a directory name under the sites
// parent. Same constraints as a domain label, which keeps generated paths and
// compose project names safe.
func SiteName(s string) error {
	if s == "" {
		return errors.Validation("site name cannot be empty")
	}
	if !domainLabel.MatchString(s) {
		return errors.Validation("site name must be alphanumeric with internal hyphens")
	}
	return nil
}

// NotEmpty reports whether a free-form field (DB user, DB name) is non-empty.
func NotEmpty(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.Validation(field + " cannot be empty")
	}
	return nil
}
