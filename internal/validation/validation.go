// Package validation provides input validation for command-line arguments.
package validation

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

var (
	// ErrIPv4Syntax indicates the address is not four dot-separated groups of 1-3 digits.
	ErrIPv4Syntax = errors.New("invalid IPv4 address syntax")
	// ErrHostnameEmpty indicates a blank hostname.
	ErrHostnameEmpty = errors.New("hostname must not be empty")
	// ErrInputTooLong indicates input exceeds maximum length.
	ErrInputTooLong = errors.New("input exceeds maximum length")
	// ErrInputInvalid indicates input contains invalid characters.
	ErrInputInvalid = errors.New("input contains invalid characters")
	// ErrRootEmpty indicates a blank workspace root.
	ErrRootEmpty = errors.New("workspace root must not be empty")
	// ErrFilenameInvalid indicates a name that is not a bare file name.
	ErrFilenameInvalid = errors.New("provide a simple filename only (no directories)")
)

// MaxHostnameLength is the DNS limit for a fully qualified name.
const MaxHostnameLength = 253

// The check is purely syntactic: 999.999.999.999 is accepted.
var ipv4Syntax = regexp.MustCompile(`^[0-9]{1,3}(\.[0-9]{1,3}){3}$`)

// ValidateIPv4Syntax checks the dotted-quad shape of ip without range checks.
func ValidateIPv4Syntax(ip string) error {
	if !ipv4Syntax.MatchString(ip) {
		return ErrIPv4Syntax
	}
	return nil
}

// ValidateHostname accepts any non-empty token that can sit in a single
// hosts file field.
func ValidateHostname(hostname string) error {
	if hostname == "" {
		return ErrHostnameEmpty
	}
	if len(hostname) > MaxHostnameLength {
		return ErrInputTooLong
	}
	for _, r := range hostname {
		if unicode.IsSpace(r) || r == '#' || r == 0 {
			return ErrInputInvalid
		}
	}
	return nil
}

// ValidateRoot rejects blank workspace roots.
func ValidateRoot(root string) error {
	if strings.TrimSpace(root) == "" {
		return ErrRootEmpty
	}
	if strings.ContainsRune(root, 0) {
		return ErrInputInvalid
	}
	return nil
}

// ValidateFilename accepts a bare file name: no separators, no traversal.
func ValidateFilename(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrFilenameInvalid
	}
	if filepath.IsAbs(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return ErrFilenameInvalid
	}
	if strings.ContainsAny(name, "\x00\n\r") {
		return ErrInputInvalid
	}
	return nil
}
