// Package hostsfile matches and formats hosts file records. The file is
// treated as opaque text apart from the single-record match below.
package hostsfile

import (
	"regexp"
)

// Contains reports whether content has a line whose address field is ip and
// whose first hostname field is hostname. Both are matched literally; the
// hostname must be followed by whitespace or end of line so that
// "box.htb" does not match "box.htb.local".
func Contains(content []byte, ip, hostname string) bool {
	pattern := `(?m)^[ \t]*` + regexp.QuoteMeta(ip) + `[ \t]+` + regexp.QuoteMeta(hostname) + `(?:[ \t\r]|$)`
	return regexp.MustCompile(pattern).Match(content)
}

// FormatEntry renders the record appended for ip and hostname.
func FormatEntry(ip, hostname string) string {
	return ip + "\t" + hostname + "\n"
}

// AppendPayload returns the bytes to append to content so the new record
// lands on a line of its own.
func AppendPayload(content []byte, ip, hostname string) []byte {
	entry := FormatEntry(ip, hostname)
	if len(content) > 0 && content[len(content)-1] != '\n' {
		return []byte("\n" + entry)
	}
	return []byte(entry)
}
