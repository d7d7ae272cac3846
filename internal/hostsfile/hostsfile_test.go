package hostsfile

import "testing"

const sample = `# static table lookup for hostnames
127.0.0.1	localhost
::1		localhost ip6-localhost
  10.10.11.5   box.htb  www.box.htb
10.10.11.6 dc01.corp.htb
#10.10.11.7 disabled.htb
10a10b11c9 dots.htb
10.10.11.8	crlf.htb` + "\r\n"

func TestContains(t *testing.T) {
	tests := []struct {
		name     string
		ip       string
		hostname string
		want     bool
	}{
		{"tab separated", "127.0.0.1", "localhost", true},
		{"leading whitespace and alias", "10.10.11.5", "box.htb", true},
		{"end of line", "10.10.11.6", "dc01.corp.htb", true},
		{"crlf line ending", "10.10.11.8", "crlf.htb", true},
		{"alias is not the first hostname", "10.10.11.5", "www.box.htb", false},
		{"hostname prefix only", "10.10.11.6", "dc01.corp", false},
		{"longer hostname sharing prefix", "10.10.11.6", "dc01", false},
		{"different ip", "10.10.11.9", "box.htb", false},
		{"ip prefix", "10.10.11.", "box.htb", false},
		{"dots are literal", "10.10.11.9", "dots.htb", false},
		{"commented out", "10.10.11.7", "disabled.htb", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Contains([]byte(sample), tt.ip, tt.hostname); got != tt.want {
				t.Errorf("Contains(%q, %q) = %v, want %v", tt.ip, tt.hostname, got, tt.want)
			}
		})
	}
}

func TestContains_EmptyContent(t *testing.T) {
	if Contains(nil, "10.0.0.1", "box") {
		t.Error("empty content should not contain anything")
	}
}

func TestFormatEntry(t *testing.T) {
	if got := FormatEntry("10.0.0.1", "box.htb"); got != "10.0.0.1\tbox.htb\n" {
		t.Errorf("unexpected entry %q", got)
	}
}

func TestAppendPayload(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty file", "", "10.0.0.1\tbox\n"},
		{"trailing newline", "127.0.0.1 localhost\n", "10.0.0.1\tbox\n"},
		{"missing trailing newline", "127.0.0.1 localhost", "\n10.0.0.1\tbox\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(AppendPayload([]byte(tt.content), "10.0.0.1", "box"))
			if got != tt.want {
				t.Errorf("AppendPayload = %q, want %q", got, tt.want)
			}
		})
	}
}
