package cmdutil

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		cmd      string
		expected string
	}{
		{"go build ./...", "go build ./..."},
		{"  go   build  ", "go build"},
		{"cp /etc/hosts backup", "cp <path> backup"},
		{"cp ~/notes.txt backup", "cp <path> backup"},
		{"curl https://example.com/x", "curl <url>"},
		{"kill 4213", "kill <num>"},
		{"tar -xzf release.tgz", "tar -xzf release.tgz"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.cmd); got != tt.expected {
			t.Errorf("Normalize(%q) = %q, want %q", tt.cmd, got, tt.expected)
		}
	}
}

func TestHash(t *testing.T) {
	a := Hash("go build ./...")
	b := Hash("go build ./...")
	c := Hash("go test ./...")

	if a != b {
		t.Error("Hash should be deterministic")
	}
	if a == c {
		t.Error("Different commands should hash differently")
	}
	if len(a) != 64 {
		t.Errorf("Hash length = %d, want 64 hex chars", len(a))
	}
}
