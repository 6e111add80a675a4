package buildinfo

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	defer func(v, c, b string) { Version, GitCommit, BuildTime = v, c, b }(Version, GitCommit, BuildTime)

	Version, GitCommit, BuildTime = "1.2.0", "abc123", "2025-10-26"
	if got := String(); got != "rosterwatch 1.2.0 (abc123) built at 2025-10-26" {
		t.Fatalf("String()=%q", got)
	}

	Version, GitCommit, BuildTime = "", "", ""
	if got := String(); !strings.HasPrefix(got, "rosterwatch ") || strings.Contains(got, "()") {
		t.Fatalf("String()=%q", got)
	}
}
