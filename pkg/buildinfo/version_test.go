package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	oldV, oldC, oldD := Version, Commit, Date
	defer func() { Version, Commit, Date = oldV, oldC, oldD }()

	Version, Commit, Date = "v1.2.3", "abc123", "2026-01-02T03:04:05Z"
	want := "{{.Name}} v1.2.3 (commit abc123, built 2026-01-02T03:04:05Z)\n"
	if got := Template(); got != want {
		t.Errorf("Template() = %q, want %q", got, want)
	}

	Commit, Date = "", ""
	if got := Template(); !strings.HasPrefix(got, "{{.Name}} v1.2.3 (commit ") {
		t.Errorf("Template() without ldflags = %q", got)
	}
}

func TestOrUnknown(t *testing.T) {
	if got := orUnknown(""); got != "unknown" {
		t.Errorf(`orUnknown("") = %q`, got)
	}
	if got := orUnknown("x"); got != "x" {
		t.Errorf(`orUnknown("x") = %q`, got)
	}
}
