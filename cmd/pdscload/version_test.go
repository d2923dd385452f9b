package main

import (
	"runtime"
	"strings"
	"testing"
)

func TestReadBuildInfo(t *testing.T) {
	t.Parallel()

	info := readBuildInfo()
	if info.Version == "" || info.Commit == "" || info.Date == "" {
		t.Errorf("expected every field to be filled, got %+v", info)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("got go version %q", info.GoVersion)
	}
	if info.Commit != "unknown" && len(info.Commit) > 7 {
		t.Errorf("expected a short commit, got %q", info.Commit)
	}
}

func TestShortRevision(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                     "unknown",
		"abc":                  "abc",
		"0123456789abcdef0123": "0123456",
	}
	for in, want := range tests {
		if got := shortRevision(in); got != want {
			t.Errorf("shortRevision(%q) = %q, expected %q", in, got, want)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	stdout, _, err := executeRoot(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(stdout, "pdscload version "+getVersion()+"\n") {
		t.Errorf("got %q", stdout)
	}
	for _, want := range []string{"commit:", "built:", "go:     " + runtime.Version()} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
}
