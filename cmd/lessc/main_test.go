package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunVersion(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := run(context.Background(), []string{"--version"}, stdout, stderr, func(s string) string { return "" })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout.String(), "lessc version") {
		t.Fatalf("expected version output, got %q", stdout.String())
	}
}

func TestRunHelp(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := run(context.Background(), []string{"--help"}, stdout, stderr, func(s string) string { return "" })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout.String(), "lessc - LESS to CSS compiler") {
		t.Fatalf("expected help banner, got %q", stdout.String())
	}
	if !strings.Contains(stdout.String(), "--watch") {
		t.Fatalf("expected --watch in help, got %q", stdout.String())
	}
}

func TestRunInvalidFlag(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := run(context.Background(), []string{"--not-a-flag"}, stdout, stderr, func(s string) string { return "" })
	if err == nil {
		t.Fatal("expected error for invalid flag")
	}
}

func TestRunMissingInput(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := run(context.Background(), []string{}, stdout, stderr, func(s string) string { return "" })
	if err == nil {
		t.Fatal("expected error when no input file is given")
	}
}

func TestRunCompilesFileToOutput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "style.less")
	if err := os.WriteFile(src, []byte(".box { color: darken(#fff, 10%); }"), 0o644); err != nil {
		t.Fatalf("writing source: %v", err)
	}
	out := filepath.Join(dir, "style.css")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	err := run(context.Background(), []string{"--output", out, src}, stdout, stderr, func(s string) string { return "" })
	if err != nil {
		t.Fatalf("unexpected error: %v\nstderr: %s", err, stderr.String())
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.Contains(string(got), "#e6e6e6") {
		t.Fatalf("unexpected output: %s", got)
	}
}
