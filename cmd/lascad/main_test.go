package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/lasca"
)

func TestRunSyntheticWritesSnapshots(t *testing.T) {
	t.Cleanup(func() { lasca.SetLogger(nil) })
	dir := t.TempDir()
	var stderr bytes.Buffer
	args := []string{"-backend", lasca.BackendSoftware, "-width", "32", "-height", "24",
		"-frames", "10", "-every", "5", "-output", dir}

	if err := run(context.Background(), args, &stderr); err != nil {
		t.Fatalf("run() error = %v\n%s", err, stderr.String())
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.bmp"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Errorf("wrote %d snapshots, want 2", len(files))
	}
	if !strings.Contains(stderr.String(), "lascad: done") {
		t.Errorf("missing summary log:\n%s", stderr.String())
	}
}

func TestRunReturnsErrors(t *testing.T) {
	t.Cleanup(func() { lasca.SetLogger(nil) })
	missing := filepath.Join(t.TempDir(), "missing")
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad flag", []string{"-nope"}, "flag provided but not defined"},
		{"missing input", []string{"-input", filepath.Join(missing, "x.raw")}, "open input"},
		{"invalid config", []string{"-backend", lasca.BackendSoftware, "-width", "2"}, "create pipeline"},
		{"display failure", []string{"-backend", lasca.BackendSoftware, "-width", "8", "-height", "8",
			"-frames", "3", "-every", "1", "-output", missing}, "run: lasca: display"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), tt.args, new(bytes.Buffer))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("run() = %v, want error containing %q", err, tt.want)
			}
		})
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Errorf("output directory created unexpectedly: %v", err)
	}
}
