package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestParseFlags(t *testing.T) {
	fs := flag.NewFlagSet("optimaxx-portal", flag.ContinueOnError)
	o, err := parseFlags(fs, []string{"-c", "a.toml", "-config", "b.toml", "-p", "9000", "-host", "127.0.0.1"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(o.configs) != 2 || o.configs[0] != "a.toml" || o.configs[1] != "b.toml" {
		t.Errorf("configs = %v", o.configs)
	}
	if o.port != 9000 || o.host != "127.0.0.1" {
		t.Errorf("port/host = %d/%s", o.port, o.host)
	}
	if o.version {
		t.Error("version should default to false")
	}
}

func TestFindConfig(t *testing.T) {
	empty := t.TempDir()
	second := t.TempDir()
	third := t.TempDir()
	for _, dir := range []string{second, third} {
		if err := os.WriteFile(filepath.Join(dir, configName), []byte("[server]\nport = 4251\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	path, ok := findConfig([]string{empty, second, third})
	if !ok || path != filepath.Join(second, configName) {
		t.Errorf("expected first match in %s, got %q (%v)", second, path, ok)
	}

	if _, ok := findConfig([]string{empty}); ok {
		t.Error("expected no match in an empty directory")
	}
}

func TestFindConfig_SkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, configName), 0755); err != nil {
		t.Fatal(err)
	}
	if _, ok := findConfig([]string{dir}); ok {
		t.Error("a directory named like the config should not match")
	}
}

func TestSearchDirs_EndsWithWorkingDirectoryCandidates(t *testing.T) {
	dirs := searchDirs()
	if len(dirs) < 3 {
		t.Fatalf("expected at least 3 dirs, got %v", dirs)
	}
	tail := dirs[len(dirs)-3:]
	if tail[0] != "." || tail[1] != "config" || tail[2] != "docker" {
		t.Errorf("unexpected working-directory candidates: %v", tail)
	}
}
