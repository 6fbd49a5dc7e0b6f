package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"merakireboot/internal/config"
	"merakireboot/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	fake       *testsupport.FakeDashboard
}

func setupCLITestEnv(t *testing.T, opts testsupport.FakeDashboardOptions, cfgOpts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	fake := testsupport.NewFakeDashboard(t, opts)
	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithBaseURL(fake.BaseURL())}, cfgOpts...)...)
	cfg.Logging.Level = "error"

	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("XDG_STATE_HOME", filepath.Join(homeDir, ".local", "state"))

	configPath := filepath.Join(base, "config.toml")
	testsupport.WriteConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, fake: fake}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	code := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireEveryLinePrefixed(t *testing.T, output string) {
	t.Helper()
	for _, line := range strings.Split(strings.TrimRight(output, "\n"), "\n") {
		if !strings.HasPrefix(line, "@ ") {
			t.Fatalf("expected user line prefix in %q", line)
		}
	}
}
