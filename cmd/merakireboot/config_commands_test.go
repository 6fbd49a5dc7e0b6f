package main

import (
	"os"
	"path/filepath"
	"testing"

	"merakireboot/internal/services"
	"merakireboot/internal/testsupport"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.FakeDashboardOptions{})

	out, _, code := runCLI(t, []string{"config", "validate"}, env.configPath)
	if code != services.ExitOK {
		t.Fatalf("config validate exit %d", code)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.fake.BaseURL())

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, code = runCLI(t, []string{"config", "init", "--path", target}, "")
	if code != services.ExitOK {
		t.Fatalf("config init exit %d", code)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	_, stderr, code := runCLI(t, []string{"config", "init", "--path", target}, "")
	if code != services.ExitFailure {
		t.Fatalf("expected refusal to overwrite, got exit %d", code)
	}
	requireContains(t, stderr, "--overwrite")

	out, _, code = runCLI(t, []string{"config", "validate"}, target)
	if code != services.ExitOK {
		t.Fatalf("sample config should validate, exit %d", code)
	}
	requireContains(t, out, "Configuration valid")
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.FakeDashboardOptions{})

	out, _, code := runCLI(t, []string{"test-notify"}, env.configPath)
	if code != services.ExitOK {
		t.Fatalf("test-notify exit %d", code)
	}
	requireContains(t, out, "Notifications disabled")
}
