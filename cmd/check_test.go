package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mcpool/internal/api"
	"mcpool/internal/cli"
	"mcpool/internal/config"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return dir
}

func TestCheckValidConfig(t *testing.T) {
	dir := writeTestConfig(t, `
profiles:
  browser:
    servers:
      playwright:
        transport: streamable-http
        url: http://localhost:8931/mcp
  browser-copy:
    servers:
      playwright:
        transport: streamable-http
        url: http://localhost:8931/mcp
`)
	checkFlags = cli.CommandFlags{OutputFormat: "json", Quiet: true, ConfigPath: dir}

	c, out := newTestCommand()
	if err := runCheck(c, nil); err != nil {
		t.Fatalf("runCheck returned error: %v", err)
	}

	var profiles []api.ProfileInfo
	if err := json.Unmarshal(out.Bytes(), &profiles); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
	if profiles[0].Fingerprint == "" || profiles[0].Fingerprint != profiles[1].Fingerprint {
		t.Errorf("expected identical server sets to share a fingerprint: %+v", profiles)
	}
}

func TestCheckInvalidConfig(t *testing.T) {
	dir := writeTestConfig(t, `
profiles:
  broken:
    servers:
      remote:
        transport: sse
`)
	checkFlags = cli.CommandFlags{OutputFormat: "table", ConfigPath: dir}

	c, out := newTestCommand()
	err := runCheck(c, nil)
	if err == nil {
		t.Fatal("expected an error for an invalid configuration")
	}
	if !strings.Contains(out.String(), "Configuration Error in") {
		t.Errorf("expected detailed configuration error, got: %s", out.String())
	}
}
