package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

const testRegistry = `
metrics:
  app:
    startup_time:
      type: timing_distribution
      time_unit: millisecond
      send_in_pings: [metrics]
`

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metrics.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateAcceptsValidRegistry(t *testing.T) {
	path := writeRegistry(t, testRegistry)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	if err := runValidate(cmd, path, true); err != nil {
		t.Fatalf("runValidate() error = %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "1 metric(s)") {
		t.Errorf("output missing metric count: %q", got)
	}
	if !strings.Contains(got, "app.startup_time") {
		t.Errorf("output missing metric identifier: %q", got)
	}
}

func TestValidateRejectsInvalidRegistry(t *testing.T) {
	path := writeRegistry(t, `
metrics:
  app:
    startup_time:
      type: counter
      send_in_pings: [metrics]
`)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	if err := runValidate(cmd, path, true); err == nil {
		t.Fatal("runValidate() accepted an invalid registry")
	}
}

func TestValidateMissingFile(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	if err := runValidate(cmd, filepath.Join(t.TempDir(), "absent.yaml"), true); err == nil {
		t.Fatal("runValidate() accepted a missing file")
	}
}

func TestValidateCommandWiring(t *testing.T) {
	path := writeRegistry(t, testRegistry)

	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs([]string{"validate", path, "--no-color"})
	defer RootCmd.SetArgs(nil)

	if err := RootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out.String(), "app.startup_time") {
		t.Errorf("output missing metric identifier: %q", out.String())
	}
}
