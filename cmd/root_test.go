package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GNOME/orca-sub019/internal/output"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	expected := []string{"run", "validate", "fmt", "observe", "history", "serve", "config"}
	commands := rootCmd.Commands()

	found := make(map[string]bool)
	for _, c := range commands {
		found[c.Name()] = true
	}

	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	if rootCmd.Version == "" {
		t.Error("root command version should be set")
	}
}

// execute runs the root command with args in an empty working directory
// and returns everything written to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	var buf bytes.Buffer
	prev := output.Stdout
	output.Stdout = &buf
	t.Cleanup(func() { output.Stdout = prev })
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeTestFixture(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// baseArgs selects a dry-run dispatcher and a tail source in a fresh
// directory so no real target is needed.
func baseArgs(t *testing.T, format string) []string {
	return []string{
		"--format", format,
		"--dispatcher", "none",
		"--bus", "tail",
		"--log-prefix", filepath.Join(t.TempDir(), "out"),
	}
}

const quietFixture = `name: quiet
actions:
  - start-recording:
  - key-combo: "<Control>Home"
  - assert-presentation:
      label: "nothing spoken"
      expected: [""]
  - assertion-summary:
`

const chattyFixture = `name: chatty
actions:
  - start-recording:
  - key-combo: "Tab"
  - assert-presentation:
      label: "tab"
      expected: ["SPEECH OUTPUT: 'Tab'"]
`

func TestRun_Passes(t *testing.T) {
	path := writeTestFixture(t, quietFixture)
	args := append([]string{"run"}, baseArgs(t, "text")...)
	out, err := execute(t, append(args, "--no-assert=false", "--filter", "", path)...)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	for _, want := range []string{
		"Test 1 of 1 SUCCEEDED: quiet:nothing spoken",
		"SUMMARY: 1 SUCCEEDED and 0 FAILED (0 KNOWN ISSUES) of 1 for quiet",
		"SUMMARY: 1 SUCCEEDED and 0 FAILED (0 KNOWN ISSUES) of 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_FailureExitsNonZero(t *testing.T) {
	path := writeTestFixture(t, chattyFixture)
	args := append([]string{"run"}, baseArgs(t, "text")...)
	out, err := execute(t, append(args, "--no-assert=false", "--filter", "", path)...)
	if err == nil {
		t.Fatalf("expected failure\n%s", out)
	}
	if !strings.Contains(out, "Test 1 of 1 FAILED: chatty:tab") {
		t.Errorf("output missing failure line:\n%s", out)
	}
	if !strings.Contains(out, "EXPECTED:") {
		t.Errorf("report missing failure block:\n%s", out)
	}
}

func TestRun_NoAssertSkipsAssertions(t *testing.T) {
	path := writeTestFixture(t, chattyFixture)
	args := append([]string{"run"}, baseArgs(t, "json")...)
	out, err := execute(t, append(args, "--no-assert", "--filter", "", path)...)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"total":0`) {
		t.Errorf("json result should have no assertions:\n%s", out)
	}
}

func TestValidate(t *testing.T) {
	path := writeTestFixture(t, quietFixture+"---\n"+chattyFixture)
	out, err := execute(t, "validate", "--format", "yaml", "--verbose=false", path)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	for _, want := range []string{"name: quiet", "name: chatty", "assertions: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestValidate_RejectsUnknownAction(t *testing.T) {
	path := writeTestFixture(t, "name: bad\nactions:\n  - click-button: OK\n")
	if _, err := execute(t, "validate", "--format", "text", path); err == nil {
		t.Fatal("expected error for unknown action")
	}
}

func TestValidate_WarnsOnUnknownKeyName(t *testing.T) {
	path := writeTestFixture(t, "name: typo\nactions:\n  - key-combo: Retrun\n  - key-combo: Return\n")
	out, err := execute(t, "validate", "--format", "text", "--verbose=false", path)
	if err != nil {
		t.Fatalf("an unknown key name should not fail validation: %v", err)
	}
	if !strings.Contains(out, `warning: step 1 KeyCombo(Retrun): no key mapping for "Retrun"`) {
		t.Errorf("output missing warning:\n%s", out)
	}
	if strings.Contains(out, "step 2") {
		t.Errorf("known key flagged:\n%s", out)
	}
}

func TestFmt(t *testing.T) {
	path := writeTestFixture(t, "name: f\nactions:\n  - key-combo: ctrl+shift+t\n  - pause: 1s\n")
	out, err := execute(t, "fmt", "--format", "text", "--write=false", path)
	if err != nil {
		t.Fatalf("fmt: %v", err)
	}
	if !strings.Contains(out, "<Control><Shift>t") {
		t.Errorf("key not canonicalized:\n%s", out)
	}
}

func TestConfig_PrintsEffectiveValues(t *testing.T) {
	out, err := execute(t, "config", "--format", "yaml", "--dispatcher", "none", "--bus", "tail", "--log-prefix", "/tmp/x/out")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	for _, want := range []string{"dispatcher: none", "log_prefix: /tmp/x/out"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfig_RejectsBadFormat(t *testing.T) {
	if _, err := execute(t, "config", "--format", "xml"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
	// Leave a valid format for later tests sharing the flag set.
	if _, err := execute(t, "config", "--format", "text"); err != nil {
		t.Fatalf("config: %v", err)
	}
}

func TestParseChannels(t *testing.T) {
	chs, err := parseChannels("speech, braille")
	if err != nil || len(chs) != 2 {
		t.Fatalf("parseChannels = %v, %v", chs, err)
	}
	if _, err := parseChannels("video"); err == nil {
		t.Error("expected error for unknown channel")
	}
	if _, err := parseChannels(" , "); err == nil {
		t.Error("expected error for empty list")
	}
}
