package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nwest/scribe/internal/settings"
)

func setupRunnerEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	return t.TempDir()
}

func runCommand(t *testing.T, configDir string, args ...string) (int, string, string) {
	t.Helper()
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	full := append([]string{"--config-dir", configDir}, args...)
	exitCode := runner.Execute(context.Background(), full)
	return exitCode, stdout.String(), stderr.String()
}

func TestExecuteHelp(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"--help"}, &stdout, &stderr)
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "Usage:")
	require.Empty(t, stderr.String())
}

func TestExecuteVersion(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"version"}, &stdout, &stderr)
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "scribe")
	require.Empty(t, stderr.String())
}

func TestExecuteUnknownCommand(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"definitely-not-a-command"}, &stdout, &stderr)
	require.Equal(t, 2, exitCode)
	require.Contains(t, stderr.String(), "unknown command")
	require.Contains(t, stderr.String(), "Usage:")
}

func TestSetThenGetRoundTrip(t *testing.T) {
	configDir := setupRunnerEnv(t)

	exitCode, _, stderr := runCommand(t, configDir, "set", "transcription.language", "es")
	require.Equal(t, 0, exitCode, stderr)

	exitCode, stdout, stderr := runCommand(t, configDir, "get", "transcription.language")
	require.Equal(t, 0, exitCode, stderr)
	require.Equal(t, "\"es\"\n", stdout)
}

func TestSetParsesJSONLiterals(t *testing.T) {
	configDir := setupRunnerEnv(t)

	exitCode, _, stderr := runCommand(t, configDir, "set", "audio.sample_rate", "16000")
	require.Equal(t, 0, exitCode, stderr)

	exitCode, stdout, _ := runCommand(t, configDir, "get", "audio.sample_rate")
	require.Equal(t, 0, exitCode)
	require.Equal(t, "16000\n", stdout)
}

func TestGetMissingPathFails(t *testing.T) {
	configDir := setupRunnerEnv(t)

	exitCode, _, stderr := runCommand(t, configDir, "get", "no.such.path")
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr, "no value at")
}

func TestSetKeyRejectsMalformedCredential(t *testing.T) {
	configDir := setupRunnerEnv(t)

	exitCode, _, stderr := runCommand(t, configDir, "set-key", "pk-abcdefghijklmnopqrstuvwxyz")
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr, "sk-")
}

func TestSetKeyPersistsEncryptedCredential(t *testing.T) {
	configDir := setupRunnerEnv(t)

	exitCode, stdout, stderr := runCommand(t, configDir, "set-key", "sk-abcdefghijklmnopqrstu")
	require.Equal(t, 0, exitCode, stderr)
	require.Contains(t, stdout, "credential saved")

	store, err := settings.Open(configDir)
	require.NoError(t, err)
	require.Equal(t, "sk-abcdefghijklmnopqrstu", store.APIKey())

	raw, err := os.ReadFile(filepath.Join(configDir, "config.json"))
	require.NoError(t, err)
	require.NotContains(t, string(raw), "sk-abcdefghijklmnopqrstu")
}

func TestShowMasksCredential(t *testing.T) {
	configDir := setupRunnerEnv(t)

	exitCode, _, stderr := runCommand(t, configDir, "set-key", "sk-abcdefghijklmnopqrstu")
	require.Equal(t, 0, exitCode, stderr)

	exitCode, stdout, stderr := runCommand(t, configDir, "show")
	require.Equal(t, 0, exitCode, stderr)
	require.Contains(t, stdout, `"api_key": "(set)"`)
	require.NotContains(t, stdout, "sk-abcdefghijklmnopqrstu")
	require.Contains(t, stdout, `"sample_rate"`)
}

func TestExportThenImportStripsCredential(t *testing.T) {
	configDir := setupRunnerEnv(t)
	exportPath := filepath.Join(t.TempDir(), "export.json")

	exitCode, _, stderr := runCommand(t, configDir, "set-key", "sk-abcdefghijklmnopqrstu")
	require.Equal(t, 0, exitCode, stderr)
	exitCode, _, stderr = runCommand(t, configDir, "set", "ui.theme", "dark")
	require.Equal(t, 0, exitCode, stderr)

	exitCode, _, stderr = runCommand(t, configDir, "export", exportPath)
	require.Equal(t, 0, exitCode, stderr)

	raw, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	var exported map[string]any
	require.NoError(t, json.Unmarshal(raw, &exported))
	require.Equal(t, "", exported["api_key"])

	// Importing into a second config keeps the theme but not the credential.
	otherDir := t.TempDir()
	exitCode, _, stderr = runCommand(t, otherDir, "import", exportPath)
	require.Equal(t, 0, exitCode, stderr)

	store, err := settings.Open(otherDir)
	require.NoError(t, err)
	require.Equal(t, "dark", store.GetOr("ui.theme", ""))
	require.Equal(t, "", store.APIKey())
}

func TestImportMalformedFileFails(t *testing.T) {
	configDir := setupRunnerEnv(t)
	importPath := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(importPath, []byte("{ nope"), 0o600))

	exitCode, _, stderr := runCommand(t, configDir, "import", importPath)
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr, "parse import")
}

func TestResetRestoresDefaults(t *testing.T) {
	configDir := setupRunnerEnv(t)

	exitCode, _, stderr := runCommand(t, configDir, "set", "ui.theme", "dark")
	require.Equal(t, 0, exitCode, stderr)

	exitCode, stdout, stderr := runCommand(t, configDir, "reset")
	require.Equal(t, 0, exitCode, stderr)
	require.Contains(t, stdout, "reset to defaults")

	exitCode, stdout, _ = runCommand(t, configDir, "get", "ui.theme")
	require.Equal(t, 0, exitCode)
	require.Equal(t, "\"default\"\n", stdout)
}

func TestDoctorReportsMissingCredential(t *testing.T) {
	configDir := setupRunnerEnv(t)

	exitCode, stdout, _ := runCommand(t, configDir, "doctor")
	require.Equal(t, 1, exitCode)
	require.Contains(t, stdout, "[FAIL] api_key")

	exitCode, _, stderr := runCommand(t, configDir, "set-key", "sk-abcdefghijklmnopqrstu")
	require.Equal(t, 0, exitCode, stderr)

	exitCode, stdout, _ = runCommand(t, configDir, "doctor")
	require.Equal(t, 0, exitCode, stdout)
	require.Contains(t, stdout, "[OK] api_key")
}

func TestMalformedConfigWarnsAndContinues(t *testing.T) {
	configDir := setupRunnerEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.json"), []byte("{ nope"), 0o600))

	exitCode, stdout, stderr := runCommand(t, configDir, "get", "transcription.language")
	require.Equal(t, 0, exitCode)
	require.Contains(t, stderr, "warning:")
	require.Equal(t, "\"en\"\n", stdout)
}
