// Package doctor runs readiness diagnostics for the settings store.
package doctor

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nwest/scribe/internal/settings"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes config-directory, key-file, and settings-value checks against
// an opened store.
func Run(store *settings.Store) Report {
	checks := []Check{
		checkConfigDir(store),
		checkConfigFile(store),
		checkKeyFile(store),
		checkSettingsValues(store),
		checkAPIKey(store),
		checkSaveDirectory(store),
	}
	return Report{Checks: checks}
}

func checkConfigDir(store *settings.Store) Check {
	probe, err := os.CreateTemp(store.Dir(), ".doctor-*")
	if err != nil {
		return Check{Name: "config.dir", Pass: false, Message: fmt.Sprintf("directory %q is not writable: %v", store.Dir(), err)}
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return Check{Name: "config.dir", Pass: true, Message: fmt.Sprintf("%q is writable", store.Dir())}
}

func checkConfigFile(store *settings.Store) Check {
	if _, err := os.Stat(store.ConfigFile()); err != nil {
		return Check{Name: "config.file", Pass: true, Message: "not present yet; will be created on first save"}
	}
	return Check{Name: "config.file", Pass: true, Message: fmt.Sprintf("loaded %q", store.ConfigFile())}
}

// checkKeyFile re-reads the persisted key material and validates its shape:
// a base64url 32-byte key and a base64url 16-byte salt.
func checkKeyFile(store *settings.Store) Check {
	raw, err := os.ReadFile(store.KeyFile())
	if err != nil {
		return Check{Name: "key.file", Pass: false, Message: fmt.Sprintf("read %q: %v", store.KeyFile(), err)}
	}

	var payload struct {
		Key  string `json:"key"`
		Salt string `json:"salt"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Check{Name: "key.file", Pass: false, Message: fmt.Sprintf("%q is not valid JSON: %v", store.KeyFile(), err)}
	}

	key, err := base64.URLEncoding.DecodeString(payload.Key)
	if err != nil || len(key) != 32 {
		return Check{Name: "key.file", Pass: false, Message: "key field is not a base64url 32-byte key"}
	}
	salt, err := base64.URLEncoding.DecodeString(payload.Salt)
	if err != nil || len(salt) != 16 {
		return Check{Name: "key.file", Pass: false, Message: "salt field is not a base64url 16-byte salt"}
	}

	return Check{Name: "key.file", Pass: true, Message: "encryption key material is intact"}
}

func checkSettingsValues(store *settings.Store) Check {
	if warnings := store.Warnings(); len(warnings) > 0 {
		messages := make([]string, 0, len(warnings))
		for _, w := range warnings {
			messages = append(messages, w.Message)
		}
		return Check{Name: "settings.values", Pass: false, Message: strings.Join(messages, "; ")}
	}
	return Check{Name: "settings.values", Pass: true, Message: "all values within documented ranges"}
}

func checkAPIKey(store *settings.Store) Check {
	key := store.APIKey()
	if key == "" {
		return Check{Name: "api_key", Pass: false, Message: "credential is not set (use `scribe set-key`)"}
	}
	if !settings.ValidateAPIKey(key) {
		return Check{Name: "api_key", Pass: false, Message: "stored credential does not look like an sk- key"}
	}
	return Check{Name: "api_key", Pass: true, Message: "credential is set and well-formed"}
}

func checkSaveDirectory(store *settings.Store) Check {
	output := store.Output()
	if !output.AutoSave {
		return Check{Name: "output.save_directory", Pass: true, Message: "auto-save disabled; directory not required"}
	}
	stat, err := os.Stat(output.SaveDirectory)
	if err != nil || !stat.IsDir() {
		return Check{Name: "output.save_directory", Pass: false, Message: fmt.Sprintf("%q is not an existing directory", output.SaveDirectory)}
	}
	return Check{Name: "output.save_directory", Pass: true, Message: fmt.Sprintf("%q exists", filepath.Clean(output.SaveDirectory))}
}
