package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const configFileName = "config.json"

// Store holds the in-memory settings document for one configuration
// directory. It is built for a single process and a single goroutine;
// concurrent writers against the same directory are last-writer-wins.
type Store struct {
	dir      string
	document Document
	cipher   cipher
	warnings []Warning
}

// Open resolves the configuration directory (per-OS rules when dir is
// empty), creates it, loads or derives the encryption key, and loads the
// config document. Malformed persisted state never fails Open; it degrades
// to defaults and is reported through Warnings.
func Open(dir string) (*Store, error) {
	resolved, err := ResolveDir(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(resolved, 0o700); err != nil {
		return nil, fmt.Errorf("create config dir %q: %w", resolved, err)
	}

	key, err := loadOrCreateKey(filepath.Join(resolved, keyFileName))
	if err != nil {
		return nil, err
	}

	document, warnings := loadDocument(filepath.Join(resolved, configFileName))
	warnings = append(warnings, Validate(document)...)

	return &Store{
		dir:      resolved,
		document: document,
		cipher:   cipher{key: key},
		warnings: warnings,
	}, nil
}

// loadDocument reads the config file and deep-merges it over the defaults,
// so partial files keep sibling defaults and unknown keys survive. A missing
// file is a normal first run; an unreadable or unparseable one degrades to
// defaults with a warning.
func loadDocument(path string) (Document, []Warning) {
	base := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return base, nil
		}
		return base, []Warning{{Message: fmt.Sprintf("read config %q: %v; using defaults", path, err)}}
	}

	var loaded map[string]any
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return base, []Warning{{Message: fmt.Sprintf("config %q is not valid JSON: %v; using defaults", path, err)}}
	}

	base.Merge(loaded)
	return base, nil
}

// Dir returns the resolved configuration directory.
func (s *Store) Dir() string { return s.dir }

// ConfigFile returns the path of the persisted config document.
func (s *Store) ConfigFile() string { return filepath.Join(s.dir, configFileName) }

// KeyFile returns the path of the persisted encryption key.
func (s *Store) KeyFile() string { return filepath.Join(s.dir, keyFileName) }

// Warnings returns non-fatal issues observed while loading.
func (s *Store) Warnings() []Warning { return s.warnings }

// Get reports the value at a dotted path, if present.
func (s *Store) Get(path string) (any, bool) {
	return s.document.Lookup(path)
}

// GetOr returns the value at a dotted path or fallback when absent.
func (s *Store) GetOr(path string, fallback any) any {
	if value, ok := s.document.Lookup(path); ok {
		return value
	}
	return fallback
}

// Set assigns a value at a dotted path in memory only; call Save to persist.
func (s *Store) Set(path string, value any) {
	s.document.Set(path, value)
}

// Save writes the whole document to the config file as pretty-printed JSON.
func (s *Store) Save() error {
	return writeJSON(s.ConfigFile(), s.document)
}

// APIKey returns the decrypted credential. An unset credential, a rotated
// or regenerated key, and tampered ciphertext all yield the empty string.
func (s *Store) APIKey() string {
	encoded, _ := s.GetOr("api_key", "").(string)
	plaintext, err := s.cipher.decrypt(encoded)
	if err != nil {
		return ""
	}
	return plaintext
}

// SetAPIKey encrypts and stores the credential in memory. The empty string
// clears it.
func (s *Store) SetAPIKey(plaintext string) error {
	encoded, err := s.cipher.encrypt(plaintext)
	if err != nil {
		return err
	}
	s.document.Set("api_key", encoded)
	return nil
}

// ValidateAPIKey is a syntactic sanity check on a candidate credential, not
// a live verification against the API.
func ValidateAPIKey(candidate string) bool {
	return strings.HasPrefix(candidate, "sk-") && len(candidate) > 20
}

// Audio returns the capture settings with defaults applied per leaf.
func (s *Store) Audio() AudioSettings {
	def := DefaultAudio()
	return AudioSettings{
		SampleRate: intAt(s.document, "audio.sample_rate", def.SampleRate),
		Channels:   intAt(s.document, "audio.channels", def.Channels),
		ChunkSize:  intAt(s.document, "audio.chunk_size", def.ChunkSize),
		Format:     stringAt(s.document, "audio.format", def.Format),
	}
}

// Transcription returns the API request settings with defaults applied per leaf.
func (s *Store) Transcription() TranscriptionSettings {
	def := DefaultTranscription()
	return TranscriptionSettings{
		Language:    stringAt(s.document, "transcription.language", def.Language),
		Model:       stringAt(s.document, "transcription.model", def.Model),
		Temperature: floatAt(s.document, "transcription.temperature", def.Temperature),
		Prompt:      stringAt(s.document, "transcription.prompt", def.Prompt),
	}
}

// UI returns the window settings with defaults applied per leaf.
func (s *Store) UI() UISettings {
	def := DefaultUI()
	return UISettings{
		WindowGeometry: stringAt(s.document, "ui.window_geometry", def.WindowGeometry),
		Theme:          stringAt(s.document, "ui.theme", def.Theme),
	}
}

// Output returns the transcript save settings with defaults applied per leaf.
func (s *Store) Output() OutputSettings {
	def := DefaultOutput()
	return OutputSettings{
		AutoSave:      boolAt(s.document, "output.auto_save", def.AutoSave),
		SaveDirectory: stringAt(s.document, "output.save_directory", def.SaveDirectory),
		FileFormat:    stringAt(s.document, "output.file_format", def.FileFormat),
	}
}

// ResetToDefaults replaces the in-memory document with a fresh default copy,
// clearing the encrypted credential. Call Save to persist.
func (s *Store) ResetToDefaults() {
	s.document = Default()
}

// ExportTo writes the document to path with the credential forced to empty;
// the encrypted api_key never leaves the machine via export.
func (s *Store) ExportTo(path string) error {
	doc := s.document.Clone()
	doc["api_key"] = ""
	return writeJSON(path, doc)
}

// ImportFrom deep-merges a settings file into the current document. Any
// api_key in the imported data is stripped first so an import can never set
// the credential. A malformed file leaves in-memory state untouched.
func (s *Store) ImportFrom(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read import %q: %w", path, err)
	}

	var imported map[string]any
	if err := json.Unmarshal(raw, &imported); err != nil {
		return fmt.Errorf("parse import %q: %w", path, err)
	}

	delete(imported, "api_key")
	s.document.Merge(imported)
	return nil
}

// writeJSON persists a document as human-readable JSON with 2-space indent
// and non-ASCII characters left unescaped.
func writeJSON(path string, doc Document) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(map[string]any(doc)); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write settings %q: %w", path, err)
	}
	return nil
}
