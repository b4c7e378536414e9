package settings

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	fernet "github.com/fernet/fernet-go"
	"golang.org/x/crypto/pbkdf2"
)

const (
	keyFileName = ".key"

	kdfIterations = 100000
	kdfSaltLength = 16
	kdfKeyLength  = 32

	// Application-level KDF password. The key file protects the credential
	// against casual inspection, not against an attacker with local access.
	kdfPassword = "scribe_default_key"
)

// keyFile is the on-disk JSON shape of the derived key and its salt.
type keyFile struct {
	Key  string `json:"key"`
	Salt string `json:"salt"`
}

// loadOrCreateKey returns the Fernet key stored at path. An absent or
// corrupt key file is replaced with a freshly derived key, which leaves any
// previously encrypted credential undecryptable; the store treats that as
// "credential unset" rather than an error.
func loadOrCreateKey(path string) (*fernet.Key, error) {
	if raw, err := os.ReadFile(path); err == nil {
		if key, err := decodeKeyFile(raw); err == nil {
			return key, nil
		}
	}
	return generateKey(path)
}

func decodeKeyFile(raw []byte) (*fernet.Key, error) {
	var kf keyFile
	if err := json.Unmarshal(raw, &kf); err != nil {
		return nil, err
	}
	if kf.Key == "" {
		return nil, errors.New("key file has no key field")
	}
	return fernet.DecodeKey(kf.Key)
}

// generateKey derives a new key via PBKDF2-HMAC-SHA256 over a random salt
// and persists both alongside the config file.
func generateKey(path string) (*fernet.Key, error) {
	salt := make([]byte, kdfSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate key salt: %w", err)
	}

	derived := pbkdf2.Key([]byte(kdfPassword), salt, kdfIterations, kdfKeyLength, sha256.New)

	var key fernet.Key
	copy(key[:], derived)

	raw, err := json.Marshal(keyFile{
		Key:  key.Encode(),
		Salt: base64.URLEncoding.EncodeToString(salt),
	})
	if err != nil {
		return nil, fmt.Errorf("encode key file: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return nil, fmt.Errorf("write key file %q: %w", path, err)
	}

	return &key, nil
}
