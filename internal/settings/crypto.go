package settings

import (
	"encoding/base64"
	"errors"
	"fmt"

	fernet "github.com/fernet/fernet-go"
)

// errDecryptFailed covers both unparseable and tampered ciphertext. Callers
// that own the "credential unset" policy map it to an empty string.
var errDecryptFailed = errors.New("ciphertext failed to verify")

// cipher wraps a Fernet key with the store's empty-string conventions.
type cipher struct {
	key *fernet.Key
}

// encrypt produces a base64url-wrapped Fernet token. Each call embeds a
// fresh nonce, so encrypting the same plaintext twice yields distinct
// ciphertexts. The empty string is passed through unencrypted so "no
// secret" never gains a token.
func (c cipher) encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	token, err := fernet.EncryptAndSign([]byte(plaintext), c.key)
	if err != nil {
		return "", fmt.Errorf("encrypt credential: %w", err)
	}
	return base64.URLEncoding.EncodeToString(token), nil
}

// decrypt reverses encrypt. Any decode or authentication failure returns
// errDecryptFailed; a flipped bit can never surface as corrupted plaintext.
func (c cipher) decrypt(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}
	token, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return "", errDecryptFailed
	}
	plaintext := fernet.VerifyAndDecrypt(token, 0, []*fernet.Key{c.key})
	if plaintext == nil {
		return "", errDecryptFailed
	}
	return string(plaintext), nil
}
