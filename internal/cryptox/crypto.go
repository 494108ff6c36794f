// Package cryptox encrypts the credential strings stored by the vaults.
//
// Two modes exist. When a machine-bound secret is available, values are
// sealed with AES-256-GCM under a key derived from that secret. When no
// secret can be obtained, values degrade to plain base64 — reversible and
// NOT confidentiality-preserving. The degraded mode mirrors the behavior
// of platforms without OS secure storage and is deliberately observable
// via Cipher.Secure(), never hidden.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/argon2"
)

// securePrefix marks ciphertext produced by the AES-GCM path so the
// decryptor can tell the two storage forms apart.
const securePrefix = "v1:"

// keySalt is a fixed application salt for the argon2id derivation. The
// machine secret provides the entropy; the salt only separates this
// application's key space from other users of the same secret.
const keySalt = "riotswitch.credential.vault"

const nonceSize = 12

// Cipher encrypts and decrypts short secret strings.
type Cipher struct {
	key []byte
}

// New returns a Cipher bound to machineSecret. An empty secret yields the
// degraded base64 cipher.
func New(machineSecret []byte) *Cipher {
	if len(machineSecret) == 0 {
		return &Cipher{}
	}
	key := argon2.IDKey(machineSecret, []byte(keySalt), 1, 64*1024, 4, 32)
	return &Cipher{key: key}
}

// Secure reports whether the AES-GCM path is active. Callers surfacing
// stored credentials should warn the user when this is false.
func (c *Cipher) Secure() bool {
	return len(c.key) > 0
}

// EncryptString encrypts plaintext into a printable string.
func (c *Cipher) EncryptString(plaintext string) (string, error) {
	if !c.Secure() {
		return base64.StdEncoding.EncodeToString([]byte(plaintext)), nil
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}

	aesgcm, err := c.aead()
	if err != nil {
		return "", err
	}

	sealed := aesgcm.Seal(nil, nonce, []byte(plaintext), nil)
	return securePrefix + base64.StdEncoding.EncodeToString(append(nonce, sealed...)), nil
}

// DecryptString reverses EncryptString. The second return value is false
// when the payload is corrupt or was sealed under a foreign key; callers
// rendering credential lists treat that as a null, not a crash.
func (c *Cipher) DecryptString(ciphertext string) (string, bool) {
	if strings.HasPrefix(ciphertext, securePrefix) {
		if !c.Secure() {
			return "", false
		}
		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(ciphertext, securePrefix))
		if err != nil || len(raw) < nonceSize {
			return "", false
		}
		aesgcm, err := c.aead()
		if err != nil {
			return "", false
		}
		plaintext, err := aesgcm.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
		if err != nil {
			return "", false
		}
		return string(plaintext), true
	}

	// Degraded form: plain base64 regardless of the active mode, so a
	// vault written on a machine without a secret stays readable.
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", false
	}
	return string(raw), true
}

func (c *Cipher) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return aesgcm, nil
}

// MachineSecret returns a stable per-machine secret, or nil when none is
// available (which activates the degraded cipher).
//
// Lookup order: RIOTSWITCH_MACHINE_SECRET env var, then /etc/machine-id.
func MachineSecret() []byte {
	if s := os.Getenv("RIOTSWITCH_MACHINE_SECRET"); s != "" {
		return []byte(s)
	}
	if data, err := os.ReadFile("/etc/machine-id"); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return []byte(id)
		}
	}
	return nil
}
