// Package backup implements the password-protected backup envelope: a
// PBKDF2-derived key wrapping the backup JSON with AES-256-GCM. The envelope
// format is shared with the web client, so the constants here are part of
// the file format and must not change.
package backup

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	magic      = "SWENC1"
	iterations = 120000
	keyLen     = 32
	saltLen    = 16
	nonceLen   = 12
)

// ErrNotEncrypted is returned by Decrypt for files without the envelope
// magic.
var ErrNotEncrypted = errors.New("backup: not an encrypted backup file")

type envelope struct {
	Magic string `json:"_magic"`
	Salt  string `json:"salt"`
	IV    string `json:"iv"`
	Data  string `json:"data"`
}

func deriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, iterations, keyLen, sha256.New)
}

// Encrypt seals plaintext under the password and returns the JSON envelope.
func Encrypt(plaintext []byte, password string) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("backup: generate salt: %w", err)
	}
	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("backup: generate nonce: %w", err)
	}
	aead, err := newAEAD(password, salt)
	if err != nil {
		return nil, err
	}
	ciphertext := aead.Seal(nil, nonce, plaintext, nil)
	env := envelope{
		Magic: magic,
		Salt:  base64.StdEncoding.EncodeToString(salt),
		IV:    base64.StdEncoding.EncodeToString(nonce),
		Data:  base64.StdEncoding.EncodeToString(ciphertext),
	}
	return json.Marshal(env)
}

// Decrypt opens an envelope produced by Encrypt (or the web client) and
// returns the plaintext backup JSON.
func Decrypt(data []byte, password string) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Magic != magic {
		return nil, ErrNotEncrypted
	}
	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return nil, fmt.Errorf("backup: decode salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(env.IV)
	if err != nil {
		return nil, fmt.Errorf("backup: decode iv: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.Data)
	if err != nil {
		return nil, fmt.Errorf("backup: decode ciphertext: %w", err)
	}
	aead, err := newAEAD(password, salt)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("backup: wrong password or corrupted file: %w", err)
	}
	return plaintext, nil
}

// IsEncrypted reports whether data looks like an encrypted backup envelope.
func IsEncrypted(data []byte) bool {
	var env envelope
	return json.Unmarshal(data, &env) == nil && env.Magic == magic
}

func newAEAD(password string, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return nil, fmt.Errorf("backup: init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("backup: init gcm: %w", err)
	}
	return aead, nil
}
