package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var ErrInvalidActivationToken = errors.New("invalid activation token")

// ActivationCodec seals an email address into a URL-safe token and opens it again
type ActivationCodec struct {
	key [32]byte
}

// NewActivationCodec derives the secretbox key from secret
func NewActivationCodec(secret string) *ActivationCodec {
	return &ActivationCodec{key: sha256.Sum256([]byte(secret))}
}

// Seal encrypts email. Two calls with the same email return different tokens.
func (c *ActivationCodec) Seal(email string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", err
	}

	sealed := secretbox.Seal(nonce[:], []byte(email), &nonce, &c.key)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a token produced by Seal
func (c *ActivationCodec) Open(token string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrInvalidActivationToken
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	email, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &c.key)
	if !ok || len(email) == 0 {
		return "", ErrInvalidActivationToken
	}
	return string(email), nil
}
