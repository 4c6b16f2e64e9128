package client

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/atinyakov/SecureTalk/internal/models"
)

const (
	keySize = 32
	ivSize  = 12
)

// GenerateKey returns fresh base64 AES-256 key material.
func GenerateKey() (models.KeyMaterial, error) {
	key := make([]byte, keySize)
	iv := make([]byte, ivSize)
	if _, err := rand.Read(key); err != nil {
		return models.KeyMaterial{}, fmt.Errorf("generate key: %w", err)
	}
	if _, err := rand.Read(iv); err != nil {
		return models.KeyMaterial{}, fmt.Errorf("generate iv: %w", err)
	}
	return models.KeyMaterial{
		Key: base64.StdEncoding.EncodeToString(key),
		IV:  base64.StdEncoding.EncodeToString(iv),
	}, nil
}

func newAEAD(km models.KeyMaterial) (cipher.AEAD, error) {
	key, err := base64.StdEncoding.DecodeString(km.Key)
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create AEAD: %w", err)
	}
	return aead, nil
}

// Encrypt seals plain with the recipient's key. The result is
// base64(nonce || ciphertext) with a random nonce per message.
func Encrypt(km models.KeyMaterial, plain string) (string, error) {
	aead, err := newAEAD(km)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a payload produced by Encrypt.
func Decrypt(km models.KeyMaterial, encrypted string) (string, error) {
	aead, err := newAEAD(km)
	if err != nil {
		return "", err
	}
	data, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("decode payload: %w", err)
	}
	if len(data) < aead.NonceSize() {
		return "", errors.New("payload too short")
	}
	nonce, ct := data[:aead.NonceSize()], data[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("open payload: %w", err)
	}
	return string(plain), nil
}
