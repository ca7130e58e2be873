// Package apikey issues and validates opaque API access keys.
// Keys are never stored, only their SHA-256 digest is
package apikey

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sig-0/fxcross/storage"
	"github.com/sig-0/fxcross/storage/types"
)

// keySize is the number of random bytes in a key
const keySize = 32

var (
	ErrEmptyKey   = errors.New("empty API key")
	ErrUnknownKey = errors.New("unknown API key")
)

// Generate creates a new random, URL-safe key
func Generate() (string, error) {
	raw := make([]byte, keySize)

	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("unable to read random bytes, %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Hash returns the hex encoded SHA-256 digest of the key
func Hash(key string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(key)))

	return hex.EncodeToString(sum[:])
}

// Manager issues, expires and validates keys against a key store
type Manager struct {
	store storage.KeyStorage
	now   func() time.Time
}

// NewManager creates a new key manager
func NewManager(store storage.KeyStorage) *Manager {
	return &Manager{
		store: store,
		now:   time.Now,
	}
}

// Issue generates and stores a new key. The plain key is only returned here
func (m *Manager) Issue(ctx context.Context) (string, error) {
	key, err := Generate()
	if err != nil {
		return "", err
	}

	record := &types.APIKey{
		ID:        uuid.New(),
		Hash:      Hash(key),
		CreatedAt: m.now().UTC(),
	}

	if err = m.store.SaveAPIKey(ctx, record); err != nil {
		return "", fmt.Errorf("unable to save API key, %w", err)
	}

	return key, nil
}

// Expire removes the given key
func (m *Manager) Expire(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}

	deleted, err := m.store.DeleteAPIKey(ctx, Hash(key))
	if err != nil {
		return fmt.Errorf("unable to delete API key, %w", err)
	}

	if !deleted {
		return ErrUnknownKey
	}

	return nil
}

// Valid checks if the given key was issued and not expired
func (m *Manager) Valid(ctx context.Context, key string) (bool, error) {
	if strings.TrimSpace(key) == "" {
		return false, nil
	}

	ok, err := m.store.HasAPIKey(ctx, Hash(key))
	if err != nil {
		return false, fmt.Errorf("unable to look up API key, %w", err)
	}

	return ok, nil
}
