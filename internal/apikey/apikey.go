// Package apikey manages the Anthropic API key for a session. The key itself
// lives only in memory; a small metadata record (fingerprint and last use) is
// persisted so the UI can tell a returning user that a key was set before.
package apikey

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf16"

	"github.com/mark3labs/claudemd/internal/logger"
	"github.com/mark3labs/claudemd/internal/state"
)

// StateKey is the storage key of the metadata record.
const StateKey = "claude-generator-api-state"

const (
	keyPrefix    = "sk-ant-"
	minKeyLength = 21
	// ExpiryAge is how long after last use a key counts as stale.
	ExpiryAge = 30 * 24 * time.Hour
)

// ErrInvalidFormat matches every *FormatError.
var ErrInvalidFormat = errors.New("invalid API key format")

// FormatError is returned by SetAPIKey for values that are not shaped like
// an Anthropic key.
type FormatError struct{}

func (*FormatError) Error() string {
	return `Invalid API key format. Anthropic API keys should start with "sk-ant-"`
}

func (*FormatError) Unwrap() error { return ErrInvalidFormat }

// Metadata is the persisted record. It never contains the key.
type Metadata struct {
	HasKey   bool       `json:"has_key"`
	KeyHash  string     `json:"key_hash,omitempty"`
	LastUsed *time.Time `json:"last_used,omitempty"`
}

// SecurityInfo describes how the key is handled, for display.
type SecurityInfo struct {
	StorageMethod   string
	DataStored      string
	Recommendations []string
}

// Verifier checks a key against the remote service.
type Verifier interface {
	TestKey(ctx context.Context, apiKey string) (bool, error)
}

// Manager owns the in-memory key and its persisted metadata. Safe for
// concurrent use.
type Manager struct {
	mu       sync.RWMutex
	key      string
	storage  state.Storage
	verifier Verifier
	now      func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager. A nil storage keeps metadata in memory; a
// nil verifier makes TestAPIKey always report false.
func NewManager(storage state.Storage, verifier Verifier, opts ...Option) *Manager {
	if storage == nil {
		storage = state.NewMemoryStorage()
	}
	m := &Manager{storage: storage, verifier: verifier, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ValidateFormat checks the shape of a trimmed key.
func ValidateFormat(key string) error {
	if !strings.HasPrefix(key, keyPrefix) || len(key) < minKeyLength {
		return &FormatError{}
	}
	return nil
}

// SetAPIKey trims raw, checks its format, keeps it in memory and persists
// fresh metadata. Failing to persist metadata does not fail the call.
func (m *Manager) SetAPIKey(raw string) error {
	key := strings.TrimSpace(raw)
	if err := ValidateFormat(key); err != nil {
		return err
	}

	m.mu.Lock()
	m.key = key
	m.mu.Unlock()

	now := m.now().UTC()
	meta := Metadata{HasKey: true, KeyHash: HashAPIKey(key), LastUsed: &now}
	if err := state.SaveJSON(context.Background(), m.storage, StateKey, meta); err != nil {
		logger.Warn("Failed to save API key metadata: %v", err)
	}
	logger.Info("API key set (%s)", Mask(key))
	return nil
}

// APIKey returns the in-memory key. Persisted metadata is never consulted.
func (m *Manager) APIKey() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.key, m.key != ""
}

// HasAPIKey reports whether a key is held in memory.
func (m *Manager) HasAPIKey() bool {
	_, ok := m.APIKey()
	return ok
}

// ClearAPIKey forgets the key and removes the metadata record.
func (m *Manager) ClearAPIKey() {
	m.mu.Lock()
	m.key = ""
	m.mu.Unlock()

	if err := m.storage.Remove(context.Background(), StateKey); err != nil {
		logger.Warn("Failed to remove API key metadata: %v", err)
	}
	logger.Info("API key cleared")
}

// TestAPIKey verifies the in-memory key remotely. It returns false without
// any request when no key is set, and false on any failure.
func (m *Manager) TestAPIKey(ctx context.Context) bool {
	key, ok := m.APIKey()
	if !ok || m.verifier == nil {
		return false
	}
	valid, err := m.verifier.TestKey(ctx, key)
	if err != nil {
		logger.Warn("API key test failed: %v", err)
		return false
	}
	return valid
}

// Metadata reads the persisted record. Missing or unreadable records yield
// the zero value.
func (m *Manager) Metadata() Metadata {
	var meta Metadata
	err := state.LoadJSON(context.Background(), m.storage, StateKey, &meta)
	if err != nil {
		if !errors.Is(err, state.ErrNotFound) {
			logger.Warn("Failed to read API key metadata: %v", err)
		}
		return Metadata{}
	}
	return meta
}

// IsAPIKeyExpired reports whether the key was last used more than ExpiryAge
// ago. No recorded use means not expired.
func (m *Manager) IsAPIKeyExpired() bool {
	meta := m.Metadata()
	if meta.LastUsed == nil {
		return false
	}
	return m.now().Sub(*meta.LastUsed) > ExpiryAge
}

// SecurityInfo describes the storage policy.
func (m *Manager) SecurityInfo() SecurityInfo {
	return SecurityInfo{
		StorageMethod: "Memory only (not persisted)",
		DataStored:    "API key hash and usage metadata in local state storage",
		Recommendations: []string{
			"API key is never written to disk or to the state store",
			"You will need to re-enter your API key each session",
			"Only non-sensitive metadata (hash, last used date) is stored",
			"Run `claudemd key clear` to remove all stored metadata",
			"Use a dedicated API key with minimal permissions",
		},
	}
}

// HashAPIKey returns a display fingerprint of key: the 31-multiplier rolling
// hash over UTF-16 code units, wrapped to int32 and printed in base 16.
// It is not a cryptographic digest.
func HashAPIKey(key string) string {
	var h int32
	for _, c := range utf16.Encode([]rune(key)) {
		h = h*31 + int32(c)
	}
	return strconv.FormatInt(int64(h), 16)
}

// Mask shortens key for display, keeping the prefix and last four characters.
func Mask(key string) string {
	if len(key) <= len(keyPrefix)+4 {
		return strings.Repeat("•", len(key))
	}
	return key[:len(keyPrefix)] + "…" + key[len(key)-4:]
}
