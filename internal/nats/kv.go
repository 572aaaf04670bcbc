package nats

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/claudemd/internal/logger"
	"github.com/mark3labs/claudemd/internal/state"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// BucketName is the JetStream key-value bucket holding claudemd state.
const BucketName = "claudemd_state"

// SetupBucket creates or updates the state bucket. Only the latest revision
// of each key is kept.
func SetupBucket(ctx context.Context, js jetstream.JetStream) (jetstream.KeyValue, error) {
	return js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      BucketName,
		Description: "claudemd API key metadata",
		History:     1,
		Storage:     jetstream.FileStorage,
	})
}

// KVStorage implements state.Storage on a JetStream key-value bucket.
type KVStorage struct {
	kv jetstream.KeyValue

	// owned resources, closed by Close when set
	nc *nats.Conn
	ns *server.Server
}

var _ state.Storage = (*KVStorage)(nil)

// NewKVStorage wraps an existing bucket.
func NewKVStorage(kv jetstream.KeyValue) *KVStorage {
	return &KVStorage{kv: kv}
}

// OpenKVStorage starts an embedded server persisting to dataDir, connects in
// process and opens the state bucket. Close releases all of it.
func OpenKVStorage(ctx context.Context, dataDir string) (*KVStorage, error) {
	ns, err := StartEmbeddedNATS(dataDir)
	if err != nil {
		return nil, fmt.Errorf("starting nats: %w", err)
	}

	nc, err := ConnectInProcess(ns)
	if err != nil {
		_ = Shutdown(nil, ns)
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}

	js, err := CreateJetStream(nc)
	if err != nil {
		_ = Shutdown(nc, ns)
		return nil, fmt.Errorf("creating jetstream context: %w", err)
	}

	kv, err := SetupBucket(ctx, js)
	if err != nil {
		_ = Shutdown(nc, ns)
		return nil, fmt.Errorf("setting up %s bucket: %w", BucketName, err)
	}

	logger.Debug("KV storage ready in %s", dataDir)
	return &KVStorage{kv: kv, nc: nc, ns: ns}, nil
}

// Load returns the latest value for key.
func (s *KVStorage) Load(ctx context.Context, key string) ([]byte, error) {
	entry, err := s.kv.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, state.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", key, err)
	}
	return entry.Value(), nil
}

// Save puts value under key.
func (s *KVStorage) Save(ctx context.Context, key string, value []byte) error {
	if _, err := s.kv.Put(ctx, key, value); err != nil {
		return fmt.Errorf("putting %s: %w", key, err)
	}
	return nil
}

// Remove purges key so no history of it remains.
func (s *KVStorage) Remove(ctx context.Context, key string) error {
	err := s.kv.Purge(ctx, key)
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("purging %s: %w", key, err)
	}
	return nil
}

// Close shuts down the embedded server if this storage started it.
func (s *KVStorage) Close() error {
	if s.ns == nil {
		return nil
	}
	return Shutdown(s.nc, s.ns)
}
