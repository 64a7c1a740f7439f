package nats

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/codewandler/todosrv-go/ports/kv"
)

// KvConfig configures a KvStore.
type KvConfig struct {
	// Connect defaults to ConnectDefault.
	Connect Connector
	Bucket  string
	// MaxBytes caps the bucket size. Zero means 1 MiB.
	MaxBytes int64
}

// KvStore implements kv.Store on a JetStream key/value bucket.
type KvStore struct {
	kv      jetstream.KeyValue
	release closeFunc
}

// NewKvStore connects and creates (or reuses) the bucket.
func NewKvStore(cfg KvConfig) (*KvStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket is required")
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = 1024 * 1024
	}

	doConnect := cfg.Connect
	if doConnect == nil {
		doConnect = ConnectDefault()
	}

	nc, release, err := doConnect()
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		release()
		return nil, err
	}

	bucket, err := js.CreateOrUpdateKeyValue(context.Background(), jetstream.KeyValueConfig{
		Bucket:   cfg.Bucket,
		Storage:  jetstream.FileStorage,
		MaxBytes: cfg.MaxBytes,
	})
	if err != nil {
		release()
		return nil, fmt.Errorf("open bucket %s: %w", cfg.Bucket, err)
	}

	return &KvStore{kv: bucket, release: release}, nil
}

func (k *KvStore) Put(ctx context.Context, key string, data []byte) error {
	if _, err := k.kv.Put(ctx, encodeKey(key), data); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (k *KvStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := k.kv.Get(ctx, encodeKey(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, kv.ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return v.Value(), nil
}

func (k *KvStore) Delete(ctx context.Context, key string) error {
	err := k.kv.Delete(ctx, encodeKey(key))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying connection lease.
func (k *KvStore) Close() {
	k.release()
}

// encodeKey maps arbitrary keys onto the charset JetStream allows.
func encodeKey(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

var _ kv.Store = (*KvStore)(nil)
