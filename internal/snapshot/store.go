package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
)

const DefaultKey = "ballbox:snapshot"

// Store persists the single sandbox snapshot.
type Store interface {
	Save(ctx context.Context, s *Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
	Clear(ctx context.Context) error
	Close() error
}

// FileStore keeps the snapshot as JSON under a data directory.
type FileStore struct {
	baseDir string
	name    string
}

func NewFileStore(baseDir string) *FileStore {
	return &FileStore{baseDir: baseDir, name: "snapshot.json"}
}

func (f *FileStore) Path() string {
	return filepath.Join(f.baseDir, f.name)
}

func (f *FileStore) Save(ctx context.Context, s *Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(f.baseDir, 0755); err != nil {
		return err
	}
	data, err := Encode(s)
	if err != nil {
		return err
	}
	tmp := f.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, f.Path())
}

func (f *FileStore) Load(ctx context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(f.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return Decode(data)
}

func (f *FileStore) Clear(ctx context.Context) error {
	err := os.Remove(f.Path())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (f *FileStore) Close() error { return nil }

// RedisStore keeps the snapshot under one key.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{client: client, key: key}
}

// DialRedis connects and verifies the connection with a ping.
func DialRedis(ctx context.Context, redisURL, key string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("snapshot: redis ping: %w", err)
	}

	return NewRedisStore(client, key), nil
}

func (r *RedisStore) Save(ctx context.Context, s *Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := Encode(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, data, 0).Err()
}

func (r *RedisStore) Load(ctx context.Context) (*Snapshot, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return Decode(data)
}

func (r *RedisStore) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Options selects and configures a backend.
type Options struct {
	Backend  string
	Dir      string
	RedisURL string
	Key      string
}

func Open(ctx context.Context, opt Options) (Store, error) {
	switch opt.Backend {
	case "", "file":
		return NewFileStore(opt.Dir), nil
	case "redis":
		return DialRedis(ctx, opt.RedisURL, opt.Key)
	default:
		return nil, fmt.Errorf("snapshot: unknown backend %q", opt.Backend)
	}
}
