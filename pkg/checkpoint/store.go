package checkpoint

import (
	"context"
	"os"

	"github.com/redis/go-redis/v9"
)

// Store persists the archive cursor: an opaque marker for the last batch
// of placements durably written to the history database. A rebuilt
// archive replays the event topic from this point instead of from zero.
type Store interface {
	// Save persists the cursor
	Save(ctx context.Context, cursor []byte) error

	// Load retrieves the last saved cursor. Returns nil if none exists.
	Load(ctx context.Context) ([]byte, error)
}

// FileStore implements Store using a local file
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Save(ctx context.Context, cursor []byte) error {
	return os.WriteFile(s.path, cursor, 0644)
}

func (s *FileStore) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// RedisStore implements Store using Redis
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{
		client: client,
		key:    key,
	}
}

func (s *RedisStore) Save(ctx context.Context, cursor []byte) error {
	return s.client.Set(ctx, s.key, cursor, 0).Err()
}

func (s *RedisStore) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}
