package caching

import (
	"bytes"
	"compress/flate"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Engine stores raw bytes. Fetch returns nil bytes and no error on a miss.
type Engine interface {
	Store(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Fetch(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Cacher keeps JSON values deflate-compressed in an Engine.
type Cacher struct {
	engine Engine
}

func New(engine Engine) *Cacher {
	return &Cacher{engine: engine}
}

func NewRedisCache(redisClient *redis.Client) *Cacher {
	return New(&redisCache{redis: redisClient})
}

func NewMemoryCache() *Cacher {
	return New(NewMemoryEngine(time.Now))
}

func Deflate(uncompressed []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer, _ := flate.NewWriter(&buffer, flate.BestSpeed)

	_, err := writer.Write(uncompressed)
	if err != nil {
		return nil, err
	}

	err = writer.Close()
	if err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

func Inflate(compressed []byte) ([]byte, error) {
	buffer := bytes.NewReader(compressed)
	reader := flate.NewReader(buffer)
	defer reader.Close()

	var out bytes.Buffer
	_, err := out.ReadFrom(reader)
	if err != nil {
		return []byte{}, err
	}

	return out.Bytes(), nil
}

func (c *Cacher) Store(ctx context.Context, key string, value any, ttl time.Duration) error {
	bytes, err := json.Marshal(value)
	if err != nil {
		return err
	}

	compressed, err := Deflate(bytes)
	if err != nil {
		return err
	}

	return c.engine.Store(ctx, key, compressed, ttl)
}

// Fetch decodes the value under key into destination and reports whether there was one.
func (c *Cacher) Fetch(ctx context.Context, key string, destination any) (bool, error) {
	value, err := c.engine.Fetch(ctx, key)
	if err != nil {
		return false, err
	}

	if value == nil {
		return false, nil
	}

	uncompressed, err := Inflate(value)
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(uncompressed, destination); err != nil {
		return false, err
	}

	return true, nil
}

func (c *Cacher) Delete(ctx context.Context, key string) error {
	return c.engine.Delete(ctx, key)
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

type memoryEngine struct {
	now     func() time.Time
	entries map[string]memoryEntry
	sync.Mutex
}

// NewMemoryEngine keeps values in process. Expired entries are dropped on access and on store.
func NewMemoryEngine(now func() time.Time) *memoryEngine {
	return &memoryEngine{
		now:     now,
		entries: make(map[string]memoryEntry),
	}
}

func (m *memoryEngine) Store(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.Lock()
	defer m.Unlock()

	now := m.now()
	for k, entry := range m.entries {
		if !now.Before(entry.expires) {
			delete(m.entries, k)
		}
	}

	m.entries[key] = memoryEntry{value: value, expires: now.Add(ttl)}
	return nil
}

func (m *memoryEngine) Fetch(ctx context.Context, key string) ([]byte, error) {
	m.Lock()
	defer m.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, nil
	}

	if !m.now().Before(entry.expires) {
		delete(m.entries, key)
		return nil, nil
	}

	return entry.value, nil
}

func (m *memoryEngine) Delete(ctx context.Context, key string) error {
	m.Lock()
	delete(m.entries, key)
	m.Unlock()
	return nil
}
