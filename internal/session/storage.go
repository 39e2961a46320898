package session

import (
	"context"
	"sync"
	"time"

	"bitbucket.org/hovr/booking-site/internal/booking"
	"bitbucket.org/hovr/booking-site/internal/tools/caching"
	"bitbucket.org/hovr/booking-site/internal/tools/slowlog"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// LockTTL bounds how long a crashed submission can keep a session locked.
const LockTTL = 1 * time.Minute

// releaseScript deletes a lock only while it still holds the owner given on acquire.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type Storage interface {
	// AcquireLock returns the owner to release the lock with.
	AcquireLock(ctx context.Context, lockKey string) (owner string, acquired bool, err error)
	// ReleaseLock leaves a lock alone that expired and was acquired by someone else.
	ReleaseLock(ctx context.Context, lockKey string, owner string)
	StoreState(ctx context.Context, stateKey string, state booking.State, ttl time.Duration) error
	// FetchState returns nil and no error when nothing is stored under stateKey.
	FetchState(ctx context.Context, stateKey string) (*booking.State, error)
}

type storage struct {
	cache   *caching.Cacher
	slowLog slowlog.Logger
}

func (s *storage) StoreState(ctx context.Context, stateKey string, state booking.State, ttl time.Duration) error {
	s.slowLog.Start("session:state:store")
	defer s.slowLog.Stop("session:state:store")

	return s.cache.Store(ctx, stateKey, state, ttl)
}

func (s *storage) FetchState(ctx context.Context, stateKey string) (*booking.State, error) {
	s.slowLog.Start("session:state:fetch")
	defer s.slowLog.Stop("session:state:fetch")

	state := booking.State{}
	found, err := s.cache.Fetch(ctx, stateKey, &state)
	if err != nil || !found {
		return nil, err
	}

	return &state, nil
}

type redisStorage struct {
	storage
	redis    *redis.Client
	newOwner func() string
}

func NewRedisStorage(redisClient *redis.Client, log *zerolog.Logger) *redisStorage {
	return &redisStorage{
		storage: storage{
			cache:   caching.NewRedisCache(redisClient),
			slowLog: slowlog.CreateLogger(log),
		},
		redis:    redisClient,
		newOwner: uuid.NewString,
	}
}

func (s *redisStorage) AcquireLock(ctx context.Context, lockKey string) (string, bool, error) {
	owner := s.newOwner()
	acquired, err := s.redis.SetNX(ctx, lockKey, owner, LockTTL).Result()
	if err != nil || !acquired {
		return "", false, err
	}
	return owner, true, nil
}

func (s *redisStorage) ReleaseLock(ctx context.Context, lockKey string, owner string) {
	releaseScript.Run(context.Background(), s.redis, []string{lockKey}, owner)
}

type memoryLock struct {
	owner   string
	expires time.Time
}

type memoryStorage struct {
	storage
	now   func() time.Time
	locks map[string]memoryLock
	mu    sync.Mutex
}

// NewMemoryStorage keeps sessions in process. State is lost on restart.
func NewMemoryStorage(log *zerolog.Logger) *memoryStorage {
	return newMemoryStorage(log, time.Now)
}

func newMemoryStorage(log *zerolog.Logger, now func() time.Time) *memoryStorage {
	return &memoryStorage{
		storage: storage{
			cache:   caching.New(caching.NewMemoryEngine(now)),
			slowLog: slowlog.CreateLogger(log),
		},
		now:   now,
		locks: make(map[string]memoryLock),
	}
}

func (s *memoryStorage) AcquireLock(ctx context.Context, lockKey string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if lock, ok := s.locks[lockKey]; ok && now.Before(lock.expires) {
		return "", false, nil
	}

	owner := uuid.NewString()
	s.locks[lockKey] = memoryLock{owner: owner, expires: now.Add(LockTTL)}
	return owner, true, nil
}

func (s *memoryStorage) ReleaseLock(ctx context.Context, lockKey string, owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lock, ok := s.locks[lockKey]; ok && lock.owner == owner {
		delete(s.locks, lockKey)
	}
}
