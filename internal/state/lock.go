package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	userLockKeyPattern = "user:lock:%s"
	lockTTL            = 5 * time.Second
	lockRetryInterval  = 10 * time.Millisecond
)

// ErrLockLost indicates that a Redis lock expired before it was released.
var ErrLockLost = errors.New("user lock expired before release")

// Locker serializes operations on a single user's record.
type Locker interface {
	// Lock blocks until the user's lock is held or ctx is done.
	Lock(ctx context.Context, userID string) (unlock func(), err error)
}

type userLock struct {
	ch   chan struct{}
	refs int
}

// LocalLocker is an in-process Locker keyed by user id. Idle entries are dropped.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

var _ Locker = (*LocalLocker)(nil)

// NewLocalLocker creates an in-process Locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*userLock)}
}

// Lock acquires the per-user lock.
func (l *LocalLocker) Lock(ctx context.Context, userID string) (func(), error) {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{ch: make(chan struct{}, 1)}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	select {
	case ul.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(userID, ul)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-ul.ch
			l.release(userID, ul)
		})
	}, nil
}

func (l *LocalLocker) release(userID string, ul *userLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ul.refs--
	if ul.refs == 0 {
		delete(l.locks, userID)
	}
}

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serializes access across processes with a SETNX lock per user.
type RedisLocker struct {
	client redis.UniversalClient
	log    *slog.Logger
	ttl    time.Duration
}

var _ Locker = (*RedisLocker)(nil)

// NewRedisLocker creates a Locker backed by Redis.
func NewRedisLocker(client redis.UniversalClient, log *slog.Logger) *RedisLocker {
	if log == nil {
		log = slog.Default()
	}

	return &RedisLocker{
		client: client,
		log:    log,
		ttl:    lockTTL,
	}
}

// Lock spins on SETNX until the lock is acquired or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, userID string) (func(), error) {
	key := fmt.Sprintf(userLockKeyPattern, userID)
	token := uuid.NewString()

	for {
		acquired, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			l.log.Error("failed to acquire user lock", "user_id", userID, "error", err)
			return nil, err
		}
		if acquired {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// the caller's ctx may already be cancelled; releasing must still happen
			released, err := unlockScript.Run(context.WithoutCancel(ctx), l.client, []string{key}, token).Int()
			switch {
			case err != nil:
				l.log.Error("failed to release user lock", "user_id", userID, "error", err)
			case released == 0:
				l.log.Warn("user lock released after expiry", "user_id", userID, "error", ErrLockLost)
			}
		})
	}, nil
}
