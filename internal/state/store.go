package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Store is the accessor modules use for per-user values.
// Operations on the same user are serialized through the Locker; different users never contend.
type Store struct {
	storage Storage
	locker  Locker
	log     *slog.Logger
}

// NewStore wraps storage with per-user serialization. A nil locker defaults to a LocalLocker.
func NewStore(storage Storage, locker Locker, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	if locker == nil {
		locker = NewLocalLocker()
	}

	return &Store{
		storage: storage,
		locker:  locker,
		log:     log,
	}
}

// Get decodes the value stored under key into dst and reports whether it existed.
func (s *Store) Get(ctx context.Context, userID, key string, dst any) (bool, error) {
	var found bool
	err := s.withLock(ctx, userID, func() error {
		var err error
		found, err = s.load(ctx, userID, key, dst)
		return err
	})

	return found, err
}

// Set encodes value and stores it under key.
func (s *Store) Set(ctx context.Context, userID, key string, value any) error {
	return s.withLock(ctx, userID, func() error {
		return s.save(ctx, userID, key, value)
	})
}

// Clear removes key from the user's record.
func (s *Store) Clear(ctx context.Context, userID, key string) error {
	return s.withLock(ctx, userID, func() error {
		if err := s.storage.Clear(ctx, userID, key); err != nil {
			return fmt.Errorf("clear %s for user %s: %w", key, userID, err)
		}
		return nil
	})
}

// GetOr returns the value under key, or def when the user has none.
func GetOr[T any](ctx context.Context, s *Store, userID, key string, def T) (T, error) {
	value := def
	if _, err := s.Get(ctx, userID, key, &value); err != nil {
		return def, err
	}

	return value, nil
}

// Update applies fn to the current value (def when absent) and stores the result
// without letting another operation on the same user interleave.
func Update[T any](ctx context.Context, s *Store, userID, key string, def T, fn func(T) T) (T, error) {
	var result T
	err := s.withLock(ctx, userID, func() error {
		current := def
		if _, err := s.load(ctx, userID, key, &current); err != nil {
			return err
		}

		result = fn(current)
		return s.save(ctx, userID, key, result)
	})

	return result, err
}

func (s *Store) withLock(ctx context.Context, userID string, fn func() error) error {
	unlock, err := s.locker.Lock(ctx, userID)
	if err != nil {
		return fmt.Errorf("lock user %s: %w", userID, err)
	}
	defer unlock()

	return fn()
}

func (s *Store) load(ctx context.Context, userID, key string, dst any) (bool, error) {
	data, err := s.storage.Get(ctx, userID, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get %s for user %s: %w", key, userID, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		s.log.Error("failed to decode user value", "user_id", userID, "key", key, "error", err)
		return false, fmt.Errorf("decode %s for user %s: %w", key, userID, err)
	}

	return true, nil
}

func (s *Store) save(ctx context.Context, userID, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s for user %s: %w", key, userID, err)
	}

	if err := s.storage.Set(ctx, userID, key, data); err != nil {
		return fmt.Errorf("set %s for user %s: %w", key, userID, err)
	}

	return nil
}
