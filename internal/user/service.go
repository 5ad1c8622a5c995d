// Package user exposes the per-user affinity rating and nickname accessors.
package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Proton-105/citrine-bot/internal/domain"
	"github.com/Proton-105/citrine-bot/internal/ratelimit"
	"github.com/Proton-105/citrine-bot/internal/state"
)

// Storage keys owned by this package.
const (
	KeyRating   = "rating"
	KeyNickname = "nickname"
)

const (
	defaultNicknameFormat = "%s"
	defaultLikeLimit      = 3
	defaultLikeWindow     = 24 * time.Hour
)

// Service provides rating and nickname operations over the user state store.
type Service struct {
	store          *state.Store
	limiter        ratelimit.Limiter
	likeLimit      int
	likeWindow     time.Duration
	nicknameFormat string
	log            *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithLikeLimit bounds how many LikeWithLimit increments a user may receive per window.
func WithLikeLimit(limiter ratelimit.Limiter, limit int, window time.Duration) Option {
	return func(s *Service) {
		s.limiter = limiter
		if limit > 0 {
			s.likeLimit = limit
		}
		if window > 0 {
			s.likeWindow = window
		}
	}
}

// WithNicknameFormat sets the fmt pattern used to derive the default nickname from a display name.
func WithNicknameFormat(format string) Option {
	return func(s *Service) {
		if strings.Contains(format, "%s") {
			s.nicknameFormat = format
		}
	}
}

// NewService constructs a new Service instance.
func NewService(store *state.Store, log *slog.Logger, opts ...Option) *Service {
	if log == nil {
		log = slog.Default()
	}

	s := &Service{
		store:          store,
		likeLimit:      defaultLikeLimit,
		likeWindow:     defaultLikeWindow,
		nicknameFormat: defaultNicknameFormat,
		log:            log,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.limiter == nil {
		s.limiter = ratelimit.NewMemoryLimiter()
	}

	return s
}

// Store exposes the underlying store for modules that keep their own keys.
func (s *Service) Store() *state.Store {
	return s.store
}

// RatingValue returns the raw rating, 0 when the user has none.
func (s *Service) RatingValue(ctx context.Context, userID string) (int, error) {
	value, err := state.GetOr(ctx, s.store, userID, KeyRating, 0)
	if err != nil {
		s.logError("rating_value", userID, err)
		return 0, err
	}

	return value, nil
}

// Rating returns the user's tier.
func (s *Service) Rating(ctx context.Context, userID string) (Rating, error) {
	value, err := s.RatingValue(ctx, userID)
	if err != nil {
		return RatingNormal, err
	}

	return TierOf(value), nil
}

// SetRating overwrites the user's rating.
func (s *Service) SetRating(ctx context.Context, userID string, value int) error {
	if err := s.store.Set(ctx, userID, KeyRating, value); err != nil {
		s.logError("set_rating", userID, err)
		return err
	}

	return nil
}

// Like raises the rating by amount and returns the new value.
func (s *Service) Like(ctx context.Context, userID string, amount int) (int, error) {
	value, err := state.Update(ctx, s.store, userID, KeyRating, 0, func(current int) int {
		return current + amount
	})
	if err != nil {
		s.logError("like", userID, err)
		return 0, err
	}

	return value, nil
}

// Dislike lowers the rating by amount and returns the new value.
func (s *Service) Dislike(ctx context.Context, userID string, amount int) (int, error) {
	return s.Like(ctx, userID, -amount)
}

// LikeWithLimit raises the rating by one unless the user already received the
// configured number of limited likes within the window. It reports whether the rating changed.
func (s *Service) LikeWithLimit(ctx context.Context, userID string) (bool, error) {
	result, err := s.limiter.Check(ctx, "like:"+userID, s.likeLimit, s.likeWindow)
	if err != nil {
		s.logError("like_with_limit", userID, err)
		return false, fmt.Errorf("check like limit: %w", err)
	}
	if !result.Allowed {
		return false, nil
	}

	if _, err := s.Like(ctx, userID, 1); err != nil {
		return false, err
	}

	return true, nil
}

// Nickname returns the nickname the bot uses for u, derived from the display name when unset.
func (s *Service) Nickname(ctx context.Context, u *domain.User) (string, error) {
	if u == nil {
		return "", fmt.Errorf("nickname: nil user")
	}

	nickname, err := state.GetOr(ctx, s.store, u.ID, KeyNickname, s.DefaultNickname(u))
	if err != nil {
		s.logError("nickname", u.ID, err)
		return s.DefaultNickname(u), err
	}

	return nickname, nil
}

// DefaultNickname derives a nickname from the display name.
func (s *Service) DefaultNickname(u *domain.User) string {
	return fmt.Sprintf(s.nicknameFormat, u.Name)
}

// SetNickname stores a nickname for u.
func (s *Service) SetNickname(ctx context.Context, u *domain.User, nickname string) error {
	if u == nil {
		return fmt.Errorf("set nickname: nil user")
	}

	if err := s.store.Set(ctx, u.ID, KeyNickname, strings.TrimSpace(nickname)); err != nil {
		s.logError("set_nickname", u.ID, err)
		return err
	}

	return nil
}

// ResetNickname forgets the stored nickname so the default applies again.
func (s *Service) ResetNickname(ctx context.Context, u *domain.User) error {
	if u == nil {
		return fmt.Errorf("reset nickname: nil user")
	}

	if err := s.store.Clear(ctx, u.ID, KeyNickname); err != nil {
		s.logError("reset_nickname", u.ID, err)
		return err
	}

	return nil
}

func (s *Service) logError(operation string, userID string, err error) {
	if s == nil || s.log == nil || err == nil {
		return
	}

	s.log.Error("user service operation failed",
		slog.String("operation", operation),
		slog.String("user_id", userID),
		slog.Any("error", err),
	)
}
