package middleware

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"gopkg.in/telebot.v3"

	"github.com/Proton-105/citrine-bot/internal/ratelimit"
)

// FloodGuard silently drops updates from a sender who exceeds limit updates per window.
type FloodGuard struct {
	limiter ratelimit.Limiter
	limit   int
	window  time.Duration
	log     *slog.Logger
}

// NewFloodGuard constructs a FloodGuard. A non-positive limit disables it.
func NewFloodGuard(limiter ratelimit.Limiter, limit int, window time.Duration, log *slog.Logger) *FloodGuard {
	if log == nil {
		log = slog.Default()
	}

	return &FloodGuard{
		limiter: limiter,
		limit:   limit,
		window:  window,
		log:     log,
	}
}

// Handle is a telebot middleware. Limiter errors let the update through.
func (g *FloodGuard) Handle(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if g.limiter == nil || g.limit <= 0 || g.window <= 0 {
			return next(c)
		}

		sender := c.Sender()
		if sender == nil {
			return next(c)
		}

		userID := strconv.FormatInt(sender.ID, 10)
		result, err := g.limiter.Check(context.Background(), "flood:"+userID, g.limit, g.window)
		if err != nil {
			g.log.Warn("rate limiter error", slog.String("user_id", userID), slog.Any("error", err))
			return next(c)
		}

		if !result.Allowed {
			g.log.Warn("update dropped: flood limit exceeded",
				slog.String("user_id", userID),
				slog.Time("reset_at", result.ResetAt),
			)
			return nil
		}

		return next(c)
	}
}
