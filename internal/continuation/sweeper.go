package continuation

import (
	"context"
	"log/slog"
	"time"
)

// Sweepable is implemented by Table.
type Sweepable interface {
	Sweep() int
}

// Sweeper evicts expired continuations on a schedule.
type Sweeper struct {
	table    Sweepable
	interval time.Duration
	log      *slog.Logger
}

// NewSweeper constructs a Sweeper instance.
func NewSweeper(table Sweepable, interval time.Duration, log *slog.Logger) *Sweeper {
	if log == nil {
		log = slog.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}

	return &Sweeper{
		table:    table,
		interval: interval,
		log:      log,
	}
}

// Run starts the sweep loop until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	if s == nil || s.table == nil {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("continuation sweeper stopped", slog.Any("reason", ctx.Err()))
			return
		case <-ticker.C:
			if removed := s.table.Sweep(); removed > 0 {
				s.log.Debug("expired continuations removed", slog.Int("count", removed))
			}
		}
	}
}
