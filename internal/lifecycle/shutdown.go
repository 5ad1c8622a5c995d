// Package lifecycle runs the bot's shutdown hooks.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Hook describes a named shutdown hook.
type Hook struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Shutdown runs registered hooks when the process stops. Hooks in the same
// stage run concurrently; stages run in ascending order.
type Shutdown struct {
	mu     sync.Mutex
	stages map[int][]Hook
	log    *slog.Logger
}

// Stages used by cmd/bot.
const (
	// StageResources closes storage connections.
	StageResources = iota
	// StageTelemetry flushes error reporting after everything else has logged.
	StageTelemetry
)

// NewShutdown constructs a new Shutdown coordinator.
func NewShutdown(log *slog.Logger) *Shutdown {
	if log == nil {
		log = slog.Default()
	}

	return &Shutdown{
		stages: make(map[int][]Hook),
		log:    log,
	}
}

// Register adds a named shutdown hook to stage.
func (s *Shutdown) Register(stage int, name string, fn func(context.Context) error) {
	if fn == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stages[stage] = append(s.stages[stage], Hook{Name: name, Fn: fn})
}

// Execute runs every stage in order and waits for its hooks. All hook errors are joined.
func (s *Shutdown) Execute(ctx context.Context) error {
	s.mu.Lock()
	order := make([]int, 0, len(s.stages))
	stages := make(map[int][]Hook, len(s.stages))
	total := 0
	for stage, hooks := range s.stages {
		order = append(order, stage)
		stages[stage] = append([]Hook(nil), hooks...)
		total += len(hooks)
	}
	s.mu.Unlock()

	slices.Sort(order)

	start := time.Now()
	s.log.Info("shutdown sequence started", slog.Int("hook_count", total))

	var errs []error
	for _, stage := range order {
		errs = append(errs, s.runStage(ctx, stages[stage])...)
	}

	s.log.Info("shutdown sequence finished", slog.Duration("elapsed", time.Since(start)))

	return errors.Join(errs...)
}

func (s *Shutdown) runStage(ctx context.Context, hooks []Hook) []error {
	var (
		wg    sync.WaitGroup
		errMu sync.Mutex
		errs  []error
	)

	for _, hook := range hooks {
		h := hook

		wg.Add(1)
		go func() {
			defer wg.Done()

			s.log.Info("running shutdown hook", slog.String("hook", h.Name))

			if err := h.Fn(ctx); err != nil {
				s.log.Error("shutdown hook failed", slog.String("hook", h.Name), slog.Any("error", err))
				errMu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", h.Name, err))
				errMu.Unlock()
				return
			}

			s.log.Info("shutdown hook completed", slog.String("hook", h.Name))
		}()
	}

	wg.Wait()
	return errs
}
