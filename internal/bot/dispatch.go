package bot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/Proton-105/citrine-bot/internal/domain"
	errors "github.com/Proton-105/citrine-bot/internal/errors"
	"github.com/Proton-105/citrine-bot/pkg/logger"
	"github.com/Proton-105/citrine-bot/pkg/metrics"
)

// EventKind names an inbound event type.
type EventKind int

const (
	EventMention EventKind = iota
	EventTimeline
	EventDirectMessage
	EventFollow
)

func (k EventKind) String() string {
	switch k {
	case EventMention:
		return "mention"
	case EventTimeline:
		return "timeline"
	case EventDirectMessage:
		return "direct_message"
	case EventFollow:
		return "follow"
	default:
		return "unknown"
	}
}

// Result describes how a dispatch ended.
type Result int

const (
	// ResultUnhandled means no module claimed the event.
	ResultUnhandled Result = iota
	// ResultHandled means a module claimed the event.
	ResultHandled
	// ResultContinued means a pending continuation consumed the event.
	ResultContinued
	// ResultIgnored means the event came from a bot or from the bot itself.
	ResultIgnored
	// ResultFaulted means a module failed and nothing claimed the event.
	ResultFaulted
	// ResultCancelled means the context ended during the settle delay.
	ResultCancelled
)

func (r Result) String() string {
	switch r {
	case ResultUnhandled:
		return "unhandled"
	case ResultHandled:
		return "handled"
	case ResultContinued:
		return "continued"
	case ResultIgnored:
		return "ignored"
	case ResultFaulted:
		return "faulted"
	case ResultCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// faultPolicy decides what a module fault does to the rest of a walk.
type faultPolicy int

const (
	// faultStop apologizes to the author and ends the walk.
	faultStop faultPolicy = iota
	// faultApologizeContinue apologizes, asking the admin to check the logs, and moves on.
	faultApologizeContinue
	// faultContinue logs and moves on.
	faultContinue
)

// HandleMention dispatches a post that mentions the bot.
func (e *Engine) HandleMention(ctx context.Context, post *domain.Post) Result {
	return e.dispatchPost(ctx, EventMention, post, e.delays.Mention, true, faultStop,
		func(ctx context.Context, m Module) (bool, error) {
			return m.OnMention(ctx, e, post)
		})
}

// HandleTimeline dispatches a post seen on the bot's timeline.
func (e *Engine) HandleTimeline(ctx context.Context, post *domain.Post) Result {
	return e.dispatchPost(ctx, EventTimeline, post, e.delays.Timeline, false, faultContinue,
		func(ctx context.Context, m Module) (bool, error) {
			return m.OnTimeline(ctx, e, post)
		})
}

// HandleDirectMessage dispatches a direct message sent to the bot.
func (e *Engine) HandleDirectMessage(ctx context.Context, post *domain.Post) Result {
	return e.dispatchPost(ctx, EventDirectMessage, post, e.delays.DirectMessage, true, faultApologizeContinue,
		func(ctx context.Context, m Module) (bool, error) {
			return m.OnDirectMessage(ctx, e, post)
		})
}

// HandleFollowed dispatches a new follower. Bot accounts are not filtered here.
func (e *Engine) HandleFollowed(ctx context.Context, u *domain.User) Result {
	if u == nil {
		return ResultIgnored
	}

	ctx, _ = logger.WithCorrelationID(ctx)
	log := logger.FromContext(ctx, e.log).With(
		slog.String("event", EventFollow.String()),
		slog.String("user_id", u.ID),
	)

	if !settle(ctx, e.delays.Follow) {
		return e.finish(log, EventFollow, ResultCancelled, time.Now())
	}

	start := time.Now()
	result := e.walk(ctx, log, EventFollow, nil, faultContinue, func(ctx context.Context, m Module) (bool, error) {
		return m.OnFollowed(ctx, e, u)
	})
	return e.finish(log, EventFollow, result, start)
}

func (e *Engine) dispatchPost(
	ctx context.Context,
	kind EventKind,
	post *domain.Post,
	delay time.Duration,
	checkContinuation bool,
	policy faultPolicy,
	handle func(context.Context, Module) (bool, error),
) Result {
	if e.ignored(post) {
		metrics.RecordDispatch(kind.String(), ResultIgnored.String(), 0)
		return ResultIgnored
	}

	ctx, _ = logger.WithCorrelationID(ctx)
	log := logger.FromContext(ctx, e.log).With(
		slog.String("event", kind.String()),
		slog.String("post_id", post.ID),
		slog.String("user_id", post.User.ID),
	)

	if !settle(ctx, delay) {
		return e.finish(log, kind, ResultCancelled, time.Now())
	}

	start := time.Now()
	if checkContinuation {
		if result, ok := e.resume(ctx, log, kind, post, policy); ok {
			return e.finish(log, kind, result, start)
		}
	}

	result := e.walk(ctx, log, kind, post, policy, handle)
	return e.finish(log, kind, result, start)
}

// resume hands post to the module waiting for it, if any.
func (e *Engine) resume(ctx context.Context, log *slog.Logger, kind EventKind, post *domain.Post, policy faultPolicy) (Result, bool) {
	entry, ok := e.continuations.TryConsume(post)
	if !ok {
		return 0, false
	}

	m := entry.Module
	log.Debug("continuation matched", slog.String("module", m.Name()))

	_, err := e.invoke(ctx, log, kind, m, func(ctx context.Context, m Module) (bool, error) {
		return m.OnContextualReply(ctx, e, post, entry.Args)
	})
	if err != nil {
		e.apologize(ctx, log, post, policy)
		return ResultFaulted, true
	}

	return ResultContinued, true
}

// walk offers the event to each module in priority order until one claims it.
func (e *Engine) walk(
	ctx context.Context,
	log *slog.Logger,
	kind EventKind,
	post *domain.Post,
	policy faultPolicy,
	handle func(context.Context, Module) (bool, error),
) Result {
	faulted := false

	for _, m := range e.pipeline.Snapshot() {
		handled, err := e.invoke(ctx, log, kind, m, handle)
		if err != nil {
			faulted = true
			e.apologize(ctx, log, post, policy)
			if policy == faultStop {
				return ResultFaulted
			}
			continue
		}

		if handled {
			log.Debug("event claimed", slog.String("module", m.Name()))
			return ResultHandled
		}
	}

	if faulted {
		return ResultFaulted
	}
	return ResultUnhandled
}

// invoke runs handle for m, converting errors and panics into module faults.
func (e *Engine) invoke(
	ctx context.Context,
	log *slog.Logger,
	kind EventKind,
	m Module,
	handle func(context.Context, Module) (bool, error),
) (handled bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic recovered in module",
				slog.String("module", m.Name()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			handled = false
			err = fmt.Errorf("panic recovered: %v", r)
		}

		if err != nil {
			fault := errors.NewModuleFaultError(m.Name(), kind.String(), err)
			metrics.RecordModuleFault(m.Name(), kind.String())
			e.errHandler.Handle(ctx, fault)
			handled = false
			err = fault
		}
	}()

	return handle(ctx, m)
}

func (e *Engine) apologize(ctx context.Context, log *slog.Logger, post *domain.Post, policy faultPolicy) {
	if post == nil {
		return
	}

	var text string
	switch policy {
	case faultStop:
		text = e.tr.T("error.apology")
	case faultApologizeContinue:
		text = e.tr.Tf("error.apology_dm", e.Identity().Admin())
	default:
		return
	}

	if _, err := e.shell.ReplyTo(ctx, post, text, ""); err != nil {
		log.Error("failed to send apology", slog.Any("error", err))
	}
}

func (e *Engine) finish(log *slog.Logger, kind EventKind, result Result, start time.Time) Result {
	duration := time.Since(start)
	metrics.RecordDispatch(kind.String(), result.String(), duration)
	log.Debug("dispatch finished", slog.String("result", result.String()), slog.Duration("duration", duration))
	return result
}

// ignored reports whether post was written by a bot or by the bot itself.
func (e *Engine) ignored(post *domain.Post) bool {
	if post == nil || post.User == nil {
		return true
	}
	if post.User.IsBot {
		return true
	}
	if e.shell == nil {
		return false
	}
	return post.User.SameAs(e.shell.Myself())
}

// settle waits d unless ctx ends first and reports whether the dispatch should proceed.
func settle(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
