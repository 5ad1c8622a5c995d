package bot

import (
	"context"

	"github.com/Proton-105/citrine-bot/internal/continuation"
	"github.com/Proton-105/citrine-bot/internal/domain"
)

// Module is a pluggable event handler. Each On* method reports whether the
// module claimed the event; a claim stops the pipeline walk.
type Module interface {
	Name() string
	// Priority orders the pipeline; lower runs first.
	Priority() int
	OnMention(ctx context.Context, e *Engine, post *domain.Post) (bool, error)
	OnTimeline(ctx context.Context, e *Engine, post *domain.Post) (bool, error)
	OnDirectMessage(ctx context.Context, e *Engine, post *domain.Post) (bool, error)
	OnFollowed(ctx context.Context, e *Engine, u *domain.User) (bool, error)
	// OnContextualReply receives a reply to a post the module registered with Engine.RegisterContext.
	OnContextualReply(ctx context.Context, e *Engine, post *domain.Post, args continuation.Args) (bool, error)
}

// BaseModule implements every handler as "not claimed". Embed it and override what the module needs.
type BaseModule struct{}

func (BaseModule) Priority() int { return 0 }

func (BaseModule) OnMention(context.Context, *Engine, *domain.Post) (bool, error) {
	return false, nil
}

func (BaseModule) OnTimeline(context.Context, *Engine, *domain.Post) (bool, error) {
	return false, nil
}

func (BaseModule) OnDirectMessage(context.Context, *Engine, *domain.Post) (bool, error) {
	return false, nil
}

func (BaseModule) OnFollowed(context.Context, *Engine, *domain.User) (bool, error) {
	return false, nil
}

func (BaseModule) OnContextualReply(context.Context, *Engine, *domain.Post, continuation.Args) (bool, error) {
	return false, nil
}
