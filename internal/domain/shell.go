package domain

import "context"

// Shell is the transport binding the engine talks back through.
type Shell interface {
	// Myself returns the bot's own account.
	Myself() *User
	// ReplyTo answers post with text; cw is an optional content warning.
	ReplyTo(ctx context.Context, post *Post, text string, cw string) (*Post, error)
	// DeleteNote removes a post previously sent by the bot.
	DeleteNote(ctx context.Context, id string) error
}
