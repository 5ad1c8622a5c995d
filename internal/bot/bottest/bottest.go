// Package bottest provides an in-memory Shell and engine wiring for tests of modules and commands.
package bottest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/Proton-105/citrine-bot/internal/bot"
	"github.com/Proton-105/citrine-bot/internal/domain"
	"github.com/Proton-105/citrine-bot/internal/permission"
	"github.com/Proton-105/citrine-bot/internal/state"
	"github.com/Proton-105/citrine-bot/internal/user"
)

// Me is the account the fake shell reports as the bot.
var Me = &domain.User{ID: "bot", Name: "citrine"}

// Reply is a message sent through Shell.
type Reply struct {
	To   *domain.Post
	Text string
	CW   string
	Sent *domain.Post
}

// Shell records replies instead of sending them.
type Shell struct {
	mu      sync.Mutex
	replies []Reply
	deleted []string
	seq     int
}

func (s *Shell) Myself() *domain.User { return Me }

func (s *Shell) ReplyTo(_ context.Context, post *domain.Post, text, cw string) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	sent := &domain.Post{
		ID:       fmt.Sprintf("sent-%d", s.seq),
		Text:     text,
		User:     Me,
		Reply:    post,
		IsDirect: post.IsDirect,
	}
	if post.IsDirect {
		sent.Recipient = post.User
	}

	s.replies = append(s.replies, Reply{To: post, Text: text, CW: cw, Sent: sent})
	return sent, nil
}

func (s *Shell) DeleteNote(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	return nil
}

// Replies returns every reply sent so far.
func (s *Shell) Replies() []Reply {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Reply(nil), s.replies...)
}

// Last returns the most recent reply.
func (s *Shell) Last(t testing.TB) Reply {
	t.Helper()

	replies := s.Replies()
	if len(replies) == 0 {
		t.Fatalf("no replies sent")
	}
	return replies[len(replies)-1]
}

// NewEngine wires an engine with zero settle delays, in-memory state and admin "owner".
func NewEngine(t testing.TB, opts ...bot.Option) (*bot.Engine, *Shell) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	shell := &Shell{}
	store := state.NewStore(state.NewMemoryStorage(), nil, log)
	users := user.NewService(store, log)

	opts = append([]bot.Option{bot.WithDelays(bot.Delays{})}, opts...)
	return bot.NewEngine(shell, users, permission.NewIdentity("owner", nil), log, opts...), shell
}

// Post builds a mention from author.
func Post(id, text string, author *domain.User) *domain.Post {
	return &domain.Post{ID: id, Text: text, User: author}
}
