// Package continuation routes a reply back to the module that asked a question.
//
// A module registers the post it sent (or, for direct messages, the user it
// is talking to) together with arbitrary Args. The next reply to that post,
// or the next direct message from that user, is delivered to the module
// instead of the ordinary pipeline. Each entry is consumed at most once.
package continuation

import (
	"errors"
	"sync"
	"time"

	"github.com/Proton-105/citrine-bot/internal/domain"
)

// ErrNoRecipient is returned when a direct message carries no recipient to key on.
var ErrNoRecipient = errors.New("continuation: direct message without recipient")

// Entry is a pending continuation.
type Entry[M any] struct {
	Module    M
	Args      Args
	CreatedAt time.Time
}

// Table stores pending continuations keyed by post id and by user id.
// M is the module type; the table never calls it.
type Table[M any] struct {
	mu     sync.Mutex
	byPost map[string]Entry[M]
	byUser map[string]Entry[M]
	ttl    time.Duration
	now    func() time.Time
}

// NewTable builds an empty table. A non-positive ttl keeps entries until consumed.
func NewTable[M any](ttl time.Duration) *Table[M] {
	return &Table[M]{
		byPost: make(map[string]Entry[M]),
		byUser: make(map[string]Entry[M]),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Register arms a continuation for post. Direct messages are keyed by the
// recipient so the next message from that user matches; other posts are keyed
// by their own id so a reply to them matches. An existing entry under the same key is replaced.
func (t *Table[M]) Register(post *domain.Post, module M, args Args) error {
	if post == nil {
		return errors.New("continuation: nil post")
	}
	if args == nil {
		args = Args{}
	}

	entry := Entry[M]{Module: module, Args: args, CreatedAt: t.now()}

	t.mu.Lock()
	defer t.mu.Unlock()

	if post.IsDirect {
		if post.Recipient == nil || post.Recipient.ID == "" {
			return ErrNoRecipient
		}
		t.byUser[post.Recipient.ID] = entry
		return nil
	}

	t.byPost[post.ID] = entry
	return nil
}

// TryConsume removes and returns the continuation matching post, if any.
// Direct messages look up the sender; other posts look up the post they reply to.
func (t *Table[M]) TryConsume(post *domain.Post) (Entry[M], bool) {
	if post == nil {
		return Entry[M]{}, false
	}

	if post.IsDirect {
		if post.User == nil {
			return Entry[M]{}, false
		}
		return t.consume(t.byUser, post.User.ID)
	}

	if post.Reply == nil {
		return Entry[M]{}, false
	}
	return t.consume(t.byPost, post.Reply.ID)
}

// Len returns the number of pending entries.
func (t *Table[M]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byPost) + len(t.byUser)
}

// Sweep drops expired entries and returns how many were removed.
func (t *Table[M]) Sweep() int {
	if t.ttl <= 0 {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for _, m := range []map[string]Entry[M]{t.byPost, t.byUser} {
		for key, entry := range m {
			if t.expired(entry) {
				delete(m, key)
				removed++
			}
		}
	}
	return removed
}

func (t *Table[M]) consume(m map[string]Entry[M], key string) (Entry[M], bool) {
	if key == "" {
		return Entry[M]{}, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := m[key]
	if !ok {
		return Entry[M]{}, false
	}
	delete(m, key)

	if t.expired(entry) {
		return Entry[M]{}, false
	}
	return entry, true
}

func (t *Table[M]) expired(entry Entry[M]) bool {
	return t.ttl > 0 && t.now().Sub(entry.CreatedAt) > t.ttl
}
