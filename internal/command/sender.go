package command

import (
	"github.com/Proton-105/citrine-bot/internal/domain"
	"github.com/Proton-105/citrine-bot/internal/permission"
)

// Sender identifies who invoked a command.
type Sender interface {
	IsAdmin() bool
	// Post returns the triggering post, or nil for senders without one.
	Post() *domain.Post
}

// PostSender is a sender that issued the command through a post.
type PostSender struct {
	post  *domain.Post
	admin bool
}

// NewPostSender classifies the author of post against identity.
func NewPostSender(post *domain.Post, identity *permission.Identity) *PostSender {
	var author *domain.User
	if post != nil {
		author = post.User
	}
	return &PostSender{post: post, admin: identity.IsAdmin(author)}
}

func (s *PostSender) IsAdmin() bool      { return s.admin }
func (s *PostSender) Post() *domain.Post { return s.post }

// User returns the author of the triggering post.
func (s *PostSender) User() *domain.User {
	if s.post == nil {
		return nil
	}
	return s.post.User
}

type internalSender struct {
	admin bool
}

func (s internalSender) IsAdmin() bool      { return s.admin }
func (s internalSender) Post() *domain.Post { return nil }

var (
	// InternalSender is the console acting as an ordinary user.
	InternalSender Sender = internalSender{}
	// SuperInternalSender is the console acting as the administrator.
	SuperInternalSender Sender = internalSender{admin: true}
)

// SubjectOf describes sender for permission evaluation.
// Origin restrictions only apply to senders that carry a post.
func SubjectOf(sender Sender) permission.Subject {
	if sender == nil {
		return permission.Subject{}
	}

	subject := permission.Subject{IsAdmin: sender.IsAdmin()}
	if post := sender.Post(); post != nil && post.User != nil {
		subject.Host = post.User.Host
		subject.OriginKnown = true
	}
	return subject
}
