package domain

import (
	"regexp"
	"strings"
	"time"
)

var leadingMentions = regexp.MustCompile(`^(?:\s*@[\w.\-]+(?:@[\w.\-]+)?)+\s*`)

// Post is a note, timeline entry or direct message.
type Post struct {
	ID        string
	Text      string
	User      *User
	Reply     *Post
	IsDirect  bool
	Recipient *User
	CreatedAt time.Time
}

// IsReply reports whether the post answers another post.
func (p *Post) IsReply() bool {
	return p != nil && p.Reply != nil && p.Reply.ID != ""
}

// PlainText returns the post text with leading mentions removed.
func (p *Post) PlainText() string {
	if p == nil {
		return ""
	}
	return TrimMentions(p.Text)
}

// TrimMentions strips the @user and @user@host prefixes a reply usually starts with.
func TrimMentions(text string) string {
	return strings.TrimSpace(leadingMentions.ReplaceAllString(text, ""))
}
