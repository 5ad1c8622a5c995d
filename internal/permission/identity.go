package permission

import (
	"strings"

	"github.com/Proton-105/citrine-bot/internal/domain"
)

// Identity classifies users against the configured administrator and moderators.
// Accounts are written either as a bare name for a local user or as name@host.
type Identity struct {
	admin      string
	moderators []string
}

// NewIdentity builds an Identity. Blank moderator entries are dropped.
func NewIdentity(admin string, moderators []string) *Identity {
	mods := make([]string, 0, len(moderators))
	for _, m := range moderators {
		m = strings.TrimPrefix(strings.TrimSpace(m), "@")
		if m != "" {
			mods = append(mods, m)
		}
	}

	return &Identity{
		admin:      strings.TrimPrefix(strings.TrimSpace(admin), "@"),
		moderators: mods,
	}
}

// Admin returns the configured administrator account.
func (i *Identity) Admin() string {
	if i == nil {
		return ""
	}
	return i.admin
}

// Moderators returns a copy of the moderator accounts.
func (i *Identity) Moderators() []string {
	if i == nil {
		return nil
	}
	return append([]string(nil), i.moderators...)
}

// IsLocal reports whether u belongs to the bot's own instance.
func (i *Identity) IsLocal(u *domain.User) bool {
	return u != nil && u.IsLocal()
}

// IsAdmin reports whether u is the administrator.
func (i *Identity) IsAdmin(u *domain.User) bool {
	if i == nil || i.admin == "" {
		return false
	}
	return matches(u, i.admin)
}

// IsModerator reports whether u is one of the moderators.
func (i *Identity) IsModerator(u *domain.User) bool {
	if i == nil {
		return false
	}
	for _, m := range i.moderators {
		if matches(u, m) {
			return true
		}
	}
	return false
}

// IsSuperUser reports whether u is the administrator or a moderator.
func (i *Identity) IsSuperUser(u *domain.User) bool {
	return i.IsAdmin(u) || i.IsModerator(u)
}

// Subject describes u for Evaluate.
func (i *Identity) Subject(u *domain.User) Subject {
	if u == nil {
		return Subject{}
	}
	return Subject{
		IsAdmin:     i.IsAdmin(u),
		Host:        u.Host,
		OriginKnown: true,
	}
}

func matches(u *domain.User, account string) bool {
	if u == nil {
		return false
	}
	if u.IsLocal() && strings.EqualFold(u.Name, account) {
		return true
	}
	return strings.EqualFold(u.Name+"@"+u.Host, account)
}
