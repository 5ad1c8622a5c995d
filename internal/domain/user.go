// Package domain holds the platform-neutral types exchanged between the transport and the dispatch engine.
package domain

import "strings"

// User is an account as reported by the transport for a single event.
type User struct {
	ID    string
	Name  string
	Host  string
	IsBot bool
}

// IsLocal reports whether the user belongs to the bot's own instance.
func (u *User) IsLocal() bool {
	return u != nil && u.Host == ""
}

// Acct returns name@host for remote users and the bare name for local ones.
func (u *User) Acct() string {
	if u == nil {
		return ""
	}
	if u.Host == "" {
		return u.Name
	}
	return u.Name + "@" + u.Host
}

// SameAs compares users by id.
func (u *User) SameAs(other *User) bool {
	if u == nil || other == nil {
		return false
	}
	return strings.EqualFold(u.ID, other.ID)
}
