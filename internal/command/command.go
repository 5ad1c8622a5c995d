// Package command resolves named commands, checks permissions, and runs them.
package command

import (
	"context"

	"github.com/Proton-105/citrine-bot/internal/domain"
	"github.com/Proton-105/citrine-bot/internal/i18n"
	"github.com/Proton-105/citrine-bot/internal/permission"
	"github.com/Proton-105/citrine-bot/internal/user"
)

// Command is a named operation invokable from chat or the console.
type Command interface {
	Name() string
	Aliases() []string
	// IgnoreCase makes Name and Aliases match case-insensitively.
	IgnoreCase() bool
	Permission() permission.Flag
	Usage() string
	Description() string
	// Run returns the reply text. Returning ErrUsage makes the caller receive Usage instead.
	Run(ctx context.Context, req *Request) (string, error)
}

// Base supplies defaults for the optional parts of Command.
type Base struct{}

func (Base) Aliases() []string           { return nil }
func (Base) IgnoreCase() bool            { return false }
func (Base) Permission() permission.Flag { return permission.None }
func (Base) Usage() string               { return "" }
func (Base) Description() string         { return "" }

// Core is the slice of the engine that commands may use.
type Core interface {
	Users() *user.Service
	Shell() domain.Shell
	Commands() *Registry
	Identity() *permission.Identity
	Translator() i18n.Translator
}

// Request carries one invocation.
type Request struct {
	Sender Sender
	Core   Core
	// Name is the token the command was invoked with, which may be an alias.
	Name string
	Args []string
	// Body is the input after the command name, trimmed.
	Body string
}
