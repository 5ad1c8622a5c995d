package commands

import (
	"context"

	"github.com/Proton-105/citrine-bot/internal/command"
)

// Ping answers with pong.
type Ping struct {
	command.Base
}

func (*Ping) Name() string        { return "ping" }
func (*Ping) IgnoreCase() bool    { return true }
func (*Ping) Usage() string       { return "/ping" }
func (*Ping) Description() string { return "Check that the bot is alive" }

func (*Ping) Run(_ context.Context, req *command.Request) (string, error) {
	return req.Core.Translator().T("ping.reply"), nil
}
