// Package commands holds the built-in chat and console commands.
package commands

import (
	"github.com/Proton-105/citrine-bot/internal/command"
)

// All returns the built-in commands in registration order.
func All() []command.Command {
	return []command.Command{
		&Help{},
		&Ping{},
		&Nick{},
		&Rating{},
		&Like{},
		&Modules{},
	}
}
