package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/Proton-105/citrine-bot/internal/command"
	"github.com/Proton-105/citrine-bot/internal/permission"
)

// Help lists the registered commands.
type Help struct {
	command.Base
}

func (*Help) Name() string        { return "help" }
func (*Help) Aliases() []string   { return []string{"h", "?"} }
func (*Help) IgnoreCase() bool    { return true }
func (*Help) Usage() string       { return "/help" }
func (*Help) Description() string { return "List available commands" }

func (*Help) Run(_ context.Context, req *command.Request) (string, error) {
	var b strings.Builder
	b.WriteString(req.Core.Translator().T("help.header"))

	for _, cmd := range req.Core.Commands().Commands() {
		if cmd.Permission().Has(permission.AdminOnly) && !req.Sender.IsAdmin() {
			continue
		}
		fmt.Fprintf(&b, "\n/%s", cmd.Name())
		if desc := cmd.Description(); desc != "" {
			fmt.Fprintf(&b, " - %s", desc)
		}
	}

	return b.String(), nil
}
