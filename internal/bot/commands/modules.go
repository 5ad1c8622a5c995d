package commands

import (
	"context"
	"strings"

	"github.com/Proton-105/citrine-bot/internal/command"
	"github.com/Proton-105/citrine-bot/internal/permission"
)

type moduleLister interface {
	ModuleNames() []string
}

// Modules lists the pipeline in dispatch order.
type Modules struct {
	command.Base
}

func (*Modules) Name() string                { return "modules" }
func (*Modules) Aliases() []string           { return []string{"mods"} }
func (*Modules) Permission() permission.Flag { return permission.AdminOnly }
func (*Modules) Usage() string               { return "/modules" }
func (*Modules) Description() string         { return "List loaded modules" }

func (*Modules) Run(_ context.Context, req *command.Request) (string, error) {
	lister, ok := req.Core.(moduleLister)
	if !ok {
		return "", nil
	}

	names := lister.ModuleNames()
	return req.Core.Translator().T("modules.header") + "\n" + strings.Join(names, "\n"), nil
}
