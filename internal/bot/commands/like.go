package commands

import (
	"context"
	"strconv"

	"github.com/Proton-105/citrine-bot/internal/command"
	"github.com/Proton-105/citrine-bot/internal/permission"
)

// Like adjusts a user's rating. A negative amount lowers it.
type Like struct {
	command.Base
}

func (*Like) Name() string                { return "like" }
func (*Like) Permission() permission.Flag { return permission.AdminOnly }
func (*Like) Usage() string               { return "/like <user-id> [amount]" }
func (*Like) Description() string         { return "Adjust a user's rating" }

func (*Like) Run(ctx context.Context, req *command.Request) (string, error) {
	if len(req.Args) == 0 || len(req.Args) > 2 {
		return "", command.ErrUsage
	}

	userID := req.Args[0]
	amount := 1
	if len(req.Args) == 2 {
		n, err := strconv.Atoi(req.Args[1])
		if err != nil {
			return "", command.ErrUsage
		}
		amount = n
	}

	value, err := req.Core.Users().Like(ctx, userID, amount)
	if err != nil {
		return "", err
	}

	return req.Core.Translator().Tf("like.reply", userID, value), nil
}
