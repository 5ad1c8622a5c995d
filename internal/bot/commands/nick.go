package commands

import (
	"context"

	"github.com/Proton-105/citrine-bot/internal/command"
)

// Nick shows, sets or resets the nickname the bot uses for the sender.
type Nick struct {
	command.Base
}

func (*Nick) Name() string        { return "nick" }
func (*Nick) Aliases() []string   { return []string{"nickname"} }
func (*Nick) IgnoreCase() bool    { return true }
func (*Nick) Usage() string       { return "/nick [reset | <name>]" }
func (*Nick) Description() string { return "Show or change how the bot calls you" }

func (*Nick) Run(ctx context.Context, req *command.Request) (string, error) {
	tr := req.Core.Translator()
	post := req.Sender.Post()
	if post == nil || post.User == nil {
		return tr.T("nick.needs_post"), nil
	}

	users := req.Core.Users()
	author := post.User

	switch {
	case req.Body == "":
		nick, err := users.Nickname(ctx, author)
		if err != nil {
			return "", err
		}
		return tr.Tf("nick.current", nick), nil
	case len(req.Args) == 1 && req.Args[0] == "reset":
		if err := users.ResetNickname(ctx, author); err != nil {
			return "", err
		}
		return tr.Tf("nick.reset", users.DefaultNickname(author)), nil
	default:
		if err := users.SetNickname(ctx, author, req.Body); err != nil {
			return "", err
		}
		return tr.Tf("nick.set", req.Body), nil
	}
}
