package commands

import (
	"context"

	"github.com/Proton-105/citrine-bot/internal/command"
	"github.com/Proton-105/citrine-bot/internal/user"
)

// Rating shows the sender's affinity rating. The administrator may name another user id.
type Rating struct {
	command.Base
}

func (*Rating) Name() string        { return "rating" }
func (*Rating) IgnoreCase() bool    { return true }
func (*Rating) Usage() string       { return "/rating [user-id]" }
func (*Rating) Description() string { return "Show affinity rating" }

func (*Rating) Run(ctx context.Context, req *command.Request) (string, error) {
	var userID string
	switch {
	case len(req.Args) > 0 && req.Sender.IsAdmin():
		userID = req.Args[0]
	case req.Sender.Post() != nil && req.Sender.Post().User != nil:
		userID = req.Sender.Post().User.ID
	default:
		return "", command.ErrUsage
	}

	value, err := req.Core.Users().RatingValue(ctx, userID)
	if err != nil {
		return "", err
	}

	tier := user.TierOf(value)
	return req.Core.Translator().Tf("rating.reply", userID, value, tier.String()), nil
}
