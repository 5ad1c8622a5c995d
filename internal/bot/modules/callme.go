package modules

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Proton-105/citrine-bot/internal/bot"
	"github.com/Proton-105/citrine-bot/internal/continuation"
	"github.com/Proton-105/citrine-bot/internal/domain"
	"github.com/Proton-105/citrine-bot/internal/user"
)

const (
	maxNicknameLength = 32
	argNickname       = "nickname"
)

var (
	callMePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(.+)(?:って|と)呼[べびん]`),
		regexp.MustCompile(`(?i)^call me\s+(.+?)[.!]?$`),
	}
	affirmative = regexp.MustCompile(`(?i)^(?:(?:yes|y|ok|okay|sure)\b|はい|うん|いいよ|お願い)`)
)

// CallMe lets users choose how the bot addresses them once they are on friendly terms.
// The change is confirmed through a reply before it is stored.
type CallMe struct {
	bot.BaseModule
}

// NewCallMe constructs the call-me module.
func NewCallMe() *CallMe {
	return &CallMe{}
}

func (m *CallMe) Name() string { return "callme" }

func (m *CallMe) OnMention(ctx context.Context, e *bot.Engine, post *domain.Post) (bool, error) {
	return m.ask(ctx, e, post)
}

func (m *CallMe) OnDirectMessage(ctx context.Context, e *bot.Engine, post *domain.Post) (bool, error) {
	return m.ask(ctx, e, post)
}

func (m *CallMe) ask(ctx context.Context, e *bot.Engine, post *domain.Post) (bool, error) {
	nickname, ok := requestedNickname(post.PlainText())
	if !ok {
		return false, nil
	}

	tr := e.Translator()
	rating, err := e.Users().Rating(ctx, post.User.ID)
	if err != nil {
		return true, err
	}

	switch {
	case rating == user.RatingHate:
		return true, reply(ctx, e, post, tr.T("callme.hate"))
	case !rating.AtLeast(user.RatingLike):
		return true, reply(ctx, e, post, tr.T("callme.not_yet"))
	case utf8.RuneCountInString(nickname) > maxNicknameLength:
		return true, reply(ctx, e, post, tr.T("callme.too_long"))
	}

	sent, err := e.Shell().ReplyTo(ctx, post, tr.Tf("callme.confirm", nickname), "")
	if err != nil {
		return true, err
	}

	return true, e.RegisterContext(sent, m, continuation.Args{argNickname: nickname})
}

func (m *CallMe) OnContextualReply(ctx context.Context, e *bot.Engine, post *domain.Post, args continuation.Args) (bool, error) {
	nickname, ok := args.String(argNickname)
	if !ok {
		return false, nil
	}

	tr := e.Translator()
	users := e.Users()

	if !affirmative.MatchString(post.PlainText()) {
		current, err := users.Nickname(ctx, post.User)
		if err != nil {
			return true, err
		}
		return true, reply(ctx, e, post, tr.Tf("callme.declined", current))
	}

	if err := users.SetNickname(ctx, post.User, nickname); err != nil {
		return true, err
	}
	if _, err := users.LikeWithLimit(ctx, post.User.ID); err != nil {
		return true, err
	}

	return true, reply(ctx, e, post, tr.Tf("callme.accepted", nickname))
}

func requestedNickname(text string) (string, bool) {
	for _, pattern := range callMePatterns {
		if match := pattern.FindStringSubmatch(text); match != nil {
			nickname := strings.TrimSpace(match[1])
			if nickname != "" {
				return nickname, true
			}
		}
	}
	return "", false
}

func reply(ctx context.Context, e *bot.Engine, post *domain.Post, text string) error {
	_, err := e.Shell().ReplyTo(ctx, post, text, "")
	return err
}
