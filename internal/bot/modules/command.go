// Package modules holds the built-in pipeline modules.
package modules

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/Proton-105/citrine-bot/internal/bot"
	"github.com/Proton-105/citrine-bot/internal/command"
	"github.com/Proton-105/citrine-bot/internal/domain"
	"github.com/Proton-105/citrine-bot/internal/permission"
)

// CommandPriority runs the command module ahead of conversational modules.
const CommandPriority = -10000

// Command runs "/name args" posts through the command registry and replies with the result.
type Command struct {
	bot.BaseModule
	log *slog.Logger
}

// NewCommand constructs the command module.
func NewCommand(log *slog.Logger) *Command {
	if log == nil {
		log = slog.Default()
	}
	return &Command{log: log}
}

func (m *Command) Name() string  { return "command" }
func (m *Command) Priority() int { return CommandPriority }

func (m *Command) OnMention(ctx context.Context, e *bot.Engine, post *domain.Post) (bool, error) {
	return m.run(ctx, e, post)
}

func (m *Command) OnDirectMessage(ctx context.Context, e *bot.Engine, post *domain.Post) (bool, error) {
	return m.run(ctx, e, post)
}

func (m *Command) run(ctx context.Context, e *bot.Engine, post *domain.Post) (bool, error) {
	text := post.PlainText()
	if !strings.HasPrefix(text, "/") {
		return false, nil
	}

	text = stripSelfAddress(text, e.Shell().Myself())

	outcome, err := e.ExecCommand(ctx, e.SenderFor(post), text)
	if err != nil {
		return true, err
	}

	reply := render(e, outcome)
	if reply == "" {
		return true, nil
	}

	if _, err := e.Shell().ReplyTo(ctx, post, reply, ""); err != nil {
		return true, err
	}

	m.log.Debug("command replied",
		slog.String("command", outcome.Command),
		slog.String("status", outcome.Status.String()),
	)
	return true, nil
}

// stripSelfAddress turns "/ping@<me> args" into "/ping args". Commands
// addressed to another account are left as they are.
func stripSelfAddress(text string, me *domain.User) string {
	if me == nil || me.Name == "" {
		return text
	}

	end := strings.IndexFunc(text, unicode.IsSpace)
	if end < 0 {
		end = len(text)
	}
	head := text[:end]

	at := strings.LastIndexByte(head, '@')
	if at < 0 || !strings.EqualFold(head[at+1:], me.Name) {
		return text
	}
	return head[:at] + text[end:]
}

func render(e *bot.Engine, outcome command.Outcome) string {
	tr := e.Translator()

	switch outcome.Status {
	case command.StatusOK:
		return outcome.Text
	case command.StatusUsage:
		return tr.Tf("command.usage", outcome.Text)
	case command.StatusNotFound:
		return tr.T("command.not_found")
	case command.StatusDenied:
		switch outcome.Denial {
		case permission.DeniedAdminOnly:
			return tr.T("command.admin_only")
		case permission.DeniedLocalOnly:
			return tr.T("command.local_only")
		case permission.DeniedRemoteOnly:
			return tr.T("command.remote_only")
		}
	}
	return ""
}
