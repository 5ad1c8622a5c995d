package telegram

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"strconv"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/citrine-bot/internal/domain"
	errors "github.com/Proton-105/citrine-bot/internal/errors"
)

// Sender is the subset of telebot.Bot the shell needs.
type Sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
	Delete(msg telebot.Editable) error
}

// Shell sends the engine's replies through the Telegram Bot API.
type Shell struct {
	api Sender
	me  *domain.User
	log *slog.Logger
}

// NewShell constructs a Shell for the account me.
func NewShell(api Sender, me *domain.User, log *slog.Logger) *Shell {
	if log == nil {
		log = slog.Default()
	}
	return &Shell{api: api, me: me, log: log}
}

func (s *Shell) Myself() *domain.User { return s.me }

// ReplyTo answers post in the chat it was posted in. Flood-control and network
// errors are retried with backoff; other API errors are returned at once.
func (s *Shell) ReplyTo(ctx context.Context, post *domain.Post, text, cw string) (*domain.Post, error) {
	if post == nil {
		return nil, stdErrors.New("telegram: reply to nil post")
	}

	chatID, messageID, err := ParsePostID(post.ID)
	if err != nil {
		return nil, err
	}

	chat := &telebot.Chat{ID: chatID}
	opts := &telebot.SendOptions{
		ReplyTo:   &telebot.Message{ID: messageID, Chat: chat},
		ParseMode: telebot.ModeHTML,
	}

	var sent *telebot.Message
	err = errors.WithRetry(ctx, func() error {
		msg, sendErr := s.api.Send(chat, FormatReply(text, cw), opts)
		if sendErr != nil {
			return classify(sendErr)
		}
		sent = msg
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: reply to %s: %w", post.ID, err)
	}

	reply := &domain.Post{
		ID:        PostID(chatID, sent.ID),
		Text:      text,
		User:      s.me,
		Reply:     post,
		IsDirect:  post.IsDirect,
		CreatedAt: sent.Time(),
	}
	if post.IsDirect {
		reply.Recipient = post.User
	}
	return reply, nil
}

// DeleteNote removes a message the bot sent.
func (s *Shell) DeleteNote(ctx context.Context, id string) error {
	chatID, messageID, err := ParsePostID(id)
	if err != nil {
		return err
	}

	return errors.WithRetry(ctx, func() error {
		err := s.api.Delete(telebot.StoredMessage{
			MessageID: strconv.Itoa(messageID),
			ChatID:    chatID,
		})
		if err != nil {
			return classify(err)
		}
		return nil
	})
}

// classify marks transient failures retryable for errors.WithRetry.
func classify(err error) error {
	var flood telebot.FloodError
	if stdErrors.As(err, &flood) {
		return errors.NewRateLimitError(flood.RetryAfter)
	}

	var apiErr *telebot.Error
	if stdErrors.As(err, &apiErr) {
		return err
	}

	return errors.NewExternalAPIError("telegram", err)
}
