package telegram

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/citrine-bot/internal/domain"
)

// Kind classifies an incoming message for the engine.
type Kind int

const (
	KindTimeline Kind = iota
	KindMention
	KindDirectMessage
)

// PostID joins the chat and message ids; message ids are only unique per chat.
func PostID(chatID int64, messageID int) string {
	return fmt.Sprintf("%d:%d", chatID, messageID)
}

// ParsePostID splits an id produced by PostID.
func ParsePostID(id string) (chatID int64, messageID int, err error) {
	chatPart, msgPart, ok := strings.Cut(id, ":")
	if !ok {
		return 0, 0, fmt.Errorf("telegram: malformed post id %q", id)
	}

	chatID, err = strconv.ParseInt(chatPart, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("telegram: malformed chat id in %q: %w", id, err)
	}
	messageID, err = strconv.Atoi(msgPart)
	if err != nil {
		return 0, 0, fmt.Errorf("telegram: malformed message id in %q: %w", id, err)
	}
	return chatID, messageID, nil
}

// ToUser converts a Telegram account. Telegram has no federation, so every user is local.
func ToUser(u *telebot.User) *domain.User {
	if u == nil {
		return nil
	}

	name := u.Username
	if name == "" {
		name = strings.TrimSpace(u.FirstName + " " + u.LastName)
	}

	return &domain.User{
		ID:    strconv.FormatInt(u.ID, 10),
		Name:  name,
		IsBot: u.IsBot,
	}
}

// chatUser stands in for the author of channel posts, which have no sender.
func chatUser(c *telebot.Chat) *domain.User {
	if c == nil {
		return nil
	}

	name := c.Username
	if name == "" {
		name = c.Title
	}
	return &domain.User{ID: strconv.FormatInt(c.ID, 10), Name: name}
}

// ToPost converts m and, one level deep, the message it replies to.
func ToPost(m *telebot.Message, me *domain.User) *domain.Post {
	if m == nil {
		return nil
	}

	post := convertMessage(m, me)
	if m.ReplyTo != nil {
		post.Reply = convertMessage(m.ReplyTo, me)
	}
	return post
}

func convertMessage(m *telebot.Message, me *domain.User) *domain.Post {
	var chatID int64
	if m.Chat != nil {
		chatID = m.Chat.ID
	}

	author := ToUser(m.Sender)
	if author == nil {
		author = chatUser(m.Chat)
	}

	text := m.Text
	if text == "" {
		text = m.Caption
	}

	post := &domain.Post{
		ID:        PostID(chatID, m.ID),
		Text:      text,
		User:      author,
		CreatedAt: m.Time(),
	}

	if m.Chat != nil && m.Chat.Type == telebot.ChatPrivate {
		post.IsDirect = true
		post.Recipient = me
		if author.SameAs(me) {
			post.Recipient = &domain.User{ID: strconv.FormatInt(m.Chat.ID, 10), Name: m.Chat.Username}
		}
	}
	return post
}

// Classify decides which engine entry point handles m.
func Classify(m *telebot.Message, me *domain.User) Kind {
	if m == nil || m.Chat == nil {
		return KindTimeline
	}

	switch m.Chat.Type {
	case telebot.ChatPrivate:
		return KindDirectMessage
	case telebot.ChatGroup, telebot.ChatSuperGroup:
		if mentions(m, me) {
			return KindMention
		}
	}
	return KindTimeline
}

func mentions(m *telebot.Message, me *domain.User) bool {
	if me == nil {
		return false
	}

	if m.ReplyTo != nil && m.ReplyTo.Sender != nil && ToUser(m.ReplyTo.Sender).SameAs(me) {
		return true
	}

	if me.Name != "" && strings.Contains(strings.ToLower(m.Text), "@"+strings.ToLower(me.Name)) {
		return true
	}

	for _, entity := range m.Entities {
		if entity.Type == telebot.EntityTMention && entity.User != nil && ToUser(entity.User).SameAs(me) {
			return true
		}
	}
	return false
}

// FormatReply renders text for the HTML parse mode, hiding it behind a spoiler when cw is set.
func FormatReply(text, cw string) string {
	if cw == "" {
		return html.EscapeString(text)
	}
	return fmt.Sprintf("%s\n<tg-spoiler>%s</tg-spoiler>", html.EscapeString(cw), html.EscapeString(text))
}
