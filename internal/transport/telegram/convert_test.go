package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/citrine-bot/internal/domain"
)

var (
	meTG  = &telebot.User{ID: 100, Username: "citrine_bot", IsBot: true}
	me    = ToUser(meTG)
	bobTG = &telebot.User{ID: 7, FirstName: "Bob", LastName: "Stone"}
)

func TestPostID_RoundTrip(t *testing.T) {
	chatID, msgID, err := ParsePostID(PostID(-100123, 42))
	require.NoError(t, err)
	assert.Equal(t, int64(-100123), chatID)
	assert.Equal(t, 42, msgID)

	for _, bad := range []string{"", "12", "a:1", "1:b"} {
		_, _, err := ParsePostID(bad)
		assert.Error(t, err, bad)
	}
}

func TestToUser(t *testing.T) {
	u := ToUser(bobTG)
	assert.Equal(t, &domain.User{ID: "7", Name: "Bob Stone"}, u)
	assert.True(t, u.IsLocal())

	assert.Equal(t, "citrine_bot", me.Name)
	assert.True(t, me.IsBot)
	assert.Nil(t, ToUser(nil))
}

func TestClassify(t *testing.T) {
	group := &telebot.Chat{ID: -5, Type: telebot.ChatSuperGroup}
	botMsg := &telebot.Message{ID: 1, Chat: group, Sender: meTG, Text: "question?"}

	testCases := []struct {
		name string
		msg  *telebot.Message
		want Kind
	}{
		{name: "private chat", msg: &telebot.Message{Chat: &telebot.Chat{ID: 7, Type: telebot.ChatPrivate}, Sender: bobTG, Text: "hi"}, want: KindDirectMessage},
		{name: "group mention", msg: &telebot.Message{Chat: group, Sender: bobTG, Text: "hey @Citrine_Bot /ping"}, want: KindMention},
		{name: "reply to bot", msg: &telebot.Message{Chat: group, Sender: bobTG, Text: "yes", ReplyTo: botMsg}, want: KindMention},
		{name: "text mention entity", msg: &telebot.Message{Chat: group, Sender: bobTG, Text: "citrine", Entities: telebot.Entities{{Type: telebot.EntityTMention, User: meTG}}}, want: KindMention},
		{name: "group chatter", msg: &telebot.Message{Chat: group, Sender: bobTG, Text: "lunch?"}, want: KindTimeline},
		{name: "channel post", msg: &telebot.Message{Chat: &telebot.Chat{ID: -9, Type: telebot.ChatChannel}, Text: "@citrine_bot news"}, want: KindTimeline},
		{name: "nil", msg: nil, want: KindTimeline},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.msg, me))
		})
	}
}

func TestToPost(t *testing.T) {
	group := &telebot.Chat{ID: -5, Type: telebot.ChatGroup}
	question := &telebot.Message{ID: 10, Chat: group, Sender: meTG, Text: "question?"}
	answer := &telebot.Message{ID: 11, Chat: group, Sender: bobTG, Text: "@citrine_bot yes", ReplyTo: question, Unixtime: 1700000000}

	post := ToPost(answer, me)
	require.NotNil(t, post)
	assert.Equal(t, "-5:11", post.ID)
	assert.Equal(t, "yes", post.PlainText())
	assert.Equal(t, "7", post.User.ID)
	assert.False(t, post.IsDirect)
	assert.Equal(t, time.Unix(1700000000, 0), post.CreatedAt)

	require.NotNil(t, post.Reply)
	assert.Equal(t, "-5:10", post.Reply.ID)
	assert.True(t, post.Reply.User.SameAs(me))
}

func TestToPost_PrivateChat(t *testing.T) {
	chat := &telebot.Chat{ID: 7, Type: telebot.ChatPrivate, Username: "bob"}

	incoming := ToPost(&telebot.Message{ID: 1, Chat: chat, Sender: bobTG, Text: "hi"}, me)
	assert.True(t, incoming.IsDirect)
	assert.Same(t, me, incoming.Recipient)

	outgoing := ToPost(&telebot.Message{ID: 2, Chat: chat, Sender: meTG, Text: "hello"}, me)
	assert.Equal(t, "7", outgoing.Recipient.ID)
}

func TestToPost_ChannelUsesChatAsAuthor(t *testing.T) {
	post := ToPost(&telebot.Message{ID: 3, Chat: &telebot.Chat{ID: -9, Type: telebot.ChatChannel, Title: "News"}, Caption: "photo"}, me)
	assert.Equal(t, "News", post.User.Name)
	assert.Equal(t, "photo", post.Text)
}

func TestFormatReply(t *testing.T) {
	assert.Equal(t, "a &lt;b&gt;", FormatReply("a <b>", ""))
	assert.Equal(t, "spoiler &amp; more\n<tg-spoiler>hidden</tg-spoiler>", FormatReply("hidden", "spoiler & more"))
}
