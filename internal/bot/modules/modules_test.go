package modules

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/citrine-bot/internal/bot"
	"github.com/Proton-105/citrine-bot/internal/bot/bottest"
	"github.com/Proton-105/citrine-bot/internal/bot/commands"
	"github.com/Proton-105/citrine-bot/internal/domain"
)

var (
	owner = &domain.User{ID: "u-owner", Name: "owner"}
	alice = &domain.User{ID: "u-alice", Name: "alice"}
	guest = &domain.User{ID: "u-guest", Name: "guest", Host: "remote.example"}
)

func newEngine(t *testing.T) (*bot.Engine, *bottest.Shell) {
	t.Helper()

	e, shell := bottest.NewEngine(t)
	e.AddModule(NewCommand(slog.New(slog.NewTextHandler(io.Discard, nil))))
	e.AddModule(NewCallMe())
	for _, cmd := range commands.All() {
		e.AddCommand(cmd)
	}
	return e, shell
}

func TestCommand_RepliesWithResult(t *testing.T) {
	e, shell := newEngine(t)

	result := e.HandleMention(context.Background(), bottest.Post("p1", "@citrine /ping", alice))
	assert.Equal(t, bot.ResultHandled, result)
	assert.Equal(t, "pong", shell.Last(t).Text)
}

func TestCommand_AddressedToBot(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want string
	}{
		{name: "own username", text: "/ping@citrine", want: "pong"},
		{name: "own username any case", text: "/PING@Citrine", want: "pong"},
		{name: "nick through own username", text: "/nick@citrine", want: "nick.current"},
		{name: "other bot", text: "/ping@otherbot", want: "command.not_found"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			e, shell := newEngine(t)
			tr := e.Translator()

			result := e.HandleMention(context.Background(), bottest.Post("p1", tc.text, alice))
			require.Equal(t, bot.ResultHandled, result)

			want := tc.want
			switch tc.want {
			case "command.not_found":
				want = tr.T(tc.want)
			case "nick.current":
				want = tr.Tf(tc.want, "alice")
			}
			assert.Equal(t, want, shell.Last(t).Text)
		})
	}
}

func TestStripSelfAddress(t *testing.T) {
	me := &domain.User{ID: "bot", Name: "citrine"}

	assert.Equal(t, "/like u-alice 2", stripSelfAddress("/like@citrine u-alice 2", me))
	assert.Equal(t, "/ping", stripSelfAddress("/ping@CITRINE", me))
	assert.Equal(t, "/ping@otherbot", stripSelfAddress("/ping@otherbot", me))
	assert.Equal(t, "/ping x@citrine", stripSelfAddress("/ping x@citrine", me))
	assert.Equal(t, "/ping@citrine", stripSelfAddress("/ping@citrine", nil))
}

func TestCommand_IgnoresPlainText(t *testing.T) {
	e, shell := newEngine(t)

	result := e.HandleMention(context.Background(), bottest.Post("p1", "@citrine hello there", alice))
	assert.Equal(t, bot.ResultUnhandled, result)
	assert.Empty(t, shell.Replies())
}

func TestCommand_RendersFailures(t *testing.T) {
	testCases := []struct {
		name   string
		text   string
		author *domain.User
		want   string
	}{
		{name: "not found", text: "/dance", author: alice, want: "command.not_found"},
		{name: "admin only", text: "/like u-alice", author: alice, want: "command.admin_only"},
		{name: "usage", text: "/like", author: owner, want: "command.usage"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			e, shell := newEngine(t)
			tr := e.Translator()

			e.HandleMention(context.Background(), bottest.Post("p1", tc.text, tc.author))

			want := tr.T(tc.want)
			if tc.want == "command.usage" {
				want = tr.Tf(tc.want, "/like <user-id> [amount]")
			}
			assert.Equal(t, want, shell.Last(t).Text)
		})
	}
}

func TestCommand_DirectMessage(t *testing.T) {
	e, shell := newEngine(t)

	dm := &domain.Post{ID: "d1", Text: "/nick", User: alice, IsDirect: true, Recipient: bottest.Me}
	assert.Equal(t, bot.ResultHandled, e.HandleDirectMessage(context.Background(), dm))
	assert.Equal(t, e.Translator().Tf("nick.current", "alice"), shell.Last(t).Text)
}

func TestCallMe_RequiresAffinity(t *testing.T) {
	testCases := []struct {
		name   string
		rating int
		want   string
	}{
		{name: "hate", rating: -10, want: "callme.hate"},
		{name: "normal", rating: 0, want: "callme.not_yet"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			e, shell := newEngine(t)
			require.NoError(t, e.Users().SetRating(context.Background(), alice.ID, tc.rating))

			result := e.HandleMention(context.Background(), bottest.Post("p1", "@citrine call me Ally", alice))
			assert.Equal(t, bot.ResultHandled, result)
			assert.Equal(t, e.Translator().T(tc.want), shell.Last(t).Text)
			assert.Equal(t, 0, e.Continuations().Len())
		})
	}
}

func TestCallMe_ConfirmedThroughReply(t *testing.T) {
	e, shell := newEngine(t)
	ctx := context.Background()
	require.NoError(t, e.Users().SetRating(ctx, alice.ID, 4))

	assert.Equal(t, bot.ResultHandled, e.HandleMention(ctx, bottest.Post("p1", "@citrine call me Ally!", alice)))
	question := shell.Last(t)
	assert.Equal(t, e.Translator().Tf("callme.confirm", "Ally"), question.Text)
	assert.Equal(t, 1, e.Continuations().Len())

	answer := &domain.Post{ID: "p2", Text: "@citrine yes please", User: alice, Reply: question.Sent}
	assert.Equal(t, bot.ResultContinued, e.HandleMention(ctx, answer))
	assert.Equal(t, e.Translator().Tf("callme.accepted", "Ally"), shell.Last(t).Text)

	nick, err := e.Users().Nickname(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "Ally", nick)

	value, err := e.Users().RatingValue(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, value)
}

func TestCallMe_Declined(t *testing.T) {
	e, shell := newEngine(t)
	ctx := context.Background()
	require.NoError(t, e.Users().SetRating(ctx, alice.ID, 10))

	e.HandleMention(ctx, bottest.Post("p1", "アリスって呼んで", alice))
	question := shell.Last(t)
	assert.Equal(t, e.Translator().Tf("callme.confirm", "アリス"), question.Text)

	e.HandleMention(ctx, &domain.Post{ID: "p2", Text: "no thanks", User: alice, Reply: question.Sent})
	assert.Equal(t, e.Translator().Tf("callme.declined", "alice"), shell.Last(t).Text)

	nick, err := e.Users().Nickname(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "alice", nick)
}

func TestCallMe_TooLong(t *testing.T) {
	e, shell := newEngine(t)
	ctx := context.Background()
	require.NoError(t, e.Users().SetRating(ctx, alice.ID, 10))

	e.HandleMention(ctx, bottest.Post("p1", "call me "+strings.Repeat("x", maxNicknameLength+1), alice))
	assert.Equal(t, e.Translator().T("callme.too_long"), shell.Last(t).Text)
	assert.Equal(t, 0, e.Continuations().Len())
}

func TestRequestedNickname(t *testing.T) {
	testCases := []struct {
		text string
		want string
		ok   bool
	}{
		{text: "シトリンって呼んで", want: "シトリン", ok: true},
		{text: "ボブと呼べ", want: "ボブ", ok: true},
		{text: "Call me Bob.", want: "Bob", ok: true},
		{text: "please call me", ok: false},
		{text: "hello", ok: false},
	}

	for _, tc := range testCases {
		got, ok := requestedNickname(tc.text)
		assert.Equal(t, tc.ok, ok, tc.text)
		assert.Equal(t, tc.want, got, tc.text)
	}
}

func TestCommand_RemoteUserDenied(t *testing.T) {
	e, shell := newEngine(t)

	e.HandleMention(context.Background(), bottest.Post("p1", "/modules", guest))
	assert.Equal(t, e.Translator().T("command.admin_only"), shell.Last(t).Text)
}
