package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimMentions(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{name: "no mention", in: "hello", want: "hello"},
		{name: "local mention", in: "@citrine hello", want: "hello"},
		{name: "remote mention", in: "@citrine@example.org  /help", want: "/help"},
		{name: "several mentions", in: "@a @b@c.d call me Bob", want: "call me Bob"},
		{name: "mention in middle", in: "hi @citrine", want: "hi @citrine"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TrimMentions(tc.in))
		})
	}
}

func TestUser_Acct(t *testing.T) {
	local := &User{ID: "1", Name: "alice"}
	remote := &User{ID: "2", Name: "bob", Host: "example.org"}

	assert.True(t, local.IsLocal())
	assert.False(t, remote.IsLocal())
	assert.Equal(t, "alice", local.Acct())
	assert.Equal(t, "bob@example.org", remote.Acct())
}
