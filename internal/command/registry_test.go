package command

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/citrine-bot/internal/domain"
	"github.com/Proton-105/citrine-bot/internal/permission"
)

type stubCommand struct {
	Base
	name       string
	aliases    []string
	ignoreCase bool
	perm       permission.Flag
	usage      string
	run        func(ctx context.Context, req *Request) (string, error)
	lastReq    *Request
}

func (c *stubCommand) Name() string                { return c.name }
func (c *stubCommand) Aliases() []string           { return c.aliases }
func (c *stubCommand) IgnoreCase() bool            { return c.ignoreCase }
func (c *stubCommand) Permission() permission.Flag { return c.perm }
func (c *stubCommand) Usage() string               { return c.usage }

func (c *stubCommand) Run(ctx context.Context, req *Request) (string, error) {
	c.lastReq = req
	if c.run != nil {
		return c.run(ctx, req)
	}
	return "ok:" + c.name, nil
}

func TestRegistry_RegisterSuppressesDuplicates(t *testing.T) {
	r := NewRegistry(testLogger())
	cmd := &stubCommand{name: "ping"}

	assert.True(t, r.Register(cmd))
	assert.False(t, r.Register(cmd))
	assert.True(t, r.Register(&stubCommand{name: "ping"}), "distinct instances are separate registrations")
	assert.False(t, r.Register(nil))
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_ResolveCaseSensitivity(t *testing.T) {
	r := NewRegistry(testLogger())
	strict := &stubCommand{name: "Nick", aliases: []string{"nn"}}
	loose := &stubCommand{name: "Ping", aliases: []string{"p"}, ignoreCase: true}
	r.Register(strict)
	r.Register(loose)

	testCases := []struct {
		input string
		want  Command
	}{
		{input: "Nick", want: strict},
		{input: "nick", want: nil},
		{input: "nn", want: strict},
		{input: "NN", want: nil},
		{input: "ping", want: loose},
		{input: "PING", want: loose},
		{input: "P", want: loose},
		{input: "", want: nil},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.input, func(t *testing.T) {
			got, ok := r.Resolve(tc.input)
			if tc.want == nil {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Same(t, tc.want, got)
		})
	}
}

func TestRegistry_ResolveFirstRegisteredWins(t *testing.T) {
	r := NewRegistry(testLogger())
	first := &stubCommand{name: "a", aliases: []string{"x"}}
	second := &stubCommand{name: "x"}
	r.Register(first)
	r.Register(second)

	got, ok := r.Resolve("x")
	require.True(t, ok)
	assert.Same(t, first, got)
}

func TestRegistry_ExecuteParsesInput(t *testing.T) {
	r := NewRegistry(testLogger())
	cmd := &stubCommand{name: "nick"}
	r.Register(cmd)

	outcome, err := r.Execute(context.Background(), nil, InternalSender, "  /  nick   set   Big  Friend ")
	require.NoError(t, err)
	assert.Equal(t, StatusOK, outcome.Status)
	assert.Equal(t, "ok:nick", outcome.Text)
	assert.Equal(t, "nick", outcome.Command)

	require.NotNil(t, cmd.lastReq)
	assert.Equal(t, "nick", cmd.lastReq.Name)
	assert.Equal(t, []string{"set", "Big", "Friend"}, cmd.lastReq.Args)
	assert.Equal(t, "set   Big  Friend", cmd.lastReq.Body)
}

func TestRegistry_ExecuteNotFound(t *testing.T) {
	r := NewRegistry(testLogger())

	for _, input := range []string{"unknown", "", "/", "   "} {
		outcome, err := r.Execute(context.Background(), nil, InternalSender, input)
		require.NoError(t, err)
		assert.Equal(t, StatusNotFound, outcome.Status)
		assert.ErrorIs(t, outcome.Err(), ErrNoSuchCommand)
	}
}

func TestRegistry_ExecutePermissions(t *testing.T) {
	identity := permission.NewIdentity("owner", nil)
	localPost := &domain.Post{ID: "p1", User: &domain.User{ID: "1", Name: "owner"}}
	remotePost := &domain.Post{ID: "p2", User: &domain.User{ID: "2", Name: "guest", Host: "remote.example"}}

	testCases := []struct {
		name    string
		perm    permission.Flag
		sender  Sender
		status  Status
		wantErr error
	}{
		{name: "local only remote sender", perm: permission.LocalOnly, sender: NewPostSender(remotePost, identity), status: StatusDenied, wantErr: ErrLocalOnly},
		{name: "local only local sender", perm: permission.LocalOnly, sender: NewPostSender(localPost, identity), status: StatusOK},
		{name: "remote only local sender", perm: permission.RemoteOnly, sender: NewPostSender(localPost, identity), status: StatusDenied, wantErr: ErrRemoteOnly},
		{name: "admin only remote guest", perm: permission.AdminOnly, sender: NewPostSender(remotePost, identity), status: StatusDenied, wantErr: ErrAdminOnly},
		{name: "admin only local admin", perm: permission.AdminOnly, sender: NewPostSender(localPost, identity), status: StatusOK},
		{name: "internal skips origin", perm: permission.LocalOnly | permission.RemoteOnly, sender: InternalSender, status: StatusOK},
		{name: "internal is not admin", perm: permission.AdminOnly, sender: InternalSender, status: StatusDenied, wantErr: ErrAdminOnly},
		{name: "super internal is admin", perm: permission.AdminOnly, sender: SuperInternalSender, status: StatusOK},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			r := NewRegistry(testLogger())
			cmd := &stubCommand{name: "guarded", perm: tc.perm}
			r.Register(cmd)

			outcome, err := r.Execute(context.Background(), nil, tc.sender, "guarded")
			require.NoError(t, err)
			assert.Equal(t, tc.status, outcome.Status)
			if tc.wantErr != nil {
				assert.ErrorIs(t, outcome.Err(), tc.wantErr)
				assert.Nil(t, cmd.lastReq, "denied command must not run")
				return
			}
			assert.NoError(t, outcome.Err())
		})
	}
}

func TestRegistry_ExecuteUsage(t *testing.T) {
	r := NewRegistry(testLogger())
	r.Register(&stubCommand{
		name:  "nick",
		usage: "nick <name>",
		run: func(context.Context, *Request) (string, error) {
			return "", ErrUsage
		},
	})

	outcome, err := r.Execute(context.Background(), nil, InternalSender, "nick")
	require.NoError(t, err)
	assert.Equal(t, StatusUsage, outcome.Status)
	assert.Equal(t, "nick <name>", outcome.Text)
	assert.NoError(t, outcome.Err())
}

func TestRegistry_ExecuteHandlerFault(t *testing.T) {
	boom := errors.New("boom")
	r := NewRegistry(testLogger())
	r.Register(&stubCommand{
		name: "fail",
		run: func(context.Context, *Request) (string, error) {
			return "", boom
		},
	})

	outcome, err := r.Execute(context.Background(), nil, InternalSender, "fail")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "fail", outcome.Command)
}

func TestSubjectOf(t *testing.T) {
	assert.Equal(t, permission.Subject{}, SubjectOf(nil))
	assert.Equal(t, permission.Subject{IsAdmin: true}, SubjectOf(SuperInternalSender))

	post := &domain.Post{User: &domain.User{Name: "a", Host: "h"}}
	assert.Equal(t, permission.Subject{Host: "h", OriginKnown: true}, SubjectOf(NewPostSender(post, permission.NewIdentity("owner", nil))))
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
