package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Proton-105/citrine-bot/internal/domain"
)

func newConsoleCmd(opts *rootOptions, use, short string, super bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <command> [args...]",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd.Context(), opts, cmd.OutOrStdout(), strings.Join(args, " "), super)
		},
	}
}

func runConsole(ctx context.Context, opts *rootOptions, out io.Writer, input string, super bool) (err error) {
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.close(ctx); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	engine := a.newEngine(newConsoleShell(out))

	var text string
	if super {
		text, err = engine.Sudo(ctx, input)
	} else {
		text, err = engine.Exec(ctx, input)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, text)
	return err
}

// consoleShell prints replies instead of posting them.
type consoleShell struct {
	mu  sync.Mutex
	out io.Writer
	me  *domain.User
}

var _ domain.Shell = (*consoleShell)(nil)

func newConsoleShell(out io.Writer) *consoleShell {
	return &consoleShell{
		out: out,
		me:  &domain.User{ID: "console", Name: "console", IsBot: true},
	}
}

func (s *consoleShell) Myself() *domain.User { return s.me }

func (s *consoleShell) ReplyTo(_ context.Context, post *domain.Post, text string, cw string) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cw != "" {
		if _, err := fmt.Fprintf(s.out, "[%s] ", cw); err != nil {
			return nil, err
		}
	}
	if _, err := fmt.Fprintln(s.out, text); err != nil {
		return nil, err
	}

	return &domain.Post{
		ID:        uuid.NewString(),
		Text:      text,
		User:      s.me,
		Reply:     post,
		CreatedAt: time.Now(),
	}, nil
}

func (s *consoleShell) DeleteNote(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := fmt.Fprintf(s.out, "(deleted %s)\n", id)
	return err
}
