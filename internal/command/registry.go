package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/Proton-105/citrine-bot/internal/permission"
	"github.com/Proton-105/citrine-bot/pkg/metrics"
)

// Registry holds commands in registration order.
type Registry struct {
	mu       sync.RWMutex
	commands []Command
	log      *slog.Logger
}

// NewRegistry builds an empty Registry.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}

	return &Registry{
		commands: make([]Command, 0),
		log:      log,
	}
}

// Register appends cmd unless the same instance is already registered.
// It reports whether cmd was added.
func (r *Registry) Register(cmd Command) bool {
	if cmd == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.commands {
		if sameCommand(existing, cmd) {
			return false
		}
	}
	r.commands = append(r.commands, cmd)
	return true
}

// Commands returns a snapshot in registration order.
func (r *Registry) Commands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]Command, len(r.commands))
	copy(snapshot, r.commands)
	return snapshot
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Resolve finds the first command whose name or alias matches name,
// honoring each command's own case sensitivity.
func (r *Registry) Resolve(name string) (Command, bool) {
	if name == "" {
		return nil, false
	}

	for _, cmd := range r.Commands() {
		if matchName(cmd, name) {
			return cmd, true
		}
	}
	return nil, false
}

// Execute parses input, resolves the command, checks sender's permission and runs it.
// The returned error is reserved for handler faults; resolution and permission
// results are reported through Outcome.
func (r *Registry) Execute(ctx context.Context, core Core, sender Sender, input string) (Outcome, error) {
	start := time.Now()

	name, args, body := parse(input)
	cmd, ok := r.Resolve(name)
	if !ok {
		r.log.Debug("command not found", slog.String("command", name))
		metrics.RecordCommand("not_found", StatusNotFound.String(), time.Since(start))
		return Outcome{Status: StatusNotFound}, nil
	}

	canonical := cmd.Name()
	if denial := permission.Evaluate(cmd.Permission(), SubjectOf(sender)); denial != permission.Allowed {
		r.log.Info("command denied",
			slog.String("command", canonical),
			slog.String("reason", denial.String()),
		)
		metrics.RecordCommand(canonical, StatusDenied.String(), time.Since(start))
		return Outcome{Status: StatusDenied, Denial: denial, Command: canonical}, nil
	}

	text, err := cmd.Run(ctx, &Request{
		Sender: sender,
		Core:   core,
		Name:   name,
		Args:   args,
		Body:   body,
	})
	if err != nil {
		if errors.Is(err, ErrUsage) {
			metrics.RecordCommand(canonical, StatusUsage.String(), time.Since(start))
			return Outcome{Status: StatusUsage, Text: cmd.Usage(), Command: canonical}, nil
		}
		metrics.RecordCommand(canonical, "fault", time.Since(start))
		return Outcome{Command: canonical}, fmt.Errorf("command %s: %w", canonical, err)
	}

	metrics.RecordCommand(canonical, StatusOK.String(), time.Since(start))
	return Outcome{Status: StatusOK, Text: text, Command: canonical}, nil
}

// parse strips an optional leading slash and splits input into the command
// name, its whitespace separated arguments and the raw body after the name.
func parse(input string) (name string, args []string, body string) {
	input = strings.TrimSpace(input)
	input = strings.TrimSpace(strings.TrimPrefix(input, "/"))

	fields := strings.Fields(input)
	if len(fields) == 0 {
		return "", nil, ""
	}

	name = fields[0]
	return name, fields[1:], strings.TrimSpace(input[len(name):])
}

func matchName(cmd Command, name string) bool {
	eq := func(a, b string) bool { return a == b }
	if cmd.IgnoreCase() {
		eq = strings.EqualFold
	}

	if eq(cmd.Name(), name) {
		return true
	}
	for _, alias := range cmd.Aliases() {
		if eq(alias, name) {
			return true
		}
	}
	return false
}

func sameCommand(a, b Command) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
