// Package bot routes inbound social events through pending continuations and
// an ordered pipeline of modules.
package bot

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Proton-105/citrine-bot/internal/command"
	"github.com/Proton-105/citrine-bot/internal/continuation"
	"github.com/Proton-105/citrine-bot/internal/domain"
	errors "github.com/Proton-105/citrine-bot/internal/errors"
	"github.com/Proton-105/citrine-bot/internal/i18n"
	"github.com/Proton-105/citrine-bot/internal/permission"
	"github.com/Proton-105/citrine-bot/internal/user"
)

// Delays are the settle delays waited before each event kind is handled.
type Delays struct {
	Mention       time.Duration
	Timeline      time.Duration
	DirectMessage time.Duration
	Follow        time.Duration
}

// DefaultDelays returns the production settle delays.
func DefaultDelays() Delays {
	return Delays{
		Mention:       time.Second,
		Timeline:      time.Second,
		DirectMessage: 250 * time.Millisecond,
		Follow:        400 * time.Millisecond,
	}
}

// Engine owns the module pipeline, the command registry and the continuation
// table, and dispatches inbound events to them. It implements command.Core.
type Engine struct {
	shell         domain.Shell
	users         *user.Service
	identity      atomic.Pointer[permission.Identity]
	pipeline      *Pipeline
	commands      *command.Registry
	continuations *continuation.Table[Module]
	delays        Delays
	tr            i18n.Translator
	errHandler    *errors.Handler
	log           *slog.Logger

	continuationTTL time.Duration
}

// Option customizes an Engine.
type Option func(*Engine)

// WithDelays overrides the settle delays.
func WithDelays(d Delays) Option {
	return func(e *Engine) {
		e.delays = d
	}
}

// WithContinuationTTL expires continuations that were not answered within ttl.
func WithContinuationTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.continuationTTL = ttl
	}
}

// WithTranslator sets the catalog used for replies the engine sends itself.
func WithTranslator(tr i18n.Translator) Option {
	return func(e *Engine) {
		e.tr = tr
	}
}

// WithErrorHandler sets the handler that records module faults.
func WithErrorHandler(h *errors.Handler) Option {
	return func(e *Engine) {
		e.errHandler = h
	}
}

// NewEngine constructs an Engine with empty registries.
func NewEngine(shell domain.Shell, users *user.Service, identity *permission.Identity, log *slog.Logger, opts ...Option) *Engine {
	if log == nil {
		log = slog.Default()
	}

	e := &Engine{
		shell:    shell,
		users:    users,
		pipeline: NewPipeline(),
		commands: command.NewRegistry(log),
		delays:   DefaultDelays(),
		log:      log,
	}
	for _, opt := range opts {
		opt(e)
	}

	if identity == nil {
		identity = permission.NewIdentity("", nil)
	}
	e.identity.Store(identity)

	if e.errHandler == nil {
		e.errHandler = errors.NewHandler(log, false)
	}
	if e.tr == nil {
		catalog, err := i18n.Load("en")
		if err != nil {
			log.Warn("falling back to untranslated replies", slog.Any("error", err))
		}
		e.tr = catalog.Translator("en")
	}
	e.continuations = continuation.NewTable[Module](e.continuationTTL)

	return e
}

// Shell returns the transport the engine replies through.
func (e *Engine) Shell() domain.Shell { return e.shell }

// Users returns the rating and nickname accessors.
func (e *Engine) Users() *user.Service { return e.users }

// Commands returns the command registry.
func (e *Engine) Commands() *command.Registry { return e.commands }

// Translator returns the reply catalog.
func (e *Engine) Translator() i18n.Translator { return e.tr }

// Identity returns the current administrator and moderator classification.
func (e *Engine) Identity() *permission.Identity { return e.identity.Load() }

// SetIdentity replaces the identity. Every later read sees it, including reads
// made by dispatches already in flight. A nil identity is ignored.
func (e *Engine) SetIdentity(identity *permission.Identity) {
	if identity == nil {
		return
	}
	e.identity.Store(identity)
	e.log.Info("identity updated",
		slog.String("admin", identity.Admin()),
		slog.Any("moderators", identity.Moderators()),
	)
}

// Continuations exposes the continuation table for sweeping and metrics.
func (e *Engine) Continuations() *continuation.Table[Module] { return e.continuations }

// AddModule inserts m into the pipeline and reports whether it was new.
func (e *Engine) AddModule(m Module) bool {
	added := e.pipeline.Add(m)
	if added {
		e.log.Debug("module added", slog.String("module", m.Name()), slog.Int("priority", m.Priority()))
	}
	return added
}

// Modules returns the pipeline in dispatch order.
func (e *Engine) Modules() []Module {
	return e.pipeline.Snapshot()
}

// ModuleNames returns module names in dispatch order.
func (e *Engine) ModuleNames() []string {
	modules := e.pipeline.Snapshot()
	names := make([]string, 0, len(modules))
	for _, m := range modules {
		names = append(names, m.Name())
	}
	return names
}

// AddCommand registers cmd and reports whether it was new.
func (e *Engine) AddCommand(cmd command.Command) bool {
	return e.commands.Register(cmd)
}

// RegisterContext routes the next reply to post (or, for a direct message,
// the next message from its recipient) to m with args.
func (e *Engine) RegisterContext(post *domain.Post, m Module, args continuation.Args) error {
	if m == nil {
		return stdErrors.New("register context: nil module")
	}
	if err := e.continuations.Register(post, m, args); err != nil {
		return fmt.Errorf("register context for %s: %w", m.Name(), err)
	}
	return nil
}

// SenderFor classifies the author of post as a command sender.
func (e *Engine) SenderFor(post *domain.Post) *command.PostSender {
	return command.NewPostSender(post, e.Identity())
}

// ExecCommand runs input on behalf of sender.
func (e *Engine) ExecCommand(ctx context.Context, sender command.Sender, input string) (command.Outcome, error) {
	return e.commands.Execute(ctx, e, sender, input)
}

// Exec runs input as the console acting as an ordinary user.
func (e *Engine) Exec(ctx context.Context, input string) (string, error) {
	return e.execInternal(ctx, command.InternalSender, input)
}

// Sudo runs input as the console acting as the administrator.
func (e *Engine) Sudo(ctx context.Context, input string) (string, error) {
	return e.execInternal(ctx, command.SuperInternalSender, input)
}

func (e *Engine) execInternal(ctx context.Context, sender command.Sender, input string) (string, error) {
	outcome, err := e.ExecCommand(ctx, sender, input)
	if err != nil {
		return "", err
	}
	if err := outcome.Err(); err != nil {
		return "", err
	}
	return outcome.Text, nil
}
