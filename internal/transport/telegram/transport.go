// Package telegram binds the dispatch engine to the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/citrine-bot/internal/bot"
	"github.com/Proton-105/citrine-bot/internal/domain"
	"github.com/Proton-105/citrine-bot/pkg/config"
)

// Dispatcher receives classified events. *bot.Engine implements it.
type Dispatcher interface {
	HandleMention(ctx context.Context, post *domain.Post) bot.Result
	HandleTimeline(ctx context.Context, post *domain.Post) bot.Result
	HandleDirectMessage(ctx context.Context, post *domain.Post) bot.Result
	HandleFollowed(ctx context.Context, u *domain.User) bot.Result
}

// Transport owns the telebot poller and hands each update to a Dispatcher on its own goroutine.
type Transport struct {
	bot   *telebot.Bot
	me    *domain.User
	shell *Shell
	log   *slog.Logger

	mu         sync.RWMutex
	ctx        context.Context
	dispatcher Dispatcher
	inflight   sync.WaitGroup
}

// New connects to Telegram with cfg and resolves the bot's own account.
// Middlewares wrap every update handler.
func New(cfg config.BotConfig, log *slog.Logger, middlewares ...telebot.MiddlewareFunc) (*Transport, error) {
	if log == nil {
		log = slog.Default()
	}

	settings := telebot.Settings{
		Token:       cfg.Token,
		Synchronous: true,
		OnError: func(err error, c telebot.Context) {
			log.Error("telegram update failed", slog.Any("error", err))
		},
	}

	if cfg.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{
			Listen:   cfg.WebhookListen,
			Endpoint: &telebot.WebhookEndpoint{PublicURL: cfg.WebhookURL},
		}
	} else {
		settings.Poller = &telebot.LongPoller{
			Timeout: cfg.Timeout,
		}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	me := ToUser(tb.Me)
	t := &Transport{
		bot:   tb,
		me:    me,
		shell: NewShell(tb, me, log),
		log:   log,
		ctx:   context.Background(),
	}
	tb.Use(middlewares...)
	t.register()

	return t, nil
}

// Shell returns the reply channel for the engine.
func (t *Transport) Shell() *Shell { return t.shell }

// Telebot exposes the underlying telebot.Bot instance for integrations such as health checks.
func (t *Transport) Telebot() *telebot.Bot { return t.bot }

// Bind sets the dispatcher updates are delivered to.
func (t *Transport) Bind(d Dispatcher) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dispatcher = d
}

// Run polls for updates until ctx is cancelled, then waits for in-flight dispatches.
func (t *Transport) Run(ctx context.Context) error {
	t.mu.Lock()
	t.ctx = ctx
	t.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		t.bot.Start()
	}()

	t.log.Info("telegram polling started", slog.String("account", t.me.Name))
	<-ctx.Done()

	t.log.Info("stopping telegram bot...")
	t.bot.Stop()
	<-done
	t.inflight.Wait()

	return nil
}

func (t *Transport) register() {
	t.bot.Handle(telebot.OnText, t.onMessage)
	t.bot.Handle(telebot.OnPhoto, t.onMessage)
	t.bot.Handle(telebot.OnChannelPost, t.onMessage)
	t.bot.Handle(telebot.OnUserJoined, t.onUserJoined)
}

func (t *Transport) onMessage(c telebot.Context) error {
	m := c.Message()
	if m == nil {
		return nil
	}

	post := ToPost(m, t.me)
	if post == nil || post.User == nil {
		return nil
	}

	switch Classify(m, t.me) {
	case KindDirectMessage:
		t.spawn(func(ctx context.Context, d Dispatcher) { d.HandleDirectMessage(ctx, post) })
	case KindMention:
		t.spawn(func(ctx context.Context, d Dispatcher) { d.HandleMention(ctx, post) })
	default:
		t.spawn(func(ctx context.Context, d Dispatcher) { d.HandleTimeline(ctx, post) })
	}
	return nil
}

func (t *Transport) onUserJoined(c telebot.Context) error {
	m := c.Message()
	if m == nil {
		return nil
	}

	joined := m.UsersJoined
	if len(joined) == 0 && m.UserJoined != nil {
		joined = []telebot.User{*m.UserJoined}
	}

	for i := range joined {
		u := ToUser(&joined[i])
		if u.SameAs(t.me) {
			continue
		}
		t.spawn(func(ctx context.Context, d Dispatcher) { d.HandleFollowed(ctx, u) })
	}
	return nil
}

// spawn runs fn on its own goroutine so settle delays never hold up the poller.
func (t *Transport) spawn(fn func(ctx context.Context, d Dispatcher)) {
	t.mu.RLock()
	ctx, d := t.ctx, t.dispatcher
	t.mu.RUnlock()

	if d == nil {
		t.log.Warn("update dropped: no dispatcher bound")
		return
	}

	t.inflight.Add(1)
	go func() {
		defer t.inflight.Done()
		start := time.Now()
		fn(ctx, d)
		t.log.Debug("update dispatched", slog.Duration("elapsed", time.Since(start)))
	}()
}
