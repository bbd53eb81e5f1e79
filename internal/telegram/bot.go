// Package telegram connects the router to the Telegram Bot API.
package telegram

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/pbaille/netbook/internal/menu"
	"github.com/pbaille/netbook/internal/router"
	"golang.org/x/sync/errgroup"
)

// maxCallbackData is the Telegram limit on a button's callback payload
const maxCallbackData = 64

// API is the subset of *tgbotapi.BotAPI the bot uses
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Handler produces a reply for an inbound event
type Handler interface {
	Handle(ctx context.Context, ev router.Event) menu.Reply
}

// Options tune the polling loop
type Options struct {
	Workers     int
	PollTimeout int
}

// Bot polls for updates and renders replies
type Bot struct {
	api     API
	handler Handler
	log     *slog.Logger
	opts    Options
}

// New creates a Bot
func New(api API, handler Handler, log *slog.Logger, opts Options) *Bot {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Bot{api: api, handler: handler, log: log, opts: opts}
}

// Run polls until ctx is cancelled or the update channel closes.
// Updates from one user are handled in arrival order; different users
// are spread over the worker pool.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.opts.PollTimeout
	updates := b.api.GetUpdatesChan(u)

	g, ctx := errgroup.WithContext(ctx)

	queues := make([]chan tgbotapi.Update, b.opts.Workers)
	for i := range queues {
		q := make(chan tgbotapi.Update, 16)
		queues[i] = q
		g.Go(func() error {
			for upd := range q {
				b.process(ctx, upd)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer func() {
			for _, q := range queues {
				close(q)
			}
		}()
		for {
			select {
			case <-ctx.Done():
				b.api.StopReceivingUpdates()
				return nil
			case upd, ok := <-updates:
				if !ok {
					return nil
				}
				userID, ok := senderID(upd)
				if !ok {
					continue
				}
				select {
				case queues[shard(userID, len(queues))] <- upd:
				case <-ctx.Done():
					b.api.StopReceivingUpdates()
					return nil
				}
			}
		}
	})

	b.log.Info("bot polling", "workers", b.opts.Workers)
	return g.Wait()
}

func shard(userID int64, n int) int {
	if userID < 0 {
		userID = -userID
	}
	return int(userID % int64(n))
}

func senderID(upd tgbotapi.Update) (int64, bool) {
	switch {
	case upd.Message != nil && upd.Message.From != nil:
		return upd.Message.From.ID, true
	case upd.CallbackQuery != nil && upd.CallbackQuery.From != nil:
		return upd.CallbackQuery.From.ID, true
	}
	return 0, false
}

func (b *Bot) process(ctx context.Context, upd tgbotapi.Update) {
	switch {
	case upd.Message != nil:
		b.message(ctx, upd.Message)
	case upd.CallbackQuery != nil:
		b.callback(ctx, upd.CallbackQuery)
	}
}

func (b *Bot) message(ctx context.Context, msg *tgbotapi.Message) {
	ev := router.Event{ID: uuid.NewString(), UserID: msg.From.ID, Kind: router.TextMessage, Text: msg.Text}
	if msg.IsCommand() {
		ev.Kind = router.CommandMessage
		ev.Text = msg.Command()
	}

	reply := b.handler.Handle(ctx, ev)
	if !reply.HasView() {
		return
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, reply.Text)
	if len(reply.Keyboard) > 0 {
		out.ReplyMarkup = b.markup(reply.Keyboard)
	}
	if _, err := b.api.Send(out); err != nil {
		b.log.Error("send message", "event_id", ev.ID, "err", err)
	}
}

func (b *Bot) callback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	ev := router.Event{ID: uuid.NewString(), UserID: cb.From.ID, Kind: router.ButtonPress, Text: cb.Data}
	reply := b.handler.Handle(ctx, ev)

	if reply.HasView() && cb.Message != nil {
		edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, reply.Text)
		if len(reply.Keyboard) > 0 {
			kb := b.markup(reply.Keyboard)
			edit.ReplyMarkup = &kb
		}
		if _, err := b.api.Send(edit); err != nil {
			b.log.Warn("edit message", "event_id", ev.ID, "err", err)
		}
	}

	answer := tgbotapi.NewCallback(cb.ID, reply.Notice)
	if reply.Alert {
		answer = tgbotapi.NewCallbackWithAlert(cb.ID, reply.Notice)
	}
	if _, err := b.api.Request(answer); err != nil {
		b.log.Warn("answer callback", "event_id", ev.ID, "err", err)
	}
}

func (b *Bot) markup(kb menu.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, r := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(r))
		for _, btn := range r {
			if len(btn.Action) > maxCallbackData {
				b.log.Warn("callback data exceeds telegram limit", "action", btn.Action)
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Action))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
