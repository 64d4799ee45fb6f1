// Package bot is the Telegram transport adapter: it turns chat
// messages into ledger appends and menu openings, and button taps into
// menu resolutions. All storage and sync semantics live elsewhere; this
// package only translates.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/roach88/spendlog/internal/ledger"
	"github.com/roach88/spendlog/internal/menu"
)

// Store is the slice of the ledger store the bot needs.
type Store interface {
	Append(ctx context.Context, draft ledger.Draft) (int64, error)
	WeeklyTotal(ctx context.Context) (ledger.Amount, error)
}

// Notifier wakes the outbox after a confirmed write.
type Notifier interface {
	Notify()
}

// Options configures New.
type Options struct {
	Token      string
	Store      Store
	Cache      *menu.Cache
	Outbox     Notifier
	Categories []string
	Currency   string
}

// Bot runs the long-polling update loop.
type Bot struct {
	api        *tgbotapi.BotAPI
	store      Store
	cache      *menu.Cache
	outbox     Notifier
	categories []string
	currency   string
}

// New authenticates against the Telegram API.
func New(opts Options) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(opts.Token)
	if err != nil {
		return nil, fmt.Errorf("create telegram client: %w", err)
	}

	return &Bot{
		api:        api,
		store:      opts.Store,
		cache:      opts.Cache,
		outbox:     opts.Outbox,
		categories: opts.Categories,
		currency:   opts.Currency,
	}, nil
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	slog.Info("bot started", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			slog.Info("bot stopping: context cancelled")
			return ctx.Err()
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.Text != "":
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		switch msg.Command() {
		case "add":
			b.handleAdd(ctx, msg, msg.CommandArguments())
		case "week":
			b.handleWeek(ctx, msg)
		case "start", "help":
			b.reply(msg, usageText)
		default:
			b.reply(msg, "Unknown command")
		}
		return
	}

	// A bare "12.50 lunch" works like /add 12.50 lunch.
	if amountStr, _, ok := splitAmountArgs(msg.Text); ok {
		if _, err := ledger.ParseAmount(amountStr); err == nil {
			b.handleAdd(ctx, msg, msg.Text)
			return
		}
	}
	b.reply(msg, "Unknown command")
}

func (b *Bot) handleAdd(ctx context.Context, msg *tgbotapi.Message, args string) {
	author := username(msg.From)
	slog.Info("received add command", "author", author)

	amountStr, note, ok := splitAmountArgs(args)
	if !ok {
		b.reply(msg, "Usage: /add <amount> [note]")
		return
	}

	amount, err := ledger.ParseAmount(amountStr)
	if err != nil {
		b.reply(msg, "Invalid amount")
		return
	}

	choices := make([]menu.Choice, 0, len(b.categories))
	for _, category := range b.categories {
		choices = append(choices, menu.Choice{
			Category: category,
			Amount:   amount,
			Note:     note,
		})
	}
	options := b.cache.Open(choices)

	prompt := tgbotapi.NewMessage(msg.Chat.ID, "Choose a category")
	prompt.ReplyMarkup = keyboard(options)
	if _, err := b.api.Send(prompt); err != nil {
		slog.Error("failed to send category menu", "error", err)
	}
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		slog.Error("failed to answer callback query", "error", err)
	}

	choice, err := b.cache.Resolve(q.Data)
	if errors.Is(err, menu.ErrNotFound) {
		b.editCallbackMessage(q, "This selection has expired. Start over with /add.")
		return
	}

	author := username(q.From)
	_, err = b.store.Append(ctx, ledger.Draft{
		Amount:   choice.Amount,
		Category: choice.Category,
		Note:     choice.Note,
		Author:   author,
	})
	if err != nil {
		slog.Error("failed to save transaction", "error", err)
		b.editCallbackMessage(q, "Could not save the transaction")
		return
	}

	b.editCallbackMessage(q, confirmation(choice))
	b.outbox.Notify()

	slog.Info("transaction saved",
		"amount", choice.Amount.Major(),
		"category", choice.Category,
		"author", author,
	)
}

func (b *Bot) handleWeek(ctx context.Context, msg *tgbotapi.Message) {
	total, err := b.store.WeeklyTotal(ctx)
	if err != nil {
		slog.Error("failed to compute weekly total", "error", err)
		b.reply(msg, "Failed to retrieve weekly summary")
		return
	}
	b.reply(msg, fmt.Sprintf("%s %s this week", total.Major(), b.currency))
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, text)); err != nil {
		slog.Error("failed to send reply", "error", err)
	}
}

// editCallbackMessage replaces the menu message with a final outcome so
// the buttons disappear along with the choice.
func (b *Bot) editCallbackMessage(q *tgbotapi.CallbackQuery, text string) {
	var edit tgbotapi.Chattable
	switch {
	case q.Message != nil:
		edit = tgbotapi.NewEditMessageText(q.Message.Chat.ID, q.Message.MessageID, text)
	case q.InlineMessageID != "":
		edit = tgbotapi.EditMessageTextConfig{
			BaseEdit: tgbotapi.BaseEdit{InlineMessageID: q.InlineMessageID},
			Text:     text,
		}
	default:
		return
	}

	if _, err := b.api.Send(edit); err != nil {
		slog.Error("failed to edit menu message", "error", err)
	}
}

const usageText = "Send /add <amount> [note] (or just \"12.50 lunch\") to record " +
	"an expense, /week for this week's total."
