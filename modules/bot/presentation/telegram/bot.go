package telegram

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/tg"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/payroll-bot/modules/bot/presentation"
	"github.com/iota-uz/payroll-bot/modules/bot/services"
)

type Handler interface {
	Handle(ctx context.Context, in services.Inbound) (services.Reply, error)
}

type Limiter interface {
	Allow(ctx context.Context, userID int64) (bool, error)
}

type Options struct {
	AppID    int
	AppHash  string
	BotToken string
	// SessionPath keeps the MTProto session between restarts; empty keeps it in memory.
	SessionPath string
	// Limiter caps messages per user; nil disables it.
	Limiter Limiter
	Logger  *logrus.Logger
}

// Bot connects the dialogue controller to Telegram private chats.
type Bot struct {
	handler Handler
	texts   *presentation.Texts
	opts    Options
	logger  *logrus.Entry
}

func NewBot(handler Handler, texts *presentation.Texts, opts Options) *Bot {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Bot{
		handler: handler,
		texts:   texts,
		opts:    opts,
		logger:  opts.Logger.WithField("component", "telegram"),
	}
}

// Run logs in with the bot token and serves updates until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	if b.opts.BotToken == "" || b.opts.AppID == 0 || b.opts.AppHash == "" {
		return errors.New("telegram bot token, app id and app hash are required")
	}

	dispatcher := tg.NewUpdateDispatcher()
	clientOpts := telegram.Options{UpdateHandler: dispatcher}
	if b.opts.SessionPath != "" {
		clientOpts.SessionStorage = &session.FileStorage{Path: b.opts.SessionPath}
	}
	client := telegram.NewClient(b.opts.AppID, b.opts.AppHash, clientOpts)
	sender := message.NewSender(client.API())

	dispatcher.OnNewMessage(func(ctx context.Context, e tg.Entities, u *tg.UpdateNewMessage) error {
		msg, ok := u.Message.(*tg.Message)
		if !ok || msg.Out {
			return nil
		}
		peer, ok := msg.PeerID.(*tg.PeerUser)
		if !ok {
			return nil
		}
		reply := b.Process(ctx, peer.UserID, msg.Message)
		answer := sender.Answer(e, u)
		var err error
		if markup := Keyboard(reply); markup != nil {
			_, err = answer.Markup(markup).Text(ctx, reply.Text)
		} else {
			_, err = answer.Text(ctx, reply.Text)
		}
		if err != nil {
			b.logger.WithError(err).WithField("user_id", peer.UserID).Error("send reply")
		}
		return nil
	})

	return client.Run(ctx, func(ctx context.Context) error {
		status, err := client.Auth().Status(ctx)
		if err != nil {
			return errors.Wrap(err, "auth status")
		}
		if !status.Authorized {
			if _, err := client.Auth().Bot(ctx, b.opts.BotToken); err != nil {
				return errors.Wrap(err, "bot login")
			}
		}
		b.logger.Info("telegram bot is listening")
		<-ctx.Done()
		return ctx.Err()
	})
}

// Process rate-limits and handles one message. It always returns something to send.
func (b *Bot) Process(ctx context.Context, userID int64, text string) services.Reply {
	if b.opts.Limiter != nil {
		allowed, err := b.opts.Limiter.Allow(ctx, userID)
		switch {
		case err != nil:
			b.logger.WithError(err).Warn("rate limiter unavailable")
		case !allowed:
			return services.Reply{Text: b.texts.T("Errors.RateLimited")}
		}
	}
	reply, err := b.handler.Handle(ctx, services.Inbound{UserID: userID, Text: text})
	if err != nil {
		b.logger.WithError(err).WithField("user_id", userID).Error("handle message")
		if reply.Text == "" {
			return services.Reply{Text: b.texts.T("Errors.Generic")}
		}
	}
	if reply.Text == "" {
		reply.Text = b.texts.T("Menu.Main")
	}
	return reply
}

// Keyboard converts the reply menu into a resized reply keyboard. Nil keeps the current one.
func Keyboard(reply services.Reply) tg.ReplyMarkupClass {
	if reply.HideMenu {
		return &tg.ReplyKeyboardHide{}
	}
	if len(reply.Menu) == 0 {
		return nil
	}
	rows := make([]tg.KeyboardButtonRow, 0, len(reply.Menu))
	for _, row := range reply.Menu {
		buttons := make([]tg.KeyboardButtonClass, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, &tg.KeyboardButton{Text: label})
		}
		rows = append(rows, tg.KeyboardButtonRow{Buttons: buttons})
	}
	return &tg.ReplyKeyboardMarkup{Resize: true, Rows: rows}
}
