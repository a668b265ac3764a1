package bot

import (
	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"

	accessservices "github.com/iota-uz/payroll-bot/modules/access/services"
	"github.com/iota-uz/payroll-bot/modules/bot/domain/conversation"
	"github.com/iota-uz/payroll-bot/modules/bot/infrastructure/persistence"
	"github.com/iota-uz/payroll-bot/modules/bot/presentation"
	"github.com/iota-uz/payroll-bot/modules/bot/presentation/telegram"
	"github.com/iota-uz/payroll-bot/modules/bot/services"
	dirservices "github.com/iota-uz/payroll-bot/modules/directory/services"
	ledgerservices "github.com/iota-uz/payroll-bot/modules/ledger/services"
	"github.com/iota-uz/payroll-bot/pkg/application"
	"github.com/iota-uz/payroll-bot/pkg/middleware"
	"github.com/iota-uz/payroll-bot/pkg/money"
)

type ModuleOptions struct {
	// Redis backs conversations, locks and rate limits configured with the "redis" store.
	Redis *redis.Client
}

// NewModule must be loaded after the directory, ledger and access modules.
func NewModule(opts *ModuleOptions) application.Module {
	if opts == nil {
		opts = &ModuleOptions{}
	}
	return &Module{options: opts}
}

type Module struct {
	options *ModuleOptions
}

func (m *Module) Register(app application.Application) error {
	conf := app.Config()
	app.RegisterLocaleFiles(&presentation.LocaleFiles)
	texts := presentation.NewTexts(app.Bundle(), conf.Locale, money.NewFormatter(conf.Currency))

	conversations, locker, err := m.conversationStore(app)
	if err != nil {
		return err
	}

	controller := services.NewController(services.Deps{
		Resolver:      app.Service(accessservices.IdentityResolver{}).(*accessservices.IdentityResolver),
		Gate:          app.Service(accessservices.AccessGate{}).(*accessservices.AccessGate),
		Directory:     app.Service(dirservices.DirectoryService{}).(*dirservices.DirectoryService),
		Ledger:        app.Service(ledgerservices.LedgerService{}).(*ledgerservices.LedgerService),
		Conversations: conversations,
		Locker:        locker,
		Texts:         texts,
	}, services.Options{
		MaxRetries:  conf.Dialogue.MaxRetries,
		CardHistory: conf.Dialogue.CardHistory,
		Logger:      app.Logger(),
	})

	botOpts := telegram.Options{
		AppID:       conf.Telegram.AppID,
		AppHash:     conf.Telegram.AppHash,
		BotToken:    conf.Telegram.BotToken,
		SessionPath: conf.Telegram.SessionPath,
		Logger:      app.Logger(),
	}
	if conf.RateLimit.Enabled {
		store, err := m.limiterStore(conf.RateLimit.Storage)
		if err != nil {
			return err
		}
		botOpts.Limiter = middleware.NewUserLimiter(store, conf.RateLimit.PerMinute)
	}

	app.RegisterServices(controller, telegram.NewBot(controller, texts, botOpts))
	return nil
}

func (m *Module) conversationStore(app application.Application) (conversation.Repository, conversation.Locker, error) {
	dialogue := app.Config().Dialogue
	switch dialogue.Store {
	case "redis":
		if m.options.Redis == nil {
			return nil, nil, errRedisRequired("CONVERSATION_STORE")
		}
		return persistence.NewRedisRepository(m.options.Redis, dialogue.ConversationTTL),
			persistence.NewRedisLocker(m.options.Redis, app.Logger()), nil
	default:
		return persistence.NewMemoryRepository(dialogue.ConversationTTL), persistence.NewMemoryLocker(), nil
	}
}

func (m *Module) limiterStore(storage string) (limiter.Store, error) {
	if storage != "redis" {
		return middleware.NewMemoryStore(), nil
	}
	if m.options.Redis == nil {
		return nil, errRedisRequired("RATE_LIMIT_STORAGE")
	}
	return middleware.NewRedisStore(m.options.Redis)
}

func (m *Module) Name() string {
	return "bot"
}

func errRedisRequired(setting string) error {
	return errors.Errorf("%s=redis needs a Redis client", setting)
}
