package telegram

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
	telemw "gopkg.in/telebot.v3/middleware"

	"github.com/refstars/bot/internal/config"
	"github.com/refstars/bot/internal/middleware"
	"github.com/refstars/bot/internal/service"
)

// Services are the workflows the bot dispatches to. They are built after the
// bot because the bot is also their Notifier and MembershipChecker.
type Services struct {
	Referral  *service.ReferralService
	Promo     *service.PromoCodeService
	Payout    *service.PayoutService
	Staff     *service.StaffService
	Directory *service.StaffDirectory
}

type Bot struct {
	bot     *tele.Bot
	cfg     *config.Config
	channel channelRecipient
	svc     Services
	log     *zap.Logger

	// ctx is the process context, set by Start. Handlers and background
	// broadcasts derive from it.
	ctx context.Context
}

func NewBot(cfg *config.Config, log *zap.Logger) (*Bot, error) {
	b := &Bot{
		cfg:     cfg,
		channel: channelRecipient(cfg.Telegram.ChannelID),
		log:     log,
		ctx:     context.Background(),
	}

	pref := tele.Settings{
		Token:  cfg.Telegram.BotToken,
		Poller: &tele.LongPoller{Timeout: cfg.Telegram.PollTimeout},
		Client: &http.Client{Timeout: cfg.Telegram.PollTimeout + cfg.Telegram.RequestTimeout},
		// One update at a time, in arrival order.
		Synchronous: true,
		OnError: func(err error, c tele.Context) {
			fields := []zap.Field{zap.Error(err)}
			if c != nil && c.Sender() != nil {
				fields = append(fields, zap.Int64("user_id", c.Sender().ID))
			}
			log.Error("telebot error", fields...)
		},
	}

	bot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	b.bot = bot

	return b, nil
}

// Register wires the workflows and installs every handler.
func (b *Bot) Register(svc Services) {
	b.svc = svc

	b.bot.Use(telemw.Recover())
	b.bot.Use(middleware.Logger(b.log))

	b.bot.Handle("/start", b.handleStart)
	b.bot.Handle("/go", b.handleGo)
	b.bot.Handle("/code", b.handleCode)

	b.bot.Handle(&tele.Btn{Unique: btnConfirmSub}, b.handleConfirmSubscription)
	b.bot.Handle(&tele.Btn{Unique: btnRefresh}, b.handleRefresh)
	b.bot.Handle(&tele.Btn{Unique: btnPayout}, b.handlePayout)
	b.bot.Handle(&tele.Btn{Unique: btnReferralQR}, b.handleReferralQR)

	b.registerStaff()
}

func (b *Bot) Username() string {
	return b.bot.Me.Username
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	b.ctx = ctx
	go func() {
		<-ctx.Done()
		b.bot.Stop()
	}()
	b.log.Info("telegram bot polling", zap.String("username", b.Username()))
	b.bot.Start()
}

// fail turns a workflow error into a reply. Authorization failures get no
// reply at all.
func (b *Bot) fail(c tele.Context, err error) error {
	switch {
	case service.IsUnauthorized(err):
		return nil
	case service.IsRefusal(err):
		return c.Send(err.Error())
	default:
		fields := []zap.Field{zap.Error(err)}
		if c.Sender() != nil {
			fields = append(fields, zap.Int64("user_id", c.Sender().ID))
		}
		b.log.Error("request failed", fields...)
		return c.Send(textInternalError)
	}
}
