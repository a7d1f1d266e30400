package telegram

import (
	"fmt"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/refstars/bot/internal/middleware"
	"github.com/refstars/bot/internal/service"
)

func (b *Bot) registerStaff() {
	staff := b.bot.Group()
	staff.Use(middleware.StaffOnly(b.svc.Directory))
	staff.Handle("/check", b.handleCheck)
	staff.Handle("/search", b.handleSearch)
	staff.Handle("/pm", b.handleDirectMessage)
	staff.Handle("/dm", b.handleDirectMessage)
	staff.Handle("/top", b.handleTop)
	staff.Handle("/stats", b.handleStats)
	staff.Handle("/help", b.handleStaffHelp)

	admin := b.bot.Group()
	admin.Use(middleware.AdminOnly(b.svc.Directory))
	admin.Handle("/set", b.handleSetBalance)
	admin.Handle("/ban", b.handleBan)
	admin.Handle("/send", b.handleBroadcast)
	admin.Handle("/add_promo", b.handleAddPromo)
	admin.Handle(&tele.Btn{Unique: btnStaffBan}, b.handleBanShortcut)
	admin.Handle(&tele.Btn{Unique: btnStaffZero}, b.handleZeroShortcut)
}

func (b *Bot) handleCheck(c tele.Context) error {
	id, err := parseAccountID(c.Message().Payload, usageCheck)
	if err != nil {
		return b.fail(c, err)
	}
	report, err := b.svc.Staff.Check(b.ctx, c.Sender().ID, id)
	if err != nil {
		return b.fail(c, err)
	}
	return c.Send(renderAccountReport(report), tele.ModeHTML)
}

func (b *Bot) handleSearch(c tele.Context) error {
	name := c.Message().Payload
	if name == "" {
		return b.fail(c, service.Usage(usageSearch))
	}
	report, err := b.svc.Staff.Search(b.ctx, c.Sender().ID, name)
	if err != nil {
		return b.fail(c, err)
	}
	return c.Send(renderAccountReport(report), tele.ModeHTML)
}

func (b *Bot) handleDirectMessage(c tele.Context) error {
	target, text := splitTarget(c.Message().Payload)
	if target == "" || text == "" {
		return b.fail(c, service.Usage(usagePM))
	}
	res, err := b.svc.Staff.DirectMessage(b.ctx, c.Sender().ID, target, text)
	if err != nil {
		return b.fail(c, err)
	}
	if !res.Delivered {
		return c.Send(fmt.Sprintf("⚠️ Не удалось доставить сообщение пользователю %d.", res.Account.ID))
	}
	return c.Send(fmt.Sprintf("✅ Сообщение отправлено пользователю %d.", res.Account.ID))
}

func (b *Bot) handleTop(c tele.Context) error {
	limit, err := parseTopLimit(c.Args())
	if err != nil {
		return b.fail(c, err)
	}
	accounts, err := b.svc.Staff.Top(b.ctx, c.Sender().ID, limit)
	if err != nil {
		return b.fail(c, err)
	}
	return c.Send(renderTop(accounts), tele.ModeHTML)
}

func (b *Bot) handleStats(c tele.Context) error {
	stats, err := b.svc.Staff.Stats(b.ctx, c.Sender().ID)
	if err != nil {
		return b.fail(c, err)
	}
	return c.Send(renderStats(stats), tele.ModeHTML)
}

func (b *Bot) handleStaffHelp(c tele.Context) error {
	role, err := b.svc.Staff.Role(c.Sender().ID)
	if err != nil {
		return b.fail(c, err)
	}
	return c.Send(renderStaffHelp(role), tele.ModeHTML)
}

func (b *Bot) handleSetBalance(c tele.Context) error {
	id, amount, err := parseSetArgs(c.Args())
	if err != nil {
		return b.fail(c, err)
	}
	account, err := b.svc.Staff.SetBalance(b.ctx, c.Sender().ID, id, amount)
	if err != nil {
		return b.fail(c, err)
	}
	return c.Send(fmt.Sprintf("✅ Баланс пользователя %d: %d ⭐", account.ID, account.ReferralCount))
}

func (b *Bot) handleBan(c tele.Context) error {
	id, err := parseAccountID(c.Message().Payload, usageBan)
	if err != nil {
		return b.fail(c, err)
	}
	if err := b.svc.Staff.Ban(b.ctx, c.Sender().ID, id); err != nil {
		return b.fail(c, err)
	}
	return c.Send(fmt.Sprintf("⛔ Пользователь %d заблокирован.", id))
}

func (b *Bot) handleAddPromo(c tele.Context) error {
	code, reward, uses, err := parsePromoArgs(c.Args())
	if err != nil {
		return b.fail(c, err)
	}
	promo, err := b.svc.Staff.AddPromoCode(b.ctx, c.Sender().ID, code, reward, uses)
	if err != nil {
		return b.fail(c, err)
	}
	return c.Send(fmt.Sprintf("🎟 Промокод %s: +%d ⭐, активаций: %d", promo.Code, promo.RewardAmount, promo.UsesRemaining))
}

// handleBroadcast accepts /send <text>, or /send as a reply to a photo with
// an optional caption override. The broadcast runs off the update worker.
func (b *Bot) handleBroadcast(c tele.Context) error {
	msg, err := broadcastMessage(c.Message())
	if err != nil {
		return b.fail(c, err)
	}

	adminID := c.Sender().ID
	go func() {
		report, err := b.svc.Staff.Broadcast(b.ctx, adminID, msg)
		if report == nil {
			if err != nil && !service.IsUnauthorized(err) {
				b.log.Error("broadcast failed", zap.Int64("admin_id", adminID), zap.Error(err))
			}
			return
		}
		if sendErr := b.SendText(b.ctx, adminID, renderBroadcastReport(report, err)); sendErr != nil {
			b.log.Warn("failed to report broadcast result", zap.Int64("admin_id", adminID), zap.Error(sendErr))
		}
	}()

	return c.Send(textBroadcastQueued)
}

func (b *Bot) handleBanShortcut(c tele.Context) error {
	id, err := parseAccountID(c.Data(), usageBan)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: err.Error()})
	}
	err = b.svc.Staff.Ban(b.ctx, c.Sender().ID, id)
	return b.respondShortcut(c, err, fmt.Sprintf("⛔ %d заблокирован", id))
}

func (b *Bot) handleZeroShortcut(c tele.Context) error {
	id, err := parseAccountID(c.Data(), usageSet)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: err.Error()})
	}
	_, err = b.svc.Staff.SetBalance(b.ctx, c.Sender().ID, id, 0)
	return b.respondShortcut(c, err, fmt.Sprintf("0️⃣ Баланс %d обнулён", id))
}

func (b *Bot) respondShortcut(c tele.Context, err error, ok string) error {
	switch {
	case err == nil:
		return c.Respond(&tele.CallbackResponse{Text: ok, ShowAlert: true})
	case service.IsRefusal(err):
		return c.Respond(&tele.CallbackResponse{Text: err.Error(), ShowAlert: true})
	case service.IsUnauthorized(err):
		return c.Respond()
	default:
		_ = c.Respond()
		return b.fail(c, err)
	}
}
