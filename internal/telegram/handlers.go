package telegram

import (
	"bytes"
	"errors"
	"fmt"
	"html"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/refstars/bot/internal/config"
	"github.com/refstars/bot/internal/model"
	"github.com/refstars/bot/internal/service"
)

const qrSize = 256

func (b *Bot) handleStart(c tele.Context) error {
	user := c.Sender()
	res, err := b.svc.Referral.Start(b.ctx, startRequest(user, c.Message().Payload))
	if err != nil {
		return b.fail(c, err)
	}

	if res.State == model.AccountStateGated {
		return c.Send(renderSubscribePrompt(), subscribeMarkup(b.cfg.Telegram.ChannelLink, res.PendingReferrer))
	}
	if res.Created {
		if err := c.Send(renderGreeting(fullName(user), b.cfg.Telegram.ChannelLink, config.PayoutThreshold), tele.ModeHTML); err != nil {
			return err
		}
	}
	return b.sendProfile(c, res.Account, false)
}

func (b *Bot) handleConfirmSubscription(c tele.Context) error {
	user := c.Sender()
	res, err := b.svc.Referral.Start(b.ctx, startRequest(user, c.Data()))
	if err != nil {
		_ = c.Respond()
		return b.fail(c, err)
	}

	if res.State == model.AccountStateGated {
		return c.Respond(&tele.CallbackResponse{
			Text:      "❌ Подписка не найдена. Подпишитесь на канал и попробуйте ещё раз.",
			ShowAlert: true,
		})
	}
	_ = c.Respond(&tele.CallbackResponse{Text: "✅ Подписка подтверждена"})

	if res.Created {
		if err := c.Send(renderGreeting(fullName(user), b.cfg.Telegram.ChannelLink, config.PayoutThreshold), tele.ModeHTML); err != nil {
			return err
		}
	}
	return b.sendProfile(c, res.Account, true)
}

func (b *Bot) handleRefresh(c tele.Context) error {
	_ = c.Respond()
	account, err := b.svc.Referral.Profile(b.ctx, c.Sender().ID)
	if err != nil {
		return b.fail(c, err)
	}
	return b.sendProfile(c, account, true)
}

func (b *Bot) sendProfile(c tele.Context, account *model.Account, edit bool) error {
	text := renderProfile(account, service.ReferralLink(b.Username(), account.ID), config.PayoutThreshold)
	markup := profileMarkup(account, config.PayoutThreshold)
	if !edit || c.Callback() == nil {
		return c.Send(text, markup, tele.ModeHTML)
	}
	err := c.Edit(text, markup, tele.ModeHTML)
	if errors.Is(err, tele.ErrSameMessageContent) {
		return nil
	}
	return err
}

func (b *Bot) handlePayout(c tele.Context) error {
	_ = c.Respond()
	res, err := b.svc.Payout.Request(b.ctx, c.Sender().ID)
	if err != nil {
		return b.fail(c, err)
	}
	if res.Delivered == 0 {
		b.log.Warn("payout request reached no staff", zap.Int64("account_id", c.Sender().ID))
	}
	return c.Send(textPayoutRequested)
}

func (b *Bot) handleReferralQR(c tele.Context) error {
	_ = c.Respond()
	account, err := b.svc.Referral.Profile(b.ctx, c.Sender().ID)
	if err != nil {
		return b.fail(c, err)
	}

	link := service.ReferralLink(b.Username(), account.ID)
	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		return b.fail(c, fmt.Errorf("encode qr: %w", err))
	}
	return c.Send(&tele.Photo{
		File:    tele.FromReader(bytes.NewReader(png)),
		Caption: link,
	})
}

func (b *Bot) handleCode(c tele.Context) error {
	res, err := b.svc.Promo.Redeem(b.ctx, c.Sender().ID, c.Message().Payload)
	if err != nil {
		return b.fail(c, err)
	}
	return c.Send(fmt.Sprintf("✅ Промокод <code>%s</code> активирован! +%d ⭐\nБаланс: <b>%d</b>",
		html.EscapeString(res.Code), res.Reward, res.Balance), tele.ModeHTML)
}

func (b *Bot) handleGo(c tele.Context) error {
	_, err := b.svc.Referral.Profile(b.ctx, c.Sender().ID)
	if errors.Is(err, service.ErrAccountBanned) {
		return b.fail(c, err)
	}
	return c.Send(renderGo(b.cfg.Telegram.PayoutContact, config.PayoutThreshold), tele.ModeHTML)
}
