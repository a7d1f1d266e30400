package telegram

import (
	"context"
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v3"

	"github.com/refstars/bot/internal/service"
)

// channelRecipient addresses a chat by @username or numeric id.
type channelRecipient string

func (c channelRecipient) Recipient() string {
	return string(c)
}

type userRecipient int64

func (u userRecipient) Recipient() string {
	return strconv.FormatInt(int64(u), 10)
}

// withContext runs a blocking Bot API call and gives up when ctx is done. The
// call itself is still bounded by the HTTP client timeout.
func withContext[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v, err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-done:
		return r.v, r.err
	}
}

func (b *Bot) send(ctx context.Context, chatID int64, what interface{}, opts ...interface{}) error {
	_, err := withContext(ctx, func() (*tele.Message, error) {
		return b.bot.Send(userRecipient(chatID), what, opts...)
	})
	return err
}

// IsChannelMember implements service.MembershipChecker.
func (b *Bot) IsChannelMember(ctx context.Context, accountID int64) (bool, error) {
	member, err := withContext(ctx, func() (*tele.ChatMember, error) {
		return b.bot.ChatMemberOf(b.channel, userRecipient(accountID))
	})
	if err != nil {
		return false, fmt.Errorf("chat member of %s: %w", b.channel, err)
	}
	return isMemberRole(member.Role, member.Member), nil
}

func isMemberRole(role tele.MemberStatus, restrictedMember bool) bool {
	switch role {
	case tele.Creator, tele.Administrator, tele.Member:
		return true
	case tele.Restricted:
		return restrictedMember
	default:
		return false
	}
}

func (b *Bot) NotifyReferralCredited(ctx context.Context, referrerID int64, refereeName string, newCount int64) error {
	return b.send(ctx, referrerID, renderReferralCredited(refereeName, newCount), tele.ModeHTML)
}

func (b *Bot) NotifyPayoutRequest(ctx context.Context, recipientID int64, notice service.PayoutNotice, privileged bool) error {
	opts := []interface{}{tele.ModeHTML}
	if privileged {
		opts = append(opts, payoutShortcutsMarkup(notice.AccountID))
	}
	return b.send(ctx, recipientID, renderPayoutNotice(notice), opts...)
}

func (b *Bot) SendText(ctx context.Context, chatID int64, text string) error {
	return b.send(ctx, chatID, text)
}

func (b *Bot) SendBroadcast(ctx context.Context, chatID int64, msg service.BroadcastMessage) error {
	if msg.PhotoFileID != "" {
		photo := &tele.Photo{
			File:    tele.File{FileID: msg.PhotoFileID},
			Caption: msg.Caption,
		}
		return b.send(ctx, chatID, photo)
	}
	return b.send(ctx, chatID, msg.Text)
}
