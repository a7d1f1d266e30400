package service

import (
	"context"
)

// PayoutNotice is the request summary sent to staff.
type PayoutNotice struct {
	AccountID   int64
	DisplayName string
	Balance     int64
}

// BroadcastMessage is either text or a photo with an optional caption.
type BroadcastMessage struct {
	Text        string
	PhotoFileID string
	Caption     string
}

func (m BroadcastMessage) IsEmpty() bool {
	return m.Text == "" && m.PhotoFileID == ""
}

// Notifier delivers outbound messages to third parties. Every method may block
// on the network and is expected to time out on its own.
type Notifier interface {
	NotifyReferralCredited(ctx context.Context, referrerID int64, refereeName string, newCount int64) error
	NotifyPayoutRequest(ctx context.Context, recipientID int64, notice PayoutNotice, privileged bool) error
	SendText(ctx context.Context, chatID int64, text string) error
	SendBroadcast(ctx context.Context, chatID int64, msg BroadcastMessage) error
}

// MembershipChecker asks the chat platform whether an account is in the channel.
type MembershipChecker interface {
	IsChannelMember(ctx context.Context, accountID int64) (bool, error)
}
