package telegram

import (
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/refstars/bot/internal/service"
)

const (
	usageCheck    = "/check <id>"
	usageSearch   = "/search <имя>"
	usagePM       = "/pm <id|имя> <текст>"
	usageSet      = "/set <id> <число>"
	usageBan      = "/ban <id>"
	usageAddPromo = "/add_promo <КОД> <награда> <активаций>"
	usageTop      = "/top [N]"
	usageSend     = "/send <текст> или ответом на фото"
)

// startRequest builds the referral workflow input for /start and for the
// subscription confirmation button, whose callback data carries the pending
// referrer token.
func startRequest(user *tele.User, token string) service.StartRequest {
	return service.StartRequest{
		AccountID:     user.ID,
		DisplayName:   displayName(user),
		ReferralToken: strings.TrimSpace(token),
	}
}

// broadcastMessage reads /send: plain text, or a reply to a photo whose
// caption the payload overrides when present.
func broadcastMessage(m *tele.Message) (service.BroadcastMessage, error) {
	msg := service.BroadcastMessage{Text: m.Payload}
	if reply := m.ReplyTo; reply != nil && reply.Photo != nil {
		msg = service.BroadcastMessage{
			PhotoFileID: reply.Photo.FileID,
			Caption:     reply.Caption,
		}
		if m.Payload != "" {
			msg.Caption = m.Payload
		}
	}
	if msg.IsEmpty() {
		return msg, service.Usage(usageSend)
	}
	return msg, nil
}

func parseAccountID(raw, usage string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, service.Usage(usage)
	}
	return id, nil
}

func parseSetArgs(args []string) (id, amount int64, err error) {
	if len(args) != 2 {
		return 0, 0, service.Usage(usageSet)
	}
	if id, err = parseAccountID(args[0], usageSet); err != nil {
		return 0, 0, err
	}
	amount, err = strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return 0, 0, service.Usage(usageSet)
	}
	return id, amount, nil
}

func parsePromoArgs(args []string) (code string, reward, uses int64, err error) {
	if len(args) != 3 {
		return "", 0, 0, service.Usage(usageAddPromo)
	}
	reward, err = strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return "", 0, 0, service.Usage(usageAddPromo)
	}
	uses, err = strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return "", 0, 0, service.Usage(usageAddPromo)
	}
	return args[0], reward, uses, nil
}

func parseTopLimit(args []string) (int, error) {
	if len(args) == 0 {
		return service.DefaultTopLimit, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return 0, service.Usage(usageTop)
	}
	return n, nil
}

// splitTarget separates the first word of a command payload from the rest,
// keeping the rest's line breaks intact.
func splitTarget(payload string) (target, rest string) {
	payload = strings.TrimSpace(payload)
	i := strings.IndexAny(payload, " \t\n")
	if i < 0 {
		return payload, ""
	}
	return payload[:i], strings.TrimSpace(payload[i+1:])
}
