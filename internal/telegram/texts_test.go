package telegram

import (
	"errors"
	"strings"
	"testing"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/refstars/bot/internal/model"
	"github.com/refstars/bot/internal/service"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		user *tele.User
		want string
	}{
		{user: nil, want: ""},
		{user: &tele.User{Username: "alice", FirstName: "Alice"}, want: "@alice"},
		{user: &tele.User{FirstName: "Bob", LastName: "Smith"}, want: "Bob Smith"},
		{user: &tele.User{FirstName: "Carol"}, want: "Carol"},
	}
	for _, tt := range tests {
		if got := displayName(tt.user); got != tt.want {
			t.Errorf("displayName(%+v) = %q, want %q", tt.user, got, tt.want)
		}
	}
}

func TestRenderProfile(t *testing.T) {
	link := service.ReferralLink("refstars_bot", 100)

	below := renderProfile(&model.Account{ID: 100, ReferralCount: 14}, link, 15)
	if !strings.Contains(below, "https://t.me/refstars_bot?start=100") {
		t.Errorf("profile lacks referral link:\n%s", below)
	}
	if !strings.Contains(below, "До вывода осталось: <b>1</b>") {
		t.Errorf("profile lacks remaining count:\n%s", below)
	}

	if !strings.Contains(below, "Баланс: <b>14</b>") || strings.Contains(below, "Приглашено") {
		t.Errorf("profile should show the balance once:\n%s", below)
	}

	above := renderProfile(&model.Account{ID: 100, ReferralCount: 15}, link, 15)
	if !strings.Contains(above, "Вы можете запросить вывод") {
		t.Errorf("profile lacks payout hint:\n%s", above)
	}
}

func TestProfileMarkupPayoutButton(t *testing.T) {
	hasPayout := func(m *tele.ReplyMarkup) bool {
		for _, row := range m.InlineKeyboard {
			for _, btn := range row {
				if btn.Unique == btnPayout {
					return true
				}
			}
		}
		return false
	}

	if hasPayout(profileMarkup(&model.Account{ReferralCount: 14}, 15)) {
		t.Error("payout button shown below threshold")
	}
	if !hasPayout(profileMarkup(&model.Account{ReferralCount: 15}, 15)) {
		t.Error("payout button missing at threshold")
	}
}

func TestRenderPayoutNoticeEscapes(t *testing.T) {
	text := renderPayoutNotice(service.PayoutNotice{AccountID: 7, DisplayName: "<b>x</b>", Balance: 15})
	if strings.Contains(text, "<b>x</b>") {
		t.Errorf("display name not escaped:\n%s", text)
	}
	if !strings.Contains(text, "<code>7</code>") || !strings.Contains(text, "<b>15</b>") {
		t.Errorf("notice lacks fields:\n%s", text)
	}
}

func TestRenderAccountReport(t *testing.T) {
	referrer := int64(200)
	report := &service.AccountReport{
		Account: &model.Account{
			ID:            100,
			ReferrerID:    &referrer,
			ReferralCount: 3,
			DisplayName:   "@alice",
			IsBanned:      true,
			CreatedAt:     time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
		},
		PayoutRequests: 2,
		RecentActions: []model.StaffAction{
			{StaffID: 1, Action: model.StaffActionBan, CreatedAt: time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)},
		},
	}
	text := renderAccountReport(report)
	for _, want := range []string{"<code>100</code>", "@alice", "<code>200</code>", "заблокирован", "Заявок на вывод: 2", "01.05.2024 12:30", "ban_account"} {
		if !strings.Contains(text, want) {
			t.Errorf("report lacks %q:\n%s", want, text)
		}
	}
}

func TestRenderTop(t *testing.T) {
	if got := renderTop(nil); got != "Пока никого нет." {
		t.Errorf("empty top = %q", got)
	}
	text := renderTop([]model.Account{
		{ID: 30, DisplayName: "@c", ReferralCount: 5},
		{ID: 40, ReferralCount: 5},
		{ID: 50, DisplayName: "Ivan Petrov", ReferralCount: 4},
	})
	if !strings.Contains(text, "1. @c <code>30</code> — 5") || !strings.Contains(text, "2. — <code>40</code> — 5") {
		t.Errorf("top:\n%s", text)
	}
	if !strings.Contains(text, "3. Ivan Petrov <code>50</code> — 4") || strings.Contains(text, "@Ivan") {
		t.Errorf("top:\n%s", text)
	}
}

func TestRenderBroadcastReport(t *testing.T) {
	r := &service.BroadcastReport{Total: 3, Delivered: 2, Failed: 1}
	text := renderBroadcastReport(r, nil)
	if !strings.Contains(text, "Доставлено: 2") || !strings.Contains(text, "Не доставлено: 1") {
		t.Errorf("report:\n%s", text)
	}
	if strings.Contains(text, "прервана") {
		t.Error("complete broadcast reported as interrupted")
	}
	if !strings.Contains(renderBroadcastReport(r, errors.New("canceled")), "прервана") {
		t.Error("interrupted broadcast not flagged")
	}
}

func TestRenderStaffHelp(t *testing.T) {
	if strings.Contains(renderStaffHelp(model.StaffRoleManager), "/ban") {
		t.Error("manager help lists admin commands")
	}
	if !strings.Contains(renderStaffHelp(model.StaffRoleAdmin), "/add_promo") {
		t.Error("admin help lacks admin commands")
	}
}

func TestRenderGoMentionsContact(t *testing.T) {
	text := renderGo("@goatlyroony", 15)
	if !strings.Contains(text, "@goatlyroony") || !strings.Contains(text, "не менее 15") {
		t.Errorf("go text:\n%s", text)
	}
}

func TestIsMemberRole(t *testing.T) {
	tests := []struct {
		role       tele.MemberStatus
		restricted bool
		want       bool
	}{
		{role: tele.Creator, want: true},
		{role: tele.Administrator, want: true},
		{role: tele.Member, want: true},
		{role: tele.Restricted, restricted: true, want: true},
		{role: tele.Restricted, want: false},
		{role: tele.Left, want: false},
		{role: tele.Kicked, want: false},
	}
	for _, tt := range tests {
		if got := isMemberRole(tt.role, tt.restricted); got != tt.want {
			t.Errorf("isMemberRole(%s, %v) = %v", tt.role, tt.restricted, got)
		}
	}
}

func TestRecipients(t *testing.T) {
	if got := userRecipient(123).Recipient(); got != "123" {
		t.Errorf("user recipient = %q", got)
	}
	if got := channelRecipient("@nftMETRO").Recipient(); got != "@nftMETRO" {
		t.Errorf("channel recipient = %q", got)
	}
}
