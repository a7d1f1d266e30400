package telegram

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/refstars/bot/internal/model"
	"github.com/refstars/bot/internal/service"
)

// Callback uniques.
const (
	btnConfirmSub = "confirm_sub"
	btnRefresh    = "refresh"
	btnPayout     = "payout"
	btnReferralQR = "ref_qr"
	btnStaffBan   = "staff_ban"
	btnStaffZero  = "staff_zero"
)

const (
	textInternalError   = "⚠️ Что-то пошло не так. Попробуйте позже."
	textPayoutRequested = "✅ Заявка на вывод отправлена менеджерам. Ожидайте, с вами свяжутся.\n\n❗️ Убедительная просьба не спамить."
	textBroadcastQueued = "📤 Рассылка запущена. Пришлю итог, когда закончу."
)

// displayName is the name cached on the account: "@handle" when the user has
// a username, the plain full name otherwise.
func displayName(u *tele.User) string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func fullName(u *tele.User) string {
	if u == nil {
		return ""
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Username
}

func formatName(name string) string {
	if name == "" {
		return "—"
	}
	return html.EscapeString(name)
}

func renderGreeting(name, channelLink string, threshold int64) string {
	return fmt.Sprintf(
		"Здравствуйте, <b>%s</b>! 👋\n"+
			"Спасибо, что выбрали нас.\n\n"+
			"📋 <b>Ваше задание:</b>\n"+
			"Привести как можно больше людей по вашей реферальной ссылке в канал:\n"+
			"👉 <code>%s</code>\n\n"+
			"💰 <b>Оплата:</b> 1 человек = 1 звезда TG ⭐\n"+
			"⚠️ <b>ВАЖНО:</b> Минимальное количество приглашённых — <b>%d человек</b>!\n\n"+
			"Когда наберёте нужное количество, нажмите «Вывести» в профиле или напишите /go.",
		html.EscapeString(name), html.EscapeString(channelLink), threshold)
}

func renderGo(contact string, threshold int64) string {
	return fmt.Sprintf(
		"Ещё раз здравствуйте! 👋\n\n"+
			"Перед тем как писать нашему менеджеру, убедитесь, что:\n"+
			"✅ У вас собраны <b>ВСЕ</b> скриншоты приглашённых людей.\n"+
			"✅ Количество приглашённых не менее %d.\n\n"+
			"Если всё готово, прошу писать сюда: %s\n\n"+
			"❗️ <b>Убедительная просьба не спамить.</b> "+
			"Как только человек освободится, он вам сразу ответит.\n"+
			"<i>Удачи!</i>",
		threshold, html.EscapeString(contact))
}

func renderSubscribePrompt() string {
	return "📢 Чтобы пользоваться ботом, подпишитесь на наш канал.\n\n" +
		"После подписки нажмите «✅ Я подписался»."
}

func renderProfile(a *model.Account, link string, threshold int64) string {
	var sb strings.Builder
	sb.WriteString("👤 <b>Ваш профиль</b>\n\n")
	sb.WriteString("🔗 Ваша реферальная ссылка:\n<code>" + html.EscapeString(link) + "</code>\n\n")
	fmt.Fprintf(&sb, "⭐ Баланс: <b>%d</b>\n\n", a.Balance())
	if a.Balance() >= threshold {
		sb.WriteString("🎉 Вы можете запросить вывод!")
	} else {
		fmt.Fprintf(&sb, "До вывода осталось: <b>%d</b> (минимум %d)", threshold-a.Balance(), threshold)
	}
	return sb.String()
}

func renderReferralCredited(refereeName string, newCount int64) string {
	who := "Новый пользователь"
	if refereeName != "" {
		who = formatName(refereeName)
	}
	return fmt.Sprintf("🎉 %s перешёл по вашей ссылке!\n⭐ Теперь у вас: <b>%d</b>", who, newCount)
}

func renderPayoutNotice(n service.PayoutNotice) string {
	return fmt.Sprintf(
		"💸 <b>Заявка на вывод</b>\n\n"+
			"ID: <code>%d</code>\n"+
			"Пользователь: %s\n"+
			"Баланс: <b>%d</b> ⭐",
		n.AccountID, formatName(n.DisplayName), n.Balance)
}

func renderAccountReport(r *service.AccountReport) string {
	a := r.Account
	var sb strings.Builder
	fmt.Fprintf(&sb, "👤 <b>Пользователь</b> <code>%d</code>\n", a.ID)
	fmt.Fprintf(&sb, "Имя: %s\n", formatName(a.DisplayName))
	fmt.Fprintf(&sb, "Баланс: <b>%d</b> ⭐\n", a.Balance())
	if a.ReferrerID != nil {
		fmt.Fprintf(&sb, "Пригласил: <code>%d</code>\n", *a.ReferrerID)
	}
	if a.IsBanned {
		sb.WriteString("Статус: ⛔ заблокирован\n")
	} else {
		sb.WriteString("Статус: ✅ активен\n")
	}
	fmt.Fprintf(&sb, "Заявок на вывод: %d\n", r.PayoutRequests)
	fmt.Fprintf(&sb, "Регистрация: %s", a.CreatedAt.Format("02.01.2006 15:04"))

	if len(r.RecentActions) > 0 {
		sb.WriteString("\n\n<b>Действия персонала:</b>")
		for _, action := range r.RecentActions {
			fmt.Fprintf(&sb, "\n• %s %s (<code>%d</code>)",
				action.CreatedAt.Format("02.01 15:04"), action.Action, action.StaffID)
		}
	}
	return sb.String()
}

func renderTop(accounts []model.Account) string {
	if len(accounts) == 0 {
		return "Пока никого нет."
	}
	var sb strings.Builder
	sb.WriteString("🏆 <b>Топ по приглашениям</b>\n")
	for i, a := range accounts {
		fmt.Fprintf(&sb, "\n%d. %s <code>%d</code> — %d", i+1, formatName(a.DisplayName), a.ID, a.ReferralCount)
	}
	return sb.String()
}

func renderStats(s *service.Stats) string {
	var sb strings.Builder
	sb.WriteString("📊 <b>Статистика</b>\n\n")
	fmt.Fprintf(&sb, "Пользователей: <b>%d</b>\n", s.Accounts.Total)
	fmt.Fprintf(&sb, "Заблокировано: <b>%d</b>\n", s.Accounts.Banned)
	fmt.Fprintf(&sb, "Активных промокодов: <b>%d</b>", s.ActivePromoCodes)
	for _, p := range s.PromoCodes {
		fmt.Fprintf(&sb, "\n• <code>%s</code> +%d, осталось %d", html.EscapeString(p.Code), p.RewardAmount, p.UsesRemaining)
	}
	return sb.String()
}

func renderBroadcastReport(r *service.BroadcastReport, err error) string {
	text := fmt.Sprintf("📬 Рассылка завершена.\n\nВсего: %d\nДоставлено: %d\nНе доставлено: %d",
		r.Total, r.Delivered, r.Failed)
	if err != nil {
		text += "\n\n⚠️ Рассылка прервана."
	}
	return text
}

func renderStaffHelp(role model.StaffRole) string {
	text := "🛠 <b>Команды персонала</b>\n\n" +
		"/check &lt;id&gt; — карточка пользователя\n" +
		"/search &lt;имя&gt; — поиск по имени\n" +
		"/pm &lt;id|имя&gt; &lt;текст&gt; — написать пользователю (также /dm)\n" +
		"/top [N] — топ по приглашениям\n" +
		"/stats — статистика"
	if role == model.StaffRoleAdmin {
		text += "\n\n<b>Администратор:</b>\n" +
			"/set &lt;id&gt; &lt;число&gt; — установить баланс\n" +
			"/ban &lt;id&gt; — заблокировать\n" +
			"/send &lt;текст&gt; — рассылка (или ответом на фото)\n" +
			"/add_promo &lt;КОД&gt; &lt;награда&gt; &lt;активаций&gt; — промокод"
	}
	return text
}

func profileMarkup(a *model.Account, threshold int64) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := []tele.Row{
		markup.Row(markup.Data("🔄 Обновить", btnRefresh), markup.Data("📷 QR-код", btnReferralQR)),
	}
	if a.Balance() >= threshold {
		rows = append(rows, markup.Row(markup.Data("💸 Вывести", btnPayout)))
	}
	markup.Inline(rows...)
	return markup
}

func subscribeMarkup(channelLink string, pendingReferrer *int64) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	var args []string
	if pendingReferrer != nil {
		args = append(args, strconv.FormatInt(*pendingReferrer, 10))
	}
	markup.Inline(
		markup.Row(markup.URL("📢 Подписаться", channelLink)),
		markup.Row(markup.Data("✅ Я подписался", btnConfirmSub, args...)),
	)
	return markup
}

func payoutShortcutsMarkup(accountID int64) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	id := strconv.FormatInt(accountID, 10)
	markup.Inline(markup.Row(
		markup.Data("⛔ Забанить", btnStaffBan, id),
		markup.Data("0️⃣ Обнулить", btnStaffZero, id),
	))
	return markup
}
