package service

import (
	"errors"
)

// Refusal is an expected outcome of a workflow: a business rule or argument
// check said no. Its Message is shown to the user verbatim and no state was
// changed. Anything that is not a Refusal (or an authorization error) is an
// unexpected failure.
type Refusal struct {
	Code    string
	Message string
}

func (r *Refusal) Error() string {
	return r.Message
}

// IsRefusal reports whether err is, or wraps, a Refusal.
func IsRefusal(err error) bool {
	var r *Refusal
	return errors.As(err, &r)
}

// Usage builds a validation refusal carrying a usage hint.
func Usage(hint string) *Refusal {
	return &Refusal{Code: "usage", Message: "Использование: " + hint}
}

var (
	ErrAccountBanned        = &Refusal{Code: "banned", Message: "⛔ Ваш аккаунт заблокирован."}
	ErrAccountNotRegistered = &Refusal{Code: "not_registered", Message: "Сначала нажмите /start."}
	ErrInsufficientBalance  = &Refusal{Code: "insufficient_balance", Message: "Недостаточно звёзд для вывода."}
	ErrPromoCodeNotFound    = &Refusal{Code: "promo_not_found", Message: "❌ Такого промокода не существует."}
	ErrPromoCodeExhausted   = &Refusal{Code: "promo_exhausted", Message: "❌ Промокод больше не действует: лимит активаций исчерпан."}
	ErrPromoCodeAlreadyUsed = &Refusal{Code: "promo_already_used", Message: "❌ Вы уже активировали этот промокод."}
	ErrAccountNotFound      = &Refusal{Code: "account_not_found", Message: "Пользователь не найден."}
	ErrAlreadyBanned        = &Refusal{Code: "already_banned", Message: "Пользователь уже заблокирован."}
)

// Authorization failures. The chat layer answers these with silence.
var (
	ErrNotStaff = errors.New("caller is not staff")
	ErrNotAdmin = errors.New("caller is not an admin")
)

// IsUnauthorized reports whether err is an authorization failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrNotStaff) || errors.Is(err, ErrNotAdmin)
}
