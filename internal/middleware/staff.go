package middleware

import (
	tele "gopkg.in/telebot.v3"

	"github.com/refstars/bot/internal/service"
)

// StaffOnly drops updates from anyone outside the staff directory without a
// reply, so non-staff cannot discover which commands exist.
func StaffOnly(directory *service.StaffDirectory) tele.MiddlewareFunc {
	return restrict(directory.IsStaff)
}

// AdminOnly is StaffOnly for the admin set.
func AdminOnly(directory *service.StaffDirectory) tele.MiddlewareFunc {
	return restrict(directory.IsAdmin)
}

func restrict(allowed func(int64) bool) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil || !allowed(sender.ID) {
				if c.Callback() != nil {
					return c.Respond()
				}
				return nil
			}
			return next(c)
		}
	}
}
