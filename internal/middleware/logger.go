package middleware

import (
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Logger records every handled update at debug level with its latency.
func Logger(log *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()
			err := next(c)

			fields := []zap.Field{
				zap.Duration("latency", time.Since(start)),
			}
			if sender := c.Sender(); sender != nil {
				fields = append(fields, zap.Int64("user_id", sender.ID))
			}
			if cb := c.Callback(); cb != nil {
				fields = append(fields, zap.String("callback", cb.Unique))
			} else if msg := c.Message(); msg != nil {
				fields = append(fields, zap.String("text", msg.Text))
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}
			log.Debug("update handled", fields...)
			return err
		}
	}
}
