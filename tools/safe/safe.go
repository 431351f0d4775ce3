package safe

import (
	"UChat/logger"

	"go.uber.org/zap"
)

// Go starts a new goroutine that recovers from panic,
// so a misbehaving side effect can't crash the whole relay.
func Go(f func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("goroutine panic recovered", zap.Any("panic", r))
			}
		}()
		f()
	}()
}
