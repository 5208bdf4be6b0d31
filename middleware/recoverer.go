package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/upb/coffee-shop/utils"
	"go.uber.org/zap"
)

// Recoverer turns a handler panic into a logged 500 with the JSON error envelope
func Recoverer(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				logger.Error("panic recovered",
					zap.String("request_id", GetRequestIDFromContext(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Any("panic", rvr),
					zap.ByteString("stack", debug.Stack()))

				if r.Header.Get("Connection") != "Upgrade" {
					_ = utils.WriteInternalServerError(w)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
