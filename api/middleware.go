package api

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/purelabio/ethgate/gateway"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// Adds the chi request id to the request logger as "req_id".
func requestIdLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rew http.ResponseWriter, req *http.Request) {
		id := middleware.GetReqID(req.Context())
		if id != "" {
			zerolog.Ctx(req.Context()).UpdateContext(func(ctx zerolog.Context) zerolog.Context {
				return ctx.Str("req_id", id)
			})
		}
		next.ServeHTTP(rew, req)
	})
}

func accessLog(req *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(req).Info().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}

/*
Turns panics into a 500 response logged as fatal. Builders panic with
"*gateway.EncodingError" when call arguments don't match the ABI.
*/
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rew http.ResponseWriter, req *http.Request) {
		defer func() {
			val := recover()
			if val == nil {
				return
			}
			if val == http.ErrAbortHandler {
				panic(val)
			}

			event := hlog.FromRequest(req).Error().Bool("fatal", true)
			var encErr *gateway.EncodingError
			if err, ok := val.(error); ok {
				if errors.As(err, &encErr) {
					event = event.Str("abi_method", encErr.Method)
				}
				event = event.Err(err)
			} else {
				event = event.Interface("panic", val)
			}
			event.Bytes("stack", debug.Stack()).Msg("request panicked")

			writeJson(rew, http.StatusInternalServerError, errorBody("internal error"))
		}()
		next.ServeHTTP(rew, req)
	})
}
