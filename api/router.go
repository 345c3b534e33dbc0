// Package api serves the gateway over HTTP as JSON endpoints.
package api

import (
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/purelabio/ethgate/gateway"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

/*
Builds the HTTP handler of the gateway. Middleware, outermost first: CORS,
request id, request logger, access log, metrics, panic recovery. POST routes
also check that the body is declared as JSON.
*/
func NewHandler(service *gateway.Service, metrics *Metrics, logger zerolog.Logger) http.Handler {
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         3600,
	}))
	mux.Use(middleware.RequestID)
	mux.Use(hlog.NewHandler(logger))
	mux.Use(requestIdLogger)
	mux.Use(hlog.AccessHandler(accessLog))
	mux.Use(metrics.Middleware)
	mux.Use(recoverer)

	mux.NotFound(func(rew http.ResponseWriter, _ *http.Request) {
		writeJson(rew, http.StatusNotFound, errorBody("not found"))
	})
	mux.MethodNotAllowed(func(rew http.ResponseWriter, _ *http.Request) {
		writeJson(rew, http.StatusMethodNotAllowed, errorBody("method not allowed"))
	})

	han := handlers{service}

	mux.Route("/token", func(mux chi.Router) {
		mux.Use(requireJson)
		mux.Post("/transfer", prepared(service.Transfer))
		mux.Post("/approve", prepared(service.Approve))
		mux.Post("/transferFrom", prepared(service.TransferFrom))
		mux.Post("/balanceOf", endpoint(han.balanceOf))
		mux.Post("/allowance", endpoint(han.allowance))
		mux.Post("/totalSupply", endpoint(han.totalSupply))
		mux.Post("/decimals", endpoint(han.decimals))
	})

	mux.Route("/wallet", func(mux chi.Router) {
		mux.Use(requireJson)
		mux.Post("/disperseEther", prepared(service.DisperseEther))
		mux.Post("/disperseEtherByPercent", prepared(service.DisperseEtherByPercent))
		mux.Post("/disperseToken", prepared(service.DisperseToken))
		mux.Post("/disperseTokenByPercent", prepared(service.DisperseTokenByPercent))
		mux.Post("/collectEther", prepared(service.CollectEther))
		mux.Post("/collectToken", prepared(service.CollectToken))
	})

	mux.Route("/web3", func(mux chi.Router) {
		mux.With(requireJson).Post("/signTransaction", endpoint(han.signTransaction))
		mux.With(requireJson).Post("/sendSignedTransaction", endpoint(han.sendSignedTransaction))
		mux.Get("/transaction/{hash}", endpoint(han.transaction))
	})

	mux.Get("/health", endpoint(han.health))
	mux.Method(http.MethodGet, "/metrics", metrics.Handler())

	return mux
}

// Rejects bodies declared as anything but JSON. A missing content type is fine.
func requireJson(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rew http.ResponseWriter, req *http.Request) {
		contentType := req.Header.Get("Content-Type")
		if contentType != "" {
			mediaType, _, err := mime.ParseMediaType(contentType)
			if err != nil || mediaType != "application/json" {
				writeJson(rew, http.StatusUnsupportedMediaType, errorBody("Content-Type must be application/json"))
				return
			}
		}
		next.ServeHTTP(rew, req)
	})
}
