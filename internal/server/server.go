// Package server is the HTTP delivery layer of game packages.
//
//	@title			MML package service
//	@version		1.0
//	@description	Generates and delivers Roblox game packages.
//	@BasePath		/
package server

//go:generate go run github.com/swaggo/swag/cmd/swag@v1.16.3 init --generalInfo server.go --output docs --outputTypes go

import (
	"crypto/rand"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/mmlnetwork/mmlpack/internal/auth"
	"github.com/mmlnetwork/mmlpack/internal/game"
	_ "github.com/mmlnetwork/mmlpack/internal/server/docs"
)

// Deps are the collaborators of the handler.
type Deps struct {
	Database    game.Database // required
	Packager    Packager      // required
	Tokens      *auth.Tokens  // required
	Random      io.Reader     // default: crypto/rand
	Development bool          // serves swagger
}

// New returns a new HTTP server.
// It should be started with http.Server's ListenAndServe.
func New(cfg *Config, log *slog.Logger, deps *Deps) *http.Server {
	addr := net.JoinHostPort(cfg.host(), strconv.Itoa(cfg.port()))

	subLogger := log.With("component", "server")
	subLogLogger := slog.NewLogLogger(subLogger.Handler(), slog.LevelError)

	return &http.Server{
		Addr:              addr,
		ErrorLog:          subLogLogger,
		Handler:           NewHandler(subLogger, deps),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewHandler returns the routes of the service.
func NewHandler(log *slog.Logger, deps *Deps) http.Handler {
	random := deps.Random
	if random == nil {
		random = rand.Reader
	}
	h := &handler{
		db:       deps.Database,
		packager: deps.Packager,
		tokens:   deps.Tokens,
		random:   random,
		log:      log,
	}

	mux := &http.ServeMux{}
	mux.HandleFunc("GET /health", h.GetHealth)
	mux.HandleFunc("GET /download/game/{gameId}", h.DownloadGame)
	mux.HandleFunc("GET /download/container/{containerId}", h.DownloadContainer)
	mux.HandleFunc("GET /download/prebuilt/{type}", h.DownloadPrebuilt)
	mux.HandleFunc("POST /games/{gameId}/api-key", h.IssueAPIKey)
	mux.HandleFunc("POST /v1/builds/token", h.CreateDownloadToken)
	mux.HandleFunc("GET /v1/builds/bootstrap", h.DownloadBootstrap)
	mux.HandleFunc("GET /v1/builds/container", h.DownloadContainerByToken)
	if deps.Development {
		mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	}

	return mux
}
