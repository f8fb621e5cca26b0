// Package httpapi exposes the bot as an HTTP chat surface. Incoming messages
// are handled asynchronously; replies are read back through an SSE stream or
// by message id.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/sourcegraph/conc"

	"github.com/Belphemur/EpisodeRelay/internal/bus"
)

const defaultRequestTimeout = 30 * time.Second

// ChatHandler answers one incoming chat message.
type ChatHandler interface {
	HandleMessage(ctx context.Context, chatID, text string) error
}

type Server struct {
	logger    zerolog.Logger
	chats     ChatHandler
	messenger *Messenger
	bus       *bus.Bus

	// ctx outlives individual requests; message handling runs under it.
	ctx      context.Context
	inflight conc.WaitGroup

	heartbeat time.Duration
}

// NewServer creates the HTTP surface. Messages accepted by the server are
// handled under ctx, so cancelling it aborts in-flight handling.
func NewServer(ctx context.Context, logger zerolog.Logger, chats ChatHandler, messenger *Messenger, b *bus.Bus) *Server {
	return &Server{
		logger:    logger,
		chats:     chats,
		messenger: messenger,
		bus:       b,
		ctx:       ctx,
		heartbeat: 15 * time.Second,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(hlog.NewHandler(s.logger))
	r.Use(hlog.RequestIDHandler("request_id", "Request-Id"))
	r.Use(hlog.RemoteAddrHandler("remote_ip"))
	r.Use(hlog.UserAgentHandler("user_agent"))
	r.Use(hlog.AccessHandler(accessLogFn))

	r.Route("/api/v1", func(r chi.Router) {
		// SSE streams stay open, so only the plain routes get a timeout
		r.Get("/chats/{chatID}/events", s.handleEvents)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(defaultRequestTimeout))
			r.Get("/health", s.handleHealth)
			r.Post("/chats/{chatID}/messages", s.handlePostMessage)
			r.Get("/chats/{chatID}/messages/{messageID}", s.handleGetMessage)
		})
	})

	return r
}

// Wait blocks until every accepted message has been handled.
func (s *Server) Wait() {
	s.inflight.Wait()
}
