package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"duochat/internal/chat"
	"duochat/internal/realtime"

	"github.com/gorilla/websocket"
	"github.com/valyala/fastjson"
	"go.uber.org/zap"
)

// Server defines fields used in HTTP processing
type Server struct {
	logger        *zap.SugaredLogger
	httpServer    *http.Server
	h             handler
	afterShutdown []func()
}

// NewServer returns new Server struct exposing the chat service and the
// websocket endpoint over HTTP.
func NewServer(logger *zap.SugaredLogger, config EnvConfig, service *chat.Service, registry *realtime.Registry, opts ...Option) (*Server, error) {
	srv := &Server{
		logger: logger,
		h: handler{
			logger:   logger,
			service:  service,
			registry: registry,
			upgrader: websocket.Upgrader{
				ReadBufferSize:  1024,
				WriteBufferSize: 1024,
				CheckOrigin:     func(*http.Request) bool { return true },
			},
			parsers: parsers{
				syncUserPool:         fastjson.ParserPool{},
				createChatPool:       fastjson.ParserPool{},
				createMessagePool:    fastjson.ParserPool{},
				chatsByUserIDPool:    fastjson.ParserPool{},
				messagesByChatIDPool: fastjson.ParserPool{},
				markSeenPool:         fastjson.ParserPool{},
			},
		},
	}

	mux := http.NewServeMux()
	mux.Handle("/users/sync", enforcePOSTJSON(http.HandlerFunc(srv.h.syncUser)))
	mux.Handle("/chats/add", enforcePOSTJSON(http.HandlerFunc(srv.h.createChat)))
	mux.Handle("/chats/get", enforcePOSTJSON(http.HandlerFunc(srv.h.chatsByUserID)))
	mux.Handle("/messages/add", enforcePOSTJSON(http.HandlerFunc(srv.h.createMessage)))
	mux.Handle("/messages/get", enforcePOSTJSON(http.HandlerFunc(srv.h.messagesByChatID)))
	mux.Handle("/messages/seen", enforcePOSTJSON(http.HandlerFunc(srv.h.markSeen)))
	mux.Handle("/media/add", http.HandlerFunc(srv.h.uploadMedia))
	mux.Handle("/ws", http.HandlerFunc(srv.h.serveWS))

	httpServer := &http.Server{
		Addr:    config.Addr(),
		Handler: logRequests(mux, logger.Desugar()),
	}

	for _, opt := range opts {
		opt.apply(httpServer)
	}

	srv.httpServer = httpServer

	return srv, nil
}

// RegisterAfterShutdown registers a function to call after http.Server
// shutdown, in registration order.
func (s *Server) RegisterAfterShutdown(f func()) {
	s.afterShutdown = append(s.afterShutdown, f)
}

// Start calls ListenAndServe on http.Server instance inside Server struct
// and implements graceful shutdown via goroutine waiting for signals
func (s *Server) Start() error {
	idleConnsClosed := make(chan struct{})

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		s.logger.Info("Shutting down HTTP server")

		if err := s.httpServer.Shutdown(context.Background()); err != nil {
			s.logger.Errorf("srv.Shutdown: %v", err)
		}
		s.logger.Info("HTTP server is stopped")

		close(idleConnsClosed)
	}()

	s.logger.Infof("Starting HTTP server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("s.httpServer.ListenAndServe: %v", err)
	}

	<-idleConnsClosed

	for _, f := range s.afterShutdown {
		f()
	}

	return nil
}
