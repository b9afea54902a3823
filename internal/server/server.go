// Package server exposes the analyst agent over HTTP and websocket.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"retailiq/internal/agent"
	"retailiq/internal/llmclient"
	"retailiq/internal/session"
)

const pruneEvery = 10 * time.Minute

type Server struct {
	httpServer *http.Server
	agent      *agent.Agent
	llm        llmclient.Client
	sessions   *session.Store
	log        *log.Logger
	sessionTTL time.Duration
	stopPrune  chan struct{}
}

func New(addr string, ag *agent.Agent, llm llmclient.Client, sessionTTL time.Duration, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		agent:      ag,
		llm:        llm,
		sessions:   session.NewStore(),
		log:        logger,
		sessionTTL: sessionTTL,
		stopPrune:  make(chan struct{}),
	}
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: h2c.NewHandler(withCORS(s.buildMux()), &http2.Server{}),
	}
	return s
}

// Sessions exposes the store for tests and CLI wiring.
func (s *Server) Sessions() *session.Store { return s.sessions }

func (s *Server) Start() error {
	go s.pruneLoop()
	s.log.Printf("Starting API server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stopPrune)
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) pruneLoop() {
	if s.sessionTTL <= 0 {
		return
	}
	ticker := time.NewTicker(pruneEvery)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopPrune:
			return
		case <-ticker.C:
			if n := s.sessions.Prune(s.sessionTTL); n > 0 {
				s.log.Printf("pruned %d idle sessions", n)
			}
		}
	}
}

// Simple CORS middleware
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Authorization")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
