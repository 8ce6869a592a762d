// Package http exposes the face and payment flows over a JSON API. The
// payment endpoint streams stage events as server-sent events; everything
// else is plain request/response.
package http

import (
	"net/http"
	"time"

	"github.com/facepay-lab/facepay/pkg/usecase"
	"github.com/facepay-lab/facepay/pkg/utils/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases

	maxRegisterImages int
	maxImageBytes     int64
}

type Options func(*Server)

// WithMaxRegisterImages caps how many samples one registration may carry.
func WithMaxRegisterImages(n int) Options {
	return func(s *Server) {
		s.maxRegisterImages = n
	}
}

// WithMaxImageBytes caps the size of one uploaded frame.
func WithMaxImageBytes(n int64) Options {
	return func(s *Server) {
		s.maxImageBytes = n
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:            r,
		uc:                uc,
		maxRegisterImages: 3,
		maxImageBytes:     10 << 20,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/face", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/match", s.handleMatch)
		})
		r.Post("/payment", s.handlePayment)
		r.Get("/balance/{address}", s.handleBalance)
		r.Get("/faces", s.handleFaces)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
