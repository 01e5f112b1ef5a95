package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/yourorg/vesto-server/internal/auth"
)

func NewRouter(h *Handlers, stream *QuoteStream, jwtSvc *auth.JWTService, allowedOrigin string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/api/auth/register", h.Register)
	r.Post("/api/auth/login", h.Login)
	r.Get("/api/companies/all-data", h.GetCompaniesAllData)

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(jwtSvc))
		r.Get("/portfolio", h.GetPortfolio)
		r.Post("/portfolio/invest", h.Invest)
		r.Post("/simulator/pitch", h.SubmitPitch)
		r.Get("/simulator/pitches", h.ListPitches)
		r.Get("/simulator/pitches/{id}", h.GetPitch)
		r.Get("/progress", h.GetProgress)
		r.Post("/progress/{moduleId}", h.RecordProgress)
		r.Post("/modules/{moduleId}/grade-mcq", h.GradeMCQ)
		r.Post("/modules/{moduleId}/grade-written", h.GradeWritten)
	})

	r.Get("/ws", ServeQuotes(stream, h.logger))

	return r
}
