package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/competition-engine/docs" // registers /swagger/doc.json
	"github.com/Dosada05/competition-engine/handlers"
	"github.com/Dosada05/competition-engine/middleware"
	"github.com/Dosada05/competition-engine/models"
)

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	MetricsHandler http.Handler
	RequestLogger  func(http.Handler) http.Handler
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	competitionHandler *handlers.CompetitionHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
	healthHandler *handlers.HealthHandler,
) {
	router.Use(middleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	if opts.RequestLogger != nil {
		router.Use(opts.RequestLogger)
	}
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", healthHandler.Healthz)
	if opts.MetricsHandler != nil {
		router.Handle("/metrics", opts.MetricsHandler)
	}
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// WebSocket живет вне Timeout: соединение долгоживущее
	router.Get("/ws/competitions/{competitionID}", webSocketHandler.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		// Изменяющие маршруты доступны только организаторам и администраторам
		organizerOnly := func(r chi.Router) {
			r.Use(middleware.Authenticate(opts.JWTSecret))
			r.Use(middleware.Authorize(models.RoleAdmin, models.RoleOrganizer))
		}

		r.Route("/clubs", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				organizerOnly(r)
				r.Post("/", competitionHandler.CreateClub)
			})
		})

		r.Route("/competitions", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				organizerOnly(r)
				r.Post("/", competitionHandler.CreateCompetition)
			})

			r.Route("/{competitionID}", func(r chi.Router) {
				r.Get("/", competitionHandler.GetCompetition)
				r.Get("/participants", competitionHandler.ListParticipants)
				r.Get("/bracket", competitionHandler.GetBracket)
				r.Get("/standings", competitionHandler.GetStandings)
				r.Get("/champion", competitionHandler.GetChampion)

				r.Group(func(r chi.Router) {
					organizerOnly(r)
					r.Post("/participants", competitionHandler.RegisterParticipant)
					r.Post("/bracket", competitionHandler.BuildBracket)
					r.Post("/fixtures", competitionHandler.GenerateFixtures)
				})
			})
		})

		r.Route("/matches/{matchID}", func(r chi.Router) {
			organizerOnly(r)
			r.Post("/result", matchHandler.RecordResult)
			r.Delete("/result", matchHandler.ResetResult)
		})
	})
}
