package routes

import (
	"net/http"
	"time"

	_ "github.com/Dosada05/swiss-tournament/docs"
	"github.com/Dosada05/swiss-tournament/handlers"
	"github.com/Dosada05/swiss-tournament/middleware"
	"github.com/Dosada05/swiss-tournament/services"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	Metrics        http.Handler
}

func SetupRoutes(
	router *chi.Mux,
	opts Options,
	authHandler *handlers.AuthHandler,
	playerHandler *handlers.PlayerHandler,
	tournamentHandler *handlers.TournamentHandler,
	swissHandler *handlers.SwissHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Websocket connections are long lived and must not be cut by the timeout.
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeTournament)
	router.Get("/ws/global", webSocketHandler.ServeGlobal)

	if opts.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Post("/auth/token", authHandler.Token)

		r.Get("/players", playerHandler.List)
		r.Get("/players/{playerID}", playerHandler.GetByID)
		r.Get("/tournaments", tournamentHandler.List)
		r.Get("/tournaments/{tournamentID}", tournamentHandler.GetByID)
		r.Get("/tournaments/{tournamentID}/players", tournamentHandler.ListPlayers)
		r.Get("/tournaments/{tournamentID}/players/{playerID}/bye", swissHandler.ByeStatus)
		r.Get("/tournaments/{tournamentID}/standings", swissHandler.Standings)
		r.Get("/tournaments/{tournamentID}/matches", swissHandler.ListMatches)
		r.Get("/standings", swissHandler.Standings)
		r.Get("/matches", swissHandler.ListMatches)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(opts.JWTSecret))
			r.Use(middleware.Authorize(services.RoleOrganizer))

			r.Post("/players", playerHandler.Create)
			r.Post("/tournaments", tournamentHandler.Create)
			r.Post("/tournaments/{tournamentID}/players", tournamentHandler.Enter)
			r.Post("/tournaments/{tournamentID}/matches", swissHandler.ReportMatch)
			r.Post("/tournaments/{tournamentID}/rounds", swissHandler.GenerateRound)
			r.Post("/matches", swissHandler.ReportMatch)
			r.Post("/rounds", swissHandler.GenerateRound)
		})
	})
}
