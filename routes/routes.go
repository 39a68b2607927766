package routes

import (
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/teamplay/scheduler/handlers"
	"github.com/teamplay/scheduler/middleware"
)

const summaryCacheTTL = 30 * time.Second

func SetupRoutes(
	router *chi.Mux,
	schedulingHandler *handlers.SchedulingHandler,
	availabilityHandler *handlers.AvailabilityHandler,
	liveHandler *handlers.LiveHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.RateLimit(rate.Limit(20), 40))

	summaryCache := cache.New(summaryCacheTTL, 2*summaryCacheTTL)

	router.Route("/patterns", func(r chi.Router) {
		r.Post("/", schedulingHandler.CreatePatternHandler)
		r.Get("/{patternID}", schedulingHandler.GetPatternHandler)
		r.Patch("/{patternID}/active", schedulingHandler.SetPatternActiveHandler)
		r.Post("/{patternID}/generate", schedulingHandler.GenerateGamesHandler)
	})

	router.Route("/series/{seriesID}", func(r chi.Router) {
		r.Get("/patterns", schedulingHandler.ListSeriesPatternsHandler)
		r.Get("/optimal-slot", schedulingHandler.FindOptimalSlotHandler)
	})

	router.Get("/games/{gameID}/conflicts", schedulingHandler.DetectConflictsHandler)

	router.Post("/availability", availabilityHandler.SetAvailabilityHandler)

	// Сводка доступности меняется редко, ответ кэшируем
	router.Group(func(r chi.Router) {
		r.Use(middleware.Cache(summaryCache, summaryCacheTTL))
		r.Get("/teams/{teamID}/availability-summary", availabilityHandler.TeamSummaryHandler)
	})

	router.Get("/ws/series/{seriesID}", liveHandler.ServeWs)
}
