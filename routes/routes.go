package routes

import (
	"net/http"
	"time"

	"github.com/football-investment/practice-booking-system-sub021/handlers"
	"github.com/football-investment/practice-booking-system-sub021/metrics"
	"github.com/football-investment/practice-booking-system-sub021/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRoutes mounts every HTTP endpoint on the router. Reads are public,
// lifecycle mutations require a Bearer token.
func SetupRoutes(
	router *chi.Mux,
	tournamentHandler *handlers.TournamentHandler,
	enrollmentHandler *handlers.EnrollmentHandler,
	phaseHandler *handlers.PhaseHandler,
	resultHandler *handlers.ResultHandler,
	rewardHandler *handlers.RewardHandler,
	webSocketHandler *handlers.WebSocketHandler,
	collector metrics.Metrics,
	metricsHandler http.Handler,
	jwtSecret []byte,
) {
	router.Use(chiMiddleware.Recoverer)
	router.Use(requestDuration(collector))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}` + "\n"))
	})
	router.Method(http.MethodGet, "/metrics", metricsHandler)
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.ListHandler)
		r.Get("/{tournamentID}", tournamentHandler.GetByIDHandler)
		r.Get("/{tournamentID}/participants", tournamentHandler.ListParticipantsHandler)
		r.Get("/{tournamentID}/sessions", tournamentHandler.ListSessionsHandler)
		r.Get("/{tournamentID}/ranking", tournamentHandler.GetRankingHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))

			r.Post("/", tournamentHandler.CreateHandler)
			r.Post("/{tournamentID}/enrollment", enrollmentHandler.OpenHandler)
			r.Delete("/{tournamentID}/enrollment", enrollmentHandler.CloseHandler)
			r.Post("/{tournamentID}/participants", enrollmentHandler.EnrollHandler)
			r.Post("/{tournamentID}/sessions", phaseHandler.GenerateSessionsHandler)
			r.Post("/{tournamentID}/group-stage/finalize", phaseHandler.FinalizeGroupStageHandler)
			r.Post("/{tournamentID}/complete", phaseHandler.CompleteHandler)
			r.Post("/{tournamentID}/rewards", rewardHandler.DistributeHandler)
		})
	})

	router.Route("/sessions", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))

			r.Post("/{sessionID}/result", resultHandler.SubmitHandler)
		})
	})
}

// requestDuration records the wall time of every request in the duration
// histogram.
func requestDuration(collector metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			collector.ObserveRequestDuration(time.Since(start).Seconds())
		})
	}
}
