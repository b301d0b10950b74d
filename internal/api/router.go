package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"forkful/pkg/db"
)

// Routes constructs the chi router containing all API endpoints.
func (a *API) Routes() (http.Handler, error) {
	if a == nil {
		return nil, errors.New("nil api")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))
	r.Use(httprate.Limit(a.config.RateLimit, a.config.RateLimitWindow))
	r.Use(func(next http.Handler) http.Handler { return gzhttp.GzipHandler(next) })

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", a.handleReady)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/users", a.handleRegister)
		r.Post("/login", a.handleLogin)
		r.Get("/recipes", a.handleListRecipes)
		r.Get("/recipes/{id}", a.handleGetRecipe)

		r.Group(func(r chi.Router) {
			r.Use(a.requireUser)
			r.Get("/users/me", a.handleMe)
			r.Post("/recipes", a.handleCreateRecipe)
			r.Put("/recipes/{id}", a.handleUpdateRecipe)
			r.Delete("/recipes/{id}", a.handleDeleteRecipe)
			r.Post("/recipes/{id}/like", a.handleLikeRecipe)
			r.Delete("/recipes/{id}/like", a.handleUnlikeRecipe)
		})
	})

	return r, nil
}

func (a *API) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := db.Ping(r.Context(), a.store.DB); err != nil {
		respondError(w, http.StatusServiceUnavailable, errors.New("database unreachable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
