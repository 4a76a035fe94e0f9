package app

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heartmarshall/mealink-backend/internal/auth"
	"github.com/heartmarshall/mealink-backend/internal/transport/middleware"
	"github.com/heartmarshall/mealink-backend/internal/transport/rest"
)

// routes builds the HTTP handler tree. The returned stop function ends the
// rate limiter's background cleanup.
func routes(core *Core, logger *slog.Logger, gatherer prometheus.Gatherer) (http.Handler, func()) {
	cfg := core.Config

	health := rest.NewHealthHandler(core.Store, cfg.Store.Backend, Build().String())
	inv := rest.NewInventoryHandler(core.Catalog, core.Inventory, core.Identity, validator.New(), logger)

	limiter := middleware.NewRateLimiter(clockwork.NewRealClock(), limiterCleanup)
	searchLimit := limiter.Limit(cfg.Catalog.SearchRateLimit)

	api := http.NewServeMux()
	api.Handle("GET /v1/ingredients", middleware.Stack{searchLimit}.ThenFunc(inv.SearchIngredients))
	api.HandleFunc("POST /v1/inventory", inv.Ingest)
	api.HandleFunc("GET /v1/inventory", inv.List)

	jwtm := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)
	authenticated := middleware.Stack{middleware.Auth(jwtm), middleware.Logger(logger)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.HandleFunc("GET /health", health.Health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/v1/", authenticated.Then(api))

	base := middleware.Stack{middleware.RequestID, middleware.Recovery(logger)}
	return base.Then(mux), limiter.Stop
}
