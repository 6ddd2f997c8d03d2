package main

import (
	"net/http"

	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

// newRouter wires every endpoint, with metrics, CORS, and rate limiting
// around the API routes.
func newRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if deps.Config.Observability.MetricsEnabled {
		mux.Handle("GET /metrics", deps.Metrics.Handler())
	}

	route := func(pattern, label string, handler http.HandlerFunc) {
		mux.Handle(pattern, deps.Metrics.WrapHandler(label, handler))
	}

	route("POST /v1/statements", "statements.ingest", deps.StatementHandler.Ingest)
	route("GET /v1/users/{userID}/statements/files", "statements.files", deps.StatementHandler.ListFiles)

	route("GET /v1/users/{userID}/snapshots/{month}", "snapshots.get", deps.RewardsHandler.GetSnapshot)
	route("POST /v1/users/{userID}/optimize/{month}", "rewards.optimize", deps.RewardsHandler.Optimize)
	route("GET /v1/users/{userID}/results/{month}", "rewards.result", deps.RewardsHandler.GetResult)
	route("POST /v1/users/{userID}/cards", "rewards.cards.set", deps.RewardsHandler.SetCard)
	route("GET /v1/users/{userID}/cards", "rewards.cards.list", deps.RewardsHandler.GetCards)

	route("GET /v1/taxonomy/buckets", "taxonomy.buckets", deps.TaxonomyHandler.ListBuckets)
	route("GET /v1/taxonomy/classify", "taxonomy.classify", deps.TaxonomyHandler.Classify)
	route("GET /v1/taxonomy/rules", "taxonomy.rules", deps.TaxonomyHandler.SearchRules)

	limiter := rate.NewLimiter(
		rate.Limit(deps.Config.Server.RateLimitPerSecond),
		deps.Config.Server.RateLimitBurst,
	)
	limited := rateLimit(limiter, mux)

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(limited)
}

func rateLimit(limiter *rate.Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
