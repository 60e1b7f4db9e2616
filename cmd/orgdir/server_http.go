package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"orgdir/internal/config"
	"orgdir/internal/obs"
	"orgdir/internal/services/auth"
	"orgdir/internal/services/directory"
	"orgdir/internal/token"
)

func buildHTTPServer(cfg *config.Config, logger *zap.Logger, st *stores) *http.Server {
	tokens, err := token.NewService(token.Config{
		AccessSecret:  []byte(cfg.Auth.AccessSecret),
		RefreshSecret: []byte(cfg.Auth.RefreshSecret),
		AccessTTL:     cfg.Auth.AccessTTL,
		RefreshTTL:    cfg.Auth.RefreshTTL,
	})
	if err != nil {
		logger.Fatal("token service", zap.Error(err))
	}

	authUC := auth.NewUsecase(st.Accounts, tokens, cfg.Auth.BcryptCost)
	authCtrl := auth.NewController(authUC, auth.Opts{
		Logger:       logger,
		CookieName:   cfg.Auth.CookieName,
		CookiePath:   cfg.Auth.CookiePath,
		CookieSecure: cfg.Auth.CookieSecure,
		RefreshTTL:   cfg.Auth.RefreshTTL,
	})
	guard := auth.NewGuard(authUC, logger, cfg.Auth.CookieName)

	dirUC := directory.New(st.Departments)
	dirCtrl := directory.NewController(dirUC, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(obs.HTTPMetrics)
	r.Use(accessLog(logger))

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", authCtrl.Routes)
		r.Group(func(r chi.Router) {
			r.Use(guard.Middleware)
			dirCtrl.Routes(r)
		})
	})

	return &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           otelhttp.NewHandler(r, "orgdir.http"),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

func bootstrapMetrics(cfg *config.Config, st *stores, logger *zap.Logger) *http.Server {
	return obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, st.Health, logger)
}

func accessLog(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			obs.WithTrace(r.Context(), logger).Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("took", time.Since(start)),
			)
		})
	}
}
