package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (a *app) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/{$}", rootPath)

	mux.Handle("GET /home", a.page(a.homePath))

	mux.Handle("GET /auth", a.page(a.loginPath))
	mux.Handle("GET /auth/callback", rateLimited(newClientLimiter(a.cfg.AuthRatePerSecond, a.cfg.AuthRateBurst, a.clock), a.page(a.completeAuthPath)))
	mux.Handle("POST /auth/logout", a.page(a.logoutPath))

	mux.Handle("POST /backup", a.page(a.backupPath))

	mux.Handle("GET /api/me", a.api(a.meAPI))
	mux.Handle("GET /api/backups", a.api(a.backupsAPI))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	return a.withRequestID(a.withRequestLogging(a.metrics.middleware(mux)))
}
