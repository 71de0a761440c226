package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	server "revscrap/internal/adapters/http_server"
	"revscrap/internal/adapters/observability"
	"revscrap/internal/adapters/storefront"
	"revscrap/internal/app"
	"revscrap/internal/shared"
)

func main() {
	godotenv.Load()

	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	observability.Serve(cfg.MetricsAddr)

	// deps
	appstore := storefront.NewAppStore(cfg.AppStoreAPIBase, cfg.AppStoreWebBase, cfg.ClientRPS)
	playstore := storefront.NewPlayStore(cfg.PlayStoreBase, cfg.ClientRPS)
	svc, err := app.NewExportService(appstore, playstore, app.FetchOptions{
		Country:        cfg.Country,
		Lang:           cfg.Lang,
		AppStoreLimit:  cfg.AppStoreLimit,
		PlayStoreLimit: cfg.PlayStoreLimit,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("service init failed")
	}

	// http
	srv := server.New(cfg.HTTPTimeout)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Svc: svc})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
