package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"lumafab/internal/http/handlers"
	httpapi "lumafab/internal/http/httpapi"
	"lumafab/internal/infra"
	"lumafab/internal/infra/geoip"
	"lumafab/internal/journal"
	"lumafab/internal/middleware"
	"lumafab/internal/pipeline"
	"lumafab/internal/providers/directus"
	"lumafab/internal/providers/genai"
	"lumafab/internal/providers/image"
	"lumafab/internal/providers/meshy"
	"lumafab/internal/providers/pricing"
	"lumafab/internal/providers/prompt"
	"lumafab/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// The journal is optional: without DATABASE_URL the service runs
	// stateless and every journal write becomes a no-op.
	var jrnl *journal.Journal
	if cfg.DatabaseURL != "" {
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()
		jrnl = journal.New(infra.NewSQLRunner(dbpool, logger), logger)
	}

	var countryLookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable, locale falls back to headers")
	} else if resolver != nil {
		countryLookup = resolver.CountryCode
	}

	gemini := genai.NewClient(genai.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
	})
	if !gemini.Configured() {
		logger.Warn().Msg("GEMINI_API_KEY not set, generation endpoints will report 503")
	}

	optimizer, err := prompt.NewGeminiOptimizer(prompt.GeminiOptions{
		Client: gemini,
		Model:  cfg.GeminiTextModel,
		OnFallback: func(reason string, err error) {
			logger.Warn().Err(err).Str("reason", reason).Msg("prompt optimization fell back to static template")
		},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("build prompt optimizer")
	}
	generator, err := image.NewGeminiGenerator(image.GeminiOptions{
		Client: gemini,
		Model:  cfg.GeminiImageModel,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("build image generator")
	}
	estimator, err := pricing.NewGeminiEstimator(pricing.GeminiOptions{
		Client: gemini,
		Model:  cfg.GeminiTextModel,
		OnDegraded: func(reason string, err error) {
			logger.Warn().Err(err).Str("reason", reason).Msg("price estimate degraded to fallback")
		},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("build price estimator")
	}

	meshyClient := meshy.NewClient(meshy.Options{
		BaseURL: cfg.MeshyBaseURL,
		APIKey:  cfg.MeshyAPIKey,
		Logger:  logger,
	})
	directusClient := directus.NewClient(directus.Options{
		BaseURL: cfg.DirectusURL,
		Token:   cfg.DirectusToken,
	})

	var archive *storage.FileStore
	if cfg.DesignsDir != "" {
		archive, err = storage.NewFileStore(cfg.DesignsDir)
		if err != nil {
			logger.Warn().Err(err).Msg("design archive disabled")
		}
	}

	pipe, err := pipeline.New(pipeline.Options{
		Optimizer:        optimizer,
		Generator:        generator,
		Meshy:            meshyClient,
		Journal:          jrnl,
		Archive:          archive,
		Logger:           logger,
		PollMaxAttempts:  cfg.MeshMaxPollAttempts,
		PollInitialDelay: cfg.MeshInitialPollDelay,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("build pipeline")
	}

	app := &handlers.App{
		Logger:    logger,
		Config:    cfg,
		Pipeline:  pipe,
		Generator: generator,
		Estimator: estimator,
		Meshy:     meshyClient,
		Directus:  directusClient,
		Journal:   jrnl,
	}

	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		DefaultLocale:  cfg.DefaultLocale,
		RateLimit:      cfg.RateLimitPerMin,
		CountryLookup:  countryLookup,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
