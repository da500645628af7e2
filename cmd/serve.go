package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"droscher.com/DinnerGargoyle/configs"
	"droscher.com/DinnerGargoyle/pkg/auth"
	"droscher.com/DinnerGargoyle/pkg/cache"
	"droscher.com/DinnerGargoyle/pkg/dinner"
	"droscher.com/DinnerGargoyle/pkg/geo"
	"droscher.com/DinnerGargoyle/pkg/integrations"
	"droscher.com/DinnerGargoyle/pkg/model"
	"droscher.com/DinnerGargoyle/pkg/repository"
	"droscher.com/DinnerGargoyle/pkg/server"
)

const timeout = 5 * time.Second

// Cache policy: provider results stay fresh for 30 minutes and servable for
// a day; the catalog snapshot is cheap to rebuild, so it turns over faster.
const (
	providerFreshFor = 30 * time.Minute
	providerStaleFor = 24 * time.Hour
	snapshotFreshFor = 5 * time.Minute
	snapshotStaleFor = 30 * time.Minute
)

type ServeCmd struct {
	ConfigFile string `default:".DinnerGargoyle.toml" help:"Path to config file" short:"c"`
}

func (s *ServeCmd) Run(_ *Context) error {
	logConfig := zap.NewProductionConfig()

	logger, _ := logConfig.Build()
	defer logger.Sync() //nolint:errcheck // we don't care about logger sync errors

	conf, err := configs.GetConfig(s.ConfigFile, logger)
	if err != nil {
		logger.Error("error loading config", zap.Error(err))

		return err
	}

	repo, err := repository.Open(conf, logger)
	if err != nil {
		logger.Error("error connecting to database", zap.Error(err))

		return err
	}
	defer repo.Close()

	source := integrations.GetIntegration(conf.Integrations.Venues[0], conf, logger)
	if source == nil {
		return fmt.Errorf("%w: unknown venue integration %q", configs.ErrConfiguration, conf.Integrations.Venues[0])
	}

	center := geo.Point{Latitude: conf.Search.Latitude, Longitude: conf.Search.Longitude}

	aggregator := dinner.NewAggregator(
		source, repo, repo,
		cache.NewLoader[[]model.Venue](providerFreshFor, providerStaleFor, logger),
		cache.NewLoader[[]model.Venue](snapshotFreshFor, snapshotStaleFor, logger),
		center, conf.Search.RadiusMeters, logger)

	attendance := dinner.NewAttendanceService(repo, logger)
	authManager := auth.NewAuthManager(conf, repo, logger)

	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	api.Use(authManager.Middleware())
	server.NewRestaurantServer(aggregator, attendance, source, logger).Register(api)

	address := fmt.Sprintf(":%d", conf.Server.Port)

	svr := &http.Server{
		Addr:              address,
		ReadHeaderTimeout: timeout,
		Handler:           configureCORS(router),
	}

	err = svr.ListenAndServe()
	if err != nil {
		logger.Error("failed to start server", zap.Error(err))

		return err
	}

	return nil
}

func configureCORS(handler http.Handler) http.Handler {
	corsOpts := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD", "PATCH"},
		AllowedHeaders: []string{
			"accept",
			"accept-encoding",
			"accept-language",
			"authorization",
			"cache-control",
			"content-encoding",
			"content-length",
			"content-type",
			"date",
			"keep-alive",
			"origin",
			"referer",
			"user-agent",
		},
		MaxAge:             86400, // 24 hours
		OptionsPassthrough: false,
	})

	return corsOpts.Handler(handler)
}
