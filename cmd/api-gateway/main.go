package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/Nandakumartc/sonarqube/api/swagger"
	"github.com/Nandakumartc/sonarqube/internal/handler"
	"github.com/Nandakumartc/sonarqube/internal/middleware"
	"github.com/Nandakumartc/sonarqube/internal/models"
	"github.com/Nandakumartc/sonarqube/internal/repository"
	"github.com/Nandakumartc/sonarqube/internal/service"
	"github.com/Nandakumartc/sonarqube/pkg/cache"
	"github.com/Nandakumartc/sonarqube/pkg/config"
	"github.com/Nandakumartc/sonarqube/pkg/database"
	"github.com/Nandakumartc/sonarqube/pkg/i18n"
	"github.com/Nandakumartc/sonarqube/pkg/logger"
	"github.com/Nandakumartc/sonarqube/pkg/markdown"
	corsmiddleware "github.com/Nandakumartc/sonarqube/pkg/middleware/cors"
	reqidmiddleware "github.com/Nandakumartc/sonarqube/pkg/middleware/requestid"
)

// @title SonarQube Changelog API
// @version 1.0.0
// @description Quality profile and issue change history.
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(cfg.Database.DSN(), cfg.Database.MigrationsPath, logr); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Changelog.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis, logr)
		if err != nil {
			logr.Warn("redis unavailable, changelog caching disabled", zap.Error(err))
		}
	}

	bundle, err := i18n.Load(cfg.I18n.DefaultLocale)
	if err != nil {
		logr.Fatal("failed to load messages", zap.Error(err))
	}
	location, err := cfg.I18n.Location()
	if err != nil {
		logr.Fatal("invalid time zone", zap.String("timezone", cfg.I18n.TimeZone), zap.Error(err))
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	profileRepo := repository.NewQualityProfileRepository(db)
	profileChangeRepo := repository.NewProfileChangeRepository(db)
	userRepo := repository.NewUserRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	issueRepo := repository.NewIssueRepository(db)
	issueChangeRepo := repository.NewIssueChangeRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, "sonar", logr)
	defer cacheRepo.Close() //nolint:errcheck

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Changelog.CacheTTL, logr, cfg.Changelog.CacheEnabled && redisClient != nil)
	loader := service.NewChangelogLoader(service.ChangelogLoaderParams{
		Profiles:     profileRepo,
		Changes:      profileChangeRepo,
		IssueChanges: issueChangeRepo,
		Users:        userRepo,
		Rules:        ruleRepo,
		Metrics:      metricsSvc,
		Logger:       logr,
	})
	diffs := service.NewDiffFormatter(service.DiffFormatterParams{
		Localizer:   bundle,
		Users:       userRepo,
		Rules:       ruleRepo,
		HoursPerDay: cfg.Issues.HoursPerDay,
		Metrics:     metricsSvc,
		Logger:      logr,
	})
	changelogSvc := service.NewProfileChangelogService(service.ProfileChangelogServiceParams{
		Loader:    loader,
		Cache:     cacheSvc,
		Validator: validate,
		Logger:    logr,
		Config: service.ProfileChangelogConfig{
			Location:        location,
			DefaultPageSize: cfg.Changelog.DefaultPageSize,
			MaxPageSize:     cfg.Changelog.MaxPageSize,
			CacheTTL:        cfg.Changelog.CacheTTL,
		},
	})
	invalidations := service.NewInvalidationQueue(changelogSvc, time.Second, logr)
	invalidations.Start(ctx)
	defer invalidations.Stop()

	recorder := service.NewChangeRecorder(service.ChangeRecorderParams{
		Profiles:       profileRepo,
		ProfileChanges: profileChangeRepo,
		Issues:         issueRepo,
		IssueChanges:   issueChangeRepo,
		Invalidator:    invalidations,
		Metrics:        metricsSvc,
		Validator:      validate,
		Logger:         logr,
	})
	issueShowSvc := service.NewIssueShowService(service.IssueShowServiceParams{
		Issues:      issueRepo,
		Rules:       ruleRepo,
		Users:       userRepo,
		Changes:     loader,
		Comments:    issueChangeRepo,
		Diffs:       diffs,
		Localizer:   bundle,
		Markdown:    markdown.NewRenderer(),
		HoursPerDay: cfg.Issues.HoursPerDay,
		Metrics:     metricsSvc,
		Location:    location,
		Logger:      logr,
	})
	exportSvc := service.NewExportService(changelogSvc, diffs, location, logr)
	tokens := service.NewTokenService(service.TokenConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
	})

	changelogHandler := handler.NewProfileChangelogHandler(changelogSvc, recorder, exportSvc, bundle.DefaultLocale())
	issueHandler := handler.NewIssueHandler(issueShowSvc, recorder, bundle.DefaultLocale())
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc, "/metrics", "/health", "/ready"))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Locale(bundle.Locales()))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.OptionalJWT(tokens))

	profiles := api.Group("/qualityprofiles")
	profiles.GET("/changelog", changelogHandler.Changelog)
	profiles.GET("/changelog/export", changelogHandler.Export)
	profiles.POST("/changelog", middleware.JWT(tokens), middleware.RequireRoles(models.RoleAdmin), changelogHandler.Record)

	issues := api.Group("/issues")
	issues.GET("/show", issueHandler.Show)
	issues.POST("/changes", middleware.JWT(tokens), issueHandler.RecordChange)
	issues.POST("/comments", middleware.JWT(tokens), issueHandler.AddComment)

	api.GET("/metrics/summary", middleware.JWT(tokens), middleware.RequireRoles(models.RoleAdmin), metricsHandler.Snapshot)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
