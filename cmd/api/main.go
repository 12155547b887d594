package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"places-api/internal/core/assets"
	"places-api/internal/core/auth"
	"places-api/internal/core/config"
	"places-api/internal/core/database"
	"places-api/internal/core/geocode"
	"places-api/internal/core/logger"
	"places-api/internal/core/server"
	"places-api/internal/domain"
	"places-api/internal/repo"
	"places-api/internal/service"
	"places-api/internal/transport/http/handler"
	mdw "places-api/internal/transport/http/middleware"
	"places-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate(cfg.Log.File))
	defer cleanup()
	undo := logger.RedirectStdLog(log, zapcore.InfoLevel)
	defer undo()

	if cfg.App.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 存储（失败会直接 Fatal）
	store := mustOpenStore(cfg, log)
	log.Info("store ready", zap.String("driver", cfg.DB.Driver))

	// JWT
	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL(),
		Leeway: config.Seconds(cfg.JWT.LeewaySec),
	}

	geo := newGeocoder(cfg, log)

	images, closeAssets := mustOpenAssets(ctx, cfg, log)
	defer closeAssets()

	// 业务模块
	reg := &router.Registry{}
	reg.Register(
		handler.NewUsersHandler(service.NewUserService(store.Users(), jwter, log.Named("users"))),
		handler.NewPlacesHandler(service.NewPlaceService(store, geo, images, log.Named("places")), mdw.AuthJWT(jwter)),
	)

	opts := router.Options{
		RequestTimeout: config.Seconds(cfg.App.HTTP.RequestTimeoutSec),
		MaxConcurrent:  cfg.App.HTTP.MaxConcurrent,
		MaxBodyBytes:   cfg.App.HTTP.MaxBodyKB << 10,
		MaxUploadBytes: cfg.Assets.MaxUploadKB << 10,
		CORSOrigins:    cfg.CORS.Origins,
	}
	if cfg.Assets.Driver == "local" {
		opts.StaticPath = "/" + strings.Trim(path.Clean(cfg.Assets.URLPrefix), "/")
		opts.StaticDir = cfg.Assets.Dir
	}
	r := router.NewAPIEngine(log, images, reg, opts)

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		config.Seconds(cfg.App.HTTP.ReadTimeoutSec),
		config.Seconds(cfg.App.HTTP.WriteTimeoutSec),
		config.Seconds(cfg.App.HTTP.IdleTimeoutSec),
		log,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + server.Addr(host4human, cfg.App.HTTP.Port)
	log.Info("places api starting",
		zap.String("addr", addr),
		zap.String("health", baseURL+"/health"),
		zap.String("api", baseURL+"/api"),
		zap.String("geocoder", cfg.Geocode.Provider),
		zap.String("assets", cfg.Assets.Driver),
	)

	if err := server.Run(ctx, srv, log, config.Seconds(cfg.App.HTTP.ShutdownTimeoutSec)); err != nil {
		log.Error("places api stopped with error", zap.Error(err))
		return
	}
	log.Info("places api stopped gracefully")
}

func mustOpenStore(cfg *config.Config, l *zap.Logger) domain.Store {
	if cfg.DB.Driver == "memory" {
		l.Warn("using in-memory store, data is lost on restart")
		return repo.NewMemStore()
	}
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		SlowThresholdMs:    cfg.DB.SlowThresholdMs,
	}, l)
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(repo.Models()...); err != nil {
			l.Fatal("automigrate failed", zap.Error(err))
		}
		l.Info("automigrate done")
	}
	return repo.NewStore(db)
}

func newGeocoder(cfg *config.Config, l *zap.Logger) service.Geocoder {
	g := cfg.Geocode
	if g.Provider == "static" {
		return geocode.Static{Loc: domain.Location{Lat: g.StaticLat, Lng: g.StaticLng}}
	}
	google := geocode.NewGoogle(g.APIKey, g.BaseURL, config.Seconds(g.TimeoutSec))
	return geocode.NewBreaker(google, geocode.BreakerOptions{
		Name:        "google",
		MaxRequests: g.Breaker.MaxRequests,
		Interval:    config.Seconds(g.Breaker.IntervalSec),
		Timeout:     config.Seconds(g.Breaker.TimeoutSec),
		MinRequests: g.Breaker.MinRequests,
		FailureRate: g.Breaker.FailureRate,
	}, l.Named("geocode"))
}

func mustOpenAssets(ctx context.Context, cfg *config.Config, l *zap.Logger) (assets.Store, func()) {
	a := cfg.Assets
	if a.Driver == "gcs" {
		s, err := assets.NewGCS(ctx, a.GCS.Bucket, a.GCS.Prefix, a.GCS.CredentialsFile)
		if err != nil {
			l.Fatal("gcs client", zap.Error(err))
		}
		return s, func() { _ = s.Close() }
	}
	s, err := assets.NewLocal(a.Dir, a.URLPrefix)
	if err != nil {
		l.Fatal("local assets", zap.Error(err))
	}
	return s, func() {}
}
