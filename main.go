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
	apirest "github.com/kasuganosora/lifeos/api/rest"
	"github.com/kasuganosora/lifeos/api/sse"
	"github.com/kasuganosora/lifeos/audit"
	"github.com/kasuganosora/lifeos/cache"
	"github.com/kasuganosora/lifeos/config"
	dbadapter "github.com/kasuganosora/lifeos/db"
	"github.com/kasuganosora/lifeos/game/catalog"
	"github.com/kasuganosora/lifeos/game/companion"
	"github.com/kasuganosora/lifeos/game/ranking"
	"github.com/kasuganosora/lifeos/game/store"
	mw "github.com/kasuganosora/lifeos/middleware"
	"github.com/kasuganosora/lifeos/model"
	"github.com/kasuganosora/lifeos/scheduler"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	if cfg.Server.AdminKey == "" {
		logger.Warn("admin key is not set; admin endpoints are disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(context.Background())

	// ---- Cache / PubSub ----
	cacheConfig := cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
		LocalPubSubBuf:  cfg.Cache.LocalPubSubBuf,
	}
	c, err := cache.NewCache(cacheConfig)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	pubsub, err := cache.NewPubSub(cacheConfig)
	if err != nil {
		log.Fatalf("pubsub: %v", err)
	}
	logger.Info("Cache initialized", zap.Bool("redis", cfg.Cache.RedisAddr != ""))

	// ---- Catalog ----
	cat := catalog.Default()
	if cfg.Game.CatalogPath != "" {
		if cat, err = catalog.Load(cfg.Game.CatalogPath); err != nil {
			log.Fatalf("catalog: %v", err)
		}
		logger.Info("catalog loaded", zap.String("path", cfg.Game.CatalogPath))
	}

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()

	// ---- Leaderboard ----
	board := ranking.New(c, logger)
	if err := board.Seed(ctx, cat.Users); err != nil {
		logger.Warn("leaderboard seed failed", zap.Error(err))
	}

	// ---- Sessions ----
	reg := store.NewRegistry(store.RegistryOptions{
		Catalog:   cat,
		DB:        db,
		PubSub:    pubsub,
		Ranker:    board,
		Scheduler: sched,
		Audit:     auditSvc,
		Timings: store.Timings{
			Latency:        cfg.Game.APILatency,
			ToastTTL:       cfg.Game.ToastTTL,
			BadgeNoticeTTL: cfg.Game.BadgeNoticeTTL,
			BattleAnimTTL:  cfg.Game.BattleAnimTTL,
		},
		Logger: logger,
	})

	// ---- Periodic Scheduler Tasks ----
	if cfg.Game.SnapshotInterval > 0 {
		sched.AddTicker("snapshot_save", cfg.Game.SnapshotInterval, func() {
			saveCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := reg.SaveAll(saveCtx); err != nil {
				logger.Warn("snapshot save", zap.Error(err))
			}
		})
	}
	if cfg.Game.BriefingInterval > 0 {
		sched.AddTicker("daily_briefing", cfg.Game.BriefingInterval, reg.TickBriefings)
	}

	// ---- Companion ----
	var assistant companion.Companion = companion.Scripted{}
	if cfg.Companion.Endpoint != "" {
		assistant = companion.NewHTTP(companion.HTTPConfig{
			Endpoint: cfg.Companion.Endpoint,
			Model:    cfg.Companion.Model,
			APIKey:   cfg.Companion.APIKey,
			Timeout:  cfg.Companion.Timeout,
		}, logger)
		logger.Info("companion endpoint configured", zap.String("model", cfg.Companion.Model))
	}
	companionSvc := companion.NewService(assistant, reg.Env, logger)

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(ctx, rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ---- REST API routes ----
	authH := apirest.NewAuthHandler(db, c, reg, cfg.Security, logger)
	gameH := apirest.NewGameHandler(reg, logger)
	compH := apirest.NewCompanionHandler(gameH, companionSvc)
	rankH := apirest.NewRankingHandler(board, reg, cfg.Game.LeaderboardSize, logger)
	catH := apirest.NewCatalogHandler(cat)
	adminH := apirest.NewAdminHandler(db, reg, sched, auditSvc, logger)
	sseH := sse.NewHandler(pubsub, reg, logger)

	api := r.Group("/api")
	{
		api.POST("/auth/login", authH.Login)
		api.GET("/catalog", catH.Catalog)

		player := api.Group("", mw.Auth(cfg.Security, c))
		player.Use(mw.NewLimiter(ctx, rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst, mw.ByAccount).Handler())
		player.POST("/auth/logout", authH.Logout)
		player.POST("/auth/refresh", authH.Refresh)
		player.GET("/leaderboard", rankH.Leaderboard)
		player.GET("/events", sseH.ServeSSE)
		gameH.Register(player)
		compH.Register(player)

		adminG := api.Group("/admin", mw.IPWhitelist(cfg.Security.AdminAllowIPs), mw.AdminAuth(cfg.Server.AdminKey))
		adminH.Register(adminG)
		adminG.POST("/announce", sseH.PostAnnounce)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		logger.Info("Server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := reg.CloseAll(shutdownCtx); err != nil {
		logger.Error("save sessions on shutdown", zap.Error(err))
	}
}
