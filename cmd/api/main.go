package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"portfolio/internal/analytics"
	"portfolio/internal/api"
	"portfolio/internal/assets"
	"portfolio/internal/auth"
	"portfolio/internal/config"
	"portfolio/internal/content"
	"portfolio/internal/database"
	"portfolio/internal/storage"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	log.Printf("api bootstrapped with db host=%s port=%d db=%s sslmode=%s storage=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
		cfg.Storage.Driver,
	)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	log.Printf("database connection ready")

	if err := db.AutoMigrate(&database.Profile{}, &database.Project{}, &database.Visitor{}); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}
	log.Printf("database migrated")

	var store storage.ObjectStore
	var localStore *storage.LocalStore
	switch cfg.Storage.Driver {
	case "minio":
		store, err = storage.NewMinIOStore(cfg.Storage.MinIO)
		if err != nil {
			log.Fatalf("init minio storage: %v", err)
		}
	case "local":
		localStore, err = storage.NewLocalStore(cfg.Storage.Local)
		if err != nil {
			log.Fatalf("init local storage: %v", err)
		}
		store = localStore
	default:
		log.Fatalf("unknown storage driver %q", cfg.Storage.Driver)
	}

	authService, err := auth.NewService(cfg.Admin.Email, cfg.Admin.PasswordHash, []byte(cfg.Admin.JWTSecret))
	if err != nil {
		log.Fatalf("init auth service: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})

	var scanner assets.Scanner
	if cfg.Clamd.Addr != "" {
		scanner = assets.NewClamdScanner(cfg.Clamd.Addr)
		log.Printf("upload scanning enabled via clamd at %s", cfg.Clamd.Addr)
	}

	manager := assets.NewManager(store, scanner, logger)
	contentRepo := content.NewRepository(db)
	analyticsRepo := analytics.NewRepository(db)

	router := api.NewRouter(logger)
	if localStore != nil {
		// 磁盘驱动时由本进程直接提供静态文件；MinIO 驱动走对象存储的公网地址。
		router.Static(cfg.Storage.Local.BaseURL, localStore.Dir())
	}
	api.RegisterRoutes(
		router,
		contentRepo,
		analyticsRepo,
		manager,
		store,
		authService,
		redisClient,
		logger,
		api.LoginLimits{
			RateLimitPerHour: cfg.Admin.LoginRateLimitPerHour,
			LockThreshold:    cfg.Admin.LoginLockThreshold,
			LockTTL:          cfg.Admin.LoginLockTTL,
		},
	)

	address := fmt.Sprintf(":%d", cfg.API.Port)
	log.Printf("api listening on %s", address)
	if err := router.Run(address); err != nil {
		log.Fatalf("failed to start api server: %v", err)
	}
}
