package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/identity-service/internal/auth"
	"github.com/iliyamo/identity-service/internal/config"
	"github.com/iliyamo/identity-service/internal/database"
	"github.com/iliyamo/identity-service/internal/handler"
	"github.com/iliyamo/identity-service/internal/mail"
	"github.com/iliyamo/identity-service/internal/middleware"
	"github.com/iliyamo/identity-service/internal/queue"
	"github.com/iliyamo/identity-service/internal/repository"
	"github.com/iliyamo/identity-service/internal/router"
	"github.com/iliyamo/identity-service/internal/token"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	store := repository.NewIdentityRepo(db)
	profiles := repository.NewProfileRepo(db, cfg.RoleProfileTables)
	delivery := mail.NewPublisher(cfg.RabbitURL, cfg.EmailFrom)

	svc := auth.NewService(
		store, profiles, delivery,
		token.NewDomain(cfg.JWTSecret, cfg.TokenIssuer),
		token.NewDomain(cfg.ResetSecret, cfg.TokenIssuer),
	)
	svc.AccessTTL = time.Duration(cfg.AccessTTLMin) * time.Minute
	svc.RefreshTTL = time.Duration(cfg.RefreshTTLH) * time.Hour
	svc.ResetTTL = time.Duration(cfg.ResetTTLDays) * 24 * time.Hour
	svc.BcryptCost = cfg.BcryptCost
	svc.AdminRole = cfg.AdminRole
	svc.FrontendURL = cfg.FrontendEndpoint

	// Mail worker; reconnects on its own, never blocks startup.
	go func() {
		if err := queue.StartMailConsumer(); err != nil {
			log.Printf("mail-consumer: %v", err)
		}
	}()

	rdb := config.NewRedisClient() // nil disables rate limiting
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(svc), svc, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
