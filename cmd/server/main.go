package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/edgarhovh/auth-service/internal/config"
	"github.com/edgarhovh/auth-service/internal/database"
	"github.com/edgarhovh/auth-service/internal/handler"
	"github.com/edgarhovh/auth-service/internal/provider"
	"github.com/edgarhovh/auth-service/internal/queue"
	"github.com/edgarhovh/auth-service/internal/repository"
	"github.com/edgarhovh/auth-service/internal/router"
	"github.com/edgarhovh/auth-service/internal/service"
	"github.com/edgarhovh/auth-service/internal/utils"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when unreachable; limiter fails open

	signer, err := utils.NewSigner(cfg.JWTAlg, cfg.JWTSecret, cfg.JWTPrivateKey, cfg.JWTPublicKey, cfg.AccessTTL, cfg.RefreshTTL)
	if err != nil {
		log.Fatalf("jwt: %v", err)
	}

	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	tokens := repository.NewTokenRepo(db)
	otps := repository.NewOtpRepo(db)
	recoveries := repository.NewRecoveryRepo(db)
	activities := repository.NewActivityRepo(db)

	emailSender := provider.NewEmailSender(cfg)
	smsSender := provider.NewSMSSender(cfg)

	publisher := service.NewActivityPublisher(cfg.AMQPURL)
	recorder := service.NewActivityRecorder(activities, publisher)

	tokenSvc := service.NewTokenService(signer, tokens, roles)
	otpSvc := service.NewOtpService(otps, emailSender, smsSender, cfg.OTPTTL, cfg.OTPMaxAttempts)
	authSvc := service.NewAuthService(users, roles, tokenSvc, otpSvc, recorder, cfg.BcryptCost)
	recoverySvc := service.NewRecoveryService(users, roles, otpSvc, recoveries, emailSender, tokenSvc, recorder, cfg.BcryptCost, cfg.RecoveryTTL)
	roleSvc := service.NewRoleService(roles, users, recorder)
	statusSvc := service.NewStatusService(db, rdb)
	analyticsSvc := service.NewAnalyticsService(activities)

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := roleSvc.EnsureBaseRoles(seedCtx); err != nil {
		cancel()
		log.Fatalf("roles: %v", err)
	}
	cancel()

	if cfg.AMQPURL != "" {
		go queue.StartActivityConsumer(cfg.AMQPURL)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Handlers{
		Auth:      handler.NewAuthHandler(authSvc, tokenSvc),
		Otp:       handler.NewOtpHandler(otpSvc),
		Recovery:  handler.NewRecoveryHandler(recoverySvc),
		Roles:     handler.NewRoleHandler(roleSvc),
		Status:    handler.NewStatusHandler(statusSvc),
		Analytics: handler.NewAnalyticsHandler(analyticsSvc),
	}, tokenSvc, config.LoadRateLimitConfig(), rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
