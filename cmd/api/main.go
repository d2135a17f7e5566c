package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/churchcomm/admin-api/config"
	"github.com/churchcomm/admin-api/internal/email"
	"github.com/churchcomm/admin-api/internal/gateway/termii"
	authHandlerPkg "github.com/churchcomm/admin-api/internal/handler/auth"
	birthdayHandlerPkg "github.com/churchcomm/admin-api/internal/handler/birthday"
	contactHandlerPkg "github.com/churchcomm/admin-api/internal/handler/contact"
	groupHandlerPkg "github.com/churchcomm/admin-api/internal/handler/group"
	messageHandlerPkg "github.com/churchcomm/admin-api/internal/handler/message"
	templateHandlerPkg "github.com/churchcomm/admin-api/internal/handler/template"
	"github.com/churchcomm/admin-api/internal/middleware"
	"github.com/churchcomm/admin-api/internal/repository/postgres"
	"github.com/churchcomm/admin-api/internal/router"
	"github.com/churchcomm/admin-api/internal/scheduler"
	authService "github.com/churchcomm/admin-api/internal/service/auth"
	birthdayService "github.com/churchcomm/admin-api/internal/service/birthday"
	contactService "github.com/churchcomm/admin-api/internal/service/contact"
	groupService "github.com/churchcomm/admin-api/internal/service/group"
	messageService "github.com/churchcomm/admin-api/internal/service/message"
	templateService "github.com/churchcomm/admin-api/internal/service/template"
	"github.com/churchcomm/admin-api/pkg/auth"
	"github.com/churchcomm/admin-api/pkg/logger"
	"github.com/churchcomm/admin-api/pkg/messaging"
	redisbroker "github.com/churchcomm/admin-api/pkg/messaging/redis"
	"github.com/churchcomm/admin-api/pkg/metrics"
	"github.com/churchcomm/admin-api/pkg/security"
)

func main() {
	log := logger.NewLogger(&logger.Config{
		Level:      logger.InfoLevel,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	// repositories
	churchRepo := postgres.NewChurchRepository(db)
	contactRepo := postgres.NewContactRepository(db)
	groupRepo := postgres.NewGroupRepository(db)
	templateRepo := postgres.NewTemplateRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	birthdayRepo := postgres.NewBirthdayConfigRepository(db)
	jobRepo := postgres.NewJobRepository(db)

	m := metrics.New("churchcomm")

	// channel adapters
	gateway := termii.NewClient(termii.Config{
		BaseURL:   cfg.Messaging.Termii.BaseURL,
		APIKey:    cfg.Messaging.Termii.APIKey,
		SenderID:  cfg.Messaging.Termii.SenderID,
		ChunkSize: cfg.Messaging.Termii.ChunkSize,
		Timeout:   cfg.Messaging.Termii.Timeout,
	}, log)
	emailSvc := email.NewService(email.Config{
		Host:       cfg.Messaging.SMTP.Host,
		Port:       cfg.Messaging.SMTP.Port,
		Username:   cfg.Messaging.SMTP.Username,
		Password:   cfg.Messaging.SMTP.Password,
		FromName:   cfg.Messaging.SMTP.FromName,
		FromEmail:  cfg.Messaging.SMTP.FromEmail,
		BatchSize:  cfg.Messaging.SMTP.BatchSize,
		BatchDelay: cfg.Messaging.SMTP.BatchDelay,
	}, log)

	// lifecycle events are published when Redis is configured
	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		zl := zerolog.New(os.Stdout).With().Timestamp().Logger()
		broker, err = redisbroker.NewRedisBroker(redisbroker.Config{URL: cfg.Redis.URL}, &zl)
		if err != nil {
			log.Fatal(err, "failed to connect to Redis")
		}
		defer broker.Close()
	}

	// services
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	hasher := security.NewBcryptHasher(0)
	sched := scheduler.New(jobRepo, log)

	authSvc := authService.NewService(churchRepo, hasher, jwtSvc, log)
	contactSvc := contactService.NewService(contactRepo, log)
	groupSvc := groupService.NewService(groupRepo)
	templateSvc := templateService.NewService(templateRepo)
	messageSvc := messageService.NewService(messageRepo, contactRepo, sched, gateway, emailSvc, broker,
		messageService.CostConfig{
			SMS:      cfg.Messaging.Costs.SMS,
			WhatsApp: cfg.Messaging.Costs.WhatsApp,
			Email:    cfg.Messaging.Costs.Email,
		}, m, log)
	birthdaySvc := birthdayService.NewService(contactRepo, birthdayRepo, templateRepo, gateway, emailSvc, m, log)

	// handlers
	authHandler := authHandlerPkg.NewHandler(authSvc)
	contactHandler := contactHandlerPkg.NewHandler(contactSvc)
	groupHandler := groupHandlerPkg.NewHandler(groupSvc)
	templateHandler := templateHandlerPkg.NewHandler(templateSvc)
	messageHandler := messageHandlerPkg.NewHandler(messageSvc)
	birthdayHandler := birthdayHandlerPkg.NewHandler(birthdaySvc)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	r := router.New(
		authMiddleware,
		authHandler,
		contactHandler, groupHandler, templateHandler, messageHandler, birthdayHandler,
		db, log,
		router.Config{
			RateLimitRPS:  rateLimitRPS(cfg),
			RateBurst:     cfg.RateLimit.Burst,
			MetricsPrefix: "churchcomm_http",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "forced shutdown")
	}
	log.Info("server stopped")
}

func rateLimitRPS(cfg *config.Config) float64 {
	if !cfg.RateLimit.Enabled {
		return 0
	}
	return cfg.RateLimit.RequestsPerSecond
}
