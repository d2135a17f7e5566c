package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/churchcomm/admin-api/config"
	"github.com/churchcomm/admin-api/internal/email"
	"github.com/churchcomm/admin-api/internal/gateway/termii"
	"github.com/churchcomm/admin-api/internal/model"
	"github.com/churchcomm/admin-api/internal/repository/postgres"
	"github.com/churchcomm/admin-api/internal/scheduler"
	birthdayService "github.com/churchcomm/admin-api/internal/service/birthday"
	messageService "github.com/churchcomm/admin-api/internal/service/message"
	"github.com/churchcomm/admin-api/internal/worker"
	"github.com/churchcomm/admin-api/pkg/logger"
	"github.com/churchcomm/admin-api/pkg/metrics"
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

	contactRepo := postgres.NewContactRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	templateRepo := postgres.NewTemplateRepository(db)
	birthdayRepo := postgres.NewBirthdayConfigRepository(db)
	jobRepo := postgres.NewJobRepository(db)

	m := metrics.New("churchcomm_worker")

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

	sched := scheduler.New(jobRepo, log)
	messageSvc := messageService.NewService(messageRepo, contactRepo, sched, gateway, emailSvc, nil,
		messageService.CostConfig{
			SMS:      cfg.Messaging.Costs.SMS,
			WhatsApp: cfg.Messaging.Costs.WhatsApp,
			Email:    cfg.Messaging.Costs.Email,
		}, m, log)
	birthdaySvc := birthdayService.NewService(contactRepo, birthdayRepo, templateRepo, gateway, emailSvc, m, log)

	jobWorker := scheduler.NewWorker(jobRepo, scheduler.WorkerConfig{
		PollInterval: cfg.Scheduler.PollInterval,
		BatchSize:    cfg.Scheduler.BatchSize,
	}, m, log)
	jobWorker.Register(model.JobTypeSendMessage, scheduler.SendMessageHandler(messageSvc.SendScheduled))

	loc := time.Local
	if cfg.Birthday.Timezone != "" {
		loc, err = time.LoadLocation(cfg.Birthday.Timezone)
		if err != nil {
			log.Fatal(err, "invalid birthday timezone")
		}
	}
	trigger, err := worker.NewBirthdayTrigger(birthdaySvc, cfg.Birthday.SendTime, loc, log)
	if err != nil {
		log.Fatal(err, "failed to build birthday trigger")
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		jobWorker.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		trigger.Run(ctx)
	}()

	log.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker")
	cancel()
	wg.Wait()
	log.Info("worker stopped")
}
