package main

import (
	"context"
	"errors"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/rabbitmq"
	"github.com/wb-go/wbf/redis"
	"github.com/wb-go/wbf/zlog"

	authhandler "github.com/temirbekov/assistant-backend/internal/api/handlers/auth"
	confhandler "github.com/temirbekov/assistant-backend/internal/api/handlers/confirmations"
	duehandler "github.com/temirbekov/assistant-backend/internal/api/handlers/due"
	msghandler "github.com/temirbekov/assistant-backend/internal/api/handlers/messages"
	profilehandler "github.com/temirbekov/assistant-backend/internal/api/handlers/profile"
	recordshandler "github.com/temirbekov/assistant-backend/internal/api/handlers/records"
	"github.com/temirbekov/assistant-backend/internal/api/middleware"
	"github.com/temirbekov/assistant-backend/internal/api/router"
	"github.com/temirbekov/assistant-backend/internal/api/server"
	"github.com/temirbekov/assistant-backend/internal/config"
	"github.com/temirbekov/assistant-backend/internal/expiry"
	"github.com/temirbekov/assistant-backend/internal/model"
	"github.com/temirbekov/assistant-backend/internal/rabbitmq/handlers/outbound"
	"github.com/temirbekov/assistant-backend/internal/rabbitmq/queue"
	confrepo "github.com/temirbekov/assistant-backend/internal/repository/confirmations"
	msgrepo "github.com/temirbekov/assistant-backend/internal/repository/messages"
	recordsrepo "github.com/temirbekov/assistant-backend/internal/repository/records"
	usersrepo "github.com/temirbekov/assistant-backend/internal/repository/users"
	authsvc "github.com/temirbekov/assistant-backend/internal/service/auth"
	usersvc "github.com/temirbekov/assistant-backend/internal/service/user"
	"github.com/temirbekov/assistant-backend/internal/worker"
	"github.com/temirbekov/assistant-backend/pkg/whatsapp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog.Init()
	cfg := config.Must()
	val := validator.New()

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL(), cfg.RabbitMQ.Retries, cfg.RabbitMQ.Pause)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to rabbitmq")
	}

	ch, err := conn.Channel()
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to open channel")
	}

	q, err := queue.NewOutboundQueue(ch)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to create outbound queue")
	}

	opts := &dbpg.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	slaveDSNs := make([]string, 0, len(cfg.Database.Slaves))

	for _, s := range cfg.Database.Slaves {
		slaveDSNs = append(slaveDSNs, s.DSN())
	}

	db, err := dbpg.New(cfg.Database.Master.DSN(), slaveDSNs, opts)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	usersRepo := usersrepo.NewRepository(db)
	recordsRepo := recordsrepo.NewRepository(db)
	messagesRepo := msgrepo.NewRepository(db)
	confRepo := confrepo.NewRepository(db)

	dbNum, err := strconv.Atoi(cfg.Redis.Database)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to parse redis database")
	}

	rdb := redis.New(cfg.Redis.Address, cfg.Redis.Password, dbNum)

	if err = rdb.Ping(ctx).Err(); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to redis")
	}

	authService := authsvc.NewService(usersRepo, rdb, q, cfg.Auth)
	userService := usersvc.NewService(usersRepo, recordsRepo, messagesRepo, rdb)

	recordCategories := []model.Category{
		model.CategoryTasks,
		model.CategoryProjects,
		model.CategoryPayments,
		model.CategoryReminders,
	}

	sources := make([]expiry.Source, 0, len(recordCategories)+2)
	for _, c := range recordCategories {
		src, err := recordsrepo.NewDueSource(recordsRepo, c)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Str("category", string(c)).Msg("failed to create expiry source")
		}

		sources = append(sources, src)
	}
	sources = append(sources, msgrepo.NewTempSource(messagesRepo), confrepo.NewSource(confRepo))

	aggregator := expiry.New(sources, cfg.Expiry.CategoryTimeout)

	waClient := whatsapp.NewClient(cfg.WhatsApp.Token, cfg.WhatsApp.PhoneID)
	messageHandler := outbound.NewHandler(waClient)

	sender := worker.NewSender(q, messageHandler)
	go sender.Run(ctx, cfg.Retry, cfg.Workers.Count)

	dispatcher := worker.NewDispatcher(aggregator, userService, q, cfg.Expiry.Window, cfg.Expiry.Interval)
	go dispatcher.Run(ctx, cfg.Retry)

	handlers := router.Handlers{
		Auth:          authhandler.NewHandler(authService, val, cfg),
		Profile:       profilehandler.NewHandler(userService, val, cfg),
		Records:       recordshandler.NewHandler(recordsRepo, userService, val, cfg),
		Messages:      msghandler.NewHandler(messagesRepo, userService, val, cfg),
		Confirmations: confhandler.NewHandler(confRepo, val),
		Due:           duehandler.NewHandler(aggregator, cfg),
	}

	r := router.New(handlers, middleware.Auth(authService))
	s := server.New(cfg.Server.HTTPPort, r)

	go func() {
		if err := s.ListenAndServe(); err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	zlog.Logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}

	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}

	if err := db.Master.Close(); err != nil {
		zlog.Logger.Printf("failed to close master DB: %v", err)
	}

	for i, s := range db.Slaves {
		if err := s.Close(); err != nil {
			zlog.Logger.Printf("failed to close slave DB %d: %v", i, err)
		}
	}

	if err := ch.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close RabbitMQ channel")
	}

	if err := conn.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close RabbitMQ connection")
	}
}
