package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/tablebooking/api"
	"github.com/Domenick1991/tablebooking/config"
	"github.com/Domenick1991/tablebooking/internal/bootstrap"
	"github.com/Domenick1991/tablebooking/internal/cache"
	"github.com/Domenick1991/tablebooking/internal/kafka"
	"github.com/Domenick1991/tablebooking/internal/logger"
	"github.com/Domenick1991/tablebooking/internal/repository"
	"github.com/Domenick1991/tablebooking/internal/service/availability"
	"github.com/Domenick1991/tablebooking/internal/service/booking"
	"github.com/Domenick1991/tablebooking/internal/service/lock"
	"github.com/Domenick1991/tablebooking/internal/service/tables"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Production)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.Log.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	if cfg.Database.MigrateOnBoot {
		if err := repository.EnsureSchema(ctx, pool); err != nil {
			log.Fatal("ensure schema", zap.Error(err))
		}
	}

	redisClient := cache.NewClient(cfg.Redis)
	defer redisClient.Close()
	redisCache := cache.NewRedisCache(redisClient, cfg.Booking.TablesCacheTTL())

	tableRepo := repository.NewTableRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)

	lockManager := lock.NewManager(redisCache, cfg.Booking.LockTTL(), log.Named("lock"))
	tableService := tables.NewTableService(tableRepo, redisCache, log.Named("tables"))
	availabilityService := availability.NewService(tableService, reservationRepo, redisCache)

	bookingOpts := []booking.BookingServiceOption{booking.WithLogger(log.Named("booking"))}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, log.Named("kafka"))
		defer producer.Close()
		bookingOpts = append(bookingOpts,
			booking.WithProducer(producer, cfg.Kafka.ReservationsTopic),
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)
	}
	bookingService := booking.NewBookingService(reservationRepo, lockManager, bookingOpts...)

	router := api.NewRouter(api.Handlers{
		Availability: api.NewAvailabilityHandler(availabilityService),
		Reservations: api.NewReservationHandler(lockManager, bookingService),
		Health:       map[string]api.Pinger{"postgres": pool, "redis": redisCache},
	}, log)

	log.Info("starting table booking service", zap.Duration("lock_ttl", cfg.Booking.LockTTL()))
	if err := bootstrap.Run(ctx, cfg.HTTP, router, log); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
