package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucavt/carpool/config"
	"github.com/lucavt/carpool/internal/auth"
	"github.com/lucavt/carpool/internal/bootstrap"
	"github.com/lucavt/carpool/internal/cache"
	"github.com/lucavt/carpool/internal/kafka"
	"github.com/lucavt/carpool/internal/repository"
	"github.com/lucavt/carpool/internal/service/booking"
	"github.com/lucavt/carpool/internal/service/rides"
	"github.com/lucavt/carpool/internal/service/users"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Rides.ListCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)

	rideRepo := repository.NewRideRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)

	rideService := rides.NewRideService(rideRepo, bookingRepo, userRepo, redisCache, producer, cfg.Kafka.NotificationsTopic)
	bookingService := booking.NewBookingService(bookingRepo, rideRepo, userRepo, producer, cfg.Kafka.NotificationsTopic)
	userService := users.NewUserService(userRepo, reviewRepo, notificationRepo, tokens)

	if err := bootstrap.Run(ctx, cfg, tokens, rideService, bookingService, userService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
