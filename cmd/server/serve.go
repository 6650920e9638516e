package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/airline-reservation/internal/config"
	"github.com/iliyamo/airline-reservation/internal/database"
	"github.com/iliyamo/airline-reservation/internal/queue"
	"github.com/iliyamo/airline-reservation/internal/repository"
	"github.com/iliyamo/airline-reservation/internal/router"
	"github.com/iliyamo/airline-reservation/internal/service"
	"github.com/iliyamo/airline-reservation/internal/utils"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  func(cmd *cobra.Command, _ []string) error { return runServe(cmd.Context()) },
	}
}

func runServe(ctx context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	db, err := database.Open(ctx, database.FromConfig(cfg), log)
	if err != nil {
		return err
	}
	defer db.Close()

	rdb := config.NewRedisClient(ctx)
	if rdb == nil {
		log.Warn("redis unavailable; rate limiting and cache disabled")
	} else {
		defer rdb.Close()
	}

	var publisher queue.Publisher = queue.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		publisher = queue.NewAMQPPublisher(cfg.RabbitMQURL, log)
	} else {
		log.Warn("RABBITMQ_URL not set; reservation events are not published")
	}

	users := repository.NewUserRepo(db)
	profiles := repository.NewProfileRepo(db)
	flights := repository.NewFlightRepo(db)
	seats := repository.NewSeatRepo(db)
	codec := utils.NewCodec(cfg.JWTSecret, cfg.DefaultTokenTTL)
	registration := service.NewRegistrationService(users, profiles, cfg.BcryptCost, log)

	e := router.New(router.Deps{
		DB:    db,
		Codec: codec,
		Services: router.Services{
			Auth:         service.NewAuthService(users, profiles, codec, cfg.AccessTTL, log),
			Registration: registration,
			Users:        service.NewUserService(users, profiles, log),
			Roles:        service.NewRoleService(repository.NewRoleRepo(db), log),
			Flights:      service.NewFlightService(flights, repository.NewAirplaneRepo(db), seats, log),
			Reservations: service.NewReservationService(repository.NewReservationRepo(db), flights, seats, profiles, publisher, log),
		},
		Redis:     rdb,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		Timeout:   cfg.RequestTimeout,
		Log:       log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", ":"+cfg.Port, "driver", cfg.DBDriver)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}
