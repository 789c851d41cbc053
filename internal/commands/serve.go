package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dungji/internal/middleware"
	"dungji/internal/server"
	"dungji/internal/services"
	"dungji/pkg/rabbitmq"
	"dungji/pkg/ratelimit"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(*envFile)
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg, log)
			if err != nil {
				return err
			}
			defer closeDB(db, log)

			deps := server.Deps{
				DB:              db,
				Log:             log,
				JWTSecret:       cfg.JWTSecret,
				AccessTokenTTL:  cfg.AccessTokenTTL,
				RefreshTokenTTL: cfg.RefreshTokenTTL,
				RequestLogging:  true,
				AuthRateLimit:   cfg.AuthRateLimit,
				AuthRateWindow:  cfg.AuthRateWindow,
			}

			if cfg.RabbitMQURL != "" {
				mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
				if err != nil {
					log.Warnf("Events disabled: %v", err)
				} else {
					defer mqClient.Close()
					deps.Publisher = services.EventPublisher(mqClient)
					if err := mqClient.ConsumeEvents(rabbitmq.LogEvents(log)); err != nil {
						log.Warnf("Failed to start event consumer: %v", err)
					}
				}
			}

			if cfg.RedisAddr != "" {
				ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
				redisClient, err := ratelimit.Connect(ctx, cfg.RedisAddr)
				cancel()
				if err != nil {
					log.Warnf("Rate limiting disabled: %v", err)
				} else {
					defer redisClient.Close()
					deps.Limiter = middleware.Limiter(ratelimit.NewRedisLimiter(redisClient))
				}
			}

			app := server.New(deps)

			errCh := make(chan error, 1)
			go func() {
				log.Infof("Starting server on %s", cfg.AppPort)
				errCh <- app.Listen(cfg.AppPort)
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case err := <-errCh:
				return err
			case sig := <-quit:
				log.WithField("signal", sig.String()).Info("Shutting down server...")
			}

			if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
				log.Errorf("Error during Fiber shutdown: %v", err)
			}
			log.WithFields(logrus.Fields{"port": cfg.AppPort}).Info("Server gracefully stopped")
			return nil
		},
	}
}
