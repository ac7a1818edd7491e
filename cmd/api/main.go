package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/naruebet/portal-auth-api/internal/auth"
	"github.com/naruebet/portal-auth-api/internal/config"
	"github.com/naruebet/portal-auth-api/internal/handler"
	"github.com/naruebet/portal-auth-api/internal/mailer"
	"github.com/naruebet/portal-auth-api/internal/middleware"
	"github.com/naruebet/portal-auth-api/internal/ratelimit"
	"github.com/naruebet/portal-auth-api/internal/registry"
	"github.com/naruebet/portal-auth-api/internal/repository"
	"github.com/naruebet/portal-auth-api/internal/usecase"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg := config.New(&logger)

	startupCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	if err := client.Ping(startupCtx, readpref.Primary()); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping mongodb")
	}
	db := client.Database(cfg.MongoDatabase)

	userRepo := repository.NewUserMongoRepository(startupCtx, &logger, db)
	pendingRepo := repository.NewPendingSignupMongoRepository(startupCtx, &logger, db)
	resetRepo := repository.NewPasswordResetMongoRepository(startupCtx, &logger, db)
	transactor := repository.NewMongoTransactor(client)

	smtpMailer := mailer.NewMailer(&logger)
	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.Issuer, cfg.Token.Issuer)

	signupUsecase := usecase.NewSignupUsecase(userRepo, pendingRepo, transactor, smtpMailer)
	authUsecase := usecase.NewAuthUsecase(userRepo, jwtAuth, usecase.TokenSettings{
		Secret:    cfg.Token.Secret,
		Issuer:    cfg.Token.Issuer,
		ExpiresIn: cfg.Token.SessionExpiresIn,
	})
	resetUsecase := usecase.NewPasswordResetUsecase(userRepo, resetRepo, transactor, smtpMailer)

	limiter := ratelimit.New(cfg.RateLimit.ForgotPasswordLimit, cfg.RateLimit.ForgotPasswordWindow)

	router := handler.NewRouter(handler.RouterDeps{
		AuthHandler: handler.NewAuthHandler(signupUsecase, authUsecase, handler.CookieSettings{
			TTL:    cfg.Token.SessionExpiresIn,
			Secure: cfg.SecureCookies,
		}, &logger),
		PasswordResetHandler: handler.NewPasswordResetHandler(resetUsecase, limiter, &logger),
		CronHandler:          handler.NewCronHandler(signupUsecase, cfg.CronSecret, &logger),
		Guard:                middleware.NewGuard(jwtAuth, cfg.Token.Secret),
		JWTAuth:              jwtAuth,
		TokenSecret:          cfg.Token.Secret,
		Logger:               &logger,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Keep the limiter's key map from growing without bound.
	go func() {
		ticker := time.NewTicker(cfg.RateLimit.ForgotPasswordWindow)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Prune()
			}
		}
	}()

	var consulRegistry *registry.ConsulRegistry
	if cfg.Consul.Address != "" {
		consulRegistry, err = registry.NewConsulRegistry(cfg.Consul.Address, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create consul registry")
		}
		if err := consulRegistry.Register(cfg.Consul.ServiceName, cfg.Consul.ServiceHost, cfg.Consul.ServicePort); err != nil {
			logger.Fatal().Err(err).Msg("failed to register with consul")
		}
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if consulRegistry != nil {
		if err := consulRegistry.Deregister(); err != nil {
			logger.Error().Err(err).Msg("failed to deregister from consul")
		}
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shut down HTTP server")
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to disconnect from mongodb")
	}
}
