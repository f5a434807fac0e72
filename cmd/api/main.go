package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"markethub/internal/config"
	"markethub/internal/database"
	"markethub/internal/feed"
	"markethub/internal/middleware"
	"markethub/internal/modules/auth"
	"markethub/internal/modules/booking"
	"markethub/internal/modules/catalog"
	"markethub/internal/modules/chat"
	"markethub/internal/modules/order"
	"markethub/internal/modules/review"
	"markethub/internal/pkg/jwt"
	"markethub/internal/realtime"
	"markethub/internal/repository"
	"markethub/internal/session"
)

// logMailer writes reset tokens to the log instead of sending mail. Swap
// in a real implementation of auth.Mailer once an outbound provider is
// configured.
type logMailer struct{}

func (logMailer) SendPasswordReset(_ context.Context, email, token string) error {
	log.Info().Str("email", email).Str("token", token).Msg("password reset requested")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	db, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}
	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("create upload directory")
	}

	bus := feed.NewBus()
	sessions := session.NewManager()
	jwtService := jwt.New(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	userRepo := repository.NewUserRepository(db)
	resetTokenRepo := repository.NewResetTokenRepository(db)
	productRepo := repository.NewProductRepository(db, bus)
	serviceRepo := repository.NewServiceRepository(db, bus)
	reviewRepo := repository.NewReviewRepository(db, bus)
	orderRepo := repository.NewOrderRepository(db, bus)
	bookingRepo := repository.NewBookingRepository(db, bus)
	messageRepo := repository.NewMessageRepository(db, bus)

	authService := auth.NewService(userRepo, resetTokenRepo, jwtService, sessions,
		logMailer{}, cfg.Auth.ResetPepper, cfg.Auth.ResetTTL)
	if cfg.Google.Enabled() {
		authService.RegisterGoogle(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
	}
	if cfg.GitHub.Enabled() {
		authService.RegisterGitHub(cfg.GitHub.ClientID, cfg.GitHub.ClientSecret, cfg.GitHub.RedirectURL)
	}

	catalogService := catalog.NewService(productRepo, serviceRepo, reviewRepo)
	reviewService := review.NewService(reviewRepo, productRepo, serviceRepo)
	orderService := order.NewService(orderRepo, productRepo)
	bookingService := booking.NewService(bookingRepo, serviceRepo)
	chatService := chat.NewService(messageRepo, userRepo)

	streams := realtime.NewStreams(productRepo, serviceRepo, orderRepo, bookingRepo, messageRepo)
	gateway := realtime.NewGateway(bus, streams, sessions, jwtService)

	r := gin.New()
	r.Use(middleware.RequestLogger(), middleware.CORS(cfg.Server.AllowedOrigins))
	r.Static("/static", cfg.Uploads.Dir)

	api := r.Group("/api/v1")
	auth.NewHandler(authService).RegisterRoutes(api, jwtService, sessions)
	catalog.NewHandler(catalogService).RegisterRoutes(api, jwtService, sessions)
	review.NewHandler(reviewService).RegisterRoutes(api, jwtService, sessions)
	order.NewHandler(orderService).RegisterRoutes(api, jwtService, sessions)
	booking.NewHandler(bookingService).RegisterRoutes(api, jwtService, sessions)
	chat.NewHandler(chatService, cfg.Uploads.Dir, cfg.Uploads.MaxSize).RegisterRoutes(api, jwtService, sessions)
	gateway.RegisterRoutes(api)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.Server.Port).Msg("server listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		sessions.Sweep(ctx, time.Minute)
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		bus.Close()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("server stopped")
}
