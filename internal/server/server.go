package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/farellandr/museum-tickets/config"
	"github.com/farellandr/museum-tickets/internal/handlers"
	"github.com/farellandr/museum-tickets/internal/logging"
	"github.com/farellandr/museum-tickets/internal/middleware"
	"github.com/farellandr/museum-tickets/internal/notify"
	"github.com/farellandr/museum-tickets/internal/services"
	"github.com/farellandr/museum-tickets/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type Server struct {
	msgRouter  *message.Router
	pubSub     *gochannel.GoChannel
	httpServer *http.Server
}

// New wires stores, services, the notification router and the HTTP API.
// rdb may be nil, which disables rate limiting.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*Server, error) {
	logger := logging.NewWatermillLogger(logrus.WithField("component", "notify"))
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logger)

	deps := notify.RouterDeps{
		Logger:     logger,
		Subscriber: pubSub,
		Mailer: notify.NewMailer(notify.SMTPSettings{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
		}),
	}
	if cfg.RabbitMQURL != "" {
		deps.Broker = notify.NewAMQPPublisher(cfg.RabbitMQURL)
	}

	msgRouter, err := notify.NewRouter(deps)
	if err != nil {
		return nil, fmt.Errorf("creating message router: %w", err)
	}

	ticketStore := store.NewTicketStore(db)
	eventService := services.NewEventService(store.NewEventStore(db), services.DefaultEventSettings{
		Title:            cfg.DefaultEventTitle,
		Description:      "General admission to the museum and its permanent exhibitions.",
		ShortDescription: "General admission",
		Location:         "Museo La Unidad",
		Capacity:         cfg.DefaultEventCapacity,
		Price:            cfg.DefaultTicketPrice,
		Currency:         cfg.DefaultCurrency,
	})
	ticketService := services.NewTicketService(ticketStore, eventService, notify.NewDispatcher(pubSub))
	paymentService := services.NewPaymentService(store.NewPaymentStore(db), ticketStore, cfg.PaymentSuccessURL)
	authService := services.NewAuthService(store.NewUserStore(db), services.AuthSettings{
		Secret:     cfg.JWTSecret,
		TokenTTL:   cfg.JWTTTL,
		BcryptCost: cfg.BcryptCost,
	})

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		created, err := authService.EnsureAdmin(context.Background(), services.AdminInput{
			Email:     cfg.AdminEmail,
			Password:  cfg.AdminPassword,
			FirstName: cfg.AdminFirstName,
			LastName:  cfg.AdminLastName,
		})
		if err != nil {
			return nil, fmt.Errorf("creating admin user: %w", err)
		}
		if created {
			logrus.WithField("email", cfg.AdminEmail).Info("Admin user created")
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.CORS(cfg.CORSOrigin),
	)
	setupRoutes(engine, routeDeps{
		handler:   handlers.New(eventService, ticketService, paymentService, authService),
		jwtSecret: cfg.JWTSecret,
		limiter: middleware.RateLimit(middleware.RateLimitConfig{
			Enabled:  cfg.RateLimitEnabled,
			Requests: cfg.RateLimitRequests,
			Window:   cfg.RateLimitWindow,
		}, rdb),
	})

	return &Server{
		msgRouter: msgRouter,
		pubSub:    pubSub,
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Run serves until ctx is cancelled, then shuts the HTTP server down.
func (s *Server) Run(ctx context.Context) error {
	g, runCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.msgRouter.Run(runCtx); err != nil {
			return fmt.Errorf("running message router: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-s.msgRouter.Running():
		case <-runCtx.Done():
			return nil
		}

		logrus.WithField("addr", s.httpServer.Addr).Info("Starting HTTP server...")
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("starting http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-runCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		logrus.Info("Shutting down HTTP server...")
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		return nil
	})

	err := g.Wait()
	if closeErr := s.pubSub.Close(); closeErr != nil {
		logrus.WithError(closeErr).Warn("Closing pub/sub failed")
	}
	if err != nil {
		return fmt.Errorf("waiting for shutdown: %w", err)
	}
	logrus.Info("Shutdown complete.")

	return nil
}
