package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/farellandr/museum-tickets/config"
	"github.com/farellandr/museum-tickets/internal/logging"
	"github.com/farellandr/museum-tickets/internal/server"
	"github.com/farellandr/museum-tickets/internal/services"
	"github.com/farellandr/museum-tickets/internal/store"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

const usage = `Museum ticketing API.

Usage:
  museum-tickets [serve]
  museum-tickets create-admin --email EMAIL --password PASSWORD [--first-name NAME] [--last-name NAME]
`

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logrus.Warn("No .env file found, using the environment")
	}

	if err := run(os.Args[1:]); err != nil {
		logrus.WithError(err).Fatal("Command failed")
	}
}

func run(args []string) error {
	command := "serve"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		command, args = args[0], args[1:]
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.Init(cfg.LogLevel, cfg.IsProduction())

	switch command {
	case "serve":
		return serve(cfg)
	case "create-admin":
		return createAdmin(cfg, args)
	case "help":
		fmt.Fprint(os.Stderr, usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func serve(cfg *config.Config) error {
	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb := config.NewRedisClient(cfg)
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				logrus.WithError(err).Warn("Closing redis connection failed")
			}
		}()
	}

	srv, err := server.New(cfg, db, rdb)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return srv.Run(ctx)
}

func createAdmin(cfg *config.Config, args []string) error {
	input := services.AdminInput{}
	flagSet := pflag.NewFlagSet("create-admin", pflag.ContinueOnError)
	flagSet.StringVar(&input.Email, "email", "", "admin email (required)")
	flagSet.StringVar(&input.Password, "password", "", "admin password (required)")
	flagSet.StringVar(&input.FirstName, "first-name", cfg.AdminFirstName, "admin first name")
	flagSet.StringVar(&input.LastName, "last-name", cfg.AdminLastName, "admin last name")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if input.Email == "" || input.Password == "" {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("--email and --password are required")
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	auth := services.NewAuthService(store.NewUserStore(db), services.AuthSettings{
		Secret:     cfg.JWTSecret,
		TokenTTL:   cfg.JWTTTL,
		BcryptCost: cfg.BcryptCost,
	})
	user, err := auth.CreateAdmin(context.Background(), input)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{"id": user.ID, "email": user.Email}).Info("Admin user created")
	return nil
}
