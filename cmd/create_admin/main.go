package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/ridloal/e-commerce-checkout/internal/platform/config"
	"github.com/ridloal/e-commerce-checkout/internal/platform/database"
	"github.com/ridloal/e-commerce-checkout/internal/platform/logger"
	"github.com/ridloal/e-commerce-checkout/internal/platform/migrations"
	"github.com/ridloal/e-commerce-checkout/internal/user/domain"
	"github.com/ridloal/e-commerce-checkout/internal/user/repository"
	"github.com/ridloal/e-commerce-checkout/internal/user/service"
	"go.uber.org/zap"
)

// create_admin seeds an ADMIN account. Running it again is harmless.
func main() {
	username := flag.String("username", "admin", "admin username")
	email := flag.String("email", "admin@admin.com", "admin email")
	password := flag.String("password", "admin123", "admin password")
	flag.Parse()

	if err := run(*username, *email, *password); err != nil {
		logger.Error("Failed to create admin", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func run(username, email, password string) error {
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, dbCfg.Driver, dbCfg.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Run(ctx, db); err != nil {
		return err
	}

	// Register never issues tokens, so no signer is needed here.
	users := service.NewUserService(repository.NewSQLUserRepository(db), nil)
	user, err := users.Register(ctx, domain.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
		Role:     domain.RoleAdmin,
	})
	if errors.Is(err, service.ErrUserAlreadyExists) {
		logger.Info("Admin already exists", zap.String("username", username))
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info("Admin created", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return nil
}
