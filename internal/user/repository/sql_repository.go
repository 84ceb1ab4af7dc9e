package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/ridloal/e-commerce-checkout/internal/platform/database"
	"github.com/ridloal/e-commerce-checkout/internal/platform/logger"
	"github.com/ridloal/e-commerce-checkout/internal/user/domain"
	"go.uber.org/zap"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserConflict = errors.New("user with this username already exists")

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

type sqlUserRepository struct {
	db *sqlx.DB
}

// NewSQLUserRepository works against any driver accepted by database.Connect.
func NewSQLUserRepository(db *sqlx.DB) UserRepository {
	return &sqlUserRepository{db: db}
}

func (r *sqlUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := r.db.Rebind(`INSERT INTO users (username, email, password_hash, role, created_at)
              VALUES (?, ?, ?, ?, ?) RETURNING id`)

	user.CreatedAt = time.Now().UTC()

	err := r.db.GetContext(ctx, &user.ID, query, user.Username, user.Email, user.PasswordHash, user.Role, user.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			logger.Warn("CreateUser: unique violation", zap.String("username", user.Username))
			return ErrUserConflict
		}
		logger.Error("CreateUser: failed to insert user", err)
		return errors.Wrap(err, "insert user")
	}
	return nil
}

func (r *sqlUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := r.db.Rebind(`SELECT id, username, email, password_hash, role, created_at FROM users WHERE username = ?`)
	user := &domain.User{}

	if err := r.db.GetContext(ctx, user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		logger.Error("GetUserByUsername: query failed", err)
		return nil, errors.Wrap(err, "select user by username")
	}
	return user, nil
}
