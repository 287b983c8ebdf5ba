package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rookgm/gomarket/internal/models"
	"github.com/rookgm/gomarket/internal/repository/postgres"
)

const (
	insertUserQuery = `
						INSERT INTO users (login, password_hash, role)
						VALUES ($1, $2, $3)
						RETURNING id, login, password_hash, role, created_at
`
	selectUserByLoginQuery = `
						SELECT id, login, password_hash, role, created_at FROM users
						WHERE login = $1
`
)

// UserRepository implements UserRepository interface
type UserRepository struct {
	db *postgres.DB
}

// NewUserRepository creates new UserRepository instance
func NewUserRepository(db *postgres.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts new user to database
func (ur *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	row := ur.db.QueryRow(ctx, insertUserQuery, user.Login, user.PasswordHash, user.Role)
	err := row.Scan(&user.ID, &user.Login, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err != nil {
		if errCode := ur.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	return user, nil
}

// GetUserByLogin returns user by login
func (ur *UserRepository) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	user := models.User{}
	row := ur.db.QueryRow(ctx, selectUserByLoginQuery, login)
	err := row.Scan(&user.ID, &user.Login, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &user, nil
}
