package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/incident_assistant/internal/models"
	"github.com/shenikar/incident_assistant/internal/service"
)

type UserRepository struct {
	dao *dao[*models.User]
}

func NewUserRepository(db *pgxpool.Pool) service.UserRepository {
	return &UserRepository{
		dao: &dao[*models.User]{
			db:          db,
			table:       "users",
			selectQuery: "SELECT id, email, name, role, hashed_password FROM users",
			idColumn:    "id",
			orderBy:     "id",
			columns: map[string]string{
				"id":              "id",
				"email":           "email",
				"name":            "name",
				"role":            "role",
				"hashed_password": "hashed_password",
			},
			scan:     pgx.RowToAddrOfStructByName[models.User],
			notFound: models.ErrUserNotFound,
		},
	}
}

// FindByID возвращает пользователя или ErrUserNotFound
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return r.dao.findByID(ctx, id)
}

// FindOneOrNone возвращает nil без ошибки, если пользователь не найден
func (r *UserRepository) FindOneOrNone(ctx context.Context, filter models.Filter) (*models.User, error) {
	return r.dao.findOneOrNone(ctx, filter)
}

// Add создает пользователя. Повторный email дает ErrUserExists.
func (r *UserRepository) Add(ctx context.Context, fields models.Fields) (*models.User, error) {
	user, err := r.dao.add(ctx, fields)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, models.ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) List(ctx context.Context, skip, limit int) ([]*models.User, error) {
	return r.dao.findAll(ctx, nil, skip, limit)
}
