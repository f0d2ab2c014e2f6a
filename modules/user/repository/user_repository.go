package repository

import (
	"context"
	"database/sql"

	"review-scheduler/core/database"
	"review-scheduler/core/logger"
	"review-scheduler/modules/user/entity"

	"github.com/google/uuid"
)

// UserRepository reads the users table. User CRUD is owned by the
// surrounding identity service; this API only needs existence and
// role lookups.
type UserRepository struct {
	DB database.IDatabase
}

func NewUserRepository(db database.IDatabase) *UserRepository {
	return &UserRepository{DB: db}
}

type UserRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	ExistsWithRole(ctx context.Context, id uuid.UUID, role string) (bool, error)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	query := `SELECT id, name, email, role, created_at, updated_at FROM users WHERE id = $1`

	var user entity.User
	err := r.DB.GetContext(ctx, &user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("UserRepository:GetByID", err)
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) ExistsWithRole(ctx context.Context, id uuid.UUID, role string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND role = $2)`

	var exists bool
	err := r.DB.GetContext(ctx, &exists, query, id, role)
	if err != nil {
		logger.Error("UserRepository:ExistsWithRole", err)
		return false, err
	}
	return exists, nil
}
