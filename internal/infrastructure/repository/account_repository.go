package repository

import (
	"context"
	"errors"

	"github.com/ipede/user-manager-service/internal/domain"
	"github.com/ipede/user-manager-service/internal/infrastructure/database"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// AccountRepository persists login credentials.
type AccountRepository struct {
	db     *database.Postgres
	logger *zap.Logger
}

func NewAccountRepository(db *database.Postgres, logger *zap.Logger) *AccountRepository {
	return &AccountRepository{db: db, logger: logger}
}

func (r *AccountRepository) FindByLogin(ctx context.Context, login string) (*domain.Account, error) {
	account := &domain.Account{}
	err := r.db.Querier().QueryRow(ctx, `
		SELECT login, password FROM accounts WHERE login = $1
	`, login).Scan(&account.Login, &account.Password)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		r.logger.Error("failed to find account", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	return account, nil
}

func (r *AccountRepository) ExistsByLogin(ctx context.Context, login string) (bool, error) {
	var count int
	err := r.db.Querier().QueryRow(ctx, "SELECT COUNT(*) FROM accounts WHERE login = $1", login).Scan(&count)
	if err != nil {
		r.logger.Error("failed to check if account exists", zap.Error(err))
		return false, domain.ErrDatabaseQuery
	}
	return count > 0, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.db.Querier().Exec(ctx, `
		INSERT INTO accounts (login, password) VALUES ($1, $2)
	`, account.Login, account.Password)
	if err != nil {
		r.logger.Error("failed to create account", zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	return nil
}
