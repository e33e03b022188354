package repository

import (
	"context"

	"github.com/ipede/user-manager-service/internal/domain"
	"github.com/ipede/user-manager-service/internal/infrastructure/database"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// RoleRepository reads the seeded role catalog.
type RoleRepository struct {
	db     *database.Postgres
	logger *zap.Logger
}

func NewRoleRepository(db *database.Postgres, logger *zap.Logger) *RoleRepository {
	return &RoleRepository{db: db, logger: logger}
}

func (r *RoleRepository) FindByIDs(ctx context.Context, ids []int) ([]domain.Role, error) {
	if len(ids) == 0 {
		return []domain.Role{}, nil
	}

	rows, err := r.db.Querier().Query(ctx, `
		SELECT id, name FROM roles WHERE id = ANY($1::int[]) ORDER BY id
	`, ids)
	if err != nil {
		r.logger.Error("failed to find roles", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	defer rows.Close()

	return scanRoles(rows)
}

func scanRoles(rows pgx.Rows) ([]domain.Role, error) {
	roles := []domain.Role{}
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, domain.ErrDatabaseQuery
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrDatabaseQuery
	}
	return roles, nil
}
