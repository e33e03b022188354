package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ipede/user-manager-service/internal/domain"
	"github.com/ipede/user-manager-service/internal/infrastructure/database"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// UserRepository persists users and their role associations. All methods
// run against q, which is the pooled connection by default and a
// transaction inside WithinTx.
type UserRepository struct {
	db     *database.Postgres
	q      database.Querier
	logger *zap.Logger
}

func NewUserRepository(db *database.Postgres, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, q: db.Querier(), logger: logger}
}

// WithinTx runs fn against a copy of the repository bound to a single
// transaction.
func (r *UserRepository) WithinTx(ctx context.Context, fn func(domain.UserRepository) error) error {
	return r.db.WithinTx(ctx, func(q database.Querier) error {
		return fn(&UserRepository{db: r.db, q: q, logger: r.logger})
	})
}

// buildSearchQuery assembles the filtered, sorted, paginated user select.
// Filters combine with AND; name, email and role name compare
// case-insensitively; the age bounds are inclusive. An unrecognized sort
// key leaves store order.
func buildSearchQuery(query domain.UserQuery) (string, []any) {
	var (
		b     strings.Builder
		conds []string
		args  []any
	)

	b.WriteString("SELECT id, name, age, email FROM users")

	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if query.Name != "" {
		add("lower(name) = lower($%d)", query.Name)
	}
	if query.AgeFrom != nil {
		add("age >= $%d", *query.AgeFrom)
	}
	if query.AgeTo != nil {
		add("age <= $%d", *query.AgeTo)
	}
	if query.Email != "" {
		add("lower(email) = lower($%d)", query.Email)
	}
	if query.RoleName != "" {
		add("EXISTS (SELECT 1 FROM user_roles ur JOIN roles r ON r.id = ur.role_id"+
			" WHERE ur.user_id = users.id AND lower(r.name) = lower($%d))", query.RoleName)
	}

	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}

	switch strings.ToLower(query.OrderBy) {
	case "name":
		b.WriteString(" ORDER BY name")
	case "age":
		b.WriteString(" ORDER BY age")
	case "email":
		b.WriteString(" ORDER BY email")
	case "rolename":
		b.WriteString(" ORDER BY (SELECT min(r.name) FROM user_roles ur" +
			" JOIN roles r ON r.id = ur.role_id WHERE ur.user_id = users.id)")
	}

	args = append(args, query.PageSize, (query.PageNumber-1)*query.PageSize)
	fmt.Fprintf(&b, " LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	return b.String(), args
}

func (r *UserRepository) Search(ctx context.Context, query domain.UserQuery) ([]*domain.User, error) {
	sql, args := buildSearchQuery(query)

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		r.logger.Error("failed to search users", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		user := &domain.User{}
		if err := rows.Scan(&user.ID, &user.Name, &user.Age, &user.Email); err != nil {
			r.logger.Error("failed to scan user", zap.Error(err))
			return nil, domain.ErrDatabaseQuery
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("failed to read user rows", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}

	if err := r.loadRoles(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id domain.ULID) (*domain.User, error) {
	user := &domain.User{}
	err := r.q.QueryRow(ctx, `
		SELECT id, name, age, email
		FROM users WHERE id = $1
	`, id.String()).Scan(&user.ID, &user.Name, &user.Age, &user.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		r.logger.Error("failed to find user by id", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}

	if err := r.loadRoles(ctx, []*domain.User{user}); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user := &domain.User{}
	err := r.q.QueryRow(ctx, `
		SELECT id, name, age, email
		FROM users WHERE email = $1
	`, email).Scan(&user.ID, &user.Name, &user.Age, &user.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		r.logger.Error("failed to find user by email", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	return user, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int
	err := r.q.QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE email = $1", email).Scan(&count)
	if err != nil {
		r.logger.Error("failed to check if user exists", zap.Error(err))
		return false, domain.ErrDatabaseQuery
	}
	return count > 0, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO users (id, name, age, email)
		VALUES ($1, $2, $3, $4)
	`, user.ID.String(), user.Name, user.Age, user.Email)
	if err != nil {
		r.logger.Error("failed to create user", zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	_, err := r.q.Exec(ctx, `
		UPDATE users
		SET name = $1, age = $2, email = $3
		WHERE id = $4
	`, user.Name, user.Age, user.Email, user.ID.String())
	if err != nil {
		r.logger.Error("failed to update user", zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id domain.ULID) error {
	_, err := r.q.Exec(ctx, "DELETE FROM users WHERE id = $1", id.String())
	if err != nil {
		r.logger.Error("failed to delete user", zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	return nil
}

// AddRoles inserts one association per role id in a single statement, so a
// standalone call is atomic even outside WithinTx.
func (r *UserRepository) AddRoles(ctx context.Context, userID domain.ULID, roleIDs []int) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, unnest($2::int[])
	`, userID.String(), roleIDs)
	if err != nil {
		r.logger.Error("failed to add roles", zap.String("user_id", userID.String()), zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	return nil
}

func (r *UserRepository) RemoveRoles(ctx context.Context, userID domain.ULID, roleIDs []int) error {
	_, err := r.q.Exec(ctx, `
		DELETE FROM user_roles
		WHERE user_id = $1 AND role_id = ANY($2::int[])
	`, userID.String(), roleIDs)
	if err != nil {
		r.logger.Error("failed to remove roles", zap.String("user_id", userID.String()), zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	return nil
}

func (r *UserRepository) ClearRoles(ctx context.Context, userID domain.ULID) error {
	_, err := r.q.Exec(ctx, "DELETE FROM user_roles WHERE user_id = $1", userID.String())
	if err != nil {
		r.logger.Error("failed to clear roles", zap.String("user_id", userID.String()), zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	return nil
}

// loadRoles resolves the role associations of every user in one query,
// in role-id order.
func (r *UserRepository) loadRoles(ctx context.Context, users []*domain.User) error {
	if len(users) == 0 {
		return nil
	}

	ids := make([]string, len(users))
	byID := make(map[string]*domain.User, len(users))
	for i, u := range users {
		ids[i] = u.ID.String()
		byID[ids[i]] = u
	}

	rows, err := r.q.Query(ctx, `
		SELECT ur.user_id, r.id, r.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = ANY($1::text[])
		ORDER BY r.id
	`, ids)
	if err != nil {
		r.logger.Error("failed to load roles", zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID string
			role   domain.Role
		)
		if err := rows.Scan(&userID, &role.ID, &role.Name); err != nil {
			r.logger.Error("failed to scan role", zap.Error(err))
			return domain.ErrDatabaseQuery
		}
		if u, ok := byID[userID]; ok {
			u.Roles = append(u.Roles, role)
		}
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("failed to read role rows", zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	return nil
}
