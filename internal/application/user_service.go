package application

import (
	"context"
	"errors"
	"sort"

	"github.com/ipede/user-manager-service/internal/domain"
	"github.com/ipede/user-manager-service/internal/infrastructure/metrics"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// UserService is the user query and role management component. Every
// operation is a single-shot unit of work: read, validate, mutate, commit.
// Mutations that span statements run inside a repository transaction so a
// later failure leaves prior state unchanged. There are no retries; store
// failures propagate to the caller.
type UserService struct {
	users  domain.UserRepository
	roles  domain.RoleRepository
	logger *zap.Logger
}

func NewUserService(users domain.UserRepository, roles domain.RoleRepository, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		roles:  roles,
		logger: logger,
	}
}

// ListUsers returns one page of read-shaped user views matching query.
// A page past the end of the result set is an empty list, not an error.
func (s *UserService) ListUsers(ctx context.Context, query domain.UserQuery) ([]*domain.UserView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Info("listing users",
		zap.String("order_by", query.OrderBy),
		zap.Int("page_number", query.PageNumber),
		zap.Int("page_size", query.PageSize))

	if query.AgeFrom != nil && query.AgeTo != nil && *query.AgeTo < *query.AgeFrom {
		s.logger.Error("AgeTo must be greater or equal than AgeFrom",
			zap.Int("age_from", *query.AgeFrom), zap.Int("age_to", *query.AgeTo))
		return nil, domain.ErrInvalidAgeRange
	}

	users, err := s.users.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	views := make([]*domain.UserView, len(users))
	for i, user := range users {
		views[i] = readView(user)
	}
	return views, nil
}

// GetUser returns the read-shaped view of one user.
func (s *UserService) GetUser(ctx context.Context, id domain.ULID) (*domain.UserView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return readView(user), nil
}

// AddRoles assigns the given catalog roles to the user. Ids the user
// already holds are dropped silently; the remainder must be duplicate-free
// and must all exist in the catalog.
func (s *UserService) AddRoles(ctx context.Context, userID domain.ULID, roleIDs []int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.logger.Info("adding roles", zap.String("user_id", userID.String()), zap.Ints("role_ids", roleIDs))

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	toAdd, err := s.rolesToAssign(ctx, user, roleIDs)
	if err != nil {
		return err
	}
	if len(toAdd) == 0 {
		// every requested id was already assigned
		return nil
	}

	if err := s.users.AddRoles(ctx, userID, toAdd); err != nil {
		return err
	}

	metrics.RolesAssignedTotal.Add(float64(len(toAdd)))
	return nil
}

// RemoveRoles drops the named role associations from the user. Every id
// must exist in the catalog, and at least one must be held by the user.
func (s *UserService) RemoveRoles(ctx context.Context, userID domain.ULID, roleIDs []int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.logger.Info("removing roles", zap.String("user_id", userID.String()), zap.Ints("role_ids", roleIDs))

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if len(roleIDs) == 0 {
		return domain.ErrEmptyRoles
	}

	known, err := s.catalogSet(ctx, roleIDs)
	if err != nil {
		return err
	}
	for _, id := range roleIDs {
		if !known[id] {
			return domain.NewRoleNotFound(id)
		}
	}

	requested := make(map[int]bool, len(roleIDs))
	for _, id := range roleIDs {
		requested[id] = true
	}
	overlap := false
	for _, role := range user.Roles {
		if requested[role.ID] {
			overlap = true
			break
		}
	}
	if !overlap {
		return domain.ErrNoMatchingRoles
	}

	if err := s.users.RemoveRoles(ctx, userID, roleIDs); err != nil {
		return err
	}

	metrics.RolesRemovedTotal.Add(float64(len(roleIDs)))
	return nil
}

// CreateUser persists a new user and assigns its roles in one transaction.
// The response echoes the input payload; the generated id is not reported
// back.
func (s *UserService) CreateUser(ctx context.Context, input domain.UserInput) (*domain.UserInput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Info("creating user", zap.String("email", input.Email))

	exists, err := s.users.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		s.logger.Error("a user with this email already exists", zap.String("email", input.Email))
		return nil, domain.ErrUserExists
	}

	user := &domain.User{
		ID:    ulid.Make(),
		Name:  input.Name,
		Age:   input.Age,
		Email: input.Email,
	}

	err = s.users.WithinTx(ctx, func(tx domain.UserRepository) error {
		if err := tx.Create(ctx, user); err != nil {
			return err
		}
		toAdd, err := s.rolesToAssign(ctx, user, input.RoleIDs)
		if err != nil {
			return err
		}
		if len(toAdd) == 0 {
			return nil
		}
		return tx.AddRoles(ctx, user.ID, toAdd)
	})
	if err != nil {
		return nil, err
	}

	metrics.UsersCreatedTotal.Inc()
	s.logger.Info("user created", zap.String("user_id", user.ID.String()))
	return &input, nil
}

// UpdateUser overwrites name, age and email and replaces the full role
// set. The email must not belong to another user.
func (s *UserService) UpdateUser(ctx context.Context, id domain.ULID, input domain.UserInput) (*domain.UserView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Info("updating user", zap.String("user_id", id.String()))

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkEmailCollision(ctx, id, input.Email); err != nil {
		return nil, err
	}

	user.Name = input.Name
	user.Age = input.Age
	user.Email = input.Email
	user.Roles = nil // the full role set is replaced below

	err = s.users.WithinTx(ctx, func(tx domain.UserRepository) error {
		if err := tx.Update(ctx, user); err != nil {
			return err
		}
		if err := tx.ClearRoles(ctx, id); err != nil {
			return err
		}
		toAdd, err := s.rolesToAssign(ctx, user, input.RoleIDs)
		if err != nil {
			return err
		}
		if len(toAdd) == 0 {
			return nil
		}
		return tx.AddRoles(ctx, id, toAdd)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user updated", zap.String("user_id", id.String()))
	return readView(updated), nil
}

// DeleteUser removes the user and returns the view captured before
// deletion, roles included. Role associations cascade with the row.
func (s *UserService) DeleteUser(ctx context.Context, id domain.ULID) (*domain.UserView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Info("deleting user", zap.String("user_id", id.String()))

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := readView(user)

	if err := s.users.Delete(ctx, id); err != nil {
		return nil, err
	}

	metrics.UsersDeletedTotal.Inc()
	s.logger.Info("user deleted", zap.String("user_id", id.String()))
	return view, nil
}

// checkEmailCollision fails when email already belongs to a user other
// than id.
func (s *UserService) checkEmailCollision(ctx context.Context, id domain.ULID, email string) error {
	other, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if other.ID != id {
		s.logger.Error("email already belongs to another user", zap.String("email", email))
		return domain.ErrEmailTaken
	}
	return nil
}

// rolesToAssign applies the assignment pipeline: ids the user already
// holds are dropped, the remainder must contain no duplicates, and every
// remaining id must exist in the catalog. An empty input list is an error;
// an empty remainder is not.
func (s *UserService) rolesToAssign(ctx context.Context, user *domain.User, roleIDs []int) ([]int, error) {
	if len(roleIDs) == 0 {
		return nil, domain.ErrEmptyRoles
	}

	assigned := make(map[int]bool, len(user.Roles))
	for _, role := range user.Roles {
		assigned[role.ID] = true
	}

	remaining := make([]int, 0, len(roleIDs))
	for _, id := range roleIDs {
		if !assigned[id] {
			remaining = append(remaining, id)
		}
	}

	seen := make(map[int]bool, len(remaining))
	for _, id := range remaining {
		if seen[id] {
			return nil, domain.ErrDuplicateRoles
		}
		seen[id] = true
	}

	if len(remaining) == 0 {
		return remaining, nil
	}

	known, err := s.catalogSet(ctx, remaining)
	if err != nil {
		return nil, err
	}
	for _, id := range remaining {
		if !known[id] {
			return nil, domain.NewRoleNotFound(id)
		}
	}

	return remaining, nil
}

// catalogSet returns the subset of ids present in the role catalog.
func (s *UserService) catalogSet(ctx context.Context, ids []int) (map[int]bool, error) {
	catalog, err := s.roles.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	known := make(map[int]bool, len(catalog))
	for _, role := range catalog {
		known[role.ID] = true
	}
	return known, nil
}

// readView projects a user into its read shape: roles de-duplicated by id
// and ordered by id.
func readView(user *domain.User) *domain.UserView {
	seen := make(map[int]bool, len(user.Roles))
	roles := make([]domain.Role, 0, len(user.Roles))
	for _, role := range user.Roles {
		if seen[role.ID] {
			continue
		}
		seen[role.ID] = true
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].ID < roles[j].ID })

	return &domain.UserView{
		ID:    user.ID,
		Name:  user.Name,
		Age:   user.Age,
		Email: user.Email,
		Roles: roles,
	}
}
