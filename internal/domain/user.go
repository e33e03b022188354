package domain

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// ULID represents a Universally Unique Lexicographically Sortable Identifier
// @Description A string representation of ULID
// @type string
// @format ulid
type ULID = ulid.ULID

// Role is one entry of the fixed role catalog. The catalog is seeded by
// migration and never mutated by the service.
type Role struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// User represents a user in the system. Roles holds the role associations
// as loaded from the store.
type User struct {
	ID    ULID   `json:"id"`
	Name  string `json:"name"`
	Age   *int   `json:"age,omitempty"`
	Email string `json:"email"`
	Roles []Role `json:"roles"`
}

// UserView is the read-shaped projection of a user: resolved roles,
// de-duplicated, in role-id order.
type UserView struct {
	ID    ULID   `json:"id"`
	Name  string `json:"name"`
	Age   *int   `json:"age,omitempty"`
	Email string `json:"email"`
	Roles []Role `json:"roles"`
}

// UserInput carries the fields of a create or update request as the core
// sees them after validation.
type UserInput struct {
	Name    string
	Age     *int
	Email   string
	RoleIDs []int
}

const (
	// MaxPageSize bounds the page size of a user listing.
	MaxPageSize = 50

	// DefaultPageSize is used when the caller does not ask for a size.
	DefaultPageSize = 10
)

// UserQuery describes one user listing: optional equality/range filters
// combined with AND, a sort key and a 1-based page.
type UserQuery struct {
	Name       string
	AgeFrom    *int
	AgeTo      *int
	Email      string
	RoleName   string
	OrderBy    string
	PageNumber int
	PageSize   int
}

// UserService is the user query and role management component.
type UserService interface {
	ListUsers(ctx context.Context, query UserQuery) ([]*UserView, error)
	GetUser(ctx context.Context, id ULID) (*UserView, error)
	CreateUser(ctx context.Context, input UserInput) (*UserInput, error)
	UpdateUser(ctx context.Context, id ULID, input UserInput) (*UserView, error)
	DeleteUser(ctx context.Context, id ULID) (*UserView, error)
	AddRoles(ctx context.Context, userID ULID, roleIDs []int) error
	RemoveRoles(ctx context.Context, userID ULID, roleIDs []int) error
}

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Search returns the page of users selected by query, roles resolved.
	Search(ctx context.Context, query UserQuery) ([]*User, error)

	// FindByID finds a user by ID, roles resolved.
	FindByID(ctx context.Context, id ULID) (*User, error)

	// FindByEmail finds the user holding the exact email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// ExistsByEmail checks if a user exists with the given email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create inserts the user row.
	Create(ctx context.Context, user *User) error

	// Update overwrites name, age and email of the user row.
	Update(ctx context.Context, user *User) error

	// Delete removes the user row; role associations cascade.
	Delete(ctx context.Context, id ULID) error

	// AddRoles associates every role id with the user in one statement.
	AddRoles(ctx context.Context, userID ULID, roleIDs []int) error

	// RemoveRoles drops the matching role associations.
	RemoveRoles(ctx context.Context, userID ULID, roleIDs []int) error

	// ClearRoles drops every role association of the user.
	ClearRoles(ctx context.Context, userID ULID) error

	// WithinTx runs fn against a repository bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(UserRepository) error) error
}

// RoleRepository exposes the seeded role catalog.
type RoleRepository interface {
	// FindByIDs returns the catalog entries matching ids, in id order.
	// Unknown ids are simply absent from the result.
	FindByIDs(ctx context.Context, ids []int) ([]Role, error)
}
