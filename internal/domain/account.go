package domain

import "context"

// Account holds a login credential pair. The login is the identity; the
// password field stores the bcrypt hash, never the plaintext. Accounts are
// independent of the User/Role graph.
type Account struct {
	Login    string `json:"login"`
	Password string `json:"-"`
}

// Credentials is the inbound login/password pair before hashing.
type Credentials struct {
	Login    string
	Password string
}

// AuthService issues tokens for known accounts and registers new ones.
type AuthService interface {
	// SignIn validates credentials and returns a signed bearer token.
	SignIn(ctx context.Context, creds Credentials) (string, error)

	// SignUp registers a new account.
	SignUp(ctx context.Context, creds Credentials) (*Account, error)
}

// AccountRepository defines the interface for account data access.
type AccountRepository interface {
	FindByLogin(ctx context.Context, login string) (*Account, error)
	ExistsByLogin(ctx context.Context, login string) (bool, error)
	Create(ctx context.Context, account *Account) error
}
