package application

import (
	"context"

	"github.com/ipede/user-manager-service/internal/domain"
	"github.com/ipede/user-manager-service/internal/infrastructure/metrics"
	"github.com/ipede/user-manager-service/internal/infrastructure/password"
	"go.uber.org/zap"
)

// AuthService signs accounts in and registers new ones. Unknown logins and
// wrong passwords are reported with the same error so callers cannot probe
// which logins exist.
type AuthService struct {
	accounts domain.AccountRepository
	tokens   domain.TokenService
	logger   *zap.Logger
}

func NewAuthService(accounts domain.AccountRepository, tokens domain.TokenService, logger *zap.Logger) *AuthService {
	return &AuthService{
		accounts: accounts,
		tokens:   tokens,
		logger:   logger,
	}
}

// SignIn validates the credentials and returns a signed bearer token with
// the login as subject.
func (s *AuthService) SignIn(ctx context.Context, creds domain.Credentials) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.logger.Info("signing in", zap.String("login", creds.Login))

	account, err := s.accounts.FindByLogin(ctx, creds.Login)
	if err != nil {
		return "", err
	}

	if err := password.Check(creds.Password, account.Password); err != nil {
		s.logger.Error("account not found", zap.String("login", creds.Login))
		return "", domain.ErrAccountNotFound
	}

	token, err := s.tokens.Generate(domain.TokenClaims{Subject: account.Login})
	if err != nil {
		return "", err
	}
	if token == "" {
		s.logger.Error("token not found", zap.String("login", creds.Login))
		return "", domain.ErrTokenNotFound
	}

	metrics.TokensIssuedTotal.Inc()
	return token, nil
}

// SignUp registers a new account. The password is stored as a bcrypt hash.
func (s *AuthService) SignUp(ctx context.Context, creds domain.Credentials) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Info("registering account", zap.String("login", creds.Login))

	exists, err := s.accounts.ExistsByLogin(ctx, creds.Login)
	if err != nil {
		return nil, err
	}
	if exists {
		s.logger.Error("account with the specified login already exists", zap.String("login", creds.Login))
		return nil, domain.ErrAccountExists
	}

	hashed, err := password.Hash(creds.Password)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return nil, domain.ErrInternal
	}

	account := &domain.Account{
		Login:    creds.Login,
		Password: hashed,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("account registered", zap.String("login", account.Login))
	return account, nil
}
