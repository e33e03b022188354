package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ipede/user-manager-service/internal/domain"
	"github.com/ipede/user-manager-service/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Service mints HS256-signed bearer tokens. Expiry is fixed at creation
// time plus the configured duration; not-before is the creation time.
type Service struct {
	secret   []byte
	issuer   string
	audience string
	duration time.Duration
	logger   *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Service {
	return &Service{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
		duration: cfg.JWTDuration,
		logger:   logger,
	}
}

// Generate produces a signed token encoding the claims.
func (s *Service) Generate(claims domain.TokenClaims) (string, error) {
	now := time.Now()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Audience:  jwt.ClaimStrings{s.audience},
		Subject:   claims.Subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(s.duration)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	})

	signed, err := t.SignedString(s.secret)
	if err != nil {
		s.logger.Error("failed to sign token", zap.String("subject", claims.Subject), zap.Error(err))
		return "", domain.ErrTokenGeneration
	}

	return signed, nil
}
