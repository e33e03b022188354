package domain

// TokenClaims is the claim set handed to the token issuer.
type TokenClaims struct {
	// Subject identifies the authenticated principal (the account login).
	Subject string
}

// TokenService mints signed, time-bounded bearer tokens.
type TokenService interface {
	Generate(claims TokenClaims) (string, error)
}
