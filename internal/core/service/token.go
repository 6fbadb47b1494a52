package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/carepoint/scheduling-api/internal/core/domain"
)

const defaultTokenTTL = 24 * time.Hour

// TokenService issues and verifies HS256 bearer tokens. Claims: sub (email),
// role, jti, iat, exp.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for email with role and returns it with its expiry.
func (t *TokenService) Issue(email string, role domain.Role) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	claims := jwt.MapClaims{
		"sub":  email,
		"role": string(role),
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse verifies signature and expiry and extracts the caller identity.
func (t *TokenService) Parse(token string) (domain.AuthContext, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil || !tkn.Valid {
		return domain.AuthContext{}, domain.Unauthorizedf("Invalid or expired token")
	}

	email, _ := claims["sub"].(string)
	roleClaim, _ := claims["role"].(string)
	role, ok := domain.ParseRole(roleClaim)
	if email == "" || !ok {
		return domain.AuthContext{}, domain.Unauthorizedf("Invalid token claims")
	}
	jti, _ := claims["jti"].(string)

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return domain.AuthContext{}, domain.Unauthorizedf("Invalid token claims")
	}
	return domain.AuthContext{Email: email, Role: role, TokenID: jti, ExpiresAt: exp.Time}, nil
}
