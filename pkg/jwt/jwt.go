package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fixdesk/servicedesk/internal/domain"
)

var (
	// ErrTokenInvalid covers tampering, wrong signature, wrong signing
	// method, and parse failures.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned for an authentic but time-expired token.
	// Callers map both errors to an authentication failure; the distinction
	// exists for diagnostics.
	ErrTokenExpired = errors.New("token expired")
)

// TokenService issues and validates the signed claim set. One shared HS256
// secret, no per-tenant keys, no rotation, no revocation list.
type TokenService struct {
	secret []byte
	expiry time.Duration
	issuer string
}

func NewTokenService(secret []byte, expiry time.Duration, issuer string) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("signing secret is required")
	}
	return &TokenService{
		secret: secret,
		expiry: expiry,
		issuer: issuer,
	}, nil
}

// Issue signs the claim set with an absolute expiry of now + TTL. The token
// is immutable once issued.
func (s *TokenService) Issue(claims domain.Claims) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   claims.UserID.String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Decode verifies signature and expiry. Expired-but-authentic tokens yield
// ErrTokenExpired; everything else yields ErrTokenInvalid.
func (s *TokenService) Decode(tokenString string) (*domain.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*domain.Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// Expiry returns the configured token lifetime.
func (s *TokenService) Expiry() time.Duration {
	return s.expiry
}
