package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"s3gateway/internal/apperr"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrNoSecret     = errors.New("token verification secret is not configured")
)

// Verifier checks HS256 bearer tokens against a shared secret.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), now: time.Now}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}

// Verify parses token and returns its claims. Every failure is an AuthError.
func (v *Verifier) Verify(token string) (jwt.MapClaims, error) {
	if len(v.secret) == 0 {
		return nil, apperr.Auth("token verification unavailable", ErrNoSecret)
	}
	if token == "" {
		return nil, apperr.Auth("authorization token is required", ErrMissingToken)
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, apperr.Auth("token has expired", err)
		}
		return nil, apperr.Auth("invalid token", err)
	}
	if !parsed.Valid {
		return nil, apperr.Auth("invalid token", nil)
	}
	return claims, nil
}

// VerifyHeader combines BearerToken and Verify.
func (v *Verifier) VerifyHeader(header string) (jwt.MapClaims, error) {
	token, err := BearerToken(header)
	if err != nil {
		return nil, apperr.Auth("authorization token is required", err)
	}
	return v.Verify(token)
}

// Issue signs a token for subject that expires after ttl.
func (v *Verifier) Issue(subject string, ttl time.Duration) (string, error) {
	if len(v.secret) == 0 {
		return "", ErrNoSecret
	}
	now := v.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
