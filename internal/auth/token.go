package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cropsevai/cropsevai-hub/internal/datastore"
	"github.com/cropsevai/cropsevai-hub/internal/errors"
)

// DefaultTokenExpiry is used when the configured expiry is not positive.
const DefaultTokenExpiry = 24 * time.Hour

var (
	// ErrInvalidToken is returned for any token that fails verification.
	ErrInvalidToken = errors.NewStd("invalid or expired token")
	// ErrMissingSecret is returned when no signing secret is configured.
	ErrMissingSecret = errors.NewStd("jwt signing secret is empty")
)

// Claims are the token claims issued on login.
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 tokens.
type TokenService struct {
	secret []byte
	expiry time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenService creates a token service. An empty secret is an error.
func NewTokenService(secret string, expiry time.Duration, issuer string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New(ErrMissingSecret).
			Component("auth").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if expiry <= 0 {
		expiry = DefaultTokenExpiry
	}
	return &TokenService{
		secret: []byte(secret),
		expiry: expiry,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// Expiry returns the lifetime of issued tokens.
func (t *TokenService) Expiry() time.Duration {
	return t.expiry
}

// Issue signs a token for user and returns it with its expiry time.
func (t *TokenService) Issue(user *datastore.User) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.expiry)

	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, errors.New(err).
			Component("auth").
			Category(errors.CategorySystem).
			Context("operation", "sign_token").
			Build()
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a token. Only HMAC-SHA256 signatures are
// accepted; expired tokens and tokens from another issuer are rejected.
func (t *TokenService) Verify(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, errors.New(ErrInvalidToken).
			Component("auth").
			Category(errors.CategoryAuthentication).
			Context("reason", tokenFailureReason(err)).
			Build()
	}
	return claims, nil
}

func tokenFailureReason(err error) string {
	switch {
	case err == nil:
		return "invalid"
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return "signature"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "issuer"
	default:
		return "malformed"
	}
}
