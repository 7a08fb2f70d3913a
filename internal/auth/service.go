package auth

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cropsevai/cropsevai-hub/internal/datastore"
	"github.com/cropsevai/cropsevai-hub/internal/errors"
	"github.com/cropsevai/cropsevai-hub/internal/logger"
	"github.com/cropsevai/cropsevai-hub/internal/observability/metrics"
)

var (
	// ErrMissingCredentials is returned when email or password is empty.
	ErrMissingCredentials = errors.NewStd("email and password are required")
	// ErrInvalidCredentials is returned for an unknown account and for a
	// wrong password alike.
	ErrInvalidCredentials = errors.NewStd("Invalid credentials")
)

// UserStore is the part of the datastore used for logins.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*datastore.User, error)
	CreateUser(ctx context.Context, user *datastore.User) error
}

// LoginRecorder receives login outcomes.
type LoginRecorder interface {
	RecordLogin(result string, seconds float64)
}

// UserInfo is the public part of the logged in user.
type UserInfo struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

// LoginResult is the body returned by the login endpoint.
type LoginResult struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	User      UserInfo  `json:"user"`
	ExpiresAt time.Time `json:"-"`
}

// Service checks credentials and issues tokens.
type Service struct {
	store         UserStore
	tokens        *TokenService
	autoProvision bool
	bcryptCost    int
	logger        logger.Logger
	recorder      LoginRecorder
}

// Option configures a Service.
type Option func(*Service)

// WithAutoProvision controls whether an unknown email creates an account
// on its first login.
func WithAutoProvision(enabled bool) Option {
	return func(s *Service) { s.autoProvision = enabled }
}

// WithBcryptCost sets the cost used when hashing new passwords.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l.Module("auth")
		}
	}
}

// WithRecorder reports login outcomes.
func WithRecorder(r LoginRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

// NewService creates a login service. Auto-provisioning is enabled by default.
func NewService(store UserStore, tokens *TokenService, opts ...Option) *Service {
	s := &Service{
		store:         store,
		tokens:        tokens,
		autoProvision: true,
		bcryptCost:    bcrypt.DefaultCost,
		logger:        logger.NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tokens returns the token service used to sign login tokens.
func (s *Service) Tokens() *TokenService {
	return s.tokens
}

// Login authenticates email and password. An unknown email is provisioned
// when auto-provisioning is enabled; a concurrent first login for the same
// email resolves to the row that won the insert.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	start := time.Now()
	result, outcome, err := s.login(ctx, email, password)
	if s.recorder != nil {
		s.recorder.RecordLogin(outcome, time.Since(start).Seconds())
	}
	return result, err
}

func (s *Service) login(ctx context.Context, email, password string) (*LoginResult, string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, metrics.LoginInvalidCredentials, errors.New(ErrMissingCredentials).
			Component("auth").
			Category(errors.CategoryValidation).
			Build()
	}

	outcome := metrics.LoginSuccess
	user, err := s.store.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, datastore.ErrUserNotFound):
		if !s.autoProvision {
			VerifyPassword(dummyHash(), password)
			return nil, metrics.LoginInvalidCredentials, s.invalidCredentials("unknown_account")
		}
		var created bool
		user, created, err = s.provision(ctx, email, password)
		if err != nil {
			return nil, metrics.LoginError, err
		}
		if created {
			outcome = metrics.LoginProvisioned
			break
		}
		if !VerifyPassword(user.Password, password) {
			return nil, metrics.LoginInvalidCredentials, s.invalidCredentials("password_mismatch")
		}
	case err != nil:
		return nil, metrics.LoginError, err
	default:
		if !VerifyPassword(user.Password, password) {
			return nil, metrics.LoginInvalidCredentials, s.invalidCredentials("password_mismatch")
		}
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, metrics.LoginError, err
	}

	s.logger.Info("User logged in",
		logger.Uint("user_id", user.ID),
		logger.String("outcome", outcome))

	return &LoginResult{
		Success:   true,
		Token:     token,
		User:      UserInfo{ID: user.ID, Email: user.Email},
		ExpiresAt: expiresAt,
	}, outcome, nil
}

// provision creates the account. When another request inserted the same
// email first, the winning row is returned with created=false so the
// caller verifies the password against it.
func (s *Service) provision(ctx context.Context, email, password string) (*datastore.User, bool, error) {
	hash, err := HashPasswordWithCost(password, s.bcryptCost)
	if err != nil {
		return nil, false, err
	}

	user := &datastore.User{Email: email, Password: hash}
	err = s.store.CreateUser(ctx, user)
	if err == nil {
		s.logger.Info("Provisioned new user", logger.Uint("user_id", user.ID))
		return user, true, nil
	}
	if !errors.Is(err, datastore.ErrDuplicateKey) {
		return nil, false, err
	}

	s.logger.Debug("Concurrent provisioning detected, using existing account")
	winner, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	return winner, false, nil
}

func (s *Service) invalidCredentials(reason string) error {
	s.logger.Debug("Login rejected", logger.String("reason", reason))
	return errors.New(ErrInvalidCredentials).
		Component("auth").
		Category(errors.CategoryAuthentication).
		Build()
}
