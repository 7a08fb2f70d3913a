package auth

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cropsevai/cropsevai-hub/internal/conf"
	"github.com/cropsevai/cropsevai-hub/internal/datastore"
	"github.com/cropsevai/cropsevai-hub/internal/errors"
	"github.com/cropsevai/cropsevai-hub/internal/observability/metrics"
)

// memoryUserStore is an in-memory UserStore with a unique email constraint.
type memoryUserStore struct {
	mu      sync.Mutex
	users   map[string]datastore.User
	nextID  uint
	inserts int
	getErr  error
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: make(map[string]datastore.User)}
}

func (m *memoryUserStore) GetUserByEmail(_ context.Context, email string) (*datastore.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.users[email]
	if !ok {
		return nil, datastore.ErrUserNotFound
	}
	return &u, nil
}

func (m *memoryUserStore) CreateUser(_ context.Context, user *datastore.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[user.Email]; exists {
		return errors.Join(datastore.ErrDuplicateKey, fmt.Errorf("UNIQUE constraint failed: users.email"))
	}
	m.nextID++
	m.inserts++
	user.ID = m.nextID
	if user.Role == "" {
		user.Role = "user"
	}
	m.users[user.Email] = *user
	return nil
}

type loginOutcomes struct {
	mu      sync.Mutex
	results []string
}

func (r *loginOutcomes) RecordLogin(result string, _ float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func newTestService(t *testing.T, store UserStore, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithBcryptCost(bcrypt.MinCost)}, opts...)
	return NewService(store, newTestTokens(t), opts...)
}

func TestLoginRequiresCredentials(t *testing.T) {
	svc := newTestService(t, newMemoryUserStore())

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "pw"},
		{"blank email", "   ", "pw"},
		{"empty password", "a@b.c", ""},
		{"both empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Login(context.Background(), tt.email, tt.password)
			require.ErrorIs(t, err, ErrMissingCredentials)
			assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
			assert.Nil(t, res)
		})
	}
}

func TestLoginProvisionsUnknownEmail(t *testing.T) {
	store := newMemoryUserStore()
	rec := &loginOutcomes{}
	svc := newTestService(t, store, WithRecorder(rec))

	res, err := svc.Login(context.Background(), "new@farm.in", "pw1")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "new@farm.in", res.User.Email)
	assert.Equal(t, uint(1), res.User.ID)

	stored := store.users["new@farm.in"]
	assert.NotEqual(t, "pw1", stored.Password)
	assert.True(t, VerifyPassword(stored.Password, "pw1"))

	claims, err := svc.Tokens().Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, "user", claims.Role)

	assert.Equal(t, []string{metrics.LoginProvisioned}, rec.results)
}

func TestLoginExistingUser(t *testing.T) {
	store := newMemoryUserStore()
	svc := newTestService(t, store)

	first, err := svc.Login(context.Background(), "farmer@farm.in", "right")
	require.NoError(t, err)

	second, err := svc.Login(context.Background(), "farmer@farm.in", "right")
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, 1, store.inserts)
}

func TestLoginWrongPasswordYieldsNoToken(t *testing.T) {
	store := newMemoryUserStore()
	rec := &loginOutcomes{}
	svc := newTestService(t, store, WithRecorder(rec))

	_, err := svc.Login(context.Background(), "farmer@farm.in", "right")
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), "farmer@farm.in", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.True(t, errors.IsCategory(err, errors.CategoryAuthentication))
	assert.Nil(t, res)
	assert.Equal(t, metrics.LoginInvalidCredentials, rec.results[1])
}

func TestLoginUnknownEmailWithoutProvisioning(t *testing.T) {
	store := newMemoryUserStore()
	svc := newTestService(t, store, WithAutoProvision(false))

	_, err := svc.Login(context.Background(), "ghost@farm.in", "pw")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, ErrInvalidCredentials.Error(), "Invalid credentials")
	assert.Empty(t, store.users)
}

func TestLoginUnknownAndWrongPasswordLookAlike(t *testing.T) {
	store := newMemoryUserStore()
	svc := newTestService(t, store, WithAutoProvision(false))
	hash, err := HashPasswordWithCost("right", bcrypt.MinCost)
	require.NoError(t, err)
	store.users["known@farm.in"] = datastore.User{ID: 7, Email: "known@farm.in", Password: hash}

	_, unknownErr := svc.Login(context.Background(), "ghost@farm.in", "pw")
	_, wrongErr := svc.Login(context.Background(), "known@farm.in", "pw")

	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLoginStoreErrorPropagates(t *testing.T) {
	store := newMemoryUserStore()
	store.getErr = datastore.ErrStoreUnavailable
	rec := &loginOutcomes{}
	svc := newTestService(t, store, WithRecorder(rec))

	_, err := svc.Login(context.Background(), "a@b.c", "pw")
	require.ErrorIs(t, err, datastore.ErrStoreUnavailable)
	assert.Equal(t, []string{metrics.LoginError}, rec.results)
}

func TestConcurrentFirstLoginCreatesOneUser(t *testing.T) {
	store := newMemoryUserStore()
	svc := newTestService(t, store)

	const callers = 10
	start := make(chan struct{})
	ids := make([]uint, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res, err := svc.Login(context.Background(), "race@farm.in", "pw")
			errs[i] = err
			if res != nil {
				ids[i] = res.User.ID
			}
		}()
	}
	close(start)
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	assert.Equal(t, 1, store.inserts)
	assert.Len(t, store.users, 1)
}

func TestConcurrentFirstLoginDifferentPasswords(t *testing.T) {
	store := newMemoryUserStore()
	svc := newTestService(t, store)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := range 6 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Login(context.Background(), "split@farm.in", fmt.Sprintf("pw-%d", i%2))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		}()
	}
	wg.Wait()

	// Exactly one account exists and only its password was accepted.
	assert.Len(t, store.users, 1)
	assert.Equal(t, 3, succeeded)
}

func TestConcurrentFirstLoginSQLite(t *testing.T) {
	s := &conf.Settings{}
	s.Datastore.Driver = conf.DriverSQLite
	s.Datastore.QueryTimeout = 10 * time.Second
	s.Datastore.SQLite.Path = filepath.Join(t.TempDir(), "auth.db")

	ds, err := datastore.New(s, nil, nil)
	require.NoError(t, err)
	require.NoError(t, ds.Open())
	t.Cleanup(func() { _ = ds.Close() })
	require.NoError(t, ds.Migrate(context.Background()))

	svc := newTestService(t, ds)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Login(context.Background(), "field@farm.in", "pw")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	users, err := ds.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
