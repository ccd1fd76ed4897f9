package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pdfdesk/backend/internal/config"
	"github.com/pdfdesk/backend/internal/db"
	"github.com/pdfdesk/backend/internal/model"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAccessSecret  = "access-secret"
	testRefreshSecret = "refresh-secret"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		AccessSecret:  testAccessSecret,
		RefreshSecret: testRefreshSecret,
		AccessTTL:     "15m",
		RefreshTTL:    "720h",
		BcryptCost:    "4",
		ResetUILink:   "https://app.test/reset-password",
		CookieSecure:  "true",
	}
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type sentLink struct {
	email string
	link  string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentLink
	err  error
}

func (f *fakeNotifier) Send(ctx context.Context, email, resetLink string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentLink{email: email, link: resetLink})
	return f.err
}

type authFixture struct {
	svc      *AuthService
	store    *db.Memory
	notifier *fakeNotifier
	clock    *testClock
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	store := db.NewMemory()
	notifier := &fakeNotifier{}
	clock := &testClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}

	svc, err := NewAuthService(store, notifier, testAuthConfig(), WithClock(clock.Now))
	require.NoError(t, err)

	return &authFixture{svc: svc, store: store, notifier: notifier, clock: clock}
}

func (f *authFixture) addUser(t *testing.T, email, password string, role model.Role) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := f.store.Insert(context.Background(), &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       model.StatusActive,
	})
	require.NoError(t, err)
	return user
}

func (f *authFixture) passwordHash(t *testing.T, email string) string {
	t.Helper()
	u, err := f.store.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	return u.PasswordHash
}

type failingStore struct {
	UserStore
	err error
}

func (f failingStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, f.err
}

var errStoreDown = errors.New("connection refused")
