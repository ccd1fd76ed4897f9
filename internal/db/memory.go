package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pdfdesk/backend/internal/model"
)

// Memory is a thread-safe in-process store used for tests and local runs
// (STORE_DRIVER=memory). It satisfies the same contracts as Postgres.
type Memory struct {
	mu sync.RWMutex

	usersByID    map[string]*model.User
	usersByEmail map[string]*model.User
	files        []model.File

	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		usersByID:    make(map[string]*model.User),
		usersByEmail: make(map[string]*model.User),
		now:          time.Now,
	}
}

// ---------- Users ----------

func (m *Memory) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.usersByEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) FindByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.usersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return withoutHash(u), nil
}

func (m *Memory) Insert(ctx context.Context, user *model.User) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.usersByEmail[user.Email]; exists {
		return nil, ErrDuplicateEmail
	}

	now := m.now()
	cp := *user
	cp.CreatedAt = now
	cp.UpdatedAt = now
	m.usersByID[cp.ID] = &cp
	m.usersByEmail[cp.Email] = &cp
	return withoutHash(&cp), nil
}

func (m *Memory) UpdatePasswordByEmailAndRole(ctx context.Context, email string, role model.Role, update model.PasswordUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.usersByEmail[email]
	if !ok || u.Role != role {
		return ErrNotFound
	}
	changedAt := update.PasswordChangedAt
	u.PasswordHash = update.PasswordHash
	u.PasswordChangedAt = &changedAt
	u.UpdatedAt = m.now()
	return nil
}

func (m *Memory) UpdateStatusByID(ctx context.Context, id string, status model.Status) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.usersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.Status = status
	u.UpdatedAt = m.now()
	return withoutHash(u), nil
}

func (m *Memory) List(ctx context.Context) ([]model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]model.User, 0, len(m.usersByID))
	for _, u := range m.usersByID {
		users = append(users, *withoutHash(u))
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].Email < users[j].Email
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

// SetDeleted flips the soft-delete flag. Only administrative tooling and
// tests use it; the HTTP surface has no delete route.
func (m *Memory) SetDeleted(id string, deleted bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.usersByID[id]
	if !ok {
		return ErrNotFound
	}
	u.IsDeleted = deleted
	return nil
}

func withoutHash(u *model.User) *model.User {
	cp := *u
	cp.PasswordHash = ""
	return &cp
}

// ---------- Files ----------

func (m *Memory) InsertFile(ctx context.Context, file model.File) (*model.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	file.CreatedAt = m.now()
	m.files = append(m.files, file)
	return &file, nil
}

func (m *Memory) ListFiles(ctx context.Context) ([]model.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]model.File, 0, len(m.files))
	for i := len(m.files) - 1; i >= 0; i-- {
		files = append(files, m.files[i])
	}
	return files, nil
}
