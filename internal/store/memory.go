package store

import (
	"context"
	"sort"
	"sync"

	"github.com/voyagen/tvgate/internal/models"
)

// Memory is an in-process Store. It enforces the same uniqueness and
// ordering rules as Postgres and is used by tests and local tooling.
type Memory struct {
	mu       sync.RWMutex
	users    []models.User
	channels []models.Channel
	nextID   int64
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		e := &m.users[i]
		if e.Username == u.Username || e.Email == u.Email || e.PlaylistToken == u.PlaylistToken {
			return ErrDuplicate
		}
	}
	m.users = append(m.users, *u)
	return nil
}

func (m *Memory) FindUserByUsernameOrEmail(_ context.Context, username, email string) (*models.User, error) {
	return m.findUser(func(u *models.User) bool { return u.Username == username || u.Email == email })
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return m.findUser(func(u *models.User) bool { return u.Username == username })
}

func (m *Memory) GetUserByToken(_ context.Context, token string) (*models.User, error) {
	return m.findUser(func(u *models.User) bool { return u.PlaylistToken == token })
}

func (m *Memory) findUser(match func(*models.User) bool) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.users {
		if match(&m.users[i]) {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ListUsers(_ context.Context, skip, limit int) ([]models.User, error) {
	m.mu.RLock()
	sorted := make([]models.User, len(m.users))
	copy(sorted, m.users)
	m.mu.RUnlock()

	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})
	if skip < 0 {
		skip = 0
	}
	if skip >= len(sorted) {
		return nil, nil
	}
	end := len(sorted)
	if limit > 0 && limit < end-skip {
		end = skip + limit
	}
	out := sorted[skip:end]
	for i := range out {
		out[i].PasswordHash = ""
	}
	return out, nil
}

func (m *Memory) CountUsers(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users), nil
}

func (m *Memory) SetAdmin(_ context.Context, username string, admin bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].Username == username {
			m.users[i].IsAdmin = admin
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) ListChannels(_ context.Context) ([]models.Channel, error) {
	m.mu.RLock()
	out := make([]models.Channel, len(m.channels))
	copy(out, m.channels)
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := out[i].CategoryName(), out[j].CategoryName()
		if ci != cj {
			return ci < cj
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) InsertChannels(_ context.Context, channels []models.Channel) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range channels {
		m.nextID++
		ch.ID = m.nextID
		m.channels = append(m.channels, ch)
	}
	return len(channels), nil
}

func (m *Memory) DeleteAllChannels(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.channels))
	m.channels = nil
	return n, nil
}
