package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/voyagen/tvgate/internal/models"
	"github.com/voyagen/tvgate/internal/store"
)

var errBoom = errors.New("boom")

// failingStore fails every call after the embedded Memory store when the
// matching flag is set.
type failingStore struct {
	*store.Memory
	failFind     bool
	failCreate   bool
	failToken    bool
	failChannels bool
	failCount    bool
}

func (f *failingStore) FindUserByUsernameOrEmail(ctx context.Context, u, e string) (*models.User, error) {
	if f.failFind {
		return nil, errBoom
	}
	return f.Memory.FindUserByUsernameOrEmail(ctx, u, e)
}

func (f *failingStore) CreateUser(ctx context.Context, u *models.User) error {
	if f.failCreate {
		return errBoom
	}
	return f.Memory.CreateUser(ctx, u)
}

func (f *failingStore) GetUserByToken(ctx context.Context, token string) (*models.User, error) {
	if f.failToken {
		return nil, errBoom
	}
	return f.Memory.GetUserByToken(ctx, token)
}

func (f *failingStore) ListChannels(ctx context.Context) ([]models.Channel, error) {
	if f.failChannels {
		return nil, errBoom
	}
	return f.Memory.ListChannels(ctx)
}

func (f *failingStore) CountUsers(ctx context.Context) (int, error) {
	if f.failCount {
		return 0, errBoom
	}
	return f.Memory.CountUsers(ctx)
}

var testDomains = []string{"gmail.com", "yahoo.com"}

func newTestAuth(t *testing.T, users store.UserStore) *AuthService {
	t.Helper()
	s := NewAuthService(users, testDomains, zaptest.NewLogger(t))
	s.cost = bcrypt.MinCost
	return s
}

// registerAndLogin creates a user and returns its session.
func registerAndLogin(t *testing.T, auth *AuthService, username string) *Session {
	t.Helper()
	ctx := context.Background()
	if err := auth.Register(ctx, RegisterRequest{Username: username, Email: username + "@gmail.com", Password: "password123"}); err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	sess, err := auth.Login(ctx, username, "password123")
	if err != nil {
		t.Fatalf("login %s: %v", username, err)
	}
	return sess
}

func ptr(s string) *string { return &s }
