package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cinedex/cinedex/internal/domain"
)

type mockRepo struct {
	users     map[string]domain.User
	createErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: map[string]domain.User{}}
}

func (m *mockRepo) Create(_ context.Context, u *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return domain.ErrEmailTaken
		}
	}
	m.users[u.ID] = *u
	return nil
}

func (m *mockRepo) Get(_ context.Context, id string) (domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func newTestService(repo *mockRepo) *Service {
	return New(repo, "test-secret", time.Hour)
}

func TestRegister(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	view, err := svc.Register(context.Background(), "Alice@Example.COM", "alice", "correct horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", view.Email)
	}
	if view.Role != domain.RoleUser {
		t.Errorf("expected default role, got %q", view.Role)
	}

	stored := repo.users[view.ID]
	if stored.PasswordHash == "" || strings.Contains(stored.PasswordHash, "correct horse") {
		t.Error("password not hashed")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(newMockRepo())

	tests := []struct {
		name                      string
		email, username, password string
	}{
		{"bad email", "not-an-email", "alice", "long enough pw"},
		{"blank username", "a@example.com", "  ", "long enough pw"},
		{"short password", "a@example.com", "alice", "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.email, tt.username, tt.password)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(newMockRepo())

	if _, err := svc.Register(context.Background(), "a@example.com", "alice", "long enough pw"); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Register(context.Background(), "A@example.com", "alice2", "long enough pw")
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginRoundTrip(t *testing.T) {
	svc := newTestService(newMockRepo())

	view, err := svc.Register(context.Background(), "a@example.com", "alice", "long enough pw")
	if err != nil {
		t.Fatal(err)
	}

	token, loggedIn, err := svc.Login(context.Background(), "a@example.com", "long enough pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loggedIn.ID != view.ID {
		t.Errorf("login returned wrong user: %+v", loggedIn)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	u, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if u.ID != view.ID {
		t.Errorf("token resolved to wrong user: %+v", u)
	}
}

func TestLoginWrongCredentials(t *testing.T) {
	svc := newTestService(newMockRepo())

	if _, err := svc.Register(context.Background(), "a@example.com", "alice", "long enough pw"); err != nil {
		t.Fatal(err)
	}

	_, _, err := svc.Login(context.Background(), "a@example.com", "wrong password")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}

	_, _, err = svc.Login(context.Background(), "ghost@example.com", "long enough pw")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	svc := newTestService(newMockRepo())

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Errorf("token %q: expected ErrInvalidCredentials, got %v", token, err)
		}
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	if _, err := svc.Register(context.Background(), "a@example.com", "alice", "long enough pw"); err != nil {
		t.Fatal(err)
	}

	// Issue a token in the past so it is already expired.
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := svc.Login(context.Background(), "a@example.com", "long enough pw")
	if err != nil {
		t.Fatal(err)
	}
	svc.now = time.Now

	if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for expired token, got %v", err)
	}
}

func TestAuthenticateRejectsForeignSignature(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	other := New(repo, "different-secret", time.Hour)

	if _, err := svc.Register(context.Background(), "a@example.com", "alice", "long enough pw"); err != nil {
		t.Fatal(err)
	}
	token, _, err := svc.Login(context.Background(), "a@example.com", "long enough pw")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := other.Authenticate(context.Background(), token); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for foreign signature, got %v", err)
	}
}
