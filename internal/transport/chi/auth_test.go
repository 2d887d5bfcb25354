package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cinedex/cinedex/internal/domain"
	authuc "github.com/cinedex/cinedex/internal/usecase/auth"
)

type memUserRepo struct {
	users map[string]domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]domain.User{}}
}

func (m *memUserRepo) Create(_ context.Context, u *domain.User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return domain.ErrEmailTaken
		}
	}
	m.users[u.ID] = *u
	return nil
}

func (m *memUserRepo) Get(_ context.Context, id string) (domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func newAuthServer(t *testing.T) (*Server, string) {
	t.Helper()

	auth := authuc.New(newMemUserRepo(), "test-secret", time.Hour)
	if _, err := auth.Register(context.Background(), "a@example.com", "alice", "long enough pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	token, _, err := auth.Login(context.Background(), "a@example.com", "long enough pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	return NewServer(auth, nil, nil, nil, nil, nil, zap.NewNop()), token
}

func TestRequireAuthMissingHeader(t *testing.T) {
	s, _ := newAuthServer(t)

	handler := s.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("handler reached without credentials")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/movies", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthWrongScheme(t *testing.T) {
	s, token := newAuthServer(t)

	handler := s.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("handler reached with wrong scheme")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/movies", nil)
	req.Header.Set("Authorization", "Basic "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	s, _ := newAuthServer(t)

	handler := s.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("handler reached with bad token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/movies", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthInjectsUser(t *testing.T) {
	s, token := newAuthServer(t)

	var seen domain.User
	handler := s.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := userFromContext(r.Context())
		if !ok {
			t.Error("user missing from context")
		}
		seen = u
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/movies", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen.Email != "a@example.com" {
		t.Errorf("wrong user in context: %+v", seen)
	}
	if seen.Role != domain.RoleUser {
		t.Errorf("expected default role, got %q", seen.Role)
	}
}
