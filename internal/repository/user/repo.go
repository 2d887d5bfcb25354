package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cinedex/cinedex/internal/db"
	"github.com/cinedex/cinedex/internal/domain"
)

const (
	keyPrefix      = domain.KeyPrefix + "user:"
	emailKeyPrefix = domain.KeyPrefix + "user_email:"
)

// store is the consumer interface for user persistence (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Repo implements user persistence: one JSON document per user plus an
// email-to-id lookup key for login.
type Repo struct {
	store store
}

// New creates a user repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

func key(id string) string {
	return keyPrefix + id
}

func emailKey(email string) string {
	return emailKeyPrefix + strings.ToLower(email)
}

// Create persists a new user. Fails with domain.ErrEmailTaken when the
// email lookup key already exists.
func (r *Repo) Create(ctx context.Context, u *domain.User) error {
	taken, err := r.store.Exists(ctx, emailKey(u.Email))
	if err != nil {
		return fmt.Errorf("check email %s: %w", u.Email, err)
	}
	if taken {
		return domain.ErrEmailTaken
	}

	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if err := r.store.JSONSet(ctx, key(u.ID), "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key(u.ID), err)
	}
	if err := r.store.Set(ctx, emailKey(u.Email), []byte(u.ID)); err != nil {
		return fmt.Errorf("set email lookup %s: %w", u.Email, err)
	}
	return nil
}

// Get returns a user by ID.
func (r *Repo) Get(ctx context.Context, id string) (domain.User, error) {
	raw, err := r.store.JSONGet(ctx, key(id), "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("json.get %s: %w", key(id), err)
	}
	return parseDoc(raw)
}

// GetByEmail resolves the email lookup key and loads the user.
func (r *Repo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	id, err := r.store.Get(ctx, emailKey(email))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get email lookup %s: %w", email, err)
	}
	return r.Get(ctx, string(id))
}

func parseDoc(raw []byte) (domain.User, error) {
	var docs []domain.User
	if err := json.Unmarshal(raw, &docs); err != nil {
		return domain.User{}, fmt.Errorf("unmarshal user: %w", err)
	}
	if len(docs) == 0 {
		return domain.User{}, domain.ErrUserNotFound
	}
	return docs[0], nil
}
