package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUserRepo struct {
	byEmail map[string]*User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: make(map[string]*User)}
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memUserRepo) Create(ctx context.Context, u *User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return ErrEmailAlreadyUsed
	}
	u.ID = uuid.New().String()
	u.CreatedAt = time.Now().UTC()
	cp := *u
	r.byEmail[u.Email] = &cp
	return nil
}

func (r *memUserRepo) UpdateLastLogin(ctx context.Context, id string, t time.Time) error {
	for _, u := range r.byEmail {
		if u.ID == id {
			u.LastLoginAt = &t
			return nil
		}
	}
	return ErrNotFound
}

// plainHasher avoids bcrypt cost in unit tests.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hash:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hash:"+password {
		return ErrInvalidCredentials
	}
	return nil
}

func TestRegisterAndLogin(t *testing.T) {
	svc := NewService(newMemUserRepo(), plainHasher{})
	ctx := context.Background()

	u, err := svc.Register(ctx, "  Alice@Example.COM ", "supersecret", "Alice", RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, RoleTeacher, u.Role)
	assert.True(t, u.IsActive)

	got, err := svc.Login(ctx, "alice@example.com", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Login(ctx, "alice@example.com", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "supersecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(newMemUserRepo(), plainHasher{})
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob@example.com", "short", "Bob", RoleStudent)
	assert.Error(t, err)

	_, err = svc.Register(ctx, "bob@example.com", "supersecret", "Bob", "admin")
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.Register(ctx, "bob@example.com", "supersecret", "Bob", RoleStudent)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "bob@example.com", "supersecret", "Bob Again", RoleStudent)
	assert.ErrorIs(t, err, ErrEmailAlreadyUsed)
}
