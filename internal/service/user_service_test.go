package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"cookify/internal/domain"
)

type mockUserRepo struct {
	CreateFunc     func(ctx context.Context, user *domain.User) (int64, error)
	GetByIDFunc    func(ctx context.Context, id int64) (*domain.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	GetByNameFunc  func(ctx context.Context, name string) (*domain.User, error)
	UpdateFunc     func(ctx context.Context, user *domain.User) error
	DeleteFunc     func(ctx context.Context, id int64) error
}

func (m *mockUserRepo) Init(ctx context.Context) error { return nil }

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) (int64, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	user.ID = 1
	return 1, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) GetByName(ctx context.Context, name string) (*domain.User, error) {
	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, name)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

type mockMailer struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to       string
	password string
}

func (m *mockMailer) SendPasswordReset(to, newPassword string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, password: newPassword})
	return nil
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegisterHashesPassword(t *testing.T) {
	var created *domain.User
	repo := &mockUserRepo{
		CreateFunc: func(ctx context.Context, user *domain.User) (int64, error) {
			created = user
			user.ID = 1
			return 1, nil
		},
	}
	svc := NewUserService(repo, &mockMailer{})

	user, err := svc.Register(context.Background(), "alice", "a@x.com", "pw1")
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.NotEqual(t, "pw1", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("pw1")))
	assert.Equal(t, domain.DefaultAvatarURL, created.ImageURL)
	assert.Empty(t, user.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{
		GetByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: 1, Email: email}, nil
		},
	}
	svc := NewUserService(repo, &mockMailer{})

	_, err := svc.Register(context.Background(), "bob", "a@x.com", "pw2")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestRegisterDuplicateName(t *testing.T) {
	repo := &mockUserRepo{
		GetByNameFunc: func(ctx context.Context, name string) (*domain.User, error) {
			return &domain.User{ID: 1, Name: name}, nil
		},
	}
	svc := NewUserService(repo, &mockMailer{})

	_, err := svc.Register(context.Background(), "alice", "other@x.com", "pw2")
	assert.ErrorIs(t, err, domain.ErrNameTaken)
}

func TestAuthenticate(t *testing.T) {
	stored := &domain.User{ID: 1, Name: "alice", Email: "a@x.com", PasswordHash: hashFor(t, "pw1")}
	repo := &mockUserRepo{
		GetByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			if email == stored.Email {
				clone := *stored
				return &clone, nil
			}
			return nil, domain.ErrUserNotFound
		},
	}
	svc := NewUserService(repo, &mockMailer{})

	t.Run("correct password", func(t *testing.T) {
		user, err := svc.Authenticate(context.Background(), "a@x.com", "pw1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), user.ID)
		assert.Empty(t, user.PasswordHash)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "a@x.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "who@x.com", "pw1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUpdateProfileKeepsHashWithoutPassword(t *testing.T) {
	originalHash := hashFor(t, "pw1")
	stored := &domain.User{ID: 1, Name: "alice", Email: "a@x.com", PasswordHash: originalHash}

	var updated *domain.User
	repo := &mockUserRepo{
		GetByIDFunc: func(ctx context.Context, id int64) (*domain.User, error) {
			clone := *stored
			return &clone, nil
		},
		UpdateFunc: func(ctx context.Context, user *domain.User) error {
			updated = user
			return nil
		},
	}
	svc := NewUserService(repo, &mockMailer{})

	_, err := svc.UpdateProfile(context.Background(), 1, ProfileUpdate{Name: "alice2"})
	require.NoError(t, err)

	require.NotNil(t, updated)
	assert.Equal(t, "alice2", updated.Name)
	assert.Equal(t, originalHash, updated.PasswordHash)
}

func TestUpdateProfileRehashesNewPassword(t *testing.T) {
	originalHash := hashFor(t, "pw1")
	stored := &domain.User{ID: 1, Name: "alice", Email: "a@x.com", PasswordHash: originalHash}

	var updated *domain.User
	repo := &mockUserRepo{
		GetByIDFunc: func(ctx context.Context, id int64) (*domain.User, error) {
			clone := *stored
			return &clone, nil
		},
		UpdateFunc: func(ctx context.Context, user *domain.User) error {
			updated = user
			return nil
		},
	}
	svc := NewUserService(repo, &mockMailer{})

	_, err := svc.UpdateProfile(context.Background(), 1, ProfileUpdate{Password: "pw2"})
	require.NoError(t, err)

	require.NotNil(t, updated)
	assert.NotEqual(t, originalHash, updated.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("pw2")))
}

func TestResetPasswordUnknownEmail(t *testing.T) {
	mailer := &mockMailer{}
	svc := NewUserService(&mockUserRepo{}, mailer)

	err := svc.ResetPassword(context.Background(), "who@x.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Empty(t, mailer.sent)
}

func TestResetPasswordReplacesAndMails(t *testing.T) {
	stored := &domain.User{ID: 1, Name: "alice", Email: "a@x.com", PasswordHash: hashFor(t, "pw1")}

	var updated *domain.User
	repo := &mockUserRepo{
		GetByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			clone := *stored
			return &clone, nil
		},
		UpdateFunc: func(ctx context.Context, user *domain.User) error {
			updated = user
			return nil
		},
	}
	mailer := &mockMailer{}
	svc := NewUserService(repo, mailer)

	err := svc.ResetPassword(context.Background(), "a@x.com")
	require.NoError(t, err)

	require.NotNil(t, updated)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "a@x.com", mailer.sent[0].to)
	assert.Len(t, mailer.sent[0].password, resetPasswordLength)

	// mailed plaintext matches what was saved, old password no longer does
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte(mailer.sent[0].password)))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("pw1")))
}

func TestGeneratePasswordCharset(t *testing.T) {
	password, err := generatePassword(resetPasswordLength)
	require.NoError(t, err)
	require.Len(t, password, resetPasswordLength)
	for _, ch := range password {
		assert.Contains(t, resetPasswordCharset, string(ch))
	}
}
