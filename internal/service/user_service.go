package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"cookify/internal/domain"
	"cookify/internal/mail"
	"cookify/internal/repository"
)

// ErrInvalidCredentials indicates that provided login credentials are incorrect.
var ErrInvalidCredentials = errors.New("Invalid credentials")

// bcryptCost is the fixed work factor used for every stored password.
const bcryptCost = 10

const (
	resetPasswordLength  = 12
	resetPasswordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*-_"
)

// ProfileUpdate carries optional profile changes; empty fields are left
// untouched. The password is the only field that goes through hashing,
// and only when it is actually provided.
type ProfileUpdate struct {
	Name     string
	Email    string
	ImageURL string
	Password string
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
	ResetPassword(ctx context.Context, email string) error
}

type userService struct {
	users  repository.UserRepository
	mailer mail.Mailer
}

func NewUserService(users repository.UserRepository, mailer mail.Mailer) UserService {
	return &userService{
		users:  users,
		mailer: mailer,
	}
}

func (s *userService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" {
		return nil, errors.New("name is required")
	}
	if email == "" {
		return nil, errors.New("email is required")
	}
	if password == "" {
		return nil, errors.New("password is required")
	}

	// duplicate checks in the same order the API has always reported
	// them: email first, then username
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if _, err := s.users.GetByName(ctx, name); err == nil {
		return nil, domain.ErrNameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		ImageURL:     domain.DefaultAvatarURL,
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user.Sanitized(), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// UpdateProfile patches the provided fields. The stored hash is only
// rewritten when a new password is supplied, so unrelated profile edits
// never re-hash an already hashed value.
func (s *userService) UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(update.Name); name != "" {
		user.Name = name
	}
	if email := strings.TrimSpace(update.Email); email != "" {
		user.Email = email
	}
	if update.ImageURL != "" {
		user.ImageURL = update.ImageURL
	}
	if update.Password != "" {
		hash, err := hashPassword(update.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	return s.users.Delete(ctx, id)
}

// ResetPassword replaces the account password with a random one and
// mails the plaintext to the account owner. The old password stops
// working as soon as the new hash is saved; a mail delivery failure
// after that point still surfaces as an error.
func (s *userService) ResetPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	newPassword, err := generatePassword(resetPasswordLength)
	if err != nil {
		return err
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash

	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	return s.mailer.SendPasswordReset(user.Email, newPassword)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func generatePassword(length int) (string, error) {
	buf := make([]byte, length)
	max := big.NewInt(int64(len(resetPasswordCharset)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		buf[i] = resetPasswordCharset[n.Int64()]
	}
	return string(buf), nil
}
