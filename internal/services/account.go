package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/example/gyansetu/internal/models"
	"github.com/example/gyansetu/internal/storage"
	"github.com/example/gyansetu/internal/utils"
)

// Accounts implements the credential store on top of the configured storage
// driver. Passwords are stored as bcrypt hashes.
type Accounts struct {
	store  storage.Store
	logger *zap.Logger
}

func NewAccounts(store storage.Store, logger *zap.Logger) *Accounts {
	return &Accounts{store: store, logger: logger}
}

// Register creates an account. Emails are normalized to lowercase and must be
// unique; the duplicate check is case-insensitive.
func (a *Accounts) Register(ctx context.Context, name, email, password, role, course string) (*models.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, ErrValidation
	}
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, ErrValidation
	}

	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := a.store.UserByEmail(ctx, email); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Course:       course,
	}
	if err := a.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	a.logger.Info("account registered", zap.String("email", email), zap.String("role", role))
	return user, nil
}

// Authenticate checks credentials and, when expectedRole is non-empty, that
// the account carries that role. Credential failures stay generic to avoid
// account enumeration.
func (a *Accounts) Authenticate(ctx context.Context, email, password, expectedRole string) (*models.User, error) {
	user, err := a.store.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if expectedRole != "" && user.Role != expectedRole {
		return nil, ErrRoleMismatch
	}

	return user, nil
}

// ResetPassword destructively overwrites the password. There is no
// prior-password or token check; the demo flow trades that away on purpose.
func (a *Accounts) ResetPassword(ctx context.Context, email, newPassword string) error {
	if email == "" || newPassword == "" {
		return ErrValidation
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	err = a.store.UpdateUserPassword(ctx, strings.ToLower(strings.TrimSpace(email)), hash)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
