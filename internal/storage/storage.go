// Package storage persists portal records behind a single interface with two
// interchangeable drivers: a Postgres store for hosted deployments and a flat
// JSON file store for local or disposable ones. Handlers never know which is
// configured.
package storage

import (
	"context"
	"errors"

	"github.com/example/gyansetu/internal/models"
)

// Store is the persistence collaborator for students, accounts and global
// settings.
type Store interface {
	CreateStudent(ctx context.Context, student *models.Student) error
	// ListStudents returns one page (newest first) plus the overall total.
	ListStudents(ctx context.Context, page, pageSize int) ([]models.Student, int64, error)
	// PatchStudent overwrites exactly the given columns; a nil value clears
	// the column rather than leaving it unchanged.
	PatchStudent(ctx context.Context, id string, patch map[string]any) error
	// AllStudents returns every record in insertion order, for exports.
	AllStudents(ctx context.Context) ([]models.Student, error)

	CreateUser(ctx context.Context, user *models.User) error
	// UserByEmail matches case-insensitively.
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserPassword(ctx context.Context, email, passwordHash string) error

	ResultPublished(ctx context.Context) (bool, error)
	SetResultPublished(ctx context.Context, published bool) error
}

// ErrNotFound is returned when a lookup or patch target does not exist.
var ErrNotFound = errors.New("storage: record not found")
