package db

import (
	"context"

	"github.com/folio-social/folio/internal/models"
)

// Field names an account column that can be looked up by exact value
type Field string

const (
	FieldUsername Field = "username"
	FieldRealName Field = "real_name"
	FieldEmail    Field = "email"
)

// Store is the account persistence contract. Lookups return models.ErrNotFound
// for missing rows, Create and Update return models.ErrDuplicateEmail on an
// email collision, and connectivity failures wrap models.ErrUnavailable.
type Store interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	// GetForUpdate loads an account and locks it until the surrounding transaction ends
	GetForUpdate(ctx context.Context, id int64) (*models.Account, error)
	// FindBy returns the lowest-id account whose field equals value
	FindBy(ctx context.Context, field Field, value string) (*models.Account, error)
	// FindReferencing returns, locked, every account whose follow lists contain id
	FindReferencing(ctx context.Context, id int64) ([]*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id int64) error
	// Transaction runs fn against a transactional Store; any error rolls back
	Transaction(ctx context.Context, fn func(tx Store) error) error
	Health(ctx context.Context) error
}

func validField(f Field) bool {
	switch f {
	case FieldUsername, FieldRealName, FieldEmail:
		return true
	}
	return false
}

var (
	_ Store = (*AccountRepository)(nil)
	_ Store = (*MemoryStore)(nil)
	_ Store = (*memoryTx)(nil)
)
