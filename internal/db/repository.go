package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/folio-social/folio/internal/models"
)

// mutableColumns are written by Update; id and created_at never change
var mutableColumns = []string{
	"username", "real_name", "email", "password_hash", "is_admin",
	"folios", "social_links", "following", "followed_by", "updated_at",
}

// AccountRepository is the postgres Store
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account and fills in its ID
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return translate(err, "create account")
	}
	return nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, translate(err, "get account")
	}
	return &account, nil
}

// GetForUpdate retrieves an account by ID with a row lock
func (r *AccountRepository) GetForUpdate(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&account, id).Error; err != nil {
		return nil, translate(err, "lock account")
	}
	return &account, nil
}

// FindBy retrieves the first account whose field matches value exactly
func (r *AccountRepository) FindBy(ctx context.Context, field Field, value string) (*models.Account, error) {
	if !validField(field) {
		return nil, fmt.Errorf("unsupported lookup field %q", field)
	}
	var account models.Account
	if err := r.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: string(field)}, Value: value}).
		Order("id").
		First(&account).Error; err != nil {
		return nil, translate(err, "find account")
	}
	return &account, nil
}

// FindReferencing retrieves, with row locks, accounts whose follow lists contain id
func (r *AccountRepository) FindReferencing(ctx context.Context, id int64) ([]*models.Account, error) {
	var accounts []*models.Account
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("? = ANY(following) OR ? = ANY(followed_by)", id, id).
		Order("id").
		Find(&accounts).Error; err != nil {
		return nil, translate(err, "find referencing accounts")
	}
	return accounts, nil
}

// Update writes every mutable column of the account
func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	res := r.db.WithContext(ctx).
		Model(account).
		Select(mutableColumns).
		Updates(account)
	if res.Error != nil {
		return translate(res.Error, "update account")
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete removes an account by ID
func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&models.Account{}, id)
	if res.Error != nil {
		return translate(res.Error, "delete account")
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Transaction runs fn inside a database transaction
func (r *AccountRepository) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AccountRepository{db: tx})
	})
}

// Health pings the underlying connection pool
func (r *AccountRepository) Health(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return translate(err, "ping database")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return translate(err, "ping database")
	}
	return nil
}

// translate maps driver and gorm errors onto the model error kinds
func translate(err error, op string) error {
	var netErr net.Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return models.ErrDuplicateEmail
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr):
		return fmt.Errorf("%s: %w: %v", op, models.ErrUnavailable, err)
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}
