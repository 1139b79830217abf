package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/folio-social/folio/internal/models"
)

// MemoryStore keeps accounts in process. A transaction holds the store lock
// and works on a private copy that replaces the live state on commit, so
// readers never observe half of a paired write.
type MemoryStore struct {
	mu    sync.Mutex
	state *memoryState
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemoryState()}
}

func (m *MemoryStore) Create(ctx context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.create(ctx, account)
}

func (m *MemoryStore) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.get(ctx, id)
}

// GetForUpdate outside a transaction is a plain read
func (m *MemoryStore) GetForUpdate(ctx context.Context, id int64) (*models.Account, error) {
	return m.GetByID(ctx, id)
}

func (m *MemoryStore) FindBy(ctx context.Context, field Field, value string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.findBy(ctx, field, value)
}

func (m *MemoryStore) FindReferencing(ctx context.Context, id int64) ([]*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.findReferencing(ctx, id)
}

func (m *MemoryStore) Update(ctx context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.update(ctx, account)
}

func (m *MemoryStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.delete(ctx, id)
}

// Transaction runs fn with exclusive access; the copy is discarded on error or panic
func (m *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w: %v", models.ErrUnavailable, err)
	}

	tx := &memoryTx{state: m.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	m.state = tx.state
	return nil
}

// Health always succeeds
func (m *MemoryStore) Health(ctx context.Context) error {
	return ctx.Err()
}

// memoryTx is the Store handed to a transaction callback; the lock is already held
type memoryTx struct {
	state *memoryState
}

func (t *memoryTx) Create(ctx context.Context, account *models.Account) error {
	return t.state.create(ctx, account)
}

func (t *memoryTx) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return t.state.get(ctx, id)
}

func (t *memoryTx) GetForUpdate(ctx context.Context, id int64) (*models.Account, error) {
	return t.state.get(ctx, id)
}

func (t *memoryTx) FindBy(ctx context.Context, field Field, value string) (*models.Account, error) {
	return t.state.findBy(ctx, field, value)
}

func (t *memoryTx) FindReferencing(ctx context.Context, id int64) ([]*models.Account, error) {
	return t.state.findReferencing(ctx, id)
}

func (t *memoryTx) Update(ctx context.Context, account *models.Account) error {
	return t.state.update(ctx, account)
}

func (t *memoryTx) Delete(ctx context.Context, id int64) error {
	return t.state.delete(ctx, id)
}

// Transaction nests by joining the outer transaction
func (t *memoryTx) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return fn(t)
}

func (t *memoryTx) Health(ctx context.Context) error {
	return ctx.Err()
}

type memoryState struct {
	accounts map[int64]*models.Account
	nextID   int64
}

func newMemoryState() *memoryState {
	return &memoryState{accounts: make(map[int64]*models.Account), nextID: 1}
}

func (s *memoryState) clone() *memoryState {
	c := &memoryState{accounts: make(map[int64]*models.Account, len(s.accounts)), nextID: s.nextID}
	for id, a := range s.accounts {
		c.accounts[id] = a.Clone()
	}
	return c
}

// sorted returns stored accounts in id order, matching ORDER BY id in postgres
func (s *memoryState) sorted() []*models.Account {
	out := make([]*models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memoryState) emailTaken(email string, exceptID int64) bool {
	for id, a := range s.accounts {
		if id != exceptID && a.Email == email {
			return true
		}
	}
	return false
}

func (s *memoryState) create(ctx context.Context, account *models.Account) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("create account: %w: %v", models.ErrUnavailable, err)
	}
	if s.emailTaken(account.Email, 0) {
		return models.ErrDuplicateEmail
	}
	now := time.Now().UTC()
	account.ID = s.nextID
	account.CreatedAt = now
	account.UpdatedAt = now
	account.Normalize()
	s.nextID++
	s.accounts[account.ID] = account.Clone()
	return nil
}

func (s *memoryState) get(ctx context.Context, id int64) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("get account: %w: %v", models.ErrUnavailable, err)
	}
	a, ok := s.accounts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return a.Clone(), nil
}

func (s *memoryState) findBy(ctx context.Context, field Field, value string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("find account: %w: %v", models.ErrUnavailable, err)
	}
	if !validField(field) {
		return nil, fmt.Errorf("unsupported lookup field %q", field)
	}
	for _, a := range s.sorted() {
		var v string
		switch field {
		case FieldUsername:
			v = a.Username
		case FieldRealName:
			v = a.RealName
		case FieldEmail:
			v = a.Email
		}
		if v == value {
			return a.Clone(), nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *memoryState) findReferencing(ctx context.Context, id int64) ([]*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("find referencing accounts: %w: %v", models.ErrUnavailable, err)
	}
	var out []*models.Account
	for _, a := range s.sorted() {
		if a.IsFollowing(id) || a.IsFollowedBy(id) {
			out = append(out, a.Clone())
		}
	}
	return out, nil
}

func (s *memoryState) update(ctx context.Context, account *models.Account) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("update account: %w: %v", models.ErrUnavailable, err)
	}
	existing, ok := s.accounts[account.ID]
	if !ok {
		return models.ErrNotFound
	}
	if s.emailTaken(account.Email, account.ID) {
		return models.ErrDuplicateEmail
	}
	account.CreatedAt = existing.CreatedAt
	account.UpdatedAt = time.Now().UTC()
	account.Normalize()
	s.accounts[account.ID] = account.Clone()
	return nil
}

func (s *memoryState) delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete account: %w: %v", models.ErrUnavailable, err)
	}
	if _, ok := s.accounts[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.accounts, id)
	return nil
}
