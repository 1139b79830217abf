package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/folio-social/folio/internal/db"
	"github.com/folio-social/folio/internal/models"
	"github.com/folio-social/folio/pkg/logging"
	"github.com/folio-social/folio/pkg/telemetry"
)

// FolioJoiner is the separator of the legacy single-column folio encoding; names may not contain it
const FolioJoiner = ","

// searchOrder is the fixed priority of Search
var searchOrder = []db.Field{db.FieldUsername, db.FieldRealName, db.FieldEmail}

// Detacher removes follow edges pointing at an account that is being deleted
type Detacher interface {
	Detach(ctx context.Context, tx db.Store, id int64) error
}

// RegisterInput carries the fields of a new account
type RegisterInput struct {
	Username string
	Email    string
	Password string
	RealName string
	// Handles maps platform name to handle; keys outside Platforms are ignored
	Handles map[string]string
}

// Service implements registration, authentication, search and deletion of accounts
type Service struct {
	store  db.Store
	graph  Detacher
	hasher PasswordHasher
	logger *zap.Logger

	registrations metric.Int64Counter
	logins        metric.Int64Counter
}

// NewService creates an account service
func NewService(store db.Store, graph Detacher, hasher PasswordHasher) *Service {
	return &Service{
		store:         store,
		graph:         graph,
		hasher:        hasher,
		logger:        logging.WithComponent("accounts"),
		registrations: telemetry.Counter("folio.registrations", "Accounts registered"),
		logins:        telemetry.Counter("folio.logins", "Authentication attempts"),
	}
}

// Register creates a new account. Email uniqueness is enforced by the store.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.AccountView, error) {
	ctx, span := telemetry.StartSpan(ctx, "accounts.register")
	defer span.End()

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		Username:     in.Username,
		RealName:     in.RealName,
		Email:        in.Email,
		PasswordHash: hash,
		SocialLinks:  BuildSocialLinks(in.Handles),
	}
	account.Normalize()

	if err := s.store.Create(ctx, account); err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			return nil, models.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to register account: %w", err)
	}

	s.registrations.Add(ctx, 1)
	span.SetAttributes(attribute.Int64("account_id", account.ID))
	logging.FromContext(ctx, s.logger).Info("Account registered",
		zap.Int64("account_id", account.ID),
		zap.Int("social_links", len(account.SocialLinks)))

	return account.View(), nil
}

// Authenticate checks password against the account registered with email
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.AccountView, error) {
	ctx, span := telemetry.StartSpan(ctx, "accounts.authenticate")
	defer span.End()

	account, err := s.store.FindBy(ctx, db.FieldEmail, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "not_found")))
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(account.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "wrong_password")))
		return nil, models.ErrWrongPassword
	}

	s.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "ok")))
	return account.View(), nil
}

// Search returns the first account matching query by username, then real name, then email
func (s *Service) Search(ctx context.Context, query string) (*models.AccountView, error) {
	ctx, span := telemetry.StartSpan(ctx, "accounts.search")
	defer span.End()

	if query == "" {
		return nil, models.ErrNotFound
	}

	for _, field := range searchOrder {
		account, err := s.store.FindBy(ctx, field, query)
		if err == nil {
			span.SetAttributes(attribute.String("matched_field", string(field)))
			return account.View(), nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
	}
	return nil, models.ErrNotFound
}

// Get returns the detail view of an account
func (s *Service) Get(ctx context.Context, id int64) (*models.AccountView, error) {
	account, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return account.View(), nil
}

// Details returns the social links and follow state of an account
func (s *Service) Details(ctx context.Context, id int64) (*models.AccountDetails, error) {
	account, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return account.Details(), nil
}

// Delete removes an account and every follow edge that references it
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, span := telemetry.StartSpan(ctx, "accounts.delete")
	defer span.End()

	err := s.store.Transaction(ctx, func(tx db.Store) error {
		if _, err := tx.GetForUpdate(ctx, id); err != nil {
			return err
		}
		if err := s.graph.Detach(ctx, tx, id); err != nil {
			return err
		}
		return tx.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	logging.FromContext(ctx, s.logger).Info("Account deleted", zap.Int64("account_id", id))
	return nil
}

// Folios returns the ordered folio names of an account
func (s *Service) Folios(ctx context.Context, id int64) ([]string, error) {
	account, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return append([]string{}, account.Folios...), nil
}

// SetFolios replaces the folio list of an account, keeping order and duplicates
func (s *Service) SetFolios(ctx context.Context, id int64, folios []string) ([]string, error) {
	ctx, span := telemetry.StartSpan(ctx, "accounts.set_folios")
	defer span.End()

	cleaned := make([]string, 0, len(folios))
	for _, f := range folios {
		f = strings.TrimSpace(f)
		if f == "" || strings.Contains(f, FolioJoiner) {
			return nil, fmt.Errorf("%w: %q", models.ErrInvalidFolio, f)
		}
		cleaned = append(cleaned, f)
	}

	err := s.store.Transaction(ctx, func(tx db.Store) error {
		account, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		account.Folios = cleaned
		return tx.Update(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	return cleaned, nil
}
