package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// accountWriteColumns is the column set a write-through touches. Username,
// registration_key and key_expires_on are deliberately absent: they are set
// exactly once at creation and the store refuses to rewrite them.
var accountWriteColumns = []string{
	"email",
	"password_hash",
	"authgroup_id",
	"activated",
	"expired",
	"logged_in",
	"failed_logins",
	"locked",
	"locked_until",
	"updated_at",
}

// Accounts is the accounts repository
type Accounts interface {
	repository.Repository[*Account]
	AccountStore
}

type accountsRepo struct {
	repository.Repository[*Account]
	db *bun.DB
}

var (
	_ Accounts                        = (*accountsRepo)(nil)
	_ repository.Repository[*Account] = (*accountsRepo)(nil)
	_ AccountStore                    = (*accountsRepo)(nil)
)

// NewAccountsRepository builds the bun-backed accounts repository
func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	return &accountsRepo{
		Repository: repo,
		db:         db,
	}
}

func (a *accountsRepo) Exists(ctx context.Context, username string) (bool, error) {
	return a.ExistsTx(ctx, a.db, username)
}

func (a *accountsRepo) ExistsTx(ctx context.Context, tx bun.IDB, username string) (bool, error) {
	ok, err := tx.NewSelect().
		Model((*Account)(nil)).
		Where("?TableAlias.username = ?", username).
		Exists(ctx)
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check account existence")
	}
	return ok, nil
}

func (a *accountsRepo) GetByUsername(ctx context.Context, username string) (*Account, error) {
	return a.GetByUsernameTx(ctx, a.db, username)
}

func (a *accountsRepo) GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*Account, error) {
	record := &Account{}

	err := tx.NewSelect().
		Model(record).
		Relation("AuthGroup").
		Where("?TableAlias.username = ?", username).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load account")
	}

	if record.AuthGroup != nil {
		record.AuthGroupName = record.AuthGroup.Name
	}

	return record, nil
}

func (a *accountsRepo) Register(ctx context.Context, record *Account) (*Account, error) {
	return a.RegisterTx(ctx, a.db, record)
}

func (a *accountsRepo) RegisterTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error) {
	prepareAccountDefaults(record)

	if err := record.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid account record")
	}

	created, err := a.Repository.CreateTx(ctx, tx, record)
	if err != nil {
		if IsDuplicateUsername(err) {
			return nil, ErrAccountExists
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to insert account")
	}

	return created, nil
}

func (a *accountsRepo) Persist(ctx context.Context, record *Account) error {
	return a.PersistTx(ctx, a.db, record)
}

// PersistTx writes the mutable lifecycle columns back to the store. Explicit
// columns are used instead of the ORM update helpers so zero values (cleared
// locks, reset counters, logged_out flags) actually reach the row.
func (a *accountsRepo) PersistTx(ctx context.Context, tx bun.IDB, record *Account) error {
	if err := record.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid account record")
	}

	now := time.Now()
	record.UpdatedAt = &now

	res, err := tx.NewUpdate().
		Model(record).
		Column(accountWriteColumns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist account")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAccountNotFound
	}

	return nil
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
