package accounts

import (
	"context"
	"database/sql"
	"errors"
	"log"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Accounts() Accounts
	AuthGroups() AuthGroups
	CreateSchema(ctx context.Context) error
}

type mngr struct {
	db         *bun.DB
	accounts   Accounts
	authGroups AuthGroups
}

// NewRepositoryManager wires the repositories over a single bun handle. The
// handle's lifecycle belongs to the caller: process start to shutdown, or
// per-request when pooled.
func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:         db,
		accounts:   NewAccountsRepository(db),
		authGroups: NewAuthGroupsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.accounts == nil {
		return errors.New("repository accounts should be initialized")
	}

	if m.authGroups == nil {
		return errors.New("repository authGroups should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Accounts() Accounts {
	return m.accounts
}

func (m mngr) AuthGroups() AuthGroups {
	return m.authGroups
}

// CreateSchema creates the authgroup and account tables. Foreign keys come
// from the model relations; the unique username column is what makes
// check-then-insert race-safe.
func (m mngr) CreateSchema(ctx context.Context) error {
	models := []any{
		(*AuthGroup)(nil),
		(*Account)(nil),
	}

	for _, model := range models {
		_, err := m.db.NewCreateTable().
			Model(model).
			IfNotExists().
			WithForeignKeys().
			Exec(ctx)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create schema")
		}
	}

	return nil
}
