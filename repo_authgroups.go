package accounts

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// AuthGroups is the authgroups repository. Groups are immutable after
// creation: the interface exposes create and read operations only.
type AuthGroups interface {
	GroupStore
	Create(ctx context.Context, name string) (*AuthGroup, error)
	CreateTx(ctx context.Context, tx bun.IDB, name string) (*AuthGroup, error)
}

type authGroupsRepo struct {
	db *bun.DB
}

var _ AuthGroups = (*authGroupsRepo)(nil)

// NewAuthGroupsRepository builds the bun-backed authgroups repository
func NewAuthGroupsRepository(db *bun.DB) AuthGroups {
	return &authGroupsRepo{db: db}
}

func (r *authGroupsRepo) Create(ctx context.Context, name string) (*AuthGroup, error) {
	return r.CreateTx(ctx, r.db, name)
}

func (r *authGroupsRepo) CreateTx(ctx context.Context, tx bun.IDB, name string) (*AuthGroup, error) {
	record := &AuthGroup{Name: name}

	if err := record.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid authgroup record")
	}

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "failed to insert authgroup")
	}

	return record, nil
}

func (r *authGroupsRepo) GetByName(ctx context.Context, name string) (*AuthGroup, error) {
	return r.GetByNameTx(ctx, r.db, name)
}

func (r *authGroupsRepo) GetByNameTx(ctx context.Context, tx bun.IDB, name string) (*AuthGroup, error) {
	record := &AuthGroup{}

	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.name = ?", name).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAuthGroupNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load authgroup")
	}

	return record, nil
}

func (r *authGroupsRepo) GetName(ctx context.Context, id int64) (string, error) {
	record := &AuthGroup{}

	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return "", ErrAuthGroupNotFound
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve authgroup name")
	}

	return record.Name, nil
}
