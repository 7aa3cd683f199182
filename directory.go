package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Directory bridges callers to accounts and the store: existence checks,
// registration, and lookups keyed by username.
type Directory struct {
	accounts   AccountStore
	groups     GroupStore
	runner     TransactionRunner
	hasher     PasswordHasher
	mailer     ActivationMailer
	authorizer Authorizer
	expiration time.Duration
	now        func() time.Time
	logger     Logger
}

// DirectoryOption customizes directory construction
type DirectoryOption func(*Directory)

// WithDirectoryHasher overrides the password hasher
func WithDirectoryHasher(hasher PasswordHasher) DirectoryOption {
	return func(d *Directory) {
		if hasher != nil {
			d.hasher = hasher
		}
	}
}

// WithDirectoryMailer sets the activation key dispatcher
func WithDirectoryMailer(mailer ActivationMailer) DirectoryOption {
	return func(d *Directory) {
		d.mailer = normalizeMailer(mailer)
	}
}

// WithDirectoryAuthorizer sets the policy hook consulted by Authorize
func WithDirectoryAuthorizer(authorizer Authorizer) DirectoryOption {
	return func(d *Directory) {
		d.authorizer = normalizeAuthorizer(authorizer)
	}
}

// WithDirectoryClock injects a custom clock (useful for tests)
func WithDirectoryClock(clock func() time.Time) DirectoryOption {
	return func(d *Directory) {
		d.now = resolveClock(clock)
	}
}

// WithDirectoryLogger overrides the logger
func WithDirectoryLogger(logger Logger) DirectoryOption {
	return func(d *Directory) {
		d.logger = resolveLogger(logger)
	}
}

// WithExpirationPeriod sets the registration key validity window
func WithExpirationPeriod(period time.Duration) DirectoryOption {
	return func(d *Directory) {
		if period > 0 {
			d.expiration = period
		}
	}
}

// WithDirectoryConfig applies the expiration policy from a Config
func WithDirectoryConfig(cfg *Config) DirectoryOption {
	return func(d *Directory) {
		if cfg != nil && cfg.ExpirationPeriod > 0 {
			d.expiration = cfg.ExpirationPeriod
		}
	}
}

// NewDirectory builds the account directory. In normal wiring pass
// repo.Accounts(), repo.AuthGroups(), and the RepositoryManager itself as
// the runner.
func NewDirectory(accounts AccountStore, groups GroupStore, runner TransactionRunner, opts ...DirectoryOption) *Directory {
	d := &Directory{
		accounts:   accounts,
		groups:     groups,
		runner:     runner,
		hasher:     NewDigestHasher(),
		mailer:     noopMailer{},
		authorizer: AllowAllAuthorizer{},
		expiration: DefaultConfig().ExpirationPeriod,
		now:        time.Now,
		logger:     defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	return d
}

// Exists reports whether an account with the given username is present.
// No side effects.
func (d *Directory) Exists(ctx context.Context, username string) (bool, error) {
	return d.accounts.Exists(ctx, username)
}

// Get loads and reconstructs the full account state, including the resolved
// authgroup name. Missing accounts are a reported error, never silent.
func (d *Directory) Get(ctx context.Context, username string) (*Account, error) {
	return d.accounts.GetByUsername(ctx, username)
}

// Create registers a new account: the password is hashed, a registration key
// is generated with its expiry deadline, and the record is inserted in one
// transaction. The unique username column is the authority for duplicates,
// so a racing create still fails with ErrAccountExists. Activation key
// dispatch happens after commit and is fire-and-forget.
func (d *Directory) Create(ctx context.Context, username, email, password, authGroupName string) (*Account, error) {
	hash, err := d.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	key, err := NewRegistrationKey(username)
	if err != nil {
		return nil, err
	}

	var acct *Account
	err = d.runner.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		group, err := d.groups.GetByNameTx(ctx, tx, authGroupName)
		if err != nil {
			return err
		}

		record := &Account{
			Username:        username,
			Email:           email,
			PasswordHash:    hash,
			AuthGroupID:     group.ID,
			AuthGroupName:   group.Name,
			RegistrationKey: key,
			KeyExpiresOn:    d.now().Add(d.expiration),
		}

		created, err := d.accounts.RegisterTx(ctx, tx, record)
		if err != nil {
			return err
		}

		created.AuthGroupName = group.Name
		acct = created
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "account registration transaction failed")
	}

	if err := d.mailer.SendActivationKey(ctx, acct.Email, acct.RegistrationKey); err != nil {
		d.logger.Warn("failed to dispatch activation key",
			"username", acct.Username,
			"email", acct.Email,
			"error", err,
		)
	}

	return acct, nil
}

// Authorize consults the configured policy for access to a resource
func (d *Directory) Authorize(ctx context.Context, acct *Account, resource string) error {
	return d.authorizer.Authorize(ctx, acct, resource)
}
