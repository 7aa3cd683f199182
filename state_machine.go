package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// AccountStateMachine defines the lifecycle transitions for accounts.
// Every mutating transition writes through to the store before returning.
type AccountStateMachine interface {
	Activate(ctx context.Context, acct *Account, suppliedKey string) error
	Login(ctx context.Context, acct *Account, username, password string) error
	Logout(ctx context.Context, acct *Account) error
	IsLocked(acct *Account) bool
}

type accountStateMachine struct {
	store     AccountStore
	runner    TransactionRunner
	hasher    PasswordHasher
	tolerance int
	lockout   time.Duration
	now       func() time.Time
	logger    Logger
}

var _ AccountStateMachine = (*accountStateMachine)(nil)

// StateMachineOption customizes state machine construction
type StateMachineOption func(*accountStateMachine)

// WithStateMachineClock injects a custom clock (useful for tests)
func WithStateMachineClock(clock func() time.Time) StateMachineOption {
	return func(sm *accountStateMachine) {
		if clock != nil {
			sm.now = clock
		}
	}
}

// WithStateMachineHasher overrides the password hasher
func WithStateMachineHasher(hasher PasswordHasher) StateMachineOption {
	return func(sm *accountStateMachine) {
		if hasher != nil {
			sm.hasher = hasher
		}
	}
}

// WithStateMachineLogger overrides the logger
func WithStateMachineLogger(logger Logger) StateMachineOption {
	return func(sm *accountStateMachine) {
		if logger != nil {
			sm.logger = logger
		}
	}
}

// WithStateMachineConfig applies the lockout policy from a Config
func WithStateMachineConfig(cfg *Config) StateMachineOption {
	return func(sm *accountStateMachine) {
		if cfg == nil {
			return
		}
		sm.tolerance = cfg.FailedLoginTolerance
		sm.lockout = cfg.LockoutPeriod
	}
}

// NewAccountStateMachine builds the lifecycle machine over the accounts
// store. The runner serializes the failed-login read-modify-write; pass the
// RepositoryManager for both in normal wiring.
func NewAccountStateMachine(store AccountStore, runner TransactionRunner, opts ...StateMachineOption) AccountStateMachine {
	cfg := DefaultConfig()

	sm := &accountStateMachine{
		store:     store,
		runner:    runner,
		hasher:    NewDigestHasher(),
		tolerance: cfg.FailedLoginTolerance,
		lockout:   cfg.LockoutPeriod,
		now:       time.Now,
		logger:    defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sm)
		}
	}

	return sm
}

// Activate consumes the registration key. The deadline is strict: the key is
// valid only while now < KeyExpiresOn, and a late attempt marks the account
// expired for good. Re-activating an already activated account is a no-op
// success; activated never regresses.
func (m *accountStateMachine) Activate(ctx context.Context, acct *Account, suppliedKey string) error {
	if acct == nil {
		return ErrAccountNotFound
	}

	if acct.Activated {
		return nil
	}

	if acct.Expired {
		return ErrKeyExpired
	}

	if !acct.KeyValidAt(m.now()) {
		acct.Expired = true
		if err := m.persist(ctx, acct); err != nil {
			return err
		}
		return ErrKeyExpired
	}

	if suppliedKey != acct.RegistrationKey {
		// no state change; the write-through still happens so staleness
		// stays bounded to this call
		if err := m.persist(ctx, acct); err != nil {
			return err
		}
		return ErrWrongKey
	}

	acct.Activated = true
	return m.persist(ctx, acct)
}

// Login authenticates a password attempt. The username argument is a
// defensive check against cross-account calls: it is compared to the loaded
// record only, never used to look up other accounts. Failed attempts run
// their counter increment and lock transition as one transaction against a
// freshly loaded row so racing failures cannot under-count.
func (m *accountStateMachine) Login(ctx context.Context, acct *Account, username, password string) error {
	if acct == nil {
		return ErrAccountNotFound
	}

	if username != acct.Username {
		return ErrIdentityMismatch
	}

	now := m.now()
	if acct.IsLockedAt(now) {
		return ErrAccountLocked
	}

	if err := m.hasher.Compare(password, acct.PasswordHash); err == nil {
		acct.LoggedIn = true
		acct.FailedLogins = 0
		acct.Locked = false
		acct.LockedUntil = nil
		return m.persist(ctx, acct)
	}

	var outcome error
	err := m.runner.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		fresh, err := m.store.GetByUsernameTx(ctx, tx, acct.Username)
		if err != nil {
			return err
		}

		// a concurrent attempt may have tripped the lock since our read
		if fresh.IsLockedAt(now) {
			*acct = *fresh
			outcome = ErrAccountLocked
			return nil
		}

		fresh.LoggedIn = false
		fresh.FailedLogins++
		outcome = ErrWrongPassword

		if fresh.FailedLogins > m.tolerance {
			until := now.Add(m.lockout)
			fresh.Locked = true
			fresh.LockedUntil = &until
			outcome = ErrLockedOut
		}

		if err := m.store.PersistTx(ctx, tx, fresh); err != nil {
			return err
		}

		*acct = *fresh
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to record login attempt")
	}

	if outcome == ErrLockedOut {
		m.logger.Warn("account locked out",
			"username", acct.Username,
			"failed_logins", acct.FailedLogins,
			"locked_until", acct.LockedUntil,
		)
	}

	return outcome
}

// Logout clears the logged-in flag. It has no preconditions and is safe to
// call redundantly.
func (m *accountStateMachine) Logout(ctx context.Context, acct *Account) error {
	if acct == nil {
		return ErrAccountNotFound
	}

	acct.LoggedIn = false
	return m.persist(ctx, acct)
}

// IsLocked is the single authority for lock status. It re-evaluates the
// window against the clock on every call; a lapsed lock is cleared in memory
// and persisted by the next write-through, not by the read itself.
func (m *accountStateMachine) IsLocked(acct *Account) bool {
	if acct == nil {
		return false
	}
	return acct.IsLockedAt(m.now())
}

func (m *accountStateMachine) persist(ctx context.Context, acct *Account) error {
	if err := m.store.Persist(ctx, acct); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist account state")
	}
	return nil
}
