package accounts

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// RegisterAccountMessage carries a registration request. With UseHashid the
// account ID is derived deterministically from the username, which keeps IDs
// stable across environments seeded from the same data.
type RegisterAccountMessage struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	AuthGroup string `json:"authgroup"`
	UseHashid bool
}

func (e RegisterAccountMessage) Type() string { return "account.register" }

// RegisterAccountHandler executes registrations as a command: password
// hashing, key issuance and the insert run in one transaction, activation
// mail goes out after commit.
type RegisterAccountHandler struct {
	accounts   AccountStore
	groups     GroupStore
	runner     TransactionRunner
	hasher     PasswordHasher
	mailer     ActivationMailer
	expiration time.Duration
	now        func() time.Time
	logger     Logger
}

// RegisterAccountOption customizes the handler
type RegisterAccountOption func(*RegisterAccountHandler)

// WithRegisterHasher overrides the password hasher
func WithRegisterHasher(hasher PasswordHasher) RegisterAccountOption {
	return func(h *RegisterAccountHandler) {
		if hasher != nil {
			h.hasher = hasher
		}
	}
}

// WithRegisterMailer sets the activation key dispatcher
func WithRegisterMailer(mailer ActivationMailer) RegisterAccountOption {
	return func(h *RegisterAccountHandler) {
		h.mailer = normalizeMailer(mailer)
	}
}

// WithRegisterClock injects a custom clock
func WithRegisterClock(clock func() time.Time) RegisterAccountOption {
	return func(h *RegisterAccountHandler) {
		h.now = resolveClock(clock)
	}
}

// WithRegisterConfig applies the expiration policy from a Config
func WithRegisterConfig(cfg *Config) RegisterAccountOption {
	return func(h *RegisterAccountHandler) {
		if cfg != nil && cfg.ExpirationPeriod > 0 {
			h.expiration = cfg.ExpirationPeriod
		}
	}
}

// NewRegisterAccountHandler builds the registration command handler
func NewRegisterAccountHandler(accounts AccountStore, groups GroupStore, runner TransactionRunner, opts ...RegisterAccountOption) *RegisterAccountHandler {
	h := &RegisterAccountHandler{
		accounts:   accounts,
		groups:     groups,
		runner:     runner,
		hasher:     NewDigestHasher(),
		mailer:     noopMailer{},
		expiration: DefaultConfig().ExpirationPeriod,
		now:        time.Now,
		logger:     defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}

	return h
}

func (h *RegisterAccountHandler) Execute(ctx context.Context, event RegisterAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterAccountHandler) execute(ctx context.Context, event RegisterAccountMessage) error {
	acct := &Account{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.runner.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := h.hasher.Hash(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		username := getUsername(event.Username, event.Email)

		key, err := NewRegistrationKey(username)
		if err != nil {
			return err
		}

		group, err := h.groups.GetByNameTx(ctx, tx, event.AuthGroup)
		if err != nil {
			return err
		}

		acct.Username = username
		acct.Email = event.Email
		acct.PasswordHash = hash
		acct.AuthGroupID = group.ID
		acct.AuthGroupName = group.Name
		acct.RegistrationKey = key
		acct.KeyExpiresOn = h.now().Add(h.expiration)

		if event.UseHashid {
			if id, err := hashid.NewUUID(username); err == nil {
				acct.ID = id
			}
		}

		if acct, err = h.accounts.RegisterTx(ctx, tx, acct); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "account registration transaction failed")
	}

	if err := h.mailer.SendActivationKey(ctx, acct.Email, acct.RegistrationKey); err != nil {
		h.logger.Warn("failed to dispatch activation key",
			"username", acct.Username,
			"email", acct.Email,
			"error", err,
		)
	}

	return nil
}

func getUsername(username, email string) string {
	if username != "" {
		return username
	}

	if strings.Contains(email, "@") {
		username = strings.Split(email, "@")[0]
	}

	return username
}
