package accounts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// AccountStore is the slice of the accounts repository the lifecycle services
// need: username-keyed reads and write-through persistence.
type AccountStore interface {
	Exists(ctx context.Context, username string) (bool, error)
	ExistsTx(ctx context.Context, tx bun.IDB, username string) (bool, error)
	GetByUsername(ctx context.Context, username string) (*Account, error)
	GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*Account, error)
	Register(ctx context.Context, record *Account) (*Account, error)
	RegisterTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error)
	Persist(ctx context.Context, record *Account) error
	PersistTx(ctx context.Context, tx bun.IDB, record *Account) error
}

// GroupStore resolves authgroup references by name or id
type GroupStore interface {
	GetByName(ctx context.Context, name string) (*AuthGroup, error)
	GetByNameTx(ctx context.Context, tx bun.IDB, name string) (*AuthGroup, error)
	GetName(ctx context.Context, id int64) (string, error)
}

// TransactionRunner serializes read-modify-write sequences against the store
type TransactionRunner interface {
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
}

// PasswordHasher produces and checks one-way digests of secrets
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Compare(secret, digest string) error
}

// ActivationMailer transmits the registration key to the account's email.
// Dispatch is fire-and-forget: delivery and retries are the collaborator's
// problem, callers only log failures.
type ActivationMailer interface {
	SendActivationKey(ctx context.Context, email, registrationKey string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNTS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

type zerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger adapts a zerolog.Logger to the Logger interface. The
// variadic args are interpreted as alternating key/value pairs.
func NewZerologLogger(log zerolog.Logger) Logger {
	return &zerologLogger{log: log}
}

func (l *zerologLogger) Debug(msg string, args ...any) {
	l.log.Debug().Fields(args).Msg(msg)
}

func (l *zerologLogger) Info(msg string, args ...any) {
	l.log.Info().Fields(args).Msg(msg)
}

func (l *zerologLogger) Warn(msg string, args ...any) {
	l.log.Warn().Fields(args).Msg(msg)
}

func (l *zerologLogger) Error(msg string, args ...any) {
	l.log.Error().Fields(args).Msg(msg)
}

func resolveLogger(l Logger) Logger {
	if l == nil {
		return defLogger{}
	}
	return l
}

func resolveClock(clock func() time.Time) func() time.Time {
	if clock == nil {
		return time.Now
	}
	return clock
}
