package accounts

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AuthGroup is a named category accounts belong to; policy evaluation maps
// groups onto resources elsewhere. Groups are created at setup and never
// updated afterwards.
type AuthGroup struct {
	bun.BaseModel `bun:"table:authgroups,alias:ag"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Name          string `bun:"name,notnull,unique" json:"name,omitempty"`
}

// Validate checks the authgroup record at the store boundary
func (g *AuthGroup) Validate() error {
	return validation.ValidateStruct(g,
		validation.Field(&g.Name, validation.Required),
	)
}

// Account is the account model. The lifecycle flags model a composite state:
// pending→activated (or pending→expired, terminal), logged out⇄logged in,
// and unlocked⇄locked until LockedUntil passes.
type Account struct {
	bun.BaseModel   `bun:"table:accounts,alias:acct"`
	ID              uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username        string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email           string     `bun:"email,notnull" json:"email,omitempty"`
	PasswordHash    string     `bun:"password_hash,notnull" json:"password_hash,omitempty"`
	AuthGroupID     int64      `bun:"authgroup_id,notnull" json:"authgroup_id,omitempty"`
	AuthGroup       *AuthGroup `bun:"rel:belongs-to,join:authgroup_id=id" json:"-"`
	AuthGroupName   string     `bun:"-" json:"authgroup,omitempty"`
	Activated       bool       `bun:"activated" json:"activated,omitempty"`
	Expired         bool       `bun:"expired" json:"expired,omitempty"`
	LoggedIn        bool       `bun:"logged_in" json:"logged_in,omitempty"`
	FailedLogins    int        `bun:"failed_logins" json:"failed_logins,omitempty"`
	Locked          bool       `bun:"locked" json:"locked,omitempty"`
	LockedUntil     *time.Time `bun:"locked_until,nullzero" json:"locked_until,omitempty"`
	RegistrationKey string     `bun:"registration_key,notnull" json:"registration_key,omitempty"`
	KeyExpiresOn    time.Time  `bun:"key_expires_on,notnull" json:"key_expires_on,omitempty"`
	CreatedAt       *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt       *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Validate checks the account record at the store boundary. Business methods
// never re-validate; deserialization and persistence own field integrity.
func (a *Account) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Username, validation.Required),
		validation.Field(&a.Email, validation.Required, is.Email),
		validation.Field(&a.PasswordHash, validation.Required),
		validation.Field(&a.AuthGroupID, validation.Required),
		validation.Field(&a.RegistrationKey, validation.Required),
		validation.Field(&a.KeyExpiresOn, validation.Required),
	)
}

// IsActive reports whether the account completed activation
func (a *Account) IsActive() bool {
	return a.Activated
}

// IsExpired reports whether the registration key lapsed before activation
func (a *Account) IsExpired() bool {
	return a.Expired
}

// IsLoggedIn reports whether the last login succeeded without a logout since
func (a *Account) IsLoggedIn() bool {
	return a.LoggedIn
}

// IsLockedAt reports whether the account is locked at the given instant.
// A lock whose window has elapsed is cleared in memory only; the next
// write-through (typically the next login attempt) persists the cleared
// state, so pure reads never mutate the store.
func (a *Account) IsLockedAt(now time.Time) bool {
	if !a.Locked {
		return false
	}
	if a.LockedUntil == nil || now.After(*a.LockedUntil) {
		a.Locked = false
		a.LockedUntil = nil
		return false
	}
	return true
}

// KeyValidAt reports whether the registration key is still usable. The
// deadline itself belongs to the expired side: the key is valid strictly
// before KeyExpiresOn.
func (a *Account) KeyValidAt(now time.Time) bool {
	return now.Before(a.KeyExpiresOn)
}
