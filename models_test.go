package accounts_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
)

func TestAccountIsLockedAt(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("unlocked account", func(t *testing.T) {
		acct := &accounts.Account{}
		assert.False(t, acct.IsLockedAt(now))
	})

	t.Run("inside the window", func(t *testing.T) {
		until := now.Add(time.Minute)
		acct := &accounts.Account{Locked: true, LockedUntil: &until}
		assert.True(t, acct.IsLockedAt(now))
		assert.True(t, acct.Locked)
	})

	t.Run("at the deadline still locked", func(t *testing.T) {
		until := now
		acct := &accounts.Account{Locked: true, LockedUntil: &until}
		assert.True(t, acct.IsLockedAt(now))
	})

	t.Run("past the window clears the flag", func(t *testing.T) {
		until := now.Add(-time.Millisecond)
		acct := &accounts.Account{Locked: true, LockedUntil: &until}
		assert.False(t, acct.IsLockedAt(now))
		assert.False(t, acct.Locked)
		assert.Nil(t, acct.LockedUntil)
	})

	t.Run("locked without a deadline clears", func(t *testing.T) {
		acct := &accounts.Account{Locked: true}
		assert.False(t, acct.IsLockedAt(now))
		assert.False(t, acct.Locked)
	})
}

func TestAccountKeyValidAt(t *testing.T) {
	deadline := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	acct := &accounts.Account{KeyExpiresOn: deadline}

	assert.True(t, acct.KeyValidAt(deadline.Add(-time.Second)))
	assert.False(t, acct.KeyValidAt(deadline), "the deadline itself is expired")
	assert.False(t, acct.KeyValidAt(deadline.Add(time.Second)))
}

func TestAccountValidate(t *testing.T) {
	now := time.Now()
	acct := pendingAccount(t, now)
	assert.NoError(t, acct.Validate())

	t.Run("missing username", func(t *testing.T) {
		a := cloneAccount(acct)
		a.Username = ""
		assert.Error(t, a.Validate())
	})

	t.Run("malformed email", func(t *testing.T) {
		a := cloneAccount(acct)
		a.Email = "not-an-address"
		assert.Error(t, a.Validate())
	})

	t.Run("missing password hash", func(t *testing.T) {
		a := cloneAccount(acct)
		a.PasswordHash = ""
		assert.Error(t, a.Validate())
	})

	t.Run("missing registration key", func(t *testing.T) {
		a := cloneAccount(acct)
		a.RegistrationKey = ""
		assert.Error(t, a.Validate())
	})
}

func TestAuthGroupValidate(t *testing.T) {
	assert.NoError(t, (&accounts.AuthGroup{Name: "user"}).Validate())
	assert.Error(t, (&accounts.AuthGroup{}).Validate())
}
