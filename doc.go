// Package accounts implements the account lifecycle core: registration with
// time-bounded activation keys, login/logout with failed-attempt counting, and
// an automatically expiring lockout window.
//
// Account lifecycle:
//   - Accounts are created pending and carry a single-use registration key
//     with an expiration deadline. Activation succeeds only while the key is
//     valid; a late attempt marks the account expired for good.
//   - AccountStateMachine centralizes activation, login, logout, and the lock
//     window. Every mutating transition writes through to the store before
//     returning, so staleness is bounded to the duration of one call.
//   - Failed logins past the configured tolerance lock the account until the
//     lockout period elapses. The lock is time-windowed: reads re-evaluate it
//     against the clock and it self-clears without an explicit unlock.
//
// Persistence:
//   - Records live in Bun-backed repositories behind a RepositoryManager.
//     Failed-attempt counting runs inside RunInTx so concurrent attempts
//     cannot under-count.
//
// Extension points:
//   - PasswordHasher, ActivationMailer, and Authorizer are small interfaces
//     with conservative defaults; swap them to integrate real delivery or
//     policy evaluation without touching the lifecycle rules.
package accounts
