package accounts_test

import (
	"context"
	"database/sql"
	"sync"

	"github.com/goliatone/go-accounts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockMailer implements accounts.ActivationMailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendActivationKey(ctx context.Context, email, registrationKey string) error {
	args := m.Called(ctx, email, registrationKey)
	return args.Error(0)
}

// MockAccountStore implements accounts.AccountStore
type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) Exists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountStore) ExistsTx(ctx context.Context, tx bun.IDB, username string) (bool, error) {
	args := m.Called(ctx, tx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountStore) GetByUsername(ctx context.Context, username string) (*accounts.Account, error) {
	args := m.Called(ctx, username)
	acct, _ := args.Get(0).(*accounts.Account)
	return acct, args.Error(1)
}

func (m *MockAccountStore) GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*accounts.Account, error) {
	args := m.Called(ctx, tx, username)
	acct, _ := args.Get(0).(*accounts.Account)
	return acct, args.Error(1)
}

func (m *MockAccountStore) Register(ctx context.Context, record *accounts.Account) (*accounts.Account, error) {
	args := m.Called(ctx, record)
	acct, _ := args.Get(0).(*accounts.Account)
	return acct, args.Error(1)
}

func (m *MockAccountStore) RegisterTx(ctx context.Context, tx bun.IDB, record *accounts.Account) (*accounts.Account, error) {
	args := m.Called(ctx, tx, record)
	acct, _ := args.Get(0).(*accounts.Account)
	return acct, args.Error(1)
}

func (m *MockAccountStore) Persist(ctx context.Context, record *accounts.Account) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAccountStore) PersistTx(ctx context.Context, tx bun.IDB, record *accounts.Account) error {
	args := m.Called(ctx, tx, record)
	return args.Error(0)
}

// passthroughRunner runs the transactional closure directly, standing in for
// a real store transaction in unit tests.
type passthroughRunner struct {
	err error
}

func (r passthroughRunner) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	if r.err != nil {
		return r.err
	}
	return f(ctx, bun.Tx{})
}

// memStore is an in-memory AccountStore used for stateful sequences. Reads
// hand out copies so callers see a fresh load, and writes honor the same
// column rules as the real store: username, registration key, and key expiry
// never change after creation.
type memStore struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*accounts.Account
	byName  map[string]uuid.UUID
	failErr error
}

func newMemStore(accts ...*accounts.Account) *memStore {
	s := &memStore{
		byID:   map[uuid.UUID]*accounts.Account{},
		byName: map[string]uuid.UUID{},
	}
	for _, a := range accts {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		s.byID[a.ID] = cloneAccount(a)
		s.byName[a.Username] = a.ID
	}
	return s
}

func cloneAccount(a *accounts.Account) *accounts.Account {
	c := *a
	if a.LockedUntil != nil {
		until := *a.LockedUntil
		c.LockedUntil = &until
	}
	return &c
}

func (s *memStore) Exists(ctx context.Context, username string) (bool, error) {
	return s.ExistsTx(ctx, nil, username)
}

func (s *memStore) ExistsTx(_ context.Context, _ bun.IDB, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return false, s.failErr
	}
	_, ok := s.byName[username]
	return ok, nil
}

func (s *memStore) GetByUsername(ctx context.Context, username string) (*accounts.Account, error) {
	return s.GetByUsernameTx(ctx, nil, username)
}

func (s *memStore) GetByUsernameTx(_ context.Context, _ bun.IDB, username string) (*accounts.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return nil, s.failErr
	}
	id, ok := s.byName[username]
	if !ok {
		return nil, accounts.ErrAccountNotFound
	}
	return cloneAccount(s.byID[id]), nil
}

func (s *memStore) Register(ctx context.Context, record *accounts.Account) (*accounts.Account, error) {
	return s.RegisterTx(ctx, nil, record)
}

func (s *memStore) RegisterTx(_ context.Context, _ bun.IDB, record *accounts.Account) (*accounts.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return nil, s.failErr
	}
	if _, ok := s.byName[record.Username]; ok {
		return nil, accounts.ErrAccountExists
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	s.byID[record.ID] = cloneAccount(record)
	s.byName[record.Username] = record.ID
	return cloneAccount(record), nil
}

func (s *memStore) Persist(ctx context.Context, record *accounts.Account) error {
	return s.PersistTx(ctx, nil, record)
}

func (s *memStore) PersistTx(_ context.Context, _ bun.IDB, record *accounts.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	existing, ok := s.byID[record.ID]
	if !ok {
		return accounts.ErrAccountNotFound
	}
	next := cloneAccount(record)
	next.Username = existing.Username
	next.RegistrationKey = existing.RegistrationKey
	next.KeyExpiresOn = existing.KeyExpiresOn
	s.byID[record.ID] = next
	return nil
}

// stored returns the persisted row for assertions
func (s *memStore) stored(username string) *accounts.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byName[username]
	if !ok {
		return nil
	}
	return cloneAccount(s.byID[id])
}

// memGroups is an in-memory GroupStore
type memGroups struct {
	groups map[string]*accounts.AuthGroup
}

func newMemGroups(names ...string) *memGroups {
	g := &memGroups{groups: map[string]*accounts.AuthGroup{}}
	for i, name := range names {
		g.groups[name] = &accounts.AuthGroup{ID: int64(i + 1), Name: name}
	}
	return g
}

func (g *memGroups) GetByName(ctx context.Context, name string) (*accounts.AuthGroup, error) {
	return g.GetByNameTx(ctx, nil, name)
}

func (g *memGroups) GetByNameTx(_ context.Context, _ bun.IDB, name string) (*accounts.AuthGroup, error) {
	group, ok := g.groups[name]
	if !ok {
		return nil, accounts.ErrAuthGroupNotFound
	}
	return group, nil
}

func (g *memGroups) GetName(_ context.Context, id int64) (string, error) {
	for _, group := range g.groups {
		if group.ID == id {
			return group.Name, nil
		}
	}
	return "", accounts.ErrAuthGroupNotFound
}
