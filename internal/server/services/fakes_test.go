package services

import (
	"bytes"
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/dbx"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/config"
	"github.com/dmitrijs2005/gatekeeper/internal/server/mail"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/pendingusers"
	tokenrepo "github.com/dmitrijs2005/gatekeeper/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/gatekeeper/internal/server/tokens"
)

// store backs all fake repositories. It ignores transactions; sqlmock
// checks that begin/commit/rollback happen.
type store struct {
	mu      sync.Mutex
	users   map[string]*models.User
	pending map[string]*models.PendingUser
	tokens  []*models.Token
	findErr error
}

func newStore() *store {
	return &store{users: map[string]*models.User{}, pending: map[string]*models.PendingUser{}}
}

type fakeUsers struct{ s *store }

func (f fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, x := range f.s.users {
		if x.UserName == u.UserName || x.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	f.s.users[u.ID] = u
	return u, nil
}

func (f fakeUsers) FindCredentialByEmail(_ context.Context, email string) (*models.Credential, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.findErr != nil {
		return nil, f.s.findErr
	}
	for _, u := range f.s.users {
		if u.Email == email {
			return &models.Credential{UserID: u.ID, Email: u.Email, Digest: u.Password, Salt: u.Salt}, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if u, ok := f.s.users[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f fakeUsers) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, u := range f.s.users {
		if u.UserName == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type fakeTokens struct{ s *store }

func (f fakeTokens) Create(_ context.Context, t *models.Token) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.tokens = append(f.s.tokens, t)
	return nil
}

func (f fakeTokens) Find(_ context.Context, value []byte, now time.Time) (*models.Token, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, t := range f.s.tokens {
		if bytes.Equal(t.Value, value) && t.ValidAt(now) {
			return t, nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakePending struct{ s *store }

func (f fakePending) Create(_ context.Context, p *models.PendingUser) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.pending[p.ID] = p
	return nil
}

func (f fakePending) Find(_ context.Context, id string) (*models.PendingUser, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if p, ok := f.s.pending[id]; ok {
		return p, nil
	}
	return nil, common.ErrorNotFound
}

func (f fakePending) Delete(_ context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	delete(f.s.pending, id)
	return nil
}

func (f fakePending) DeleteByUsernameOrEmail(_ context.Context, username, email string) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for id, p := range f.s.pending {
		if p.UserName == username || p.Email == email {
			delete(f.s.pending, id)
			n++
		}
	}
	return n, nil
}

type fakeRepoManager struct{ s *store }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error  { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository               { return fakeUsers{m.s} }
func (m *fakeRepoManager) Tokens(dbx.DBTX) tokenrepo.Repository          { return fakeTokens{m.s} }
func (m *fakeRepoManager) PendingUsers(dbx.DBTX) pendingusers.Repository { return fakePending{m.s} }

// xorHasher is a cheap deterministic stand-in for the Argon2id pool.
type xorHasher struct {
	err   error
	delay time.Duration
	calls int
	mu    sync.Mutex
}

func (h *xorHasher) Hash(_ context.Context, password, salt []byte) ([]byte, error) {
	h.mu.Lock()
	h.calls++
	h.mu.Unlock()
	if h.delay > 0 {
		time.Sleep(h.delay)
	}
	if h.err != nil {
		return nil, h.err
	}
	return xorDigest(password, salt), nil
}

func xorDigest(password, salt []byte) []byte {
	out := make([]byte, models.DigestSize)
	for i := range out {
		out[i] = password[i] ^ salt[i] ^ 0x5c
	}
	return out
}

type env struct {
	svc    *AuthService
	mock   sqlmock.Sqlmock
	store  *store
	hasher *xorHasher
	outbox *mail.Outbox
	sleeps []time.Duration
	now    time.Time
}

const testPadding = 500 * time.Millisecond

func newEnv(t *testing.T) *env {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("sql expectations: %v", err)
		}
		db.Close()
	})

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SignInPadding = testPadding
	cfg.PublicURL = "https://gk.example"

	e := &env{
		mock:   mock,
		store:  newStore(),
		hasher: &xorHasher{},
		outbox: &mail.Outbox{},
		now:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	policy := tokens.NewPolicy(cfg.TokenTTL)
	e.svc = NewAuthService(db, &fakeRepoManager{e.store}, e.hasher, policy, e.outbox, cfg, logging.Nop())
	e.svc.now = func() time.Time { return e.now }
	e.svc.sleep = func(_ context.Context, d time.Duration) { e.sleeps = append(e.sleeps, d) }
	return e
}

func (e *env) addUser(id, username, email string, passwordHash []byte) {
	salt := bytes.Repeat([]byte{0x33}, models.SaltSize)
	e.store.users[id] = &models.User{
		ID: id, UserName: username, Email: email,
		Password: xorDigest(passwordHash, salt), Salt: salt, VerifiedEmail: true,
	}
}
