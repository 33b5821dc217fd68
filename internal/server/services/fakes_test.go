package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/shopauth/internal/common"
	"github.com/dmitrijs2005/shopauth/internal/dbx"
	"github.com/dmitrijs2005/shopauth/internal/logging"
	"github.com/dmitrijs2005/shopauth/internal/server/auth"
	"github.com/dmitrijs2005/shopauth/internal/server/models"
	"github.com/dmitrijs2005/shopauth/internal/server/repositories/attachments"
	"github.com/dmitrijs2005/shopauth/internal/server/repositories/users"
)

var errBoom = errors.New("boom")

// memUsers is an in-memory users.Repository keyed by email.
type memUsers struct {
	mu      sync.Mutex
	byEmail map[string]*models.User

	createErr error
	getErr    error
	creates   int
	// raceOnCreate makes Create insert the row as a competing writer would
	// and then report the unique violation.
	raceOnCreate *models.User
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: map[string]*models.User{}}
}

func (m *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.raceOnCreate != nil {
		m.byEmail[m.raceOnCreate.Email] = m.raceOnCreate
		m.raceOnCreate = nil
		return nil, common.ErrorConflict
	}
	if m.createErr != nil {
		return nil, m.createErr
	}
	if _, ok := m.byEmail[u.Email]; ok {
		return nil, common.ErrorConflict
	}
	c := *u
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.byEmail[u.Email] = &c
	out := c
	return &out, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.byEmail {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeAttachments struct {
	out *models.Attachments
	err error
}

func (f *fakeAttachments) Load(context.Context, string) (*models.Attachments, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.out == nil {
		return &models.Attachments{}, nil
	}
	return f.out, nil
}

type fakeRepoManager struct {
	u *memUsers
	a *fakeAttachments
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository             { return m.u }
func (m *fakeRepoManager) Attachments(dbx.DBTX) attachments.Repository { return m.a }

// plainHasher keeps tests fast; the argon2id hasher has its own tests.
type plainHasher struct{ hashErr error }

func (h plainHasher) Hash(p string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "plain$" + p, nil
}

func (h plainHasher) Verify(p, encoded string) (bool, error) {
	if !strings.HasPrefix(encoded, "plain$") {
		return false, errors.New("bad hash")
	}
	return encoded == "plain$"+p, nil
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fixture struct {
	svc    *UserService
	users  *memUsers
	att    *fakeAttachments
	mock   sqlmock.Sqlmock
	issuer *auth.Issuer
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock := newSQLMockDB(t)
	f := &fixture{
		users: newMemUsers(),
		att:   &fakeAttachments{},
		mock:  mock,
		now:   time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	f.issuer = auth.NewIssuer([]byte("k"), time.Hour, 7*24*time.Hour).WithClock(func() time.Time { return f.now })

	rm := &fakeRepoManager{u: f.users, a: f.att}
	f.svc = NewUserService(db, rm, f.issuer, plainHasher{}, "", logging.Nop())

	n := 0
	f.svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return f
}

func (f *fixture) seed(u *models.User) {
	f.users.byEmail[u.Email] = u
}

func strPtr(s string) *string { return &s }
