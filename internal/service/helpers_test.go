package service

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/mocks"
	"github.com/phrazzld/taskie-api/internal/store"
	"github.com/stretchr/testify/require"
)

var testDOB = time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)

// fixture bundles an in-memory database with helpers to populate it.
type fixture struct {
	t      *testing.T
	db     *mocks.MemoryDB
	stores store.Stores
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := mocks.NewMemoryDB()
	return &fixture{t: t, db: db, stores: db.Stores()}
}

func (f *fixture) user(email string, role domain.Role) *domain.User {
	f.t.Helper()
	u, err := domain.NewUser("User "+email, testDOB, email, "", "secret1")
	require.NoError(f.t, err)
	u.HashedPassword = "hashed:secret1"
	u.Password = ""
	u.CurrentRole = role
	require.NoError(f.t, f.stores.Users.Create(context.Background(), u))
	return u
}

func (f *fixture) category(name string, fee float64) *domain.JobCategory {
	f.t.Helper()
	c, err := domain.NewJobCategory(name, fee, "")
	require.NoError(f.t, err)
	require.NoError(f.t, f.stores.Categories.Create(context.Background(), c))
	return c
}

func (f *fixture) task(requester *domain.User, title string, price float64) *domain.Task {
	f.t.Helper()
	t, err := domain.NewTask(
		requester.ID,
		title,
		"Description of "+title,
		"Dọn dẹp nhà cửa",
		[]string{"/uploads/tasks/a.jpg", "/uploads/tasks/b.jpg"},
		domain.TaskLocation{Province: "Thành phố Huế", Ward: "Phường Phú Hòa"},
		price,
		10000,
		time.Now().Add(72*time.Hour),
	)
	require.NoError(f.t, err)
	require.NoError(f.t, f.stores.Tasks.Create(context.Background(), t))
	return t
}

func (f *fixture) message(task *domain.Task, from, to *domain.User, content string, at time.Time) *domain.Message {
	f.t.Helper()
	m, err := domain.NewMessage(task.ID, from.ID, to.ID, content)
	require.NoError(f.t, err)
	m.CreatedAt = at
	m.UpdatedAt = at
	require.NoError(f.t, f.stores.Messages.Create(context.Background(), m))
	return m
}

func ptr[T any](v T) *T { return &v }

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func minutes(n int) time.Time { return baseTime.Add(time.Duration(n) * time.Minute) }
