//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/platform/postgres"
	"github.com/phrazzld/taskie-api/internal/store"
	"github.com/phrazzld/taskie-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertUser(ctx context.Context, t *testing.T, users store.UserStore, email string, role domain.Role) *domain.User {
	t.Helper()
	u, err := domain.NewUser("User "+email, time.Date(1995, 5, 5, 0, 0, 0, 0, time.UTC), email, "", "secret1")
	require.NoError(t, err)
	u.Password = ""
	u.HashedPassword = "$2a$10$integrationhash"
	u.CurrentRole = role
	require.NoError(t, users.Create(ctx, u))
	return u
}

func insertTask(
	ctx context.Context,
	t *testing.T,
	tasks store.TaskStore,
	requester uuid.UUID,
	title string,
	price float64,
	createdAt time.Time,
) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(requester, title, "description of "+title, "Dọn dẹp",
		[]string{"/uploads/tasks/1.jpg", "/uploads/tasks/2.jpg"},
		domain.TaskLocation{Province: "Thành phố Huế", Ward: "Phường Phú Hòa"},
		price, 10000, createdAt.Add(72*time.Hour))
	require.NoError(t, err)
	task.CreatedAt, task.UpdatedAt = createdAt, createdAt
	require.NoError(t, tasks.Create(ctx, task))
	return task
}

func TestPostgresUserStore_Integration(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		stores := postgres.NewStores(tx, nil)

		u := insertUser(ctx, t, stores.Users, "integration-"+uuid.NewString()+"@example.com", domain.RoleNone)

		byEmail, err := stores.Users.GetByEmail(ctx, u.Email)
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)
		assert.Empty(t, byEmail.Phone)
		assert.Equal(t, domain.RoleNone, byEmail.CurrentRole)

		dup, err := domain.NewUser("Dup", u.DateOfBirth, u.Email, "", "secret1")
		require.NoError(t, err)
		dup.HashedPassword = "x"
		assert.ErrorIs(t, stores.Users.Create(ctx, dup), store.ErrEmailExists)

		byEmail.CurrentRole = domain.RoleTasker
		byEmail.AvatarURL = "/uploads/avatars/a.png"
		require.NoError(t, stores.Users.Update(ctx, byEmail))

		reloaded, err := stores.Users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleTasker, reloaded.CurrentRole)
		assert.Equal(t, "/uploads/avatars/a.png", reloaded.AvatarURL)

		_, err = stores.Users.GetByPhone(ctx, "0999999999")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}

func TestPostgresTaskStore_Integration(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		stores := postgres.NewStores(tx, nil)
		requester := insertUser(ctx, t, stores.Users, "req-"+uuid.NewString()+"@example.com", domain.RoleRequester)

		base := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
		older := insertTask(ctx, t, stores.Tasks, requester.ID, "Aircon repair - Sửa điều hòa", 300000, base)
		newer := insertTask(ctx, t, stores.Tasks, requester.ID, "Dọn nhà cuối tuần", 150000, base.Add(time.Minute))

		mine, err := stores.Tasks.List(ctx, domain.TaskFilter{RequesterID: requester.ID})
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, newer.ID, mine[0].ID, "newest first")
		require.NotNil(t, mine[0].Requester)
		assert.Equal(t, requester.FullName, mine[0].Requester.FullName)

		maxPrice := 200000.0
		cheap, err := stores.Tasks.List(ctx, domain.TaskFilter{RequesterID: requester.ID, MaxPrice: &maxPrice})
		require.NoError(t, err)
		require.Len(t, cheap, 1)
		assert.Equal(t, newer.ID, cheap[0].ID)

		byKeyword, err := stores.Tasks.List(ctx, domain.TaskFilter{RequesterID: requester.ID, Keyword: "AIRCON"})
		require.NoError(t, err)
		require.Len(t, byKeyword, 1)
		assert.Equal(t, older.ID, byKeyword[0].ID)

		older.Status = domain.TaskStatusCompleted
		older.PaymentProofURL = "/uploads/payments/p.jpg"
		require.NoError(t, stores.Tasks.Update(ctx, older))

		completed, err := stores.Tasks.Count(ctx, store.TaskCountFilter{Status: domain.TaskStatusCompleted})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, completed, int64(1))

		require.NoError(t, stores.Tasks.Delete(ctx, newer.ID))
		_, err = stores.Tasks.GetByID(ctx, newer.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestPostgresMessageAndFavoriteStores_Integration(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		stores := postgres.NewStores(tx, nil)
		requester := insertUser(ctx, t, stores.Users, "r-"+uuid.NewString()+"@example.com", domain.RoleRequester)
		tasker := insertUser(ctx, t, stores.Users, "t-"+uuid.NewString()+"@example.com", domain.RoleTasker)
		task := insertTask(ctx, t, stores.Tasks, requester.ID, "Giao hàng", 50000, time.Now().UTC())

		base := time.Now().UTC().Truncate(time.Millisecond)
		for i, from := range []*domain.User{tasker, requester, tasker} {
			to := requester
			if from == requester {
				to = tasker
			}
			m, err := domain.NewMessage(task.ID, from.ID, to.ID, "message")
			require.NoError(t, err)
			m.CreatedAt = base.Add(time.Duration(i) * time.Second)
			require.NoError(t, stores.Messages.Create(ctx, m))
		}

		conversation, err := stores.Messages.ListConversation(ctx, task.ID, requester.ID, tasker.ID)
		require.NoError(t, err)
		require.Len(t, conversation, 3)
		assert.True(t, conversation[0].CreatedAt.Before(conversation[2].CreatedAt), "oldest first")

		unread, err := stores.Messages.CountUnread(ctx, task.ID, tasker.ID, requester.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), unread)

		marked, err := stores.Messages.MarkConversationRead(ctx, task.ID, tasker.ID, requester.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), marked)

		fav, err := domain.NewFavorite(tasker.ID, task.ID)
		require.NoError(t, err)
		require.NoError(t, stores.Favorites.Create(ctx, fav))
		assert.ErrorIs(t, stores.Favorites.Create(ctx, fav), store.ErrFavoriteExists)
	})
}

func TestPostgresFavoriteStore_DeletedTaskIsNull(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		stores := postgres.NewStores(tx, nil)
		requester := insertUser(ctx, t, stores.Users, "r-"+uuid.NewString()+"@example.com", domain.RoleRequester)
		taskerID := uuid.New()
		task := insertTask(ctx, t, stores.Tasks, requester.ID, "Làm vườn", 80000, time.Now().UTC())

		fav, err := domain.NewFavorite(taskerID, task.ID)
		require.NoError(t, err)
		require.NoError(t, stores.Favorites.Create(ctx, fav))
		require.NoError(t, stores.Tasks.Delete(ctx, task.ID))

		favorites, err := stores.Favorites.ListByTasker(ctx, taskerID)
		require.NoError(t, err)
		require.Len(t, favorites, 1)
		assert.Nil(t, favorites[0].Task)
	})
}
