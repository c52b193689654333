package mocks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDBUniqueUsers(t *testing.T) {
	t.Parallel()

	stores := NewMemoryDB().Stores()
	ctx := context.Background()

	u, err := domain.NewUser("A", time.Now().AddDate(-20, 0, 0), "a@x.com", "0912345678", "secret1")
	require.NoError(t, err)
	u.HashedPassword = "hashed:secret1"
	require.NoError(t, stores.Users.Create(ctx, u))

	dup, err := domain.NewUser("B", time.Now().AddDate(-20, 0, 0), "", "0912345678", "secret1")
	require.NoError(t, err)
	dup.HashedPassword = "h"
	assert.ErrorIs(t, stores.Users.Create(ctx, dup), store.ErrPhoneExists)

	got, err := stores.Users.GetByEmail(ctx, "A@X.com")
	require.NoError(t, err)
	assert.Empty(t, got.Password)
}

func TestMemoryDBFailureInjection(t *testing.T) {
	t.Parallel()

	db := NewMemoryDB()
	boom := errors.New("boom")
	db.Fail("Messages.Count", boom)

	_, err := db.Stores().Messages.Count(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, db.Calls("Messages.Count"))

	db.Fail("Messages.Count", nil)
	n, err := db.Stores().Messages.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryDBDeletedTaskLeavesNilReference(t *testing.T) {
	t.Parallel()

	stores := NewMemoryDB().Stores()
	ctx := context.Background()
	me, other := uuid.New(), uuid.New()

	task, err := domain.NewTask(me, "t", "d", "c", []string{"a", "b"},
		domain.TaskLocation{Province: "P", Ward: "W"}, 1, 0, time.Now())
	require.NoError(t, err)
	require.NoError(t, stores.Tasks.Create(ctx, task))

	msg, err := domain.NewMessage(task.ID, other, me, "hi")
	require.NoError(t, err)
	require.NoError(t, stores.Messages.Create(ctx, msg))
	require.NoError(t, stores.Tasks.Delete(ctx, task.ID))

	msgs, err := stores.Messages.ListForUser(ctx, me)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Nil(t, msgs[0].Task)
	assert.Nil(t, msgs[0].Sender, "unknown users are not populated")
}

func TestMockPasswordHasher(t *testing.T) {
	t.Parallel()

	h := &MockPasswordHasher{}
	hashed, err := h.Hash("pw")
	require.NoError(t, err)
	assert.NoError(t, h.Compare(hashed, "pw"))
	assert.Error(t, h.Compare(hashed, "other"))
	assert.Equal(t, 2, h.CompareCallCount)
}
