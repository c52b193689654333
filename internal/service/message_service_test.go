package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/platform/logger"
	"github.com/phrazzld/taskie-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMessageService(t *testing.T, f *fixture) MessageService {
	t.Helper()
	log, _ := logger.NewTestLogger(t)
	svc, err := NewMessageService(f.stores.Messages, f.stores.Tasks, f.stores.Users, log)
	require.NoError(t, err)
	return svc
}

func TestSendMessage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := newMessageService(t, f)
	requester := f.user("req@example.com", domain.RoleRequester)
	tasker := f.user("tasker@example.com", domain.RoleTasker)
	task := f.task(requester, "Lắp ráp bàn ghế", 100)

	msg, err := svc.Send(ctx, tasker.ID, SendMessageParams{
		TaskID:     task.ID,
		ReceiverID: requester.ID,
		Content:    "  Tôi có thể giúp  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Tôi có thể giúp", msg.Content)
	assert.False(t, msg.IsRead)
	require.NotNil(t, msg.Task)
	assert.Equal(t, "Lắp ráp bàn ghế", msg.Task.Title)
	require.NotNil(t, msg.Sender)
	assert.Equal(t, tasker.ID, msg.Sender.ID)
	require.NotNil(t, msg.Receiver)
	assert.Equal(t, requester.ID, msg.Receiver.ID)

	n, err := f.stores.Messages.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSendMessageValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := newMessageService(t, f)
	requester := f.user("req@example.com", domain.RoleRequester)
	tasker := f.user("tasker@example.com", domain.RoleTasker)
	task := f.task(requester, "Task", 100)

	_, err := svc.Send(ctx, tasker.ID, SendMessageParams{TaskID: task.ID, ReceiverID: requester.ID, Content: " "})
	assert.Equal(t, "Please provide taskId, receiverId, and content", err.Error())

	_, err = svc.Send(ctx, tasker.ID, SendMessageParams{TaskID: uuid.New(), ReceiverID: requester.ID, Content: "hi"})
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	_, err = svc.Send(ctx, tasker.ID, SendMessageParams{TaskID: task.ID, ReceiverID: uuid.New(), Content: "hi"})
	assert.ErrorIs(t, err, ErrReceiverNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.Send(ctx, tasker.ID, SendMessageParams{TaskID: task.ID, ReceiverID: tasker.ID, Content: "hi"})
	assert.ErrorIs(t, err, domain.ErrValidation, "messaging yourself is rejected")
}

func TestGetConversationsGroupsByTaskAndCounterpart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := newMessageService(t, f)

	me := f.user("me@example.com", domain.RoleRequester)
	alice := f.user("alice@example.com", domain.RoleTasker)
	bob := f.user("bob@example.com", domain.RoleTasker)
	t1 := f.task(me, "Task one", 100)
	t2 := f.task(me, "Task two", 100)

	f.message(t1, alice, me, "a1", minutes(1))
	f.message(t1, me, alice, "a2", minutes(2))
	f.message(t1, alice, me, "a3", minutes(3))
	f.message(t1, bob, me, "b1", minutes(4))
	f.message(t2, alice, me, "c1", minutes(5))

	convs, err := svc.GetConversations(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, convs, 3)

	// Ordered by most recent message.
	assert.Equal(t, "c1", convs[0].LastMessage)
	assert.Equal(t, t2.ID, convs[0].TaskID)
	assert.Equal(t, alice.ID, convs[0].OtherUser.ID)

	assert.Equal(t, "b1", convs[1].LastMessage)
	assert.Equal(t, bob.ID, convs[1].OtherUser.ID)

	assert.Equal(t, "a3", convs[2].LastMessage)
	assert.Equal(t, minutes(3), convs[2].LastMessageTime)
	assert.Equal(t, "Task one", convs[2].TaskTitle)
	assert.Equal(t, domain.TaskStatusPending, convs[2].TaskStatus)
	assert.Equal(t, alice.FullName, convs[2].OtherUser.FullName)
	assert.Equal(t, int64(2), convs[2].UnreadCount, "only messages alice sent me count")

	keys := map[string]bool{}
	for _, c := range convs {
		key := domain.ConversationKey(c.TaskID, c.OtherUser.ID)
		assert.False(t, keys[key], "conversation %s listed twice", key)
		keys[key] = true
	}
}

func TestGetConversationsCountsFromEachSide(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := newMessageService(t, f)

	requester := f.user("req@example.com", domain.RoleRequester)
	tasker := f.user("tasker@example.com", domain.RoleTasker)
	task := f.task(requester, "Task", 100)

	f.message(task, tasker, requester, "hello", minutes(1))
	reply := f.message(task, requester, tasker, "hi", minutes(2))
	f.message(task, requester, tasker, "are you there?", minutes(3))
	require.NoError(t, f.stores.Messages.MarkRead(ctx, reply.ID))

	mine, err := svc.GetConversations(ctx, requester.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, int64(1), mine[0].UnreadCount)
	assert.Equal(t, "are you there?", mine[0].LastMessage, "the latest message wins regardless of sender")

	theirs, err := svc.GetConversations(ctx, tasker.ID)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, int64(1), theirs[0].UnreadCount)
	assert.Equal(t, requester.ID, theirs[0].OtherUser.ID)
}

func TestGetConversationsSkipsDeletedTasks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := newMessageService(t, f)

	requester := f.user("req@example.com", domain.RoleRequester)
	tasker := f.user("tasker@example.com", domain.RoleTasker)
	kept := f.task(requester, "Kept", 100)
	gone := f.task(requester, "Gone", 100)

	f.message(kept, tasker, requester, "kept", minutes(1))
	f.message(gone, tasker, requester, "gone", minutes(2))
	require.NoError(t, f.stores.Tasks.Delete(ctx, gone.ID))

	convs, err := svc.GetConversations(ctx, requester.ID)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, kept.ID, convs[0].TaskID)
	assert.Equal(t, 1, f.db.Calls("Messages.CountUnread"), "no unread count for dropped conversations")
}

func TestGetConversationsEmpty(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := newMessageService(t, f)
	loner := f.user("loner@example.com", domain.RoleTasker)

	convs, err := svc.GetConversations(context.Background(), loner.ID)
	require.NoError(t, err)
	assert.NotNil(t, convs)
	assert.Empty(t, convs)
}

func TestGetConversationsUnreadCountFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := newMessageService(t, f)
	requester := f.user("req@example.com", domain.RoleRequester)
	tasker := f.user("tasker@example.com", domain.RoleTasker)
	f.message(f.task(requester, "Task", 100), tasker, requester, "hi", minutes(1))

	boom := errors.New("boom")
	f.db.Fail("Messages.CountUnread", boom)

	_, err := svc.GetConversations(context.Background(), requester.ID)
	assert.ErrorIs(t, err, boom)
}

func TestGetConversationMarksIncomingAsRead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	log, logs := logger.NewTestLogger(t)
	svc, err := NewMessageService(f.stores.Messages, f.stores.Tasks, f.stores.Users, log)
	require.NoError(t, err)

	requester := f.user("req@example.com", domain.RoleRequester)
	tasker := f.user("tasker@example.com", domain.RoleTasker)
	other := f.user("other@example.com", domain.RoleTasker)
	task := f.task(requester, "Task", 100)

	f.message(task, tasker, requester, "one", minutes(1))
	outgoing := f.message(task, requester, tasker, "two", minutes(2))
	f.message(task, tasker, requester, "three", minutes(3))
	f.message(task, other, requester, "unrelated", minutes(4))

	detail, err := svc.GetConversation(ctx, requester.ID, task.ID, tasker.ID)
	require.NoError(t, err)
	require.Len(t, detail.Messages, 3)
	assert.Equal(t, "one", detail.Messages[0].Content, "oldest first")
	assert.Equal(t, "three", detail.Messages[2].Content)
	require.NotNil(t, detail.Task)
	assert.Equal(t, task.ID, detail.Task.ID)
	require.NotNil(t, detail.Task.Requester)

	unread, err := f.stores.Messages.CountUnread(ctx, task.ID, tasker.ID, requester.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)

	mine, err := f.stores.Messages.GetByID(ctx, outgoing.ID)
	require.NoError(t, err)
	assert.False(t, mine.IsRead, "messages the caller sent stay unread")

	fromOther, err := f.stores.Messages.CountUnread(ctx, task.ID, other.ID, requester.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fromOther, "other conversations are untouched")

	again, err := svc.GetConversation(ctx, requester.ID, task.ID, tasker.ID)
	require.NoError(t, err)
	require.Len(t, again.Messages, len(detail.Messages))
	for i, m := range detail.Messages {
		assert.Equal(t, m.ID, again.Messages[i].ID, "same messages in the same order")
	}
	assert.Equal(t, 2, f.db.Calls("Messages.MarkConversationRead"))

	entries, err := logs.Entries()
	require.NoError(t, err)
	var marked []any
	for _, e := range entries {
		if e["msg"] == "conversation fetched" {
			marked = append(marked, e["marked_read"])
		}
	}
	assert.Equal(t, []any{float64(2), float64(0)}, marked, "a repeat fetch marks nothing")
}

func TestGetConversationIsScopedToCaller(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := newMessageService(t, f)

	requester := f.user("req@example.com", domain.RoleRequester)
	tasker := f.user("tasker@example.com", domain.RoleTasker)
	outsider := f.user("outsider@example.com", domain.RoleTasker)
	task := f.task(requester, "Task", 100)
	f.message(task, tasker, requester, "private", minutes(1))

	detail, err := svc.GetConversation(ctx, outsider.ID, task.ID, tasker.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Messages)

	unread, err := f.stores.Messages.CountUnread(ctx, task.ID, tasker.ID, requester.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread, "an outsider cannot mark the pair's messages read")
}

func TestGetConversationForDeletedTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := newMessageService(t, f)

	requester := f.user("req@example.com", domain.RoleRequester)
	tasker := f.user("tasker@example.com", domain.RoleTasker)
	task := f.task(requester, "Task", 100)
	f.message(task, tasker, requester, "hi", minutes(1))
	require.NoError(t, f.stores.Tasks.Delete(ctx, task.ID))

	detail, err := svc.GetConversation(ctx, requester.ID, task.ID, tasker.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Messages, 1)
	assert.Nil(t, detail.Task)
}

func TestMarkRead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := newMessageService(t, f)

	requester := f.user("req@example.com", domain.RoleRequester)
	tasker := f.user("tasker@example.com", domain.RoleTasker)
	msg := f.message(f.task(requester, "Task", 100), tasker, requester, "hi", minutes(1))

	err := svc.MarkRead(ctx, tasker.ID, msg.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, "Not authorized to mark this message as read", err.Error())

	assert.ErrorIs(t, svc.MarkRead(ctx, requester.ID, uuid.New()), store.ErrMessageNotFound)

	require.NoError(t, svc.MarkRead(ctx, requester.ID, msg.ID))
	stored, err := f.stores.Messages.GetByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsRead)
}
