package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func send(t *testing.T, api *testAPI, from, to *domain.User, task *domain.Task, content string) *domain.Message {
	t.Helper()
	rec := api.do(http.MethodPost, "/api/messages", from, SendMessageRequest{
		TaskID:     task.ID.String(),
		ReceiverID: to.ID.String(),
		Content:    content,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	msg := decodeData[domain.Message](t, rec)
	return &msg
}

func TestSendMessage(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	requester := api.user("req@example.com", domain.RoleRequester)
	tasker := api.user("tasker@example.com", domain.RoleTasker)
	task := api.task(requester, "Sửa ống nước", 250000)

	msg := send(t, api, tasker, requester, task, "Tôi có thể làm ngày mai")
	assert.Equal(t, tasker.ID, msg.SenderID)
	assert.False(t, msg.IsRead)
	require.NotNil(t, msg.Task)
	assert.Equal(t, "Sửa ống nước", msg.Task.Title)
	require.NotNil(t, msg.Sender)
	assert.Equal(t, tasker.FullName, msg.Sender.FullName)
	require.NotNil(t, msg.Receiver)
	assert.Equal(t, requester.ID, msg.Receiver.ID)

	tests := []struct {
		name       string
		body       SendMessageRequest
		wantStatus int
		wantMsg    string
	}{
		{"missing content", SendMessageRequest{TaskID: task.ID.String(), ReceiverID: requester.ID.String()},
			http.StatusBadRequest, "Please provide taskId, receiverId, and content"},
		{"missing task", SendMessageRequest{ReceiverID: requester.ID.String(), Content: "hi"},
			http.StatusBadRequest, "Please provide taskId, receiverId, and content"},
		{"malformed task id", SendMessageRequest{TaskID: "abc", ReceiverID: requester.ID.String(), Content: "hi"},
			http.StatusBadRequest, "Invalid ID"},
		{"unknown task", SendMessageRequest{TaskID: uuid.NewString(), ReceiverID: requester.ID.String(), Content: "hi"},
			http.StatusNotFound, "Task not found"},
		{"unknown receiver", SendMessageRequest{TaskID: task.ID.String(), ReceiverID: uuid.NewString(), Content: "hi"},
			http.StatusNotFound, "Receiver not found"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := api.do(http.MethodPost, "/api/messages", tasker, tc.body)
			require.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tc.wantMsg, decode(t, rec).Message)
		})
	}
}

func TestConversationsAndUnreadCounts(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	requester := api.user("req@example.com", domain.RoleRequester)
	tasker := api.user("tasker@example.com", domain.RoleTasker)
	other := api.user("other@example.com", domain.RoleTasker)
	task := api.task(requester, "Sửa ống nước", 250000)

	send(t, api, tasker, requester, task, "Xin chào")
	send(t, api, tasker, requester, task, "Tôi rảnh chiều nay")
	send(t, api, requester, tasker, task, "Được, hẹn 3 giờ")
	send(t, api, other, requester, task, "Tôi cũng nhận được")

	rec := api.do(http.MethodGet, "/api/messages/conversations", requester, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	convs := decodeData[[]domain.Conversation](t, rec)
	require.Len(t, convs, 2, "one conversation per task and counterpart")

	assert.Equal(t, other.ID, convs[0].OtherUser.ID, "newest conversation first")
	assert.Equal(t, int64(1), convs[0].UnreadCount)

	assert.Equal(t, tasker.ID, convs[1].OtherUser.ID)
	assert.Equal(t, "Được, hẹn 3 giờ", convs[1].LastMessage)
	assert.Equal(t, "Sửa ống nước", convs[1].TaskTitle)
	assert.Equal(t, domain.TaskStatusPending, convs[1].TaskStatus)
	assert.Equal(t, int64(2), convs[1].UnreadCount, "only messages received by the caller count")

	rec = api.do(http.MethodGet, "/api/messages/conversations", tasker, nil)
	convs = decodeData[[]domain.Conversation](t, rec)
	require.Len(t, convs, 1)
	assert.Equal(t, int64(1), convs[0].UnreadCount)

	// Opening the conversation marks the received messages as read.
	rec = api.do(http.MethodGet, "/api/messages/"+task.ID.String()+"/"+tasker.ID.String(), requester, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode(t, rec)
	require.NotNil(t, resp.Count)
	assert.Equal(t, 3, *resp.Count)

	detail := decodeData[domain.ConversationDetail](t, rec)
	require.Len(t, detail.Messages, 3)
	assert.Equal(t, "Xin chào", detail.Messages[0].Content, "oldest first")
	require.NotNil(t, detail.Task)
	assert.Equal(t, task.ID, detail.Task.ID)

	rec = api.do(http.MethodGet, "/api/messages/conversations", requester, nil)
	convs = decodeData[[]domain.Conversation](t, rec)
	require.Len(t, convs, 2)
	assert.Equal(t, int64(1), convs[0].UnreadCount, "other conversations keep their unread messages")
	assert.Equal(t, int64(0), convs[1].UnreadCount)
}

func TestConversationOfDeletedTask(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	requester := api.user("req@example.com", domain.RoleRequester)
	tasker := api.user("tasker@example.com", domain.RoleTasker)
	task := api.task(requester, "Sửa ống nước", 250000)

	send(t, api, tasker, requester, task, "Xin chào")
	require.NoError(t, api.stores.Tasks.Delete(context.Background(), task.ID))

	rec := api.do(http.MethodGet, "/api/messages/conversations", requester, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeData[[]domain.Conversation](t, rec), "messages of deleted tasks are skipped")

	rec = api.do(http.MethodGet, "/api/messages/"+task.ID.String()+"/"+tasker.ID.String(), requester, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decodeData[domain.ConversationDetail](t, rec)
	assert.Len(t, detail.Messages, 1)
	assert.Nil(t, detail.Task)
}

func TestGetConversationInvalidIDs(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	user := api.user("req@example.com", domain.RoleRequester)

	rec := api.do(http.MethodGet, "/api/messages/nope/"+uuid.NewString(), user, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid ID", decode(t, rec).Message)

	rec = api.do(http.MethodGet, "/api/messages/"+uuid.NewString()+"/nope", user, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetConversationsStoreFailure(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	user := api.user("req@example.com", domain.RoleRequester)
	api.db.Fail("Messages.ListForUser", assert.AnError)

	rec := api.do(http.MethodGet, "/api/messages/conversations", user, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "Error fetching conversations", resp.Message)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
	assert.NotEmpty(t, resp.TraceID)
}

func TestMarkAsRead(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	requester := api.user("req@example.com", domain.RoleRequester)
	tasker := api.user("tasker@example.com", domain.RoleTasker)
	task := api.task(requester, "Sửa ống nước", 250000)
	msg := send(t, api, tasker, requester, task, "Xin chào")
	path := "/api/messages/" + msg.ID.String() + "/read"

	rec := api.do(http.MethodPut, path, tasker, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Not authorized to mark this message as read", decode(t, rec).Message)

	rec = api.do(http.MethodPut, path, requester, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Message marked as read", decode(t, rec).Message)

	stored, err := api.stores.Messages.GetByID(context.Background(), msg.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsRead)

	rec = api.do(http.MethodPut, "/api/messages/"+uuid.NewString()+"/read", requester, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Message not found", decode(t, rec).Message)
}
