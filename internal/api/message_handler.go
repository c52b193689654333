package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskie-api/internal/api/shared"
	"github.com/phrazzld/taskie-api/internal/service"
)

// MessageHandler handles messaging between requesters and taskers.
type MessageHandler struct {
	messages service.MessageService
	logger   *slog.Logger
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messages service.MessageService, logger *slog.Logger) *MessageHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MessageHandler{
		messages: messages,
		logger:   logger.With(slog.String("component", "message_handler")),
	}
}

// SendMessage handles POST /api/messages.
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	taskID, err := parseOptionalUUID("taskId", req.TaskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	receiverID, err := parseOptionalUUID("receiverId", req.ReceiverID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	msg, err := h.messages.Send(r.Context(), user.ID, service.SendMessageParams{
		TaskID:     taskID,
		ReceiverID: receiverID,
		Content:    req.Content,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Error sending message")
		return
	}
	shared.RespondWithSuccess(w, r, http.StatusCreated, "Message sent successfully", msg)
}

// GetConversations handles GET /api/messages/conversations.
func (h *MessageHandler) GetConversations(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	conversations, err := h.messages.GetConversations(r.Context(), user.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Error fetching conversations")
		return
	}
	shared.RespondWithList(w, r, conversations)
}

// GetConversation handles GET /api/messages/{taskId}/{userId}. It returns
// the caller's messages with userId about the task, oldest first, and marks
// the received ones as read.
func (h *MessageHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	user, taskID, ok := handleUserAndPathUUID(w, r, "taskId", h.logger)
	if !ok {
		return
	}
	otherID, err := getPathUUID(r, "userId")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	detail, err := h.messages.GetConversation(r.Context(), user.ID, taskID, otherID)
	if err != nil {
		HandleAPIError(w, r, err, "Error fetching conversation")
		return
	}

	count := len(detail.Messages)
	shared.RespondWithJSON(w, r, http.StatusOK, shared.Envelope{
		Success: true,
		Count:   &count,
		Data:    detail,
	})
}

// MarkAsRead handles PUT /api/messages/{id}/read. Only the receiver may
// mark a message.
func (h *MessageHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	user, messageID, ok := handleUserAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	if err := h.messages.MarkRead(r.Context(), user.ID, messageID); err != nil {
		HandleAPIError(w, r, err, "Error marking message as read")
		return
	}
	shared.RespondWithSuccess(w, r, http.StatusOK, "Message marked as read", nil)
}
