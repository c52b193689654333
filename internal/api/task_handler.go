package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/phrazzld/taskie-api/internal/api/shared"
	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/platform/logger"
	"github.com/phrazzld/taskie-api/internal/platform/uploads"
	"github.com/phrazzld/taskie-api/internal/service"
)

// TaskHandler handles task requests.
type TaskHandler struct {
	tasks    service.TaskService
	uploader *uploads.Uploader
	logger   *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks service.TaskService, uploader *uploads.Uploader, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:    tasks,
		uploader: uploader,
		logger:   logger.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /api/tasks. The body is a multipart form with the
// task fields, a JSON encoded location and at least two "images" files.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if shared.IsMultipart(r) {
		limit := int64(uploads.MaxTaskImages+1)*h.uploader.MaxBytes() + multipartMemory
		if err := parseMultipart(w, r, limit); err != nil {
			rejectForm(w, r, err)
			return
		}
	}

	title := r.FormValue("title")
	description := r.FormValue("description")
	category := r.FormValue("category")
	rawPrice := strings.TrimSpace(r.FormValue("price"))
	rawDeadline := r.FormValue("deadline")
	if title == "" || description == "" || category == "" || rawPrice == "" || rawDeadline == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Please provide all required fields")
		return
	}

	location, err := parseLocation(r)
	if err != nil {
		log.Debug("invalid location", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Invalid location format. Please select province and ward again.")
		return
	}
	if location.Province == "" || location.Ward == "" {
		HandleAPIError(w, r, domain.ErrIncompleteLocation, "")
		return
	}

	price, err := strconv.ParseFloat(rawPrice, 64)
	if err != nil || !domain.ValidPrice(price) {
		HandleAPIError(w, r, domain.ErrInvalidPrice, "")
		return
	}

	deadline, err := parseDate(rawDeadline)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Please provide a valid deadline", err)
		return
	}

	files := formFiles(r, "images")
	if len(files) < domain.MinTaskImages {
		HandleAPIError(w, r, domain.ErrNotEnoughImages, "")
		return
	}
	if len(files) > uploads.MaxTaskImages {
		HandleAPIError(w, r, uploads.ErrTooManyFiles, "")
		return
	}

	images, err := h.uploader.SaveAll(r.Context(), uploads.FolderTasks, files)
	if err != nil {
		HandleAPIError(w, r, err, "Error creating task")
		return
	}

	task, err := h.tasks.Create(r.Context(), user.ID, service.CreateTaskParams{
		Title:       title,
		Description: description,
		Category:    category,
		Images:      images,
		Location:    location,
		Price:       price,
		Deadline:    deadline,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Error creating task")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusCreated, "Task created successfully", task)
}

// parseLocation reads the location either as a JSON string in "location"
// or as bracketed form fields.
func parseLocation(r *http.Request) (domain.TaskLocation, error) {
	var loc domain.TaskLocation
	raw := strings.TrimSpace(r.FormValue("location"))
	if raw == "" {
		loc.Province = r.FormValue("location[province]")
		loc.Ward = r.FormValue("location[ward]")
		return loc, nil
	}
	if err := json.Unmarshal([]byte(raw), &loc); err != nil {
		return domain.TaskLocation{}, err
	}
	return loc, nil
}

// GetMyTasks handles GET /api/tasks/my?status=.
func (h *TaskHandler) GetMyTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	tasks, err := h.tasks.ListMine(r.Context(), user.ID, r.URL.Query().Get("status"))
	if err != nil {
		HandleAPIError(w, r, err, "Error fetching tasks")
		return
	}
	shared.RespondWithList(w, r, tasks)
}

// SearchTasks handles GET /api/tasks/search.
func (h *TaskHandler) SearchTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.Search(r.Context(), parseTaskFilter(r))
	if err != nil {
		HandleAPIError(w, r, err, "Error searching tasks")
		return
	}
	shared.RespondWithList(w, r, tasks)
}

// parseTaskFilter reads the search query. Price bounds that are not
// numbers are ignored.
func parseTaskFilter(r *http.Request) domain.TaskFilter {
	q := r.URL.Query()
	filter := domain.TaskFilter{
		Keyword:  strings.TrimSpace(q.Get("keyword")),
		Category: q.Get("category"),
		Province: q.Get("province"),
		Ward:     q.Get("ward"),
	}
	filter.MinPrice = parsePrice(q.Get("minPrice"))
	filter.MaxPrice = parsePrice(q.Get("maxPrice"))
	return filter
}

func parsePrice(value string) *float64 {
	if value == "" {
		return nil
	}
	price, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return nil
	}
	return &price
}

// GetTask handles GET /api/tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	_, taskID, ok := handleUserAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	task, err := h.tasks.Get(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Error fetching task")
		return
	}
	shared.RespondWithSuccess(w, r, http.StatusOK, "", task)
}

// UpdateTask handles PUT /api/tasks/{id}. Only description and price can
// change.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user, taskID, ok := handleUserAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	price, err := decodeRawPrice(req.Price)
	if err != nil {
		HandleAPIError(w, r, domain.ErrInvalidPrice, "")
		return
	}

	task, err := h.tasks.Update(r.Context(), user.ID, taskID, service.TaskUpdate{
		Description: req.Description,
		Price:       price,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Error updating task")
		return
	}
	shared.RespondWithSuccess(w, r, http.StatusOK, "Task updated successfully", task)
}

// decodeRawPrice accepts a JSON number or numeric string. An absent or null
// price yields nil.
func decodeRawPrice(raw json.RawMessage) (*float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var price float64
	if err := json.Unmarshal(raw, &price); err == nil {
		return &price, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return nil, domain.ErrInvalidPrice
	}
	return &price, nil
}

// DeleteTask handles DELETE /api/tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user, taskID, ok := handleUserAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	if err := h.tasks.Delete(r.Context(), user.ID, taskID); err != nil {
		HandleAPIError(w, r, err, "Error deleting task")
		return
	}
	shared.RespondWithSuccess(w, r, http.StatusOK, "Task deleted successfully", nil)
}

// UpdateTaskStatus handles PUT /api/tasks/{id}/status.
func (h *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	user, taskID, ok := handleUserAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, domain.ErrInvalidTaskStatus, "")
		return
	}

	task, err := h.tasks.UpdateStatus(r.Context(), user.ID, taskID, req.Status)
	if err != nil {
		HandleAPIError(w, r, err, "Error updating task status")
		return
	}
	shared.RespondWithSuccess(w, r, http.StatusOK,
		fmt.Sprintf("Task status updated to %s successfully", task.Status), task)
}

// CompleteTask handles PUT /api/tasks/{id}/complete.
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	user, taskID, ok := handleUserAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	task, err := h.tasks.Complete(r.Context(), user.ID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Error completing task")
		return
	}
	shared.RespondWithSuccess(w, r, http.StatusOK, "Task marked as completed successfully", task)
}

// UploadPaymentProof handles POST /api/tasks/{id}/payment-proof with a
// "paymentProof" file.
func (h *TaskHandler) UploadPaymentProof(w http.ResponseWriter, r *http.Request) {
	const failure = "Error uploading payment proof"

	user, taskID, ok := handleUserAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if shared.IsMultipart(r) {
		if err := parseMultipart(w, r, 2*h.uploader.MaxBytes()); err != nil {
			rejectForm(w, r, err)
			return
		}
	}
	fh, ok := formFile(r, "paymentProof")
	if !ok {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Please upload a payment proof image")
		return
	}

	url, err := h.uploader.Save(r.Context(), uploads.FolderPayments, fh)
	if err != nil {
		HandleAPIError(w, r, err, failure)
		return
	}
	task, err := h.tasks.SetPaymentProof(r.Context(), user.ID, taskID, url)
	if err != nil {
		HandleAPIError(w, r, err, failure)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("payment proof uploaded",
		slog.String("task_id", task.ID.String()))
	shared.RespondWithSuccess(w, r, http.StatusOK, "Payment proof uploaded and approved successfully",
		PaymentProofResponse{PaymentProofURL: task.PaymentProofURL})
}
