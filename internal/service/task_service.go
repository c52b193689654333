package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/platform/logger"
	"github.com/phrazzld/taskie-api/internal/store"
)

// StatusFilterAll lists tasks of every status.
const StatusFilterAll = "all"

// CreateTaskParams holds the fields of a new task.
type CreateTaskParams struct {
	Title       string
	Description string
	Category    string
	Images      []string
	Location    domain.TaskLocation
	Price       float64
	Deadline    time.Time
}

// TaskUpdate holds the editable task fields. Empty Description and nil Price
// leave the current values untouched.
type TaskUpdate struct {
	Description string
	Price       *float64
}

// TaskService provides task operations. Mutations are only allowed to the
// requester who posted the task.
type TaskService interface {
	Create(ctx context.Context, requesterID uuid.UUID, params CreateTaskParams) (*domain.Task, error)

	// ListMine lists the requester's tasks. An empty status or "all" applies
	// no status filter.
	ListMine(ctx context.Context, requesterID uuid.UUID, status string) ([]*domain.Task, error)

	// Search lists pending tasks matching filter, newest first.
	Search(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error)

	Get(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)
	Update(ctx context.Context, userID, taskID uuid.UUID, update TaskUpdate) (*domain.Task, error)
	Delete(ctx context.Context, userID, taskID uuid.UUID) error
	UpdateStatus(ctx context.Context, userID, taskID uuid.UUID, status string) (*domain.Task, error)
	Complete(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)
	SetPaymentProof(ctx context.Context, userID, taskID uuid.UUID, proofURL string) (*domain.Task, error)
}

type taskServiceImpl struct {
	tasks      store.TaskStore
	categories store.CategoryStore
	logger     *slog.Logger
}

// NewTaskService creates a TaskService.
func NewTaskService(tasks store.TaskStore, categories store.CategoryStore, log *slog.Logger) (TaskService, error) {
	if tasks == nil {
		return nil, errors.New("task store cannot be nil")
	}
	if categories == nil {
		return nil, errors.New("category store cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &taskServiceImpl{
		tasks:      tasks,
		categories: categories,
		logger:     log.With(slog.String("component", "task_service")),
	}, nil
}

func (s *taskServiceImpl) Create(
	ctx context.Context,
	requesterID uuid.UUID,
	p CreateTaskParams,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Description) == "" ||
		p.Category == "" || p.Deadline.IsZero() {
		return nil, invalid("Please provide all required fields")
	}
	if p.Location.Province == "" || p.Location.Ward == "" {
		return nil, domain.ErrIncompleteLocation
	}
	if !domain.ValidPrice(p.Price) {
		return nil, domain.ErrInvalidPrice
	}
	if len(p.Images) < domain.MinTaskImages {
		return nil, domain.ErrNotEnoughImages
	}

	category, err := s.categories.GetByName(ctx, p.Category)
	if err != nil {
		if errors.Is(err, store.ErrCategoryNotFound) {
			return nil, ErrInvalidCategory
		}
		return nil, NewServiceError("task", "create", err)
	}

	task, err := domain.NewTask(
		requesterID,
		p.Title,
		p.Description,
		category.Name,
		p.Images,
		p.Location,
		p.Price,
		category.PostingFee,
		p.Deadline,
	)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		log.Error("failed to save task", slog.String("error", err.Error()))
		return nil, NewServiceError("task", "create", err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("requester_id", requesterID.String()))
	return s.reload(ctx, task)
}

// reload fetches task again so the requester summary is populated.
func (s *taskServiceImpl) reload(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	fresh, err := s.tasks.GetByID(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}
	return fresh, nil
}

func (s *taskServiceImpl) ListMine(
	ctx context.Context,
	requesterID uuid.UUID,
	status string,
) ([]*domain.Task, error) {
	filter := domain.TaskFilter{RequesterID: requesterID}
	if status != "" && status != StatusFilterAll {
		filter.Status = domain.TaskStatus(status)
	}
	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, NewServiceError("task", "list_mine", err)
	}
	return tasks, nil
}

func (s *taskServiceImpl) Search(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	filter.Status = domain.TaskStatusPending
	filter.RequesterID = uuid.Nil

	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, NewServiceError("task", "search", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Debug("task search",
		slog.String("keyword", filter.Keyword),
		slog.Int("results", len(tasks)))
	return tasks, nil
}

func (s *taskServiceImpl) Get(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}
	return task, nil
}

// owned fetches the task and checks that userID posted it. denied is the
// message of the Forbidden error returned otherwise.
func (s *taskServiceImpl) owned(ctx context.Context, userID, taskID uuid.UUID, denied string) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}
	if !task.IsOwnedBy(userID) {
		logger.FromContextOrDefault(ctx, s.logger).Debug("task ownership check failed",
			slog.String("task_id", taskID.String()),
			slog.String("user_id", userID.String()))
		return nil, forbidden(denied)
	}
	return task, nil
}

func (s *taskServiceImpl) save(ctx context.Context, op string, task *domain.Task) (*domain.Task, error) {
	task.UpdatedAt = time.Now().UTC()
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, NewServiceError("task", op, err)
	}
	return s.reload(ctx, task)
}

func (s *taskServiceImpl) Update(
	ctx context.Context,
	userID, taskID uuid.UUID,
	update TaskUpdate,
) (*domain.Task, error) {
	task, err := s.owned(ctx, userID, taskID, "Not authorized to update this task")
	if err != nil {
		return nil, err
	}
	if task.Status == domain.TaskStatusCompleted {
		return nil, domain.ErrTaskCompleted
	}

	if d := strings.TrimSpace(update.Description); d != "" {
		task.Description = d
	}
	if update.Price != nil {
		if !domain.ValidPrice(*update.Price) {
			return nil, domain.ErrInvalidPrice
		}
		task.Price = *update.Price
	}
	return s.save(ctx, "update", task)
}

func (s *taskServiceImpl) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	if _, err := s.owned(ctx, userID, taskID, "Not authorized to delete this task"); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return NewServiceError("task", "delete", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("task deleted",
		slog.String("task_id", taskID.String()))
	return nil
}

func (s *taskServiceImpl) UpdateStatus(
	ctx context.Context,
	userID, taskID uuid.UUID,
	status string,
) (*domain.Task, error) {
	task, err := s.owned(ctx, userID, taskID, "Not authorized to update this task")
	if err != nil {
		return nil, err
	}
	next := domain.TaskStatus(status)
	if !next.IsValid() {
		return nil, domain.ErrInvalidTaskStatus
	}
	if !task.Status.CanTransitionTo(next) {
		return nil, domain.ErrTaskCompleted
	}
	task.Status = next
	return s.save(ctx, "update_status", task)
}

func (s *taskServiceImpl) Complete(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.owned(ctx, userID, taskID, "Not authorized to complete this task")
	if err != nil {
		return nil, err
	}
	if task.Status != domain.TaskStatusPending {
		return nil, domain.ErrTaskNotPending
	}
	task.Status = domain.TaskStatusCompleted
	return s.save(ctx, "complete", task)
}

func (s *taskServiceImpl) SetPaymentProof(
	ctx context.Context,
	userID, taskID uuid.UUID,
	proofURL string,
) (*domain.Task, error) {
	task, err := s.owned(ctx, userID, taskID, "Not authorized to update this task")
	if err != nil {
		return nil, err
	}
	task.PaymentProofURL = proofURL
	return s.save(ctx, "set_payment_proof", task)
}
