package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/platform/logger"
	"github.com/phrazzld/taskie-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTaskService(t *testing.T, f *fixture) TaskService {
	t.Helper()
	log, _ := logger.NewTestLogger(t)
	svc, err := NewTaskService(f.stores.Tasks, f.stores.Categories, log)
	require.NoError(t, err)
	return svc
}

func validTaskParams() CreateTaskParams {
	return CreateTaskParams{
		Title:       "Sửa máy lạnh",
		Description: "Máy lạnh không mát",
		Category:    "Sửa chữa điện",
		Images:      []string{"/uploads/tasks/task-1-1.jpg", "/uploads/tasks/task-1-2.jpg"},
		Location:    domain.TaskLocation{Province: "Thành phố Huế", Ward: "Phường Phú Hòa"},
		Price:       300000,
		Deadline:    time.Now().Add(48 * time.Hour),
	}
}

func TestCreateTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := newTaskService(t, f)
	requester := f.user("req@example.com", domain.RoleRequester)
	f.category("Sửa chữa điện", 15000)

	task, err := svc.Create(ctx, requester.ID, validTaskParams())
	require.NoError(t, err)

	assert.Equal(t, domain.TaskStatusPending, task.Status)
	assert.Equal(t, float64(15000), task.PostingFee, "posting fee is copied from the category")
	assert.Equal(t, requester.ID, task.RequesterID)
	require.NotNil(t, task.Requester)
	assert.Equal(t, requester.FullName, task.Requester.FullName)
}

func TestCreateTaskValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*CreateTaskParams)
		wantErr error
		message string
	}{
		{"missing title", func(p *CreateTaskParams) { p.Title = "" },
			domain.ErrValidation, "Please provide all required fields"},
		{"missing deadline", func(p *CreateTaskParams) { p.Deadline = time.Time{} },
			domain.ErrValidation, "Please provide all required fields"},
		{"missing ward", func(p *CreateTaskParams) { p.Location.Ward = "" },
			domain.ErrIncompleteLocation, "Please provide both province and ward"},
		{"negative price", func(p *CreateTaskParams) { p.Price = -1 },
			domain.ErrInvalidPrice, "Please provide a valid price"},
		{"nan price", func(p *CreateTaskParams) { p.Price = math.NaN() },
			domain.ErrInvalidPrice, "Please provide a valid price"},
		{"infinite price", func(p *CreateTaskParams) { p.Price = math.Inf(1) },
			domain.ErrInvalidPrice, "Please provide a valid price"},
		{"one image", func(p *CreateTaskParams) { p.Images = p.Images[:1] },
			domain.ErrNotEnoughImages, "Please upload at least 2 images of the task"},
		{"unknown category", func(p *CreateTaskParams) { p.Category = "Chăm sóc thú cưng" },
			ErrInvalidCategory, "Invalid job category"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			svc := newTaskService(t, f)
			requester := f.user("req@example.com", domain.RoleRequester)
			f.category("Sửa chữa điện", 15000)

			p := validTaskParams()
			tc.mutate(&p)
			_, err := svc.Create(context.Background(), requester.ID, p)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, tc.message, err.Error())
		})
	}
}

func TestListMine(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := newTaskService(t, f)
	me := f.user("me@example.com", domain.RoleRequester)
	other := f.user("other@example.com", domain.RoleRequester)

	first := f.task(me, "First", 100)
	done := f.task(me, "Done", 100)
	done.Status = domain.TaskStatusCompleted
	require.NoError(t, f.stores.Tasks.Update(ctx, done))
	f.task(other, "Not mine", 100)

	all, err := svc.ListMine(ctx, me.ID, "all")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, done.ID, all[0].ID, "newest first")
	assert.Equal(t, first.ID, all[1].ID)

	unfiltered, err := svc.ListMine(ctx, me.ID, "")
	require.NoError(t, err)
	assert.Len(t, unfiltered, 2)

	pending, err := svc.ListMine(ctx, me.ID, "pending")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, first.ID, pending[0].ID)
}

func TestSearchOnlyReturnsPendingTasks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := newTaskService(t, f)
	requester := f.user("req@example.com", domain.RoleRequester)

	cheap := f.task(requester, "Dọn nhà cuối tuần", 100000)
	pricey := f.task(requester, "Dọn kho hàng", 500000)
	done := f.task(requester, "Dọn sân", 200000)
	done.Status = domain.TaskStatusCompleted
	require.NoError(t, f.stores.Tasks.Update(ctx, done))

	results, err := svc.Search(ctx, domain.TaskFilter{Status: domain.TaskStatusCompleted})
	require.NoError(t, err)
	assert.Len(t, results, 2, "a status filter from the caller is overridden")

	results, err = svc.Search(ctx, domain.TaskFilter{Keyword: "DỌN NHÀ"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, cheap.ID, results[0].ID)

	results, err = svc.Search(ctx, domain.TaskFilter{MinPrice: ptr(100000.0), MaxPrice: ptr(500000.0)})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, pricey.ID, results[0].ID)

	results, err = svc.Search(ctx, domain.TaskFilter{RequesterID: uuid.New()})
	require.NoError(t, err)
	assert.Len(t, results, 2, "search is not scoped to a requester")
}

func TestUpdateTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := newTaskService(t, f)
	owner := f.user("owner@example.com", domain.RoleRequester)
	stranger := f.user("stranger@example.com", domain.RoleRequester)
	task := f.task(owner, "Original", 100)

	_, err := svc.Update(ctx, stranger.ID, task.ID, TaskUpdate{Description: "hijack"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, "Not authorized to update this task", err.Error())

	_, err = svc.Update(ctx, owner.ID, uuid.New(), TaskUpdate{})
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	_, err = svc.Update(ctx, owner.ID, task.ID, TaskUpdate{Price: ptr(-5.0)})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = svc.Update(ctx, owner.ID, task.ID, TaskUpdate{Price: ptr(math.Inf(1))})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	updated, err := svc.Update(ctx, owner.ID, task.ID, TaskUpdate{Price: ptr(0.0)})
	require.NoError(t, err)
	assert.Equal(t, float64(0), updated.Price)
	assert.Equal(t, task.Description, updated.Description)
	assert.Equal(t, "Original", updated.Title)

	updated, err = svc.Update(ctx, owner.ID, task.ID, TaskUpdate{Description: "Clarified"})
	require.NoError(t, err)
	assert.Equal(t, "Clarified", updated.Description)
	assert.NotNil(t, updated.Requester)

	_, err = svc.Complete(ctx, owner.ID, task.ID)
	require.NoError(t, err)
	_, err = svc.Update(ctx, owner.ID, task.ID, TaskUpdate{Description: "Too late"})
	assert.ErrorIs(t, err, domain.ErrTaskCompleted)
}

func TestTaskStatusChanges(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := newTaskService(t, f)
	owner := f.user("owner@example.com", domain.RoleRequester)
	stranger := f.user("stranger@example.com", domain.RoleRequester)
	task := f.task(owner, "Task", 100)

	_, err := svc.UpdateStatus(ctx, owner.ID, task.ID, "cancelled")
	assert.ErrorIs(t, err, domain.ErrInvalidTaskStatus)

	_, err = svc.UpdateStatus(ctx, stranger.ID, task.ID, "completed")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Complete(ctx, stranger.ID, task.ID)
	assert.Equal(t, "Not authorized to complete this task", err.Error())

	same, err := svc.UpdateStatus(ctx, owner.ID, task.ID, "pending")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusPending, same.Status)

	done, err := svc.UpdateStatus(ctx, owner.ID, task.ID, "completed")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, done.Status)

	_, err = svc.UpdateStatus(ctx, owner.ID, task.ID, "pending")
	assert.ErrorIs(t, err, domain.ErrValidation, "a completed task cannot be reopened")

	_, err = svc.Complete(ctx, owner.ID, task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotPending)
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := newTaskService(t, f)
	owner := f.user("owner@example.com", domain.RoleRequester)
	stranger := f.user("stranger@example.com", domain.RoleRequester)
	task := f.task(owner, "Task", 100)

	err := svc.Delete(ctx, stranger.ID, task.ID)
	assert.Equal(t, "Not authorized to delete this task", err.Error())

	require.NoError(t, svc.Delete(ctx, owner.ID, task.ID))
	_, err = svc.Get(ctx, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, owner.ID, task.ID), store.ErrNotFound)
}

func TestSetPaymentProof(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := newTaskService(t, f)
	owner := f.user("owner@example.com", domain.RoleRequester)
	stranger := f.user("stranger@example.com", domain.RoleRequester)
	task := f.task(owner, "Task", 100)

	_, err := svc.SetPaymentProof(ctx, stranger.ID, task.ID, "/uploads/payments/x.png")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	updated, err := svc.SetPaymentProof(ctx, owner.ID, task.ID, "/uploads/payments/payment-1-2.png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/payments/payment-1-2.png", updated.PaymentProofURL)
}

func TestTaskServiceWrapsStoreFailures(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := newTaskService(t, f)
	boom := errors.New("boom")
	f.db.Fail("Tasks.List", boom)

	_, err := svc.Search(context.Background(), domain.TaskFilter{})
	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "search", se.Op)
	assert.ErrorIs(t, err, boom)
}
