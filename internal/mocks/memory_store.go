package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/store"
)

// MemoryDB is an in-memory implementation of every store interface. It
// mirrors the database stores: unique constraints, newest-first ordering
// and populated references that are nil when the referenced record is gone.
type MemoryDB struct {
	mu sync.Mutex

	seq        int64
	users      map[uuid.UUID]*domain.User
	tasks      map[uuid.UUID]*domain.Task
	messages   map[uuid.UUID]*domain.Message
	favorites  map[uuid.UUID]*domain.Favorite
	categories map[uuid.UUID]*domain.JobCategory
	locations  map[uuid.UUID]*domain.Location
	order      map[uuid.UUID]int64

	failures map[string]error
	calls    map[string]int
}

// NewMemoryDB creates an empty MemoryDB.
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		users:      make(map[uuid.UUID]*domain.User),
		tasks:      make(map[uuid.UUID]*domain.Task),
		messages:   make(map[uuid.UUID]*domain.Message),
		favorites:  make(map[uuid.UUID]*domain.Favorite),
		categories: make(map[uuid.UUID]*domain.JobCategory),
		locations:  make(map[uuid.UUID]*domain.Location),
		order:      make(map[uuid.UUID]int64),
		failures:   make(map[string]error),
		calls:      make(map[string]int),
	}
}

// Stores returns store interfaces backed by db.
func (db *MemoryDB) Stores() store.Stores {
	return store.Stores{
		Users:      &memUsers{db},
		Tasks:      &memTasks{db},
		Messages:   &memMessages{db},
		Favorites:  &memFavorites{db},
		Categories: &memCategories{db},
		Locations:  &memLocations{db},
	}
}

// Fail makes every later call of op (for example "Messages.CountUnread")
// return err. A nil err clears the failure.
func (db *MemoryDB) Fail(op string, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err == nil {
		delete(db.failures, op)
		return
	}
	db.failures[op] = err
}

// Calls reports how many times op was invoked.
func (db *MemoryDB) Calls(op string) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.calls[op]
}

// enter locks db and records a call to op. When a failure is injected for
// op the lock is released and the failure returned.
func (db *MemoryDB) enter(op string) error {
	db.mu.Lock()
	db.calls[op]++
	if err := db.failures[op]; err != nil {
		db.mu.Unlock()
		return err
	}
	return nil
}

func (db *MemoryDB) track(id uuid.UUID) {
	db.seq++
	db.order[id] = db.seq
}

// newer orders by CreatedAt, then by insertion order.
func (db *MemoryDB) newer(aID, bID uuid.UUID, aAt, bAt int64) bool {
	if aAt != bAt {
		return aAt > bAt
	}
	return db.order[aID] > db.order[bID]
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	c.Password = ""
	return &c
}

func (db *MemoryDB) summary(id uuid.UUID) *domain.UserSummary {
	if u, ok := db.users[id]; ok {
		return u.Summary()
	}
	return nil
}

func (db *MemoryDB) populatedTask(id uuid.UUID) *domain.Task {
	t, ok := db.tasks[id]
	if !ok {
		return nil
	}
	c := *t
	c.Images = append([]string(nil), t.Images...)
	c.Requester = db.summary(t.RequesterID)
	return &c
}

type memUsers struct{ db *MemoryDB }

func (s *memUsers) Create(_ context.Context, user *domain.User) error {
	if err := s.db.enter("Users.Create"); err != nil {
		return err
	}
	defer s.db.mu.Unlock()

	if user.HashedPassword == "" {
		return store.ErrInvalidEntity
	}
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	if err := s.checkUnique(user); err != nil {
		return err
	}
	s.db.users[user.ID] = copyUser(user)
	s.db.track(user.ID)
	return nil
}

func (s *memUsers) checkUnique(user *domain.User) error {
	for _, u := range s.db.users {
		if u.ID == user.ID {
			continue
		}
		if user.Email != "" && u.Email == user.Email {
			return store.ErrEmailExists
		}
		if user.Phone != "" && u.Phone == user.Phone {
			return store.ErrPhoneExists
		}
	}
	return nil
}

func (s *memUsers) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	if err := s.db.enter("Users.GetByID"); err != nil {
		return nil, err
	}
	defer s.db.mu.Unlock()

	if u, ok := s.db.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, store.ErrUserNotFound
}

func (s *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if err := s.db.enter("Users.GetByEmail"); err != nil {
		return nil, err
	}
	defer s.db.mu.Unlock()

	email = domain.NormalizeEmail(email)
	for _, u := range s.db.users {
		if email != "" && u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *memUsers) GetByPhone(_ context.Context, phone string) (*domain.User, error) {
	if err := s.db.enter("Users.GetByPhone"); err != nil {
		return nil, err
	}
	defer s.db.mu.Unlock()

	for _, u := range s.db.users {
		if phone != "" && u.Phone == phone {
			return copyUser(u), nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *memUsers) Update(_ context.Context, user *domain.User) error {
	if err := s.db.enter("Users.Update"); err != nil {
		return err
	}
	defer s.db.mu.Unlock()

	if _, ok := s.db.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	if err := s.checkUnique(user); err != nil {
		return err
	}
	s.db.users[user.ID] = copyUser(user)
	return nil
}

func (s *memUsers) List(_ context.Context) ([]*domain.User, error) {
	if err := s.db.enter("Users.List"); err != nil {
		return nil, err
	}
	defer s.db.mu.Unlock()

	out := make([]*domain.User, 0, len(s.db.users))
	for _, u := range s.db.users {
		out = append(out, copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool {
		return s.db.newer(out[i].ID, out[j].ID, out[i].CreatedAt.UnixNano(), out[j].CreatedAt.UnixNano())
	})
	return out, nil
}

func (s *memUsers) Count(_ context.Context, filter store.UserCountFilter) (int64, error) {
	if err := s.db.enter("Users.Count"); err != nil {
		return 0, err
	}
	defer s.db.mu.Unlock()

	var n int64
	for _, u := range s.db.users {
		if filter.Role != domain.RoleNone && u.CurrentRole != filter.Role {
			continue
		}
		if !filter.CreatedSince.IsZero() && u.CreatedAt.Before(filter.CreatedSince) {
			continue
		}
		n++
	}
	return n, nil
}

func (s *memUsers) DeleteAll(_ context.Context) (int64, error) {
	if err := s.db.enter("Users.DeleteAll"); err != nil {
		return 0, err
	}
	defer s.db.mu.Unlock()

	n := int64(len(s.db.users))
	s.db.users = make(map[uuid.UUID]*domain.User)
	return n, nil
}

type memTasks struct{ db *MemoryDB }

func (s *memTasks) Create(_ context.Context, task *domain.Task) error {
	if err := s.db.enter("Tasks.Create"); err != nil {
		return err
	}
	defer s.db.mu.Unlock()

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	c := *task
	c.Requester = nil
	s.db.tasks[task.ID] = &c
	s.db.track(task.ID)
	return nil
}

func (s *memTasks) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	if err := s.db.enter("Tasks.GetByID"); err != nil {
		return nil, err
	}
	defer s.db.mu.Unlock()

	if t := s.db.populatedTask(id); t != nil {
		return t, nil
	}
	return nil, store.ErrTaskNotFound
}

func (s *memTasks) List(_ context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	if err := s.db.enter("Tasks.List"); err != nil {
		return nil, err
	}
	defer s.db.mu.Unlock()

	out := []*domain.Task{}
	for id, t := range s.db.tasks {
		if filter.Matches(t) {
			out = append(out, s.db.populatedTask(id))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return s.db.newer(out[i].ID, out[j].ID, out[i].CreatedAt.UnixNano(), out[j].CreatedAt.UnixNano())
	})
	return out, nil
}

func (s *memTasks) Update(_ context.Context, task *domain.Task) error {
	if err := s.db.enter("Tasks.Update"); err != nil {
		return err
	}
	defer s.db.mu.Unlock()

	existing, ok := s.db.tasks[task.ID]
	if !ok {
		return store.ErrTaskNotFound
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	existing.Description = task.Description
	existing.Price = task.Price
	existing.Status = task.Status
	existing.PaymentProofURL = task.PaymentProofURL
	existing.UpdatedAt = task.UpdatedAt
	return nil
}

func (s *memTasks) Delete(_ context.Context, id uuid.UUID) error {
	if err := s.db.enter("Tasks.Delete"); err != nil {
		return err
	}
	defer s.db.mu.Unlock()

	if _, ok := s.db.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.db.tasks, id)
	return nil
}

func (s *memTasks) Count(_ context.Context, filter store.TaskCountFilter) (int64, error) {
	if err := s.db.enter("Tasks.Count"); err != nil {
		return 0, err
	}
	defer s.db.mu.Unlock()

	var n int64
	for _, t := range s.db.tasks {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if !filter.CreatedSince.IsZero() && t.CreatedAt.Before(filter.CreatedSince) {
			continue
		}
		n++
	}
	return n, nil
}

func (s *memTasks) DeleteAll(_ context.Context) (int64, error) {
	if err := s.db.enter("Tasks.DeleteAll"); err != nil {
		return 0, err
	}
	defer s.db.mu.Unlock()

	n := int64(len(s.db.tasks))
	s.db.tasks = make(map[uuid.UUID]*domain.Task)
	return n, nil
}

type memMessages struct{ db *MemoryDB }

func (s *memMessages) populated(m *domain.Message) *domain.Message {
	c := *m
	if t, ok := s.db.tasks[m.TaskID]; ok {
		c.Task = t.Summary()
	} else {
		c.Task = nil
	}
	c.Sender = s.db.summary(m.SenderID)
	c.Receiver = s.db.summary(m.ReceiverID)
	return &c
}

func (s *memMessages) sorted(msgs []*domain.Message, newestFirst bool) {
	sort.Slice(msgs, func(i, j int) bool {
		n := s.db.newer(msgs[i].ID, msgs[j].ID, msgs[i].CreatedAt.UnixNano(), msgs[j].CreatedAt.UnixNano())
		if newestFirst {
			return n
		}
		return !n
	})
}

func (s *memMessages) Create(_ context.Context, msg *domain.Message) error {
	if err := s.db.enter("Messages.Create"); err != nil {
		return err
	}
	defer s.db.mu.Unlock()

	if err := msg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	c := *msg
	c.Task, c.Sender, c.Receiver = nil, nil, nil
	s.db.messages[msg.ID] = &c
	s.db.track(msg.ID)
	return nil
}

func (s *memMessages) GetByID(_ context.Context, id uuid.UUID) (*domain.Message, error) {
	if err := s.db.enter("Messages.GetByID"); err != nil {
		return nil, err
	}
	defer s.db.mu.Unlock()

	if m, ok := s.db.messages[id]; ok {
		c := *m
		return &c, nil
	}
	return nil, store.ErrMessageNotFound
}

func (s *memMessages) ListForUser(_ context.Context, userID uuid.UUID) ([]*domain.Message, error) {
	if err := s.db.enter("Messages.ListForUser"); err != nil {
		return nil, err
	}
	defer s.db.mu.Unlock()

	out := []*domain.Message{}
	for _, m := range s.db.messages {
		if m.SenderID == userID || m.ReceiverID == userID {
			out = append(out, s.populated(m))
		}
	}
	s.sorted(out, true)
	return out, nil
}

func (s *memMessages) ListConversation(_ context.Context, taskID, userA, userB uuid.UUID) ([]*domain.Message, error) {
	if err := s.db.enter("Messages.ListConversation"); err != nil {
		return nil, err
	}
	defer s.db.mu.Unlock()

	out := []*domain.Message{}
	for _, m := range s.db.messages {
		if m.TaskID != taskID {
			continue
		}
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			out = append(out, s.populated(m))
		}
	}
	s.sorted(out, false)
	return out, nil
}

func (s *memMessages) CountUnread(_ context.Context, taskID, senderID, receiverID uuid.UUID) (int64, error) {
	if err := s.db.enter("Messages.CountUnread"); err != nil {
		return 0, err
	}
	defer s.db.mu.Unlock()

	var n int64
	for _, m := range s.db.messages {
		if m.TaskID == taskID && m.SenderID == senderID && m.ReceiverID == receiverID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

func (s *memMessages) MarkRead(_ context.Context, id uuid.UUID) error {
	if err := s.db.enter("Messages.MarkRead"); err != nil {
		return err
	}
	defer s.db.mu.Unlock()

	m, ok := s.db.messages[id]
	if !ok {
		return store.ErrMessageNotFound
	}
	m.IsRead = true
	return nil
}

func (s *memMessages) MarkConversationRead(_ context.Context, taskID, senderID, receiverID uuid.UUID) (int64, error) {
	if err := s.db.enter("Messages.MarkConversationRead"); err != nil {
		return 0, err
	}
	defer s.db.mu.Unlock()

	var n int64
	for _, m := range s.db.messages {
		if m.TaskID == taskID && m.SenderID == senderID && m.ReceiverID == receiverID && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

func (s *memMessages) Count(_ context.Context) (int64, error) {
	if err := s.db.enter("Messages.Count"); err != nil {
		return 0, err
	}
	defer s.db.mu.Unlock()
	return int64(len(s.db.messages)), nil
}

func (s *memMessages) DeleteAll(_ context.Context) (int64, error) {
	if err := s.db.enter("Messages.DeleteAll"); err != nil {
		return 0, err
	}
	defer s.db.mu.Unlock()

	n := int64(len(s.db.messages))
	s.db.messages = make(map[uuid.UUID]*domain.Message)
	return n, nil
}

type memFavorites struct{ db *MemoryDB }

func (s *memFavorites) find(taskerID, taskID uuid.UUID) *domain.Favorite {
	for _, f := range s.db.favorites {
		if f.TaskerID == taskerID && f.TaskID == taskID {
			return f
		}
	}
	return nil
}

func (s *memFavorites) Create(_ context.Context, fav *domain.Favorite) error {
	if err := s.db.enter("Favorites.Create"); err != nil {
		return err
	}
	defer s.db.mu.Unlock()

	if s.find(fav.TaskerID, fav.TaskID) != nil {
		return store.ErrFavoriteExists
	}
	c := *fav
	c.Task = nil
	s.db.favorites[fav.ID] = &c
	s.db.track(fav.ID)
	return nil
}

func (s *memFavorites) Exists(_ context.Context, taskerID, taskID uuid.UUID) (bool, error) {
	if err := s.db.enter("Favorites.Exists"); err != nil {
		return false, err
	}
	defer s.db.mu.Unlock()
	return s.find(taskerID, taskID) != nil, nil
}

func (s *memFavorites) ListByTasker(_ context.Context, taskerID uuid.UUID) ([]*domain.Favorite, error) {
	if err := s.db.enter("Favorites.ListByTasker"); err != nil {
		return nil, err
	}
	defer s.db.mu.Unlock()

	out := []*domain.Favorite{}
	for _, f := range s.db.favorites {
		if f.TaskerID != taskerID {
			continue
		}
		c := *f
		c.Task = s.db.populatedTask(f.TaskID)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		return s.db.newer(out[i].ID, out[j].ID, out[i].CreatedAt.UnixNano(), out[j].CreatedAt.UnixNano())
	})
	return out, nil
}

func (s *memFavorites) Delete(_ context.Context, taskerID, taskID uuid.UUID) error {
	if err := s.db.enter("Favorites.Delete"); err != nil {
		return err
	}
	defer s.db.mu.Unlock()

	f := s.find(taskerID, taskID)
	if f == nil {
		return store.ErrFavoriteNotFound
	}
	delete(s.db.favorites, f.ID)
	return nil
}

func (s *memFavorites) DeleteAll(_ context.Context) (int64, error) {
	if err := s.db.enter("Favorites.DeleteAll"); err != nil {
		return 0, err
	}
	defer s.db.mu.Unlock()

	n := int64(len(s.db.favorites))
	s.db.favorites = make(map[uuid.UUID]*domain.Favorite)
	return n, nil
}

type memCategories struct{ db *MemoryDB }

func (s *memCategories) List(_ context.Context) ([]*domain.JobCategory, error) {
	if err := s.db.enter("Categories.List"); err != nil {
		return nil, err
	}
	defer s.db.mu.Unlock()

	out := make([]*domain.JobCategory, 0, len(s.db.categories))
	for _, c := range s.db.categories {
		cc := *c
		out = append(out, &cc)
	}
	sort.Slice(out, func(i, j int) bool { return strings.Compare(out[i].Name, out[j].Name) < 0 })
	return out, nil
}

func (s *memCategories) GetByName(_ context.Context, name string) (*domain.JobCategory, error) {
	if err := s.db.enter("Categories.GetByName"); err != nil {
		return nil, err
	}
	defer s.db.mu.Unlock()

	for _, c := range s.db.categories {
		if c.Name == name {
			cc := *c
			return &cc, nil
		}
	}
	return nil, store.ErrCategoryNotFound
}

func (s *memCategories) Create(_ context.Context, category *domain.JobCategory) error {
	if err := s.db.enter("Categories.Create"); err != nil {
		return err
	}
	defer s.db.mu.Unlock()

	for _, c := range s.db.categories {
		if c.Name == category.Name {
			return store.ErrCategoryExists
		}
	}
	cc := *category
	s.db.categories[category.ID] = &cc
	return nil
}

func (s *memCategories) Count(_ context.Context) (int64, error) {
	if err := s.db.enter("Categories.Count"); err != nil {
		return 0, err
	}
	defer s.db.mu.Unlock()
	return int64(len(s.db.categories)), nil
}

func (s *memCategories) DeleteAll(_ context.Context) (int64, error) {
	if err := s.db.enter("Categories.DeleteAll"); err != nil {
		return 0, err
	}
	defer s.db.mu.Unlock()

	n := int64(len(s.db.categories))
	s.db.categories = make(map[uuid.UUID]*domain.JobCategory)
	return n, nil
}

type memLocations struct{ db *MemoryDB }

func (s *memLocations) List(_ context.Context) ([]*domain.Location, error) {
	if err := s.db.enter("Locations.List"); err != nil {
		return nil, err
	}
	defer s.db.mu.Unlock()

	out := make([]*domain.Location, 0, len(s.db.locations))
	for _, l := range s.db.locations {
		ll := *l
		ll.Wards = append([]string(nil), l.Wards...)
		out = append(out, &ll)
	}
	sort.Slice(out, func(i, j int) bool { return strings.Compare(out[i].Province, out[j].Province) < 0 })
	return out, nil
}

func (s *memLocations) GetByProvince(_ context.Context, province string) (*domain.Location, error) {
	if err := s.db.enter("Locations.GetByProvince"); err != nil {
		return nil, err
	}
	defer s.db.mu.Unlock()

	for _, l := range s.db.locations {
		if l.Province == province {
			ll := *l
			ll.Wards = append([]string(nil), l.Wards...)
			return &ll, nil
		}
	}
	return nil, store.ErrLocationNotFound
}

func (s *memLocations) Create(_ context.Context, location *domain.Location) error {
	if err := s.db.enter("Locations.Create"); err != nil {
		return err
	}
	defer s.db.mu.Unlock()

	for _, l := range s.db.locations {
		if l.Province == location.Province {
			return store.ErrLocationExists
		}
	}
	ll := *location
	ll.Wards = append([]string(nil), location.Wards...)
	s.db.locations[location.ID] = &ll
	return nil
}

func (s *memLocations) Count(_ context.Context) (int64, error) {
	if err := s.db.enter("Locations.Count"); err != nil {
		return 0, err
	}
	defer s.db.mu.Unlock()
	return int64(len(s.db.locations)), nil
}

func (s *memLocations) DeleteAll(_ context.Context) (int64, error) {
	if err := s.db.enter("Locations.DeleteAll"); err != nil {
		return 0, err
	}
	defer s.db.mu.Unlock()

	n := int64(len(s.db.locations))
	s.db.locations = make(map[uuid.UUID]*domain.Location)
	return n, nil
}
