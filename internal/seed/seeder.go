package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/platform/logger"
	"github.com/phrazzld/taskie-api/internal/service/auth"
	"github.com/phrazzld/taskie-api/internal/store"
)

// Default administrator account created by every seed run when absent.
const (
	AdminEmail    = "admin@taskie.com"
	AdminPassword = "admin123"
	AdminName     = "Admin User"
)

var adminDateOfBirth = time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)

// Options selects the seeding mode.
type Options struct {
	// Force clears categories and locations before inserting them.
	Force bool `json:"force"`
	// Comprehensive also creates demo users, tasks, messages and favorites.
	Comprehensive bool `json:"comprehensive"`
}

// Mode names the option combination for logs and metrics.
func (o Options) Mode() string {
	switch {
	case o.Comprehensive:
		return "comprehensive"
	case o.Force:
		return "force"
	default:
		return "smart"
	}
}

// Count reports inserted and skipped records of one kind.
type Count struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// AdminResult reports whether the administrator account was created.
type AdminResult struct {
	Created bool `json:"created"`
	Skipped bool `json:"skipped"`
}

// DemoResult reports the demo records written by a comprehensive seed.
type DemoResult struct {
	Users     Count `json:"users"`
	Tasks     Count `json:"tasks"`
	Messages  Count `json:"messages"`
	Favorites Count `json:"favorites"`
}

// Result is the outcome of a seed run.
type Result struct {
	Categories Count       `json:"categories"`
	Locations  Count       `json:"locations"`
	Admin      AdminResult `json:"admin"`
	Demo       *DemoResult `json:"demo,omitempty"`
}

// ResetResult reports how many records of each kind were deleted.
type ResetResult struct {
	Users      int64 `json:"users"`
	Tasks      int64 `json:"tasks"`
	Messages   int64 `json:"messages"`
	Favorites  int64 `json:"favorites"`
	Categories int64 `json:"categories"`
	Locations  int64 `json:"locations"`
}

// Recorder receives seed outcomes. *metrics.Metrics satisfies it.
type Recorder interface {
	RecordSeed(mode string, err error)
}

type nopRecorder struct{}

func (nopRecorder) RecordSeed(string, error) {}

// Seeder writes fixtures through the stores.
type Seeder struct {
	stores   store.Stores
	hasher   auth.PasswordHasher
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewSeeder creates a Seeder. recorder may be nil.
func NewSeeder(stores store.Stores, hasher auth.PasswordHasher, recorder Recorder, log *slog.Logger) *Seeder {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Seeder{
		stores:   stores,
		hasher:   hasher,
		recorder: recorder,
		logger:   log.With(slog.String("component", "seeder")),
		now:      time.Now,
	}
}

// Seed inserts reference data, the administrator account and, when
// requested, the demo marketplace.
func (s *Seeder) Seed(ctx context.Context, opts Options) (*Result, error) {
	res, err := s.seed(ctx, opts)
	s.recorder.RecordSeed(opts.Mode(), err)

	log := logger.FromContextOrDefault(ctx, s.logger)
	if err != nil {
		log.Error("seed failed", slog.String("mode", opts.Mode()), slog.String("error", err.Error()))
		return nil, err
	}
	log.Info("seed completed",
		slog.String("mode", opts.Mode()),
		slog.Int("categories_inserted", res.Categories.Inserted),
		slog.Int("locations_inserted", res.Locations.Inserted),
		slog.Bool("admin_created", res.Admin.Created))
	return res, nil
}

func (s *Seeder) seed(ctx context.Context, opts Options) (*Result, error) {
	ref, err := LoadReference()
	if err != nil {
		return nil, err
	}

	// Comprehensive seeding always refreshes reference data.
	force := opts.Force || opts.Comprehensive

	res := &Result{}
	if res.Categories, err = s.seedCategories(ctx, ref.Categories, force); err != nil {
		return nil, err
	}
	if res.Locations, err = s.seedLocations(ctx, ref.Locations, force); err != nil {
		return nil, err
	}
	if res.Admin, err = s.seedAdmin(ctx); err != nil {
		return nil, err
	}

	if opts.Comprehensive {
		demo, err := LoadDemo()
		if err != nil {
			return nil, err
		}
		if res.Demo, err = s.seedDemo(ctx, demo, ref); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// seedCategories inserts every category when forced or when none exist.
func (s *Seeder) seedCategories(ctx context.Context, fixtures []CategoryFixture, force bool) (Count, error) {
	var c Count
	if force {
		if _, err := s.stores.Categories.DeleteAll(ctx); err != nil {
			return c, fmt.Errorf("clear categories: %w", err)
		}
	} else {
		n, err := s.stores.Categories.Count(ctx)
		if err != nil {
			return c, fmt.Errorf("count categories: %w", err)
		}
		if n > 0 {
			c.Skipped = len(fixtures)
			return c, nil
		}
	}

	for _, f := range fixtures {
		cat, err := domain.NewJobCategory(f.Name, f.PostingFee, f.Description)
		if err != nil {
			return c, fmt.Errorf("category %q: %w", f.Name, err)
		}
		if err := s.stores.Categories.Create(ctx, cat); err != nil {
			if errors.Is(err, store.ErrCategoryExists) {
				c.Skipped++
				continue
			}
			return c, fmt.Errorf("insert category %q: %w", f.Name, err)
		}
		c.Inserted++
	}
	return c, nil
}

// seedLocations replaces all locations when forced, otherwise adds the
// provinces that are missing.
func (s *Seeder) seedLocations(ctx context.Context, fixtures []LocationFixture, force bool) (Count, error) {
	var c Count
	if force {
		if _, err := s.stores.Locations.DeleteAll(ctx); err != nil {
			return c, fmt.Errorf("clear locations: %w", err)
		}
	}

	for _, f := range fixtures {
		if !force {
			_, err := s.stores.Locations.GetByProvince(ctx, f.Province)
			if err == nil {
				c.Skipped++
				continue
			}
			if !errors.Is(err, store.ErrLocationNotFound) {
				return c, fmt.Errorf("lookup location %q: %w", f.Province, err)
			}
		}

		loc, err := domain.NewLocation(f.Province, f.Wards)
		if err != nil {
			return c, fmt.Errorf("location %q: %w", f.Province, err)
		}
		if err := s.stores.Locations.Create(ctx, loc); err != nil {
			if errors.Is(err, store.ErrLocationExists) {
				c.Skipped++
				continue
			}
			return c, fmt.Errorf("insert location %q: %w", f.Province, err)
		}
		c.Inserted++
	}
	return c, nil
}

func (s *Seeder) seedAdmin(ctx context.Context) (AdminResult, error) {
	_, err := s.stores.Users.GetByEmail(ctx, AdminEmail)
	if err == nil {
		return AdminResult{Skipped: true}, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return AdminResult{}, fmt.Errorf("lookup admin: %w", err)
	}

	admin, err := s.newUser(AdminName, adminDateOfBirth, AdminEmail, "", AdminPassword, domain.RoleAdmin)
	if err != nil {
		return AdminResult{}, err
	}
	if err := s.stores.Users.Create(ctx, admin); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return AdminResult{Skipped: true}, nil
		}
		return AdminResult{}, fmt.Errorf("create admin: %w", err)
	}
	return AdminResult{Created: true}, nil
}

func (s *Seeder) newUser(
	fullName string,
	dob time.Time,
	email, phone, password string,
	role domain.Role,
) (*domain.User, error) {
	user, err := domain.NewUser(fullName, dob, email, phone, password)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", email, err)
	}
	user.HashedPassword, err = s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	user.CurrentRole = role
	return user, nil
}

// Reset deletes every record of every kind. There is no rollback when a
// later deletion fails.
func (s *Seeder) Reset(ctx context.Context) (*ResetResult, error) {
	var (
		res ResetResult
		err error
	)
	steps := []struct {
		name string
		del  func(context.Context) (int64, error)
		dst  *int64
	}{
		{"messages", s.stores.Messages.DeleteAll, &res.Messages},
		{"favorites", s.stores.Favorites.DeleteAll, &res.Favorites},
		{"tasks", s.stores.Tasks.DeleteAll, &res.Tasks},
		{"users", s.stores.Users.DeleteAll, &res.Users},
		{"categories", s.stores.Categories.DeleteAll, &res.Categories},
		{"locations", s.stores.Locations.DeleteAll, &res.Locations},
	}
	for _, step := range steps {
		if *step.dst, err = step.del(ctx); err != nil {
			return nil, fmt.Errorf("reset %s: %w", step.name, err)
		}
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("database reset",
		slog.Int64("users", res.Users),
		slog.Int64("tasks", res.Tasks),
		slog.Int64("messages", res.Messages))
	return &res, nil
}

func (s *Seeder) seedDemo(ctx context.Context, demo *Demo, ref *Reference) (*DemoResult, error) {
	res := &DemoResult{}

	users := make(map[string]uuid.UUID, len(demo.Users))
	for _, f := range demo.Users {
		id, created, err := s.demoUser(ctx, f, demo.Password)
		if err != nil {
			return nil, err
		}
		users[f.Email] = id
		if created {
			res.Users.Inserted++
		} else {
			res.Users.Skipped++
		}
	}

	wards := make(map[string][]string, len(ref.Locations))
	for _, l := range ref.Locations {
		wards[l.Province] = l.Wards
	}

	tasks := make(map[string]uuid.UUID, len(demo.Tasks))
	fresh := make(map[string]bool, len(demo.Tasks))
	for _, f := range demo.Tasks {
		id, created, err := s.demoTask(ctx, f, users, wards)
		if err != nil {
			return nil, err
		}
		tasks[f.Key] = id
		fresh[f.Key] = created
		if created {
			res.Tasks.Inserted++
		} else {
			res.Tasks.Skipped++
		}
	}

	base := s.now().UTC().Add(-time.Duration(len(demo.Messages)) * time.Minute)
	for i, f := range demo.Messages {
		// Conversations of tasks that already existed are left untouched.
		if !fresh[f.Task] {
			res.Messages.Skipped++
			continue
		}
		msg, err := domain.NewMessage(tasks[f.Task], users[f.From], users[f.To], f.Content)
		if err != nil {
			return nil, fmt.Errorf("demo message %d: %w", i, err)
		}
		msg.IsRead = f.Read
		msg.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		msg.UpdatedAt = msg.CreatedAt
		if err := s.stores.Messages.Create(ctx, msg); err != nil {
			return nil, fmt.Errorf("insert demo message %d: %w", i, err)
		}
		res.Messages.Inserted++
	}

	for _, f := range demo.Favorites {
		fav, err := domain.NewFavorite(users[f.Tasker], tasks[f.Task])
		if err != nil {
			return nil, fmt.Errorf("demo favorite %s/%s: %w", f.Tasker, f.Task, err)
		}
		if err := s.stores.Favorites.Create(ctx, fav); err != nil {
			if errors.Is(err, store.ErrFavoriteExists) {
				res.Favorites.Skipped++
				continue
			}
			return nil, fmt.Errorf("insert demo favorite: %w", err)
		}
		res.Favorites.Inserted++
	}

	return res, nil
}

func (s *Seeder) demoUser(ctx context.Context, f UserFixture, password string) (uuid.UUID, bool, error) {
	existing, err := s.stores.Users.GetByEmail(ctx, f.Email)
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return uuid.Nil, false, fmt.Errorf("lookup demo user %q: %w", f.Email, err)
	}

	dob, err := time.Parse(time.DateOnly, f.DateOfBirth)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("demo user %q: invalid date of birth: %w", f.Email, err)
	}
	user, err := s.newUser(f.FullName, dob, f.Email, f.Phone, password, domain.Role(f.Role))
	if err != nil {
		return uuid.Nil, false, err
	}
	if err := s.stores.Users.Create(ctx, user); err != nil {
		return uuid.Nil, false, fmt.Errorf("insert demo user %q: %w", f.Email, err)
	}
	return user.ID, true, nil
}

func (s *Seeder) demoTask(
	ctx context.Context,
	f TaskFixture,
	users map[string]uuid.UUID,
	wards map[string][]string,
) (uuid.UUID, bool, error) {
	requester, ok := users[f.Requester]
	if !ok {
		return uuid.Nil, false, fmt.Errorf("demo task %q: unknown requester %q", f.Key, f.Requester)
	}

	existing, err := s.stores.Tasks.List(ctx, domain.TaskFilter{RequesterID: requester})
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("lookup demo task %q: %w", f.Key, err)
	}
	for _, t := range existing {
		if t.Title == f.Title {
			return t.ID, false, nil
		}
	}

	provinceWards := wards[f.Province]
	if f.WardIndex < 0 || f.WardIndex >= len(provinceWards) {
		return uuid.Nil, false, fmt.Errorf("demo task %q: no ward %d in %q", f.Key, f.WardIndex, f.Province)
	}

	category, err := s.stores.Categories.GetByName(ctx, f.Category)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("demo task %q: category %q: %w", f.Key, f.Category, err)
	}

	task, err := domain.NewTask(
		requester,
		f.Title,
		f.Description,
		f.Category,
		f.Images,
		domain.TaskLocation{Province: f.Province, Ward: provinceWards[f.WardIndex]},
		f.Price,
		category.PostingFee,
		s.now().UTC().AddDate(0, 0, f.DeadlineDays),
	)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("demo task %q: %w", f.Key, err)
	}
	task.PaymentProofURL = f.PaymentProofURL
	if f.Status != "" {
		task.Status = domain.TaskStatus(f.Status)
	}
	if err := s.stores.Tasks.Create(ctx, task); err != nil {
		return uuid.Nil, false, fmt.Errorf("insert demo task %q: %w", f.Key, err)
	}
	return task.ID, true, nil
}
