package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskie-api/internal/api/middleware"
	"github.com/phrazzld/taskie-api/internal/domain"
	"github.com/phrazzld/taskie-api/internal/mocks"
	"github.com/phrazzld/taskie-api/internal/platform/uploads"
	"github.com/phrazzld/taskie-api/internal/seed"
	"github.com/phrazzld/taskie-api/internal/service"
	"github.com/phrazzld/taskie-api/internal/store"
	"github.com/stretchr/testify/require"
)

const testMaxUpload = 1 << 20

var testDOB = time.Date(1992, 5, 17, 0, 0, 0, 0, time.UTC)

// testAPI is a router over real services backed by an in-memory database.
type testAPI struct {
	t       *testing.T
	db      *mocks.MemoryDB
	stores  store.Stores
	storage *uploads.LocalStorage
	router  chi.Router
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db := mocks.NewMemoryDB()
	stores := db.Stores()
	hasher := &mocks.MockPasswordHasher{}
	jwtService := mocks.TokenPerUser()

	storage, err := uploads.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	uploader := uploads.NewUploader(storage, testMaxUpload, nil, nil)

	users, err := service.NewUserService(stores.Users, hasher, nil)
	require.NoError(t, err)
	tasks, err := service.NewTaskService(stores.Tasks, stores.Categories, nil)
	require.NoError(t, err)
	messages, err := service.NewMessageService(stores.Messages, stores.Tasks, stores.Users, nil)
	require.NoError(t, err)
	favorites, err := service.NewFavoriteService(stores.Favorites, stores.Tasks, nil)
	require.NoError(t, err)
	catalog, err := service.NewCatalogService(stores.Categories, stores.Locations)
	require.NoError(t, err)
	admin, err := service.NewAdminService(stores, seed.NewSeeder(stores, hasher, nil, nil), nil)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(nil))
	RegisterRoutes(r, Handlers{
		Auth:      NewAuthHandler(users, jwtService, uploader, nil),
		Profile:   NewProfileHandler(users, uploader, nil),
		Tasks:     NewTaskHandler(tasks, uploader, nil),
		Messages:  NewMessageHandler(messages, nil),
		Favorites: NewFavoriteHandler(favorites, nil),
		Catalog:   NewCatalogHandler(catalog),
		Admin:     NewAdminHandler(admin, nil),
	}, middleware.NewAuthMiddleware(jwtService, stores.Users, nil))

	return &testAPI{t: t, db: db, stores: stores, storage: storage, router: r}
}

// user stores a user whose password is "secret1".
func (a *testAPI) user(email string, role domain.Role) *domain.User {
	a.t.Helper()
	u, err := domain.NewUser("User "+email, testDOB, email, "", "secret1")
	require.NoError(a.t, err)
	u.Password = ""
	u.HashedPassword = "hashed:secret1"
	u.CurrentRole = role
	require.NoError(a.t, a.stores.Users.Create(context.Background(), u))
	return u
}

func (a *testAPI) category(name string, fee float64) {
	a.t.Helper()
	c, err := domain.NewJobCategory(name, fee, "")
	require.NoError(a.t, err)
	require.NoError(a.t, a.stores.Categories.Create(context.Background(), c))
}

func (a *testAPI) task(requester *domain.User, title string, price float64) *domain.Task {
	a.t.Helper()
	task, err := domain.NewTask(
		requester.ID,
		title,
		"Description of "+title,
		"Dọn dẹp nhà cửa",
		[]string{"/uploads/tasks/a.jpg", "/uploads/tasks/b.jpg"},
		domain.TaskLocation{Province: "Thành phố Huế", Ward: "Phường Phú Hòa"},
		price,
		10000,
		time.Now().Add(72*time.Hour),
	)
	require.NoError(a.t, err)
	require.NoError(a.t, a.stores.Tasks.Create(context.Background(), task))
	return task
}

// do sends a request with an optional JSON body, authenticated as user when
// user is not nil.
func (a *testAPI) do(method, path string, user *domain.User, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.send(req, user)
}

func (a *testAPI) send(req *http.Request, user *domain.User) *httptest.ResponseRecorder {
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+user.ID.String())
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// upload is one file part of a multipart request.
type upload struct {
	field       string
	filename    string
	contentType string
	content     []byte
}

func image(field, filename string) upload {
	return upload{field: field, filename: filename, contentType: "image/jpeg", content: []byte("\xff\xd8\xff fake jpeg")}
}

// multipartRequest builds a multipart request with form fields and files.
func multipartRequest(t *testing.T, method, path string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// response is the decoded envelope of a JSON response.
type response struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
	TraceID string          `json:"trace_id"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()
	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	resp := decode(t, rec)
	require.NoError(t, json.Unmarshal(resp.Data, &v), string(resp.Data))
	return v
}
