package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"tasktracker/internal/models"
	"tasktracker/internal/storage"
	"tasktracker/internal/storage/local"
	"tasktracker/pkg/apierrors"
	"tasktracker/pkg/translator"
)

type ServerSuite struct {
	suite.Suite
	repo   storage.Repository
	router *gin.Engine
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *ServerSuite) SetupTest() {
	repo, err := local.Open("", quietLogger())
	s.Require().NoError(err)
	bundle, err := translator.New(translator.Config{})
	s.Require().NoError(err)

	s.repo = repo
	s.router = New(repo, bundle, quietLogger(), "").Engine()
}

func (s *ServerSuite) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *ServerSuite) decode(rec *httptest.ResponseRecorder, out any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}

func (s *ServerSuite) errorOf(rec *httptest.ResponseRecorder) apierrors.Err {
	var env apierrors.JsonErr
	s.decode(rec, &env)
	s.Require().Equal(rec.Code, env.ErrDetails.Code)
	return env.ErrDetails
}

func (s *ServerSuite) createTask(body string) models.Task {
	rec := s.do(http.MethodPost, "/api/tasks", body)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var task models.Task
	s.decode(rec, &task)
	return task
}

func (s *ServerSuite) createCategory(body string) models.Category {
	rec := s.do(http.MethodPost, "/api/categories", body)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var category models.Category
	s.decode(rec, &category)
	return category
}

func (s *ServerSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/api/health", "")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"OK"}`, rec.Body.String())
}

func (s *ServerSuite) TestRequestIDIsEchoedOrAssigned() {
	rec := s.do(http.MethodGet, "/api/health", "", "X-Request-ID", "abc-123")
	s.Equal("abc-123", rec.Header().Get("X-Request-ID"))

	rec = s.do(http.MethodGet, "/api/health", "")
	s.Len(rec.Header().Get("X-Request-ID"), 36)
}

func (s *ServerSuite) TestCreateTaskDefaults() {
	task := s.createTask(`{"title":"Buy milk"}`)
	s.NotZero(task.ID)
	s.Equal("Buy milk", task.Title)
	s.False(task.IsCompleted)
	s.Equal(models.PriorityMedium, task.Priority)
	s.Equal([]string{}, task.Tags)
	s.Nil(task.Category)
}

func (s *ServerSuite) TestCreateTaskValidation() {
	rec := s.do(http.MethodPost, "/api/tasks", `{"title":"","priority":"urgent","dueDate":"tomorrow"}`)
	s.Require().Equal(http.StatusBadRequest, rec.Code)
	e := s.errorOf(rec)
	s.Equal("Validation failed.", e.Message)

	fields := map[string]string{}
	for _, f := range e.Fields {
		fields[f.Field] = f.Message
	}
	s.Contains(fields, "dueDate")

	rec = s.do(http.MethodPost, "/api/tasks", `{"title":"","priority":"urgent"}`)
	s.Require().Equal(http.StatusBadRequest, rec.Code)
	fields = map[string]string{}
	for _, f := range s.errorOf(rec).Fields {
		fields[f.Field] = f.Message
	}
	s.Equal("must not be empty", fields["title"])
	s.Contains(fields, "priority")

	rec = s.do(http.MethodPost, "/api/tasks", `{"title":"x","categoryId":42}`)
	s.Require().Equal(http.StatusBadRequest, rec.Code)
	s.Equal("categoryId", s.errorOf(rec).Fields[0].Field)

	rec = s.do(http.MethodPost, "/api/tasks", `not json`)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("Request body is not valid JSON.", s.errorOf(rec).Message)

	rec = s.do(http.MethodGet, "/api/tasks", "")
	var tasks []models.Task
	s.decode(rec, &tasks)
	s.Empty(tasks)
}

func (s *ServerSuite) TestJapaneseMessages() {
	rec := s.do(http.MethodGet, "/api/tasks/999", "", "Accept-Language", "ja-JP,ja;q=0.9")
	s.Require().Equal(http.StatusNotFound, rec.Code)
	s.Equal("タスクが見つかりません。", s.errorOf(rec).Message)
}

func (s *ServerSuite) TestTaskIDs() {
	rec := s.do(http.MethodGet, "/api/tasks/abc", "")
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("Invalid task id.", s.errorOf(rec).Message)

	s.Equal(http.StatusBadRequest, s.do(http.MethodDelete, "/api/tasks/0", "").Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, "/api/tasks/7", "").Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodPatch, "/api/tasks/7/complete", "").Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodPut, "/api/tasks/7", `{"title":"x"}`).Code)
}

func (s *ServerSuite) TestPartialUpdate() {
	work := s.createCategory(`{"name":"Work"}`)
	created := s.createTask(`{"title":"Report","priority":"high","dueDate":"2025-09-01","categoryId":` +
		jsonInt(work.ID) + `,"tags":["q3"]}`)
	s.Require().NotNil(created.Category)
	s.Equal("Work", created.Category.Name)

	rec := s.do(http.MethodPut, "/api/tasks/"+jsonInt(created.ID), `{"description":"x"}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var updated models.Task
	s.decode(rec, &updated)
	s.Equal("x", *updated.Description)
	s.Equal("Report", updated.Title)
	s.Equal(models.PriorityHigh, updated.Priority)
	s.Equal("2025-09-01", updated.DueDate.String())
	s.Equal(work.ID, *updated.CategoryID)
	s.Equal([]string{"q3"}, updated.Tags)

	rec = s.do(http.MethodPut, "/api/tasks/"+jsonInt(created.ID), `{"dueDate":null,"categoryId":null}`)
	s.Require().Equal(http.StatusOK, rec.Code)
	var cleared models.Task
	s.decode(rec, &cleared)
	s.Nil(cleared.DueDate)
	s.Nil(cleared.CategoryID)
	s.Nil(cleared.Category)
	s.Equal("x", *cleared.Description)
}

func (s *ServerSuite) TestToggleTwice() {
	task := s.createTask(`{"title":"Walk"}`)
	path := "/api/tasks/" + jsonInt(task.ID) + "/complete"

	var once, twice models.Task
	rec := s.do(http.MethodPatch, path, "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &once)
	s.True(once.IsCompleted)

	rec = s.do(http.MethodPatch, path, "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &twice)
	s.False(twice.IsCompleted)
}

func (s *ServerSuite) TestListFiltersAndSorts() {
	s.createTask(`{"title":"low","priority":"low","tags":["home"]}`)
	s.createTask(`{"title":"high","priority":"high","tags":["Urgent"]}`)
	s.createTask(`{"title":"medium","tags":["urgent-ish"]}`)

	var tasks []models.Task
	rec := s.do(http.MethodGet, "/api/tasks?sortBy=priority&order=desc", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &tasks)
	s.Require().Len(tasks, 3)
	s.Equal([]string{"high", "medium", "low"}, titles(tasks))

	rec = s.do(http.MethodGet, "/api/tasks?sortBy=priority&order=asc&tag=urgent", "")
	s.decode(rec, &tasks)
	s.Equal([]string{"medium", "high"}, titles(tasks))

	rec = s.do(http.MethodGet, "/api/tasks?priority=bogus&sortBy=bogus&order=sideways", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &tasks)
	s.Len(tasks, 3)

	rec = s.do(http.MethodGet, "/api/tasks?completed=maybe&categoryId=-1", "")
	s.Require().Equal(http.StatusBadRequest, rec.Code)
	e := s.errorOf(rec)
	s.Equal("Invalid query parameter.", e.Message)
	s.Len(e.Fields, 2)

	rec = s.do(http.MethodGet, "/api/tasks?completed=false", "")
	s.decode(rec, &tasks)
	s.Len(tasks, 3)
}

func (s *ServerSuite) TestCategoryLifecycle() {
	work := s.createCategory(`{"name":"Work","color":"#FF0000"}`)
	s.Equal("#FF0000", work.Color)

	home := s.createCategory(`{"name":"Home"}`)
	s.Equal(models.DefaultCategoryColor, home.Color)

	rec := s.do(http.MethodPost, "/api/categories", `{"name":"Work","color":"#00FF00"}`)
	s.Require().Equal(http.StatusConflict, rec.Code)
	e := s.errorOf(rec)
	s.Equal("name", e.Fields[0].Field)

	rec = s.do(http.MethodPost, "/api/categories", `{"name":"Bad","color":"red"}`)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, "/api/categories/"+jsonInt(home.ID), `{"name":"Work"}`)
	s.Equal(http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPut, "/api/categories/"+jsonInt(home.ID), `{"color":"#00ff00"}`)
	s.Require().Equal(http.StatusOK, rec.Code)
	var recolored models.Category
	s.decode(rec, &recolored)
	s.Equal("Home", recolored.Name)
	s.Equal("#00ff00", recolored.Color)

	var all []models.Category
	s.decode(s.do(http.MethodGet, "/api/categories", ""), &all)
	s.Len(all, 2)

	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/categories/x", "").Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/categories/99", "").Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, "/api/categories/99", "").Code)
}

func (s *ServerSuite) TestEmptyCategoryListsEmptyTasks() {
	empty := s.createCategory(`{"name":"Empty"}`)

	var listed []map[string]json.RawMessage
	s.decode(s.do(http.MethodGet, "/api/categories", ""), &listed)
	s.Require().Len(listed, 1)
	s.Require().Contains(listed[0], "tasks")
	s.JSONEq(`[]`, string(listed[0]["tasks"]))

	var one map[string]json.RawMessage
	s.decode(s.do(http.MethodGet, "/api/categories/"+jsonInt(empty.ID), ""), &one)
	s.Require().Contains(one, "tasks")
	s.JSONEq(`[]`, string(one["tasks"]))
	s.JSONEq(`"Empty"`, string(one["name"]))
}

func (s *ServerSuite) TestDeleteCategoryDetachesTasks() {
	work := s.createCategory(`{"name":"Work","color":"#FF0000"}`)
	report := s.createTask(`{"title":"Report","categoryId":"` + jsonInt(work.ID) + `"}`)
	s.Require().NotNil(report.CategoryID)

	var withTasks models.Category
	s.decode(s.do(http.MethodGet, "/api/categories/"+jsonInt(work.ID), ""), &withTasks)
	s.Len(withTasks.Tasks, 1)

	rec := s.do(http.MethodDelete, "/api/categories/"+jsonInt(work.ID), "")
	s.Require().Equal(http.StatusNoContent, rec.Code)
	s.Empty(rec.Body.Bytes())

	var got models.Task
	rec = s.do(http.MethodGet, "/api/tasks/"+jsonInt(report.ID), "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &got)
	s.Nil(got.CategoryID)
	s.Nil(got.Category)
	s.Equal("Report", got.Title)
}

func (s *ServerSuite) TestDeleteTask() {
	task := s.createTask(`{"title":"gone"}`)
	rec := s.do(http.MethodDelete, "/api/tasks/"+jsonInt(task.ID), "")
	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/tasks/"+jsonInt(task.ID), "").Code)
}

func (s *ServerSuite) TestUnknownAPIRoute() {
	rec := s.do(http.MethodGet, "/api/nope", "")
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("Route not found.", s.errorOf(rec).Message)
}

func (s *ServerSuite) TestMetricsExposition() {
	s.do(http.MethodGet, "/api/health", "")

	rec := s.do(http.MethodGet, "/metrics", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `todo_http_requests_total{method="GET",route="/api/health",status="200"} 1`)
	s.Contains(rec.Body.String(), "todo_http_request_duration_seconds")
}

type failingRepo struct {
	storage.Repository
}

var errBoom = errors.New("boom")

func (failingRepo) Ping(context.Context) error                       { return errBoom }
func (failingRepo) ListTasks(context.Context) ([]models.Task, error) { return nil, errBoom }

func TestStorageFailures(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	router := New(failingRepo{}, nil, logger, "").Engine()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("health: got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("list: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), apierrors.MsgStorageFailure) {
		t.Fatalf("list body: %s", rec.Body.String())
	}
	if !strings.Contains(logs.String(), "boom") {
		t.Fatalf("storage failure was not logged: %s", logs.String())
	}
}

func TestStaticFallback(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	repo, err := local.Open("", nil)
	if err != nil {
		t.Fatal(err)
	}
	router := New(repo, nil, quietLogger(), dir).Engine()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/board/3", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "app") {
		t.Fatalf("spa fallback: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("api miss: got %d", rec.Code)
	}
}

func titles(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func jsonInt(id int64) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}
