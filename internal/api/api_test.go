package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeBuilder/internal/editor"
	"resumeBuilder/internal/events"
	"resumeBuilder/internal/render"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/storage"
	"resumeBuilder/internal/store"
	"resumeBuilder/internal/tasks"
)

type fakeStorage struct {
	uploaded map[string][]byte
	types    map[string]string
	deleted  []string
	listed   []storage.ObjectMeta
	prefix   string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploaded: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeStorage) UploadFile(_ context.Context, objectName string, reader io.Reader, _ int64, contentType string) error {
	b, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.uploaded[objectName] = b
	s.types[objectName] = contentType
	return nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	delete(s.uploaded, objectKey)
	return nil
}

func (s *fakeStorage) ListObjects(_ context.Context, prefix string, _ int) ([]storage.ObjectMeta, error) {
	s.prefix = prefix
	return s.listed, nil
}

func (s *fakeStorage) PresignDownload(_ context.Context, objectKey string, _ time.Duration, _ string) (string, error) {
	return "https://example.invalid/" + objectKey, nil
}

type fakeScanner struct {
	err   error
	calls int
}

func (s *fakeScanner) Scan(r io.Reader) error {
	s.calls++
	_, _ = io.Copy(io.Discard, r)
	return s.err
}

type fakeQueue struct {
	tasks []*asynq.Task
}

func (q *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type()}, nil
}

type fakeCounter struct {
	counts map[string]int64
}

func (f *fakeCounter) Incr(ctx context.Context, key string) *redis.IntCmd {
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounter) Expire(context.Context, string, time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(true, nil)
}

type testEnv struct {
	router *gin.Engine
	store  *store.Store
	hub    *events.Hub
}

func newTestEnv(t *testing.T, mutate func(*Dependencies)) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := events.NewHub()

	s, err := store.Open(context.Background(), store.NewMemoryBackend(),
		store.WithLogger(logger),
		store.WithPublisher(hub),
	)
	require.NoError(t, err)
	renderer, err := render.New(nil, logger)
	require.NoError(t, err)

	deps := Dependencies{
		Store:    s,
		Sessions: editor.NewRegistry(s, logger, editor.WithDelay(time.Hour)),
		Renderer: renderer,
		Events:   hub,
		Logger:   logger,
	}
	if mutate != nil {
		mutate(&deps)
	}
	return testEnv{router: NewRouter(deps), store: s, hub: hub}
}

func (e testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(v)
	default:
		b, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthAndCorrelationID(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Correlation-ID", "abc")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", w.Header().Get("X-Correlation-ID"))

	w = env.do(t, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
}

func TestGetDocument(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/v1/document", nil)

	require.Equal(t, http.StatusOK, w.Code)
	doc := decodeBody[resume.Document](t, w)
	assert.Equal(t, resume.SeedDocument(), doc)
}

func TestSections_UnknownIDIs404(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/v1/sections/missing"},
		{http.MethodPost, "/v1/sections/missing/visibility"},
		{http.MethodDelete, "/v1/sections/missing"},
	} {
		w := env.do(t, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, tc.path)
	}

	w := env.do(t, http.MethodPut, "/v1/sections/missing/data", gin.H{"data": []any{}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSections_UpdateData(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPut, "/v1/sections/projects/data", `{"data": {"content": "x"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/v1/sections/projects/data",
		`{"data": [{"id": "p1", "title": "Compiler"}], "iconName": "code"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	sec, ok := env.store.Section("projects")
	require.True(t, ok)
	assert.Equal(t, "code", sec.IconName)
	assert.Equal(t, resume.Timeline{{ID: "p1", Title: "Compiler"}}, sec.Data)
}

func TestSections_ChangeEditorType(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPut, "/v1/sections/education/editor-type", gin.H{"editorType": "grid"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/v1/sections/education/editor-type", gin.H{"editorType": "list"})
	require.Equal(t, http.StatusOK, w.Code)
	sec, _ := env.store.Section("education")
	assert.Equal(t, resume.KindList, sec.Data.Kind())
}

func TestSections_CreateReorderDelete(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/v1/sections", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeBody[resume.Section](t, w)
	assert.Equal(t, 6, created.Order)
	assert.Equal(t, resume.SectionCustom, created.Type)

	w = env.do(t, http.MethodPut, "/v1/sections/order", gin.H{"ids": []string{"projects"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	order := []string{created.ID, "experience", "education", "projects", "advantages"}
	w = env.do(t, http.MethodPut, "/v1/sections/order", gin.H{"ids": order})
	require.Equal(t, http.StatusOK, w.Code)
	var got []string
	for _, sec := range decodeBody[[]resume.Section](t, w) {
		got = append(got, sec.ID)
	}
	assert.Equal(t, order, got)

	w = env.do(t, http.MethodDelete, "/v1/sections/"+resume.BasicSectionID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodDelete, "/v1/sections/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	_, ok := env.store.Section(created.ID)
	assert.False(t, ok)
}

func TestSections_UpdateProps(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPatch, "/v1/sections/education", gin.H{"title": "Schools", "visible": false})

	require.Equal(t, http.StatusOK, w.Code)
	sec := decodeBody[resume.Section](t, w)
	assert.Equal(t, "Schools", sec.Title)
	assert.False(t, sec.Visible)
	assert.Equal(t, "graduation-cap", sec.IconName)
}

func TestDocument_Pages(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/v1/document/pages/2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decodeBody[struct {
		Sections []resume.Section `json:"sections"`
	}](t, w)
	require.Len(t, page.Sections, 1)
	assert.Equal(t, "experience", page.Sections[0].ID)

	w = env.do(t, http.MethodGet, "/v1/document/pages/0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/v1/document/page-settings", gin.H{"enableMultiPage": true, "totalPages": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/v1/document/pages", gin.H{"pages": []gin.H{{"sectionId": "projects", "pageNumber": 2}}})
	require.Equal(t, http.StatusOK, w.Code)
	sec, _ := env.store.Section("projects")
	assert.Equal(t, 2, sec.PageNumber)

	w = env.do(t, http.MethodPost, "/v1/document/pages/disable", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, resume.PageSettings{TotalPages: 1}, env.store.Snapshot().PageSettings)

	w = env.do(t, http.MethodPost, "/v1/document/pages/enable", gin.H{"totalPages": 3})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, resume.PageSettings{EnableMultiPage: true, TotalPages: 3}, env.store.Snapshot().PageSettings)
}

func TestDocument_ExportImport(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/v1/document/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	exported := w.Body.String()

	w = env.do(t, http.MethodPost, "/v1/document/import", `{"id": "x", "pageSettings": {"totalPages": 1}, "sections": []}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(t, http.MethodPost, "/v1/document/import", "{")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, err := env.store.DeleteSection(context.Background(), "projects")
	require.NoError(t, err)

	w = env.do(t, http.MethodPost, "/v1/document/import", exported)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	_, ok := env.store.Section("projects")
	assert.True(t, ok)
}

func TestDocument_UpdateMetaAndReset(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPut, "/v1/document/meta", gin.H{"layout": "diagonal"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/v1/document/meta", gin.H{"title": "CV"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CV", env.store.Snapshot().Title)

	w = env.do(t, http.MethodPost, "/v1/document/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, resume.SeedDocument(), env.store.Snapshot())
}

func TestSessions_Lifecycle(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/v1/sessions", gin.H{"sectionId": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/v1/sessions", gin.H{"sectionId": "advantages"})
	require.Equal(t, http.StatusCreated, w.Code)
	opened := decodeBody[struct {
		Session editor.Info `json:"session"`
	}](t, w)
	assert.Equal(t, resume.KindText, opened.Session.Kind)
	path := "/v1/sessions/" + opened.Session.ID

	w = env.do(t, http.MethodPut, path, gin.H{"data": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, path, gin.H{"data": gin.H{"content": "fast learner"}})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, decodeBody[editor.Info](t, w).Dirty)

	before, _ := env.store.Section("advantages")
	assert.NotEqual(t, resume.Text{Content: "fast learner"}, before.Data)

	w = env.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	after, _ := env.store.Section("advantages")
	assert.Equal(t, resume.Text{Content: "fast learner"}, after.Data)

	w = env.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPreview(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/v1/preview", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `data-section="projects"`)
}

func newAvatarUpload(t *testing.T, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="avatar.png"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func postAvatar(env testEnv, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/assets/avatar", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestUploadAvatar(t *testing.T) {
	objects := newFakeStorage()
	scanner := &fakeScanner{}
	env := newTestEnv(t, func(d *Dependencies) {
		d.Assets = objects
		d.Scanner = scanner
	})

	body, ct := newAvatarUpload(t, "image/png", []byte("\x89PNG\r\n\x1a\n"))
	w := postAvatar(env, body, ct)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	key := decodeBody[map[string]string](t, w)["objectKey"]
	assert.Contains(t, objects.uploaded, key)
	assert.Equal(t, "image/png", objects.types[key])
	assert.Equal(t, 1, scanner.calls)
	basic, _ := env.store.BasicSection()
	assert.Equal(t, key, basic.Data.(resume.BasicInfo).Avatar)
	assert.Empty(t, objects.deleted)

	body, ct = newAvatarUpload(t, "image/jpeg", []byte("\xff\xd8\xff"))
	w = postAvatar(env, body, ct)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []string{key}, objects.deleted)
}

func TestListExports(t *testing.T) {
	objects := newFakeStorage()
	older := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	objects.listed = []storage.ObjectMeta{
		{Key: "exports/1/20261001T080000Z.json", LastModified: older},
		{Key: "exports/1/20261002T080000Z.json", LastModified: older.Add(24 * time.Hour)},
	}
	env := newTestEnv(t, func(d *Dependencies) { d.Assets = objects })

	w := env.do(t, http.MethodGet, "/v1/document/exports", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "exports/1/", objects.prefix)
	body := decodeBody[struct {
		Items []struct {
			ObjectKey string `json:"objectKey"`
			URL       string `json:"url"`
		} `json:"items"`
	}](t, w)
	require.Len(t, body.Items, 2)
	assert.Equal(t, "exports/1/20261002T080000Z.json", body.Items[0].ObjectKey)
	assert.NotEmpty(t, body.Items[0].URL)
}

func TestUploadAvatar_Rejections(t *testing.T) {
	objects := newFakeStorage()
	scanner := &fakeScanner{err: ErrMaliciousFile}
	env := newTestEnv(t, func(d *Dependencies) {
		d.Assets = objects
		d.Scanner = scanner
	})

	body, ct := newAvatarUpload(t, "image/png", []byte("X5O!P%@AP"))
	assert.Equal(t, http.StatusBadRequest, postAvatar(env, body, ct).Code)

	body, ct = newAvatarUpload(t, "application/pdf", []byte("%PDF"))
	assert.Equal(t, http.StatusBadRequest, postAvatar(env, body, ct).Code)
	assert.Empty(t, objects.uploaded)

	disabled := newTestEnv(t, nil)
	body, ct = newAvatarUpload(t, "image/png", []byte("png"))
	assert.Equal(t, http.StatusServiceUnavailable, postAvatar(disabled, body, ct).Code)
}

func TestJobs(t *testing.T) {
	disabled := newTestEnv(t, nil)
	assert.Equal(t, http.StatusServiceUnavailable, disabled.do(t, http.MethodPost, "/v1/document/pdf/jobs", nil).Code)

	queue := &fakeQueue{}
	env := newTestEnv(t, func(d *Dependencies) {
		d.Jobs = queue
		d.RateLimiter = &fakeCounter{}
		d.JobsPerHour = 2
	})

	w := env.do(t, http.MethodPost, "/v1/document/export/jobs", nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	require.Len(t, queue.tasks, 1)
	assert.Equal(t, tasks.TypeDocumentExport, queue.tasks[0].Type())

	payload, err := tasks.ParseDocumentPayload(queue.tasks[0])
	require.NoError(t, err)
	assert.NotEmpty(t, payload.CorrelationID)
	doc, err := resume.Decode(payload.Document)
	require.NoError(t, err)
	assert.Equal(t, "1", doc.ID)

	assert.Equal(t, http.StatusAccepted, env.do(t, http.MethodPost, "/v1/document/pdf/jobs", nil).Code)
	assert.Equal(t, http.StatusAccepted, env.do(t, http.MethodPost, "/v1/document/pdf/jobs", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, env.do(t, http.MethodPost, "/v1/document/pdf/jobs", nil).Code)
	assert.Equal(t, tasks.TypeDocumentPDF, queue.tasks[1].Type())
}

func TestWebSocket_ForwardsChangeEvents(t *testing.T) {
	env := newTestEnv(t, nil)
	server := httptest.NewServer(env.router)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/v1/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	_, err = env.store.ToggleVisibility(context.Background(), "education")
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev events.Event
	require.NoError(t, json.Unmarshal(msg, &ev))
	assert.Equal(t, events.TypeDocumentChanged, ev.Type)
	assert.Equal(t, "toggle_visibility", ev.Op)
	assert.Equal(t, "education", ev.SectionID)
}
