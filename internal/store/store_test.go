package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeBuilder/internal/events"
	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/sections"
)

var errDiskFull = errors.New("disk full")

type failingBackend struct {
	*MemoryBackend
	failSave bool
	saves    int
}

func (f *failingBackend) Save(ctx context.Context, key string, data []byte) error {
	f.saves++
	if f.failSave {
		return errDiskFull
	}
	return f.MemoryBackend.Save(ctx, key, data)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openStore(t *testing.T, backend Backend, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	s, err := Open(context.Background(), backend, opts...)
	require.NoError(t, err)
	return s
}

func storedDocument(t *testing.T, backend Backend, key string) resume.Document {
	t.Helper()
	data, err := backend.Load(context.Background(), key)
	require.NoError(t, err)
	doc, err := resume.Decode(data)
	require.NoError(t, err)
	return doc
}

func TestOpen_SeedsEmptyBackend(t *testing.T) {
	backend := NewMemoryBackend()

	s := openStore(t, backend)

	assert.Equal(t, resume.SeedDocument(), s.Snapshot())
	assert.Equal(t, resume.SeedDocument(), storedDocument(t, backend, DefaultKey))
}

func TestOpen_UsesStoredDocument(t *testing.T) {
	backend := NewMemoryBackend()
	doc := resume.SeedDocument()
	doc.Title = "stored"
	data, err := resume.Encode(doc)
	require.NoError(t, err)
	require.NoError(t, backend.Save(context.Background(), "custom", data))

	s := openStore(t, backend, WithKey("custom"))

	assert.Equal(t, "stored", s.Snapshot().Title)
}

func TestOpen_CorruptDocument(t *testing.T) {
	backend := NewMemoryBackend()
	require.NoError(t, backend.Save(context.Background(), DefaultKey, []byte("{")))

	_, err := Open(context.Background(), backend, WithLogger(quietLogger()))

	assert.ErrorIs(t, err, resume.ErrMalformedDocument)
}

func TestMutation_PersistsWholeDocument(t *testing.T) {
	backend := NewMemoryBackend()
	s := openStore(t, backend)
	ctx := context.Background()

	ok, err := s.ToggleVisibility(ctx, "education")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, s.Snapshot(), storedDocument(t, backend, DefaultKey))
	sec, _ := s.Section("education")
	assert.False(t, sec.Visible)
}

func TestMutation_UnknownSectionIsSilentNoop(t *testing.T) {
	backend := &failingBackend{MemoryBackend: NewMemoryBackend()}
	s := openStore(t, backend)
	saves := backend.saves

	ok, err := s.UpdateSectionData(context.Background(), "missing", resume.Timeline{}, nil)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, saves, backend.saves)
}

func TestMutation_PersistFailureKeepsMemoryInSync(t *testing.T) {
	backend := &failingBackend{MemoryBackend: NewMemoryBackend()}
	s := openStore(t, backend)
	before := s.Snapshot()
	backend.failSave = true

	_, err := s.ToggleVisibility(context.Background(), "education")

	assert.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, before, s.Snapshot())
}

func TestAddCustomSection_OrderAfterExisting(t *testing.T) {
	s := openStore(t, NewMemoryBackend(), WithIDGenerator(func() string { return "custom-1" }))

	sec, err := s.AddCustomSection(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "custom-1", sec.ID)
	assert.Equal(t, 6, sec.Order)
	got, ok := s.Section("custom-1")
	require.True(t, ok)
	assert.Equal(t, sec, got)
}

func TestDeleteSection_BasicIsProtected(t *testing.T) {
	s := openStore(t, NewMemoryBackend())

	ok, err := s.DeleteSection(context.Background(), resume.BasicSectionID)

	require.NoError(t, err)
	assert.False(t, ok)
	_, found := s.BasicSection()
	assert.True(t, found)
}

func TestReorderIDs(t *testing.T) {
	s := openStore(t, NewMemoryBackend())
	ctx := context.Background()

	require.NoError(t, s.ReorderIDs(ctx, []string{"experience", "advantages", "education", "projects"}))

	var got []string
	for _, sec := range s.NonBasicSections() {
		got = append(got, sec.ID)
	}
	assert.Equal(t, []string{"experience", "advantages", "education", "projects"}, got)

	assert.ErrorIs(t, s.ReorderIDs(ctx, []string{"experience"}), ErrInvalidOrder)
	assert.ErrorIs(t, s.ReorderIDs(ctx, []string{"experience", "experience", "education", "projects"}), ErrInvalidOrder)
	assert.ErrorIs(t, s.ReorderIDs(ctx, []string{resume.BasicSectionID, "advantages", "education", "projects"}), ErrInvalidOrder)
}

func TestPageSettings(t *testing.T) {
	s := openStore(t, NewMemoryBackend())
	ctx := context.Background()

	assert.ErrorIs(t, s.UpdatePageSettings(ctx, resume.PageSettings{TotalPages: 0}), ErrInvalidPageSettings)

	require.NoError(t, s.DisableMultiPage(ctx))
	doc := s.Snapshot()
	assert.Equal(t, resume.PageSettings{EnableMultiPage: false, TotalPages: 1}, doc.PageSettings)
	for _, sec := range doc.Sections {
		assert.Equal(t, 1, sec.EffectivePage(), sec.ID)
	}

	require.NoError(t, s.EnableMultiPage(ctx, 0))
	assert.Equal(t, resume.PageSettings{EnableMultiPage: true, TotalPages: 2}, s.Snapshot().PageSettings)

	require.NoError(t, s.AutoAssignPages(ctx))
	assert.Equal(t, map[int]int{1: 2, 2: 2}, s.PageCounts())

	require.NoError(t, s.ResetPageAssignments(ctx))
	assert.Equal(t, map[int]int{1: 4, 2: 0}, s.PageCounts())
}

func TestUpdateMeta(t *testing.T) {
	s := openStore(t, NewMemoryBackend())
	ctx := context.Background()
	title := "CV"
	layout := resume.LayoutSideBySide
	bad := resume.Layout("diagonal")

	require.NoError(t, s.UpdateMeta(ctx, Meta{Title: &title, Layout: &layout}))
	assert.ErrorIs(t, s.UpdateMeta(ctx, Meta{Layout: &bad}), ErrInvalidLayout)

	doc := s.Snapshot()
	assert.Equal(t, "CV", doc.Title)
	assert.Equal(t, resume.LayoutSideBySide, doc.Layout)
	assert.Equal(t, resume.SeedDocument().Template, doc.Template)
}

func TestReset(t *testing.T) {
	s := openStore(t, NewMemoryBackend())
	ctx := context.Background()
	_, err := s.DeleteSection(ctx, "projects")
	require.NoError(t, err)

	require.NoError(t, s.Reset(ctx))

	assert.Equal(t, resume.SeedDocument(), s.Snapshot())
}

func TestImport_SectionsByPage(t *testing.T) {
	s := openStore(t, NewMemoryBackend())
	payload := `{
		"id": "imported",
		"title": "Imported",
		"template": "default",
		"layout": "top-bottom",
		"pageSettings": {"enableMultiPage": true, "totalPages": 2},
		"sections": [
			{"id": "basic", "title": "Basic", "type": "basic", "visible": true, "order": 1,
			 "data": {"name": "A", "email": "a@example.com", "phone": "1"}},
			{"id": "first", "title": "First", "type": "list", "editorType": "list", "visible": true, "order": 2, "pageNumber": 1,
			 "data": [{"id": "1", "content": "x"}]},
			{"id": "second", "title": "Second", "type": "text", "editorType": "text", "visible": true, "order": 3, "pageNumber": 2,
			 "data": {"content": "y"}}
		]
	}`

	require.NoError(t, s.Import(context.Background(), []byte(payload)))

	page2 := s.SectionsByPage(2)
	require.Len(t, page2, 1)
	assert.Equal(t, "second", page2[0].ID)
	assert.Equal(t, "imported", s.Snapshot().ID)
}

func TestImport_InvalidLeavesDocumentUntouched(t *testing.T) {
	s := openStore(t, NewMemoryBackend())
	before := s.Snapshot()

	err := s.Import(context.Background(), []byte(`{"id": "x", "pageSettings": {"totalPages": 1}, "sections": []}`))

	assert.ErrorIs(t, err, resume.ErrInvalidDocument)
	assert.Equal(t, before, s.Snapshot())

	err = s.Import(context.Background(), []byte("not json"))
	assert.ErrorIs(t, err, resume.ErrMalformedDocument)
}

func TestExport_ClearsAvatar(t *testing.T) {
	s := openStore(t, NewMemoryBackend())
	basic, _ := s.BasicSection()
	info := basic.Data.(resume.BasicInfo)
	info.Avatar = "data:image/png;base64,AAAA"
	_, err := s.UpdateSectionData(context.Background(), basic.ID, info, nil)
	require.NoError(t, err)

	data, err := s.Export()
	require.NoError(t, err)

	doc, err := resume.Decode(data)
	require.NoError(t, err)
	exported, _ := doc.BasicSection()
	assert.Empty(t, exported.Data.(resume.BasicInfo).Avatar)
	stored, _ := s.BasicSection()
	assert.NotEmpty(t, stored.Data.(resume.BasicInfo).Avatar)
}

func TestMutation_PublishesChangeEvent(t *testing.T) {
	hub := events.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := hub.Subscribe(ctx)
	require.NoError(t, err)

	s := openStore(t, NewMemoryBackend(), WithPublisher(hub))
	_, err = s.ChangeEditorType(ctx, "education", resume.EditorList)
	require.NoError(t, err)

	select {
	case msg := <-sub:
		var ev events.Event
		require.NoError(t, json.Unmarshal(msg, &ev))
		assert.Equal(t, events.TypeDocumentChanged, ev.Type)
		assert.Equal(t, "change_editor_type", ev.Op)
		assert.Equal(t, "education", ev.SectionID)
	case <-time.After(time.Second):
		t.Fatal("expected change event")
	}
}

func TestMutation_NotifiesObserver(t *testing.T) {
	var ops []string
	s := openStore(t, NewMemoryBackend(), WithObserver(func(op string, _ time.Duration, _ error) {
		ops = append(ops, op)
	}))
	ctx := context.Background()

	require.NoError(t, s.SetPages(ctx, []sections.PageUpdate{{SectionID: "projects", PageNumber: 2}}))
	_, err := s.ToggleVisibility(ctx, "missing")
	require.NoError(t, err)

	assert.Equal(t, []string{"set_pages"}, ops)
}

func TestFileBackend_RoundTrip(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = backend.Load(ctx, DefaultKey)
	assert.ErrorIs(t, err, ErrNotFound)

	s := openStore(t, backend)
	_, err = s.ToggleVisibility(ctx, "projects")
	require.NoError(t, err)

	reopened := openStore(t, backend)
	assert.Equal(t, s.Snapshot(), reopened.Snapshot())
}

func TestUpdateSectionData_RejectsWrongShape(t *testing.T) {
	s := openStore(t, NewMemoryBackend())
	before := s.Snapshot()

	_, err := s.UpdateSectionData(context.Background(), "projects", resume.Text{Content: "x"}, nil)

	assert.ErrorIs(t, err, resume.ErrShapeMismatch)
	assert.Equal(t, before, s.Snapshot())
}

func TestImport_WithoutPageSettings(t *testing.T) {
	s := openStore(t, NewMemoryBackend())
	payload := `{
		"id": "legacy",
		"sections": [
			{"id": "basic", "title": "Basic", "type": "basic", "visible": true, "order": 1,
			 "data": {"name": "A", "email": "a@example.com", "phone": "1"}}
		]
	}`

	require.NoError(t, s.Import(context.Background(), []byte(payload)))

	assert.Equal(t, resume.DefaultPageSettings(), s.Snapshot().PageSettings)
}
