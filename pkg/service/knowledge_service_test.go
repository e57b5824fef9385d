package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpaw/pawdeck/pkg/event"
	"github.com/openpaw/pawdeck/pkg/models"
)

func newKnowledgeService(gw *fakeKnowledgeGateway, reset time.Duration, rollback bool) *KnowledgeService {
	st, emitter := newTestStore()
	return NewKnowledgeService(gw, st, reset, Options{Emitter: emitter, RollbackOnFailure: rollback})
}

func TestKnowledgeActivate(t *testing.T) {
	gw := &fakeKnowledgeGateway{ListDocsFn: func(context.Context) ([]models.Document, error) {
		return []models.Document{
			{ID: "d1", Title: "Notes", Content: strings.Repeat("a", 501)},
			{ID: "d2", Title: "Recipes", Content: "short"},
		}, nil
	}}
	s := newKnowledgeService(gw, 0, false)

	require.NoError(t, s.Activate(context.Background()))
	v := s.View()
	assert.Equal(t, []string{"SOUL.md", "USER.md"}, v.MemoryFiles)
	assert.Len(t, v.Documents, 2)
	assert.Equal(t, 3, v.TotalChunks)
}

func TestKnowledgeActivatePartialFailure(t *testing.T) {
	gw := &fakeKnowledgeGateway{ListFilesFn: func(context.Context) ([]string, error) {
		return nil, networkErr()
	}, ListDocsFn: func(context.Context) ([]models.Document, error) {
		return []models.Document{{ID: "d1", Title: "Notes"}}, nil
	}}
	s := newKnowledgeService(gw, 0, false)

	require.Error(t, s.Activate(context.Background()))
	v := s.View()
	assert.Empty(t, v.MemoryFiles)
	assert.Len(t, v.Documents, 1, "document load is not canceled by the sibling failure")
}

func TestKnowledgeSaveFlow(t *testing.T) {
	gw := &fakeKnowledgeGateway{}
	s := newKnowledgeService(gw, 20*time.Millisecond, false)

	var mu sync.Mutex
	var statuses []string
	s.emitter.On(event.SaveStatusChanged, func(ev event.Event) {
		mu.Lock()
		statuses = append(statuses, ev.(event.SaveStatusChangedEvent).Status)
		mu.Unlock()
	})

	assert.ErrorIs(t, s.SaveMemoryFile(context.Background()), ErrNoFileSelected)
	assert.ErrorIs(t, s.EditMemoryFile("x"), ErrNoFileSelected)

	file, err := s.LoadMemoryFile(context.Background(), "SOUL.md")
	require.NoError(t, err)
	assert.Equal(t, "# SOUL.md", file.Content)
	require.NoError(t, s.EditMemoryFile("be kind"))

	require.NoError(t, s.SaveMemoryFile(context.Background()))
	require.Len(t, gw.saved, 1)
	assert.Equal(t, models.MemoryFile{Filename: "SOUL.md", Content: "be kind"}, gw.saved[0])
	assert.Equal(t, models.SaveStatusSaved, s.SaveStatus())

	require.Eventually(t, func() bool { return s.SaveStatus() == models.SaveStatusIdle }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(statuses) == 4
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	assert.Equal(t, []string{models.SaveStatusIdle, models.SaveStatusSaving, models.SaveStatusSaved, models.SaveStatusIdle}, statuses)
	mu.Unlock()
}

func TestKnowledgeSaveFailure(t *testing.T) {
	tests := []struct {
		name        string
		rollback    bool
		wantContent string
	}{
		{name: "keeps edit by default", wantContent: "edited"},
		{name: "restores saved content", rollback: true, wantContent: "# USER.md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeKnowledgeGateway{SaveFileFn: func(context.Context, models.MemoryFile) error {
				return serverErr(500, "Failed to save memory file")
			}}
			s := newKnowledgeService(gw, time.Hour, tt.rollback)

			_, err := s.LoadMemoryFile(context.Background(), "USER.md")
			require.NoError(t, err)
			require.NoError(t, s.EditMemoryFile("edited"))

			require.Error(t, s.SaveMemoryFile(context.Background()))
			v := s.View()
			assert.Equal(t, models.SaveStatusError, v.SaveStatus)
			assert.Equal(t, tt.wantContent, v.FileContent)
			assert.Equal(t, "Failed to save memory file", v.Error)
		})
	}
}

func TestKnowledgeNewStatusCancelsReset(t *testing.T) {
	s := newKnowledgeService(&fakeKnowledgeGateway{}, 10*time.Millisecond, false)

	_, err := s.LoadMemoryFile(context.Background(), "MEMORY.md")
	require.NoError(t, err)
	require.NoError(t, s.SaveMemoryFile(context.Background()))
	s.setSaveStatus("MEMORY.md", models.SaveStatusSaving)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, models.SaveStatusSaving, s.SaveStatus())
}

func TestKnowledgeDocuments(t *testing.T) {
	docs := []models.Document{
		{ID: "d1", Title: "Garden notes", Content: "tomatoes"},
		{ID: "d2", Title: "Recipes", Content: "pasta"},
	}
	gw := &fakeKnowledgeGateway{ListDocsFn: func(context.Context) ([]models.Document, error) { return docs, nil }}
	s := newKnowledgeService(gw, 0, false)
	require.NoError(t, s.LoadDocuments(context.Background()))

	s.SetSearch("garden")
	require.Len(t, s.Filtered(), 1)
	assert.Equal(t, "d1", s.Filtered()[0].ID)

	assert.Equal(t, "d2", s.ToggleDocument("d2"))
	require.NotNil(t, s.View().SelectedDocument)
	assert.Equal(t, "", s.ToggleDocument("d2"))
	assert.Nil(t, s.View().SelectedDocument)

	s.ToggleDocument("d1")
	require.NoError(t, s.DeleteDocument(context.Background(), "d1"))
	assert.Empty(t, s.store.SelectedDocument())
}

func TestKnowledgeUpload(t *testing.T) {
	t.Run("blank title", func(t *testing.T) {
		s := newKnowledgeService(&fakeKnowledgeGateway{}, 0, false)
		_, err := s.Upload(context.Background(), models.DocumentUpload{Title: " ", Content: "x"})
		assert.ErrorIs(t, err, ErrTitleRequired)
		assert.Equal(t, "Title is required", s.LastError())
	})

	t.Run("reload failure falls back to local insert", func(t *testing.T) {
		gw := &fakeKnowledgeGateway{ListDocsFn: func(context.Context) ([]models.Document, error) {
			return nil, networkErr()
		}}
		s := newKnowledgeService(gw, 0, false)

		doc, err := s.Upload(context.Background(), models.DocumentUpload{Title: "Notes", Content: "abc", Type: models.DocumentTypeMarkdown})
		require.NoError(t, err)
		assert.True(t, s.store.Documents.Has(doc.ID))
	})

	t.Run("server failure", func(t *testing.T) {
		gw := &fakeKnowledgeGateway{UploadFn: func(context.Context, models.DocumentUpload) (models.Document, error) {
			return models.Document{}, serverErr(500, "Failed to upload document")
		}}
		s := newKnowledgeService(gw, 0, false)

		_, err := s.Upload(context.Background(), models.DocumentUpload{Title: "Notes"})
		require.Error(t, err)
		assert.Zero(t, s.store.Documents.Len())
		assert.Equal(t, "Failed to upload document", s.LastError())
	})
}

func TestKnowledgeClose(t *testing.T) {
	s := newKnowledgeService(&fakeKnowledgeGateway{}, time.Hour, false)
	_, err := s.LoadMemoryFile(context.Background(), "SOUL.md")
	require.NoError(t, err)
	require.NoError(t, s.SaveMemoryFile(context.Background()))

	s.Close()
	v := s.View()
	assert.Empty(t, v.MemoryFiles)
	assert.Empty(t, v.SelectedFile)
	assert.Equal(t, models.SaveStatusIdle, v.SaveStatus)
}
