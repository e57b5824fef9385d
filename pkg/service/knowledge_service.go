package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/openpaw/pawdeck/pkg/event"
	"github.com/openpaw/pawdeck/pkg/models"
	"github.com/openpaw/pawdeck/pkg/store"
	"github.com/openpaw/pawdeck/pkg/views"
)

// KnowledgeService drives the knowledge page: persistent memory files and
// the retrieval documents.
type KnowledgeService struct {
	viewBase
	gw         KnowledgeGateway
	store      *store.Store
	journal    *Journal[models.MemoryFile]
	resetAfter time.Duration

	mu         sync.Mutex
	search     string
	saveStatus string
	saveGen    uint64
	resetTimer *time.Timer
	saved      map[string]string // last content the backend confirmed
}

func NewKnowledgeService(gw KnowledgeGateway, st *store.Store, saveStatusReset time.Duration, opts Options) *KnowledgeService {
	s := &KnowledgeService{
		gw:         gw,
		store:      st,
		journal:    NewJournal[models.MemoryFile](),
		resetAfter: saveStatusReset,
		saved:      make(map[string]string),
	}
	s.init("knowledge", opts)
	return s
}

// Activate lists memory files and documents concurrently. One failing load
// does not cancel the other; both leave their collection as it was.
func (s *KnowledgeService) Activate(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return s.ListMemoryFiles(ctx) })
	g.Go(func() error { return s.LoadDocuments(ctx) })
	return g.Wait()
}

func (s *KnowledgeService) ListMemoryFiles(ctx context.Context) error {
	ctx, cancel := s.bind(ctx)
	defer cancel()

	names, err := s.gw.ListMemoryFiles(ctx)
	if err != nil {
		s.logger.Warn("list memory files failed", "error", err)
		return err
	}
	files := make([]models.MemoryFile, 0, len(names))
	for _, name := range names {
		f := models.MemoryFile{Filename: name}
		if cur, ok := s.store.MemoryFiles.Get(name); ok {
			f.Content = cur.Content
		}
		files = append(files, f)
	}
	s.store.MemoryFiles.Replace(files)
	return nil
}

// LoadMemoryFile fetches filename and selects it. The save status is reset.
func (s *KnowledgeService) LoadMemoryFile(ctx context.Context, filename string) (models.MemoryFile, error) {
	ctx, cancel := s.bind(ctx)
	defer cancel()

	file, err := s.gw.GetMemoryFile(ctx, filename)
	if err != nil {
		s.failErr("load_memory_file", err)
		return models.MemoryFile{}, err
	}
	if file.Filename == "" {
		file.Filename = filename
	}
	s.store.MemoryFiles.Put(file)
	s.store.SetSelectedMemoryFile(file.Filename)

	s.mu.Lock()
	s.saved[file.Filename] = file.Content
	s.mu.Unlock()
	s.setSaveStatus(file.Filename, models.SaveStatusIdle)
	s.clearError()
	return file, nil
}

// EditMemoryFile replaces the local content of the selected file.
func (s *KnowledgeService) EditMemoryFile(content string) error {
	name := s.store.SelectedMemoryFile()
	if name == "" {
		return ErrNoFileSelected
	}
	s.store.MemoryFiles.Update(name, func(f models.MemoryFile) models.MemoryFile {
		f.Content = content
		return f
	})
	return nil
}

// SaveMemoryFile overwrites the selected file remotely with its local
// content. The status goes "Saving..." then "Saved!" (cleared after the
// configured delay) or "Error saving".
func (s *KnowledgeService) SaveMemoryFile(ctx context.Context) error {
	name := s.store.SelectedMemoryFile()
	if name == "" {
		return ErrNoFileSelected
	}
	file, ok := s.store.MemoryFiles.Get(name)
	if !ok {
		return ErrNoFileSelected
	}
	ctx, cancel := s.bind(ctx)
	defer cancel()

	s.mu.Lock()
	lastSaved, known := s.saved[name]
	s.mu.Unlock()
	snapshot := file
	if known {
		snapshot.Content = lastSaved
	}
	entry := s.journal.Begin(name, snapshot)
	s.setSaveStatus(name, models.SaveStatusSaving)

	err := s.gw.SaveMemoryFile(ctx, file)
	s.journal.Resolve(entry.RequestID)
	if err != nil {
		s.setSaveStatus(name, models.SaveStatusError)
		s.failErr("save_memory_file", err)
		if s.rollback && s.journal.IsLatest(entry) {
			s.store.MemoryFiles.Update(name, func(models.MemoryFile) models.MemoryFile { return entry.Snapshot })
			s.metrics.ObserveMutation(s.name, "save_memory_file", "rolled_back")
			s.emit(event.MutationRolledBackEvent{View: s.name, EntityID: name, RequestID: entry.RequestID})
		}
		return err
	}

	s.mu.Lock()
	s.saved[name] = file.Content
	s.mu.Unlock()
	s.clearError()
	s.succeed("save_memory_file")
	s.emit(event.MemoryFileSavedEvent{Filename: name})
	s.setSaveStatus(name, models.SaveStatusSaved)
	return nil
}

// setSaveStatus updates the status label. "Saved!" clears itself after
// resetAfter unless another status was set in between.
func (s *KnowledgeService) setSaveStatus(filename, status string) {
	s.mu.Lock()
	s.saveStatus = status
	s.saveGen++
	gen := s.saveGen
	if s.resetTimer != nil {
		s.resetTimer.Stop()
		s.resetTimer = nil
	}
	if status == models.SaveStatusSaved && s.resetAfter > 0 {
		s.resetTimer = time.AfterFunc(s.resetAfter, func() {
			s.mu.Lock()
			if s.saveGen != gen {
				s.mu.Unlock()
				return
			}
			s.saveStatus = models.SaveStatusIdle
			s.resetTimer = nil
			s.mu.Unlock()
			s.emit(event.SaveStatusChangedEvent{Filename: filename, Status: models.SaveStatusIdle})
		})
	}
	s.mu.Unlock()
	s.emit(event.SaveStatusChangedEvent{Filename: filename, Status: status})
}

func (s *KnowledgeService) SaveStatus() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveStatus
}

// LoadDocuments refreshes the document list. Failures keep the current list.
func (s *KnowledgeService) LoadDocuments(ctx context.Context) error {
	ctx, cancel := s.bind(ctx)
	defer cancel()

	docs, err := s.gw.ListDocuments(ctx)
	if err != nil {
		s.logger.Warn("list documents failed", "error", err)
		return err
	}
	s.store.Documents.Replace(docs)
	if sel := s.store.SelectedDocument(); sel != "" && !s.store.Documents.Has(sel) {
		s.store.SetSelectedDocument("")
	}
	s.emit(event.DocumentsChangedEvent{})
	return nil
}

func (s *KnowledgeService) SetSearch(query string) {
	s.mu.Lock()
	s.search = query
	s.mu.Unlock()
}

func (s *KnowledgeService) Filtered() []models.Document {
	s.mu.Lock()
	q := s.search
	s.mu.Unlock()
	return views.FilterDocuments(s.store.Documents.List(), q)
}

// ToggleDocument selects id, or deselects it when it already is selected.
func (s *KnowledgeService) ToggleDocument(id string) string {
	if s.store.SelectedDocument() == id {
		s.store.SetSelectedDocument("")
		return ""
	}
	s.store.SetSelectedDocument(id)
	return id
}

func (s *KnowledgeService) TotalChunks() int {
	return views.TotalChunks(s.store.Documents.List())
}

// Upload sends a new document; the list is reloaded once it was accepted.
func (s *KnowledgeService) Upload(ctx context.Context, up models.DocumentUpload) (models.Document, error) {
	if strings.TrimSpace(up.Title) == "" {
		s.fail("upload", "Title is required", ErrTitleRequired)
		return models.Document{}, ErrTitleRequired
	}
	ctx, cancel := s.bind(ctx)
	defer cancel()
	s.clearError()

	doc, err := s.gw.UploadDocument(ctx, up)
	if err != nil {
		s.failErr("upload", err)
		return models.Document{}, err
	}
	s.succeed("upload")
	if err := s.LoadDocuments(ctx); err != nil {
		s.store.Documents.Put(doc)
	}
	return doc, nil
}

func (s *KnowledgeService) DeleteDocument(ctx context.Context, id string) error {
	ctx, cancel := s.bind(ctx)
	defer cancel()
	s.clearError()

	if err := s.gw.DeleteDocument(ctx, id); err != nil {
		s.failErr("delete_document", err)
		return err
	}
	s.store.Documents.Remove(id)
	if s.store.SelectedDocument() == id {
		s.store.SetSelectedDocument("")
	}
	s.succeed("delete_document")
	_ = s.LoadDocuments(ctx)
	return nil
}

func (s *KnowledgeService) View() models.KnowledgeView {
	s.mu.Lock()
	search, status := s.search, s.saveStatus
	s.mu.Unlock()

	files := s.store.MemoryFiles.List()
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Filename)
	}
	docs := s.store.Documents.List()
	v := models.KnowledgeView{
		MemoryFiles:  names,
		SelectedFile: s.store.SelectedMemoryFile(),
		SaveStatus:   status,
		Documents:    views.FilterDocuments(docs, search),
		Search:       search,
		TotalChunks:  views.TotalChunks(docs),
		Error:        s.LastError(),
	}
	if f, ok := s.store.MemoryFiles.Get(v.SelectedFile); ok {
		v.FileContent = f.Content
	}
	if d, ok := s.store.Documents.Get(s.store.SelectedDocument()); ok {
		v.SelectedDocument = &d
	}
	return v
}

func (s *KnowledgeService) Close() {
	s.endLifetime()
	s.journal.Reset()
	s.mu.Lock()
	if s.resetTimer != nil {
		s.resetTimer.Stop()
		s.resetTimer = nil
	}
	s.saveGen++
	s.saveStatus = models.SaveStatusIdle
	s.search = ""
	s.saved = make(map[string]string)
	s.mu.Unlock()
	s.store.Clear(store.KindMemoryFiles)
	s.store.Clear(store.KindDocuments)
}
