// Package store holds the last known good snapshot of every remote
// collection plus the client-only selection state.
package store

import (
	"sync"

	"github.com/openpaw/pawdeck/pkg/event"
	"github.com/openpaw/pawdeck/pkg/models"
)

type Kind string

const (
	KindConversations Kind = "conversations"
	KindTasks         Kind = "tasks"
	KindDocuments     Kind = "documents"
	KindMemoryFiles   Kind = "memory_files"
	KindAgents        Kind = "agents"
	KindSkills        Kind = "skills"
	KindSelection     Kind = "selection"
)

// Store owns all entity collections. Views only read from it.
type Store struct {
	emitter *event.Emitter

	Conversations *Collection[models.Conversation]
	Tasks         *Collection[models.Task]
	Documents     *Collection[models.Document]
	MemoryFiles   *Collection[models.MemoryFile]
	Agents        *Collection[models.Agent]
	Skills        *Collection[models.Skill]

	mu                 sync.RWMutex
	selectionVersion   uint64
	activeConversation string
	selectedDocument   string
	selectedMemoryFile string
}

func New(emitter *event.Emitter) *Store {
	s := &Store{emitter: emitter}
	s.Conversations = NewCollection[models.Conversation](s.notifier(KindConversations))
	s.Tasks = NewCollection[models.Task](s.notifier(KindTasks))
	s.Documents = NewCollection[models.Document](s.notifier(KindDocuments))
	s.MemoryFiles = NewCollection[models.MemoryFile](s.notifier(KindMemoryFiles))
	s.Agents = NewCollection[models.Agent](s.notifier(KindAgents))
	s.Skills = NewCollection[models.Skill](s.notifier(KindSkills))
	return s
}

func (s *Store) notifier(kind Kind) func(uint64) {
	return func(v uint64) {
		s.emitter.Emit(event.StoreChangedEvent{Kind: string(kind), Version: v})
	}
}

func (s *Store) setSelection(dst *string, id string) {
	s.mu.Lock()
	if *dst == id {
		s.mu.Unlock()
		return
	}
	*dst = id
	s.selectionVersion++
	v := s.selectionVersion
	s.mu.Unlock()
	s.emitter.Emit(event.StoreChangedEvent{Kind: string(KindSelection), Version: v})
}

func (s *Store) getSelection(src *string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *src
}

func (s *Store) ActiveConversation() string { return s.getSelection(&s.activeConversation) }

func (s *Store) SetActiveConversation(id string) { s.setSelection(&s.activeConversation, id) }

func (s *Store) SelectedDocument() string { return s.getSelection(&s.selectedDocument) }

func (s *Store) SetSelectedDocument(id string) { s.setSelection(&s.selectedDocument, id) }

func (s *Store) SelectedMemoryFile() string { return s.getSelection(&s.selectedMemoryFile) }

func (s *Store) SetSelectedMemoryFile(name string) { s.setSelection(&s.selectedMemoryFile, name) }

// Clear drops a collection and the selection slots that point into it.
func (s *Store) Clear(kind Kind) {
	switch kind {
	case KindConversations:
		s.Conversations.Clear()
		s.SetActiveConversation("")
	case KindTasks:
		s.Tasks.Clear()
	case KindDocuments:
		s.Documents.Clear()
		s.SetSelectedDocument("")
	case KindMemoryFiles:
		s.MemoryFiles.Clear()
		s.SetSelectedMemoryFile("")
	case KindAgents:
		s.Agents.Clear()
	case KindSkills:
		s.Skills.Clear()
	}
}
