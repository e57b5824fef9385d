package models

// ChunkSize is the number of characters per retrieval chunk.
const ChunkSize = 500

type DocumentType string

const (
	DocumentTypeMarkdown DocumentType = ".md"
	DocumentTypeText     DocumentType = ".txt"
)

// Document is replaced on upload or deleted, never partially edited.
type Document struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	Type      DocumentType `json:"type"`
	Chunks    int          `json:"chunks"`
	CreatedAt Timestamp    `json:"createdAt"`
}

func (d Document) Key() string { return d.ID }

// DocumentUpload is the multipart form sent to /api/knowledge/upload.
type DocumentUpload struct {
	Title   string       `json:"title"`
	Content string       `json:"content"`
	Type    DocumentType `json:"type"`
}

// MemoryFile is a named persistent memory file, overwritten wholesale on save.
type MemoryFile struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

func (m MemoryFile) Key() string { return m.Filename }

// Save status labels.
const (
	SaveStatusIdle   = ""
	SaveStatusSaving = "Saving..."
	SaveStatusSaved  = "Saved!"
	SaveStatusError  = "Error saving"
)

type KnowledgeView struct {
	MemoryFiles      []string   `json:"memory_files"`
	SelectedFile     string     `json:"selected_file,omitempty"`
	FileContent      string     `json:"file_content"`
	SaveStatus       string     `json:"save_status"`
	Documents        []Document `json:"documents"`
	Search           string     `json:"search"`
	SelectedDocument *Document  `json:"selected_document,omitempty"`
	TotalChunks      int        `json:"total_chunks"`
	Error            string     `json:"error,omitempty"`
}
