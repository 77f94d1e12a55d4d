package storage

import (
	"context"
	"time"

	"github.com/dmitrijs2005/draftkeeper/internal/autosave"
)

// Document is the latest saved state of a draft.
type Document struct {
	ID        string
	Content   string
	Digest    []byte
	WordCount int
	SavedAt   time.Time
}

// NewDocument fills in the derived fields for content saved at at.
func NewDocument(id, content string, at time.Time) Document {
	return Document{
		ID:        id,
		Content:   content,
		Digest:    Digest(content),
		WordCount: autosave.CountWords(content),
		SavedAt:   at.UTC(),
	}
}

// DocumentWriter is a save target.
type DocumentWriter interface {
	SaveDocument(ctx context.Context, doc Document) error
}

// SaveFunc binds a target and a document id into the persist operation used
// by an autosave session.
func SaveFunc(w DocumentWriter, documentID string) autosave.SaveFunc {
	return func(ctx context.Context, content string) error {
		return w.SaveDocument(ctx, NewDocument(documentID, content, time.Now()))
	}
}
