package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/draftkeeper/internal/common"
	"github.com/dmitrijs2005/draftkeeper/internal/dbx"
)

// SQLiteDocuments saves documents into the local database. It is the default
// target and never loses connectivity.
type SQLiteDocuments struct {
	db dbx.DBTX
}

func NewSQLiteDocuments(db dbx.DBTX) *SQLiteDocuments {
	return &SQLiteDocuments{db: db}
}

// SaveDocument upserts doc. The revision only moves when the digest changes.
func (r *SQLiteDocuments) SaveDocument(ctx context.Context, doc Document) error {
	query := `INSERT INTO documents (id, content, digest, word_count, saved_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET content = excluded.content,
				digest = excluded.digest,
				word_count = excluded.word_count,
				saved_at = excluded.saved_at,
				revision = documents.revision + 1
			WHERE documents.digest <> excluded.digest
	`
	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.Content, doc.Digest, doc.WordCount, doc.SavedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

// GetDocument returns common.ErrorNotFound when id was never saved.
func (r *SQLiteDocuments) GetDocument(ctx context.Context, id string) (*Document, error) {
	query := `SELECT content, digest, word_count, saved_at FROM documents WHERE id = ?`

	doc := &Document{ID: id}
	var savedAt int64
	err := r.db.QueryRowContext(ctx, query, id).Scan(&doc.Content, &doc.Digest, &doc.WordCount, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	doc.SavedAt = time.Unix(0, savedAt).UTC()
	return doc, nil
}
