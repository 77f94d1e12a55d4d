package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/draftkeeper/internal/autosave"
	"github.com/dmitrijs2005/draftkeeper/internal/dbx"
)

// SQLiteVersions mirrors the version ledger of one document so history
// survives restarts. It implements autosave.LedgerStore.
type SQLiteVersions struct {
	db         dbx.DBTX
	documentID string
}

func NewSQLiteVersions(db dbx.DBTX, documentID string) *SQLiteVersions {
	return &SQLiteVersions{db: db, documentID: documentID}
}

// LoadVersions returns at most limit entries, newest first.
func (r *SQLiteVersions) LoadVersions(ctx context.Context, limit int) ([]autosave.VersionEntry, error) {
	query := `SELECT id, content, word_count, created_at FROM versions
			WHERE document_id = ? ORDER BY seq DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, r.documentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select versions: %w", err)
	}
	defer rows.Close()

	var result []autosave.VersionEntry
	for rows.Next() {
		var e autosave.VersionEntry
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.Content, &e.WordCount, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(0, createdAt).UTC()
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteVersions) InsertVersion(ctx context.Context, e autosave.VersionEntry) error {
	query := `INSERT INTO versions (id, document_id, content, word_count, created_at)
			VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, e.ID, r.documentID, e.Content, e.WordCount, e.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert version: %w", err)
	}
	return nil
}

// DeleteVersion is idempotent.
func (r *SQLiteVersions) DeleteVersion(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM versions WHERE id = ? AND document_id = ?`, id, r.documentID)
	if err != nil {
		return fmt.Errorf("failed to delete version: %w", err)
	}
	return nil
}

// Trim drops everything but the newest keep versions, e.g. after the
// retention limit was lowered. It returns the number of rows removed.
func (r *SQLiteVersions) Trim(ctx context.Context, keep int) (int64, error) {
	query := `DELETE FROM versions WHERE document_id = ? AND seq NOT IN (
				SELECT seq FROM versions WHERE document_id = ? ORDER BY seq DESC LIMIT ?
			)`
	res, err := r.db.ExecContext(ctx, query, r.documentID, r.documentID, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to trim versions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
