package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/draftkeeper/internal/autosave"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresDocuments saves documents into a remote PostgreSQL database. The
// schema is migrated on the first save that reaches the server.
type PostgresDocuments struct {
	db *sql.DB

	mu       sync.Mutex
	migrated bool
}

func NewPostgresDocuments(db *sql.DB) *PostgresDocuments {
	return &PostgresDocuments{db: db}
}

func (r *PostgresDocuments) ensureSchema(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.migrated {
		return nil
	}
	if err := RunPostgresMigrations(ctx, r.db); err != nil {
		return classifyPostgres(err)
	}
	r.migrated = true
	return nil
}

func (r *PostgresDocuments) SaveDocument(ctx context.Context, doc Document) error {
	if err := r.ensureSchema(ctx); err != nil {
		return err
	}

	query := `INSERT INTO documents (id, content, digest, word_count, saved_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			digest = EXCLUDED.digest,
			word_count = EXCLUDED.word_count,
			saved_at = EXCLUDED.saved_at,
			revision = documents.revision + 1
		WHERE documents.digest <> EXCLUDED.digest;`

	_, err := r.db.ExecContext(ctx, query, doc.ID, doc.Content, doc.Digest, doc.WordCount, doc.SavedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", classifyPostgres(err))
	}
	return nil
}

// classifyPostgres marks errors where the statement never reached the server.
func classifyPostgres(err error) error {
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) || autosave.IsConnectivityError(err) {
		return fmt.Errorf("%w: %w", autosave.ErrConnectivity, err)
	}
	return err
}
