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

// Journal keeps the unsaved draft of one document in the metadata table,
// together with the time it was first captured.
type Journal struct {
	db         *sql.DB
	documentID string
	now        func() time.Time
}

func NewJournal(db *sql.DB, documentID string) *Journal {
	return &Journal{db: db, documentID: documentID, now: time.Now}
}

func (j *Journal) contentKey() string { return common.PendingDraftKey + ":" + j.documentID }
func (j *Journal) sinceKey() string   { return common.PendingSinceKey + ":" + j.documentID }

func (j *Journal) LoadPending(ctx context.Context) (string, bool, error) {
	content, err := NewMetadataRepository(j.db).Get(ctx, j.contentKey())
	if errors.Is(err, common.ErrorNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return content, true, nil
}

// StorePending overwrites the journaled draft. The capture time is kept from
// the first store until the journal is cleared.
func (j *Journal) StorePending(ctx context.Context, content string) error {
	return dbx.WithTx(ctx, j.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewMetadataRepository(tx)
		if err := repo.Set(ctx, j.contentKey(), content); err != nil {
			return err
		}

		_, err := repo.Get(ctx, j.sinceKey())
		if errors.Is(err, common.ErrorNotFound) {
			return repo.Set(ctx, j.sinceKey(), j.now().UTC().Format(time.RFC3339Nano))
		}
		return err
	})
}

func (j *Journal) ClearPending(ctx context.Context) error {
	return dbx.WithTx(ctx, j.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewMetadataRepository(tx)
		if err := repo.Delete(ctx, j.contentKey()); err != nil {
			return err
		}
		return repo.Delete(ctx, j.sinceKey())
	})
}

// PendingSince reports when the journaled draft was first captured.
func (j *Journal) PendingSince(ctx context.Context) (time.Time, bool, error) {
	raw, err := NewMetadataRepository(j.db).Get(ctx, j.sinceKey())
	if errors.Is(err, common.ErrorNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse pending timestamp: %w", err)
	}
	return at, true, nil
}
