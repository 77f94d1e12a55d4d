// Package storage holds the persistence backends behind an autosave session:
// the local SQLite database (documents, version history and the draft
// journal) and the remote save targets (PostgreSQL and S3-compatible object
// storage).
//
// Every target implements DocumentWriter; SaveFunc adapts one into the
// autosave.SaveFunc the session calls. Failures that mean the target could not
// be reached are wrapped with autosave.ErrConnectivity so the session treats
// them as going offline rather than as a rejected write.
package storage
