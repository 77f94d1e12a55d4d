// Package cli hosts an autosave session for a draft file.
//
// It wires configuration, the local SQLite database, the selected save
// target, connectivity monitoring, metrics and a watcher on the draft file,
// then runs a small REPL for inspecting status and history. Edits are made in
// any editor; each write to the draft file is fed to the session.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits or
// ctx is cancelled. See NewApp and runREPL for details.
package cli
