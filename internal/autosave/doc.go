// Package autosave turns a stream of draft edits into debounced, single-flight
// persistence attempts and keeps a bounded history of what was saved.
//
// # Overview
//
// A Session owns everything mutable: the debounce timer, the pending payload
// (latest unsaved content), the status model, the version ledger and the
// connectivity subscription. Hosts feed it with Edit, read it with State,
// Versions and Restore, and may force a write with SaveNow.
//
//	sess, _ := autosave.NewSession(store.Save, monitor, autosave.Options{
//	    Interval:    30 * time.Second,
//	    MaxVersions: 20,
//	})
//	_ = sess.Start(ctx)
//	defer sess.Dispose()
//	_ = sess.Edit("Hello world")
//
// # Status
//
// The status is one of Idle, Saving, Saved, Error, Offline and is only changed
// by the transitions in statusModel. Going offline always shows Offline, even
// while an attempt is still running; that attempt's result is still recorded.
//
// # Failures
//
// A failed attempt keeps the content pending. If connectivity was lost the
// content is flushed automatically on reconnection; an error while online is
// shown as Error and waits for the next edit or an explicit SaveNow.
// When a failure and an offline transition race, offline wins.
package autosave
