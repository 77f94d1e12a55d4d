package common

// Metadata keys used by the local SQLite metadata table. The document id is
// appended after a colon.
const (
	// PendingDraftKey holds the latest unsaved draft content.
	PendingDraftKey = "pending_draft"

	// PendingSinceKey holds when the unsaved draft was first captured.
	PendingSinceKey = "pending_since"
)

// DefaultDocumentID names the single document persisted by a session when the
// host does not pick one.
const DefaultDocumentID = "draft"
