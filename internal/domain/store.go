package domain

// TriageStore persists per-folder triage state. All operations are local and
// synchronous; a missing or corrupt record loads as the default empty state,
// never as an error. Save is a full overwrite (last writer wins).
type TriageStore interface {
	Load(folderID string) TriageState
	Save(folderID string, state TriageState) error

	// SetMark sets or, with an empty mark, clears the explicit mark of an
	// item. Clearing does not clear a soft-touch flag.
	SetMark(folderID, itemID string, mark Mark) error

	// SetSoft flags an item as looked-at-but-undecided. No-op when the item
	// already carries an explicit mark; idempotent.
	SetSoft(folderID, itemID string) error

	Close() error
}
