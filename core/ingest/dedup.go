package ingest

import "github.com/siherrmann/etfrag/model"

// Action describes how a candidate resolves against the stored document.
type Action int

const (
	// ActionInsert writes a new document at version 1.
	ActionInsert Action = iota
	// ActionUpdate overwrites the stored document with the version bumped.
	ActionUpdate
	// ActionSkip leaves the stored document untouched, the content is
	// unchanged and no re-embedding is needed.
	ActionSkip
)

func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "insert"
	case ActionUpdate:
		return "update"
	case ActionSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// Resolution carries the resolved action and the version a write must use.
type Resolution struct {
	Action  Action
	Version int
}

// Resolve compares a candidate content hash against the stored document. No
// stored document inserts at version 1, an equal hash skips, a changed hash
// updates with the version incremented. The version only ever moves on
// content change, re-collecting identical content is a no-op.
func Resolve(contentHash string, existing *model.Document) Resolution {
	if existing == nil {
		return Resolution{Action: ActionInsert, Version: 1}
	}
	if existing.ContentHash == contentHash {
		return Resolution{Action: ActionSkip, Version: existing.Version}
	}
	return Resolution{Action: ActionUpdate, Version: existing.Version + 1}
}
