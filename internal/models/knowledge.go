package models

// Knowledge entry status values. An unresolved entry has an empty answer
// and is waiting for a curator to fill it in.
const (
	StatusResolved   = "resolved"
	StatusUnresolved = "unresolved"
)

// KnowledgeEntry is one curated question/answer pair in the knowledge file.
// The file is plain JSON so curators can edit it directly; Question is kept
// verbatim for display and normalized only for matching.
type KnowledgeEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Status   string `json:"status,omitempty"`
	Note     string `json:"note,omitempty"`

	// Legacy short keys. Older knowledge files used {"q": ..., "a": ...};
	// the store folds these into Question/Answer on load.
	LegacyQ string `json:"q,omitempty"`
	LegacyA string `json:"a,omitempty"`
}

// Resolved reports whether the entry has a curated answer. Entries with no
// explicit status but a non-empty answer count as resolved, matching how
// hand-edited files omit the status field.
func (e *KnowledgeEntry) Resolved() bool {
	if e.Status == StatusUnresolved {
		return false
	}
	return e.Answer != ""
}
