package domain

// ChangeEventKind is the type of mailbox change reported by the history feed.
type ChangeEventKind string

const (
	EventMessageAdded   ChangeEventKind = "message_added"
	EventMessageDeleted ChangeEventKind = "message_deleted"
)

// ChangeEvent is one unit of mailbox change, produced by the history
// resolver and consumed immediately by the thread processor. Not persisted.
type ChangeEvent struct {
	Kind      ChangeEventKind
	MessageID string
	ThreadID  string
	LabelIDs  []string
}

// HasLabel reports whether the event's message carries the given label.
func (e ChangeEvent) HasLabel(labelID string) bool {
	for _, l := range e.LabelIDs {
		if l == labelID {
			return true
		}
	}
	return false
}
