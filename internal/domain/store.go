package domain

import "context"

// EventStore is the authoritative owner of all event, question, and like
// state. All mutations on one event are serialized; two different events may
// be mutated fully in parallel. Callers are trusted to have run the
// authorization gate before invoking privileged operations.
type EventStore interface {
	// CreateEvent generates both tokens, persists the event, and returns it.
	// The moderator token is surfaced here exactly once.
	CreateEvent(ctx context.Context, name, description, contact string) (*Event, error)
	// Lookup resolves an event by public token for authorization. The
	// returned copy carries the moderator token but no question state.
	Lookup(ctx context.Context, eventID string) (*Event, error)
	// View returns a consistent read-only projection for the given role.
	View(ctx context.Context, eventID string, role Role) (*EventView, error)
	AddQuestion(ctx context.Context, eventID, text string) (*QuestionView, error)
	EditLike(ctx context.Context, eventID, questionID string, fp Fingerprint) (*LikeResult, error)
	ModerateQuestion(ctx context.Context, eventID, questionID string, action ModerateAction) error
	// Subscribe atomically snapshots the event and enrolls a subscriber so
	// no change record between the two is lost.
	Subscribe(ctx context.Context, eventID string, role Role) (*Snapshot, <-chan ChangeRecord, func(), error)
}
