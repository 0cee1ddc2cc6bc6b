package domain

import (
	"context"
	"time"
)

// Event represents one live Q&A session. The ID doubles as the shareable
// public token; the moderator token is a separate secret that never leaves
// the server after creation.
type Event struct {
	ID             string      `json:"id"`
	ModeratorToken string      `json:"-"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	Contact        string      `json:"-"`
	CreatedAt      time.Time   `json:"created_at"`
	FreeUntil      time.Time   `json:"free_until"`
	Questions      []*Question `json:"-"`
}

// NewEvent returns a new Event with the given fields. Tokens are set by the
// store on create.
func NewEvent(name, description, contact string, createdAt time.Time) *Event {
	return &Event{
		Name:        name,
		Description: description,
		Contact:     contact,
		CreatedAt:   createdAt,
	}
}

// Question returns the question with the given ID, or nil.
func (e *Event) Question(id string) *Question {
	for _, q := range e.Questions {
		if q.ID == id {
			return q
		}
	}
	return nil
}

// Role is the access tier granted by the Authorization Gate.
type Role string

const (
	RoleDenied    Role = "denied"
	RolePublic    Role = "public"
	RoleModerator Role = "moderator"
)

// QuestionView is the read-only projection of a Question. Liker fingerprints
// are never exposed; Hidden is only meaningful in the moderator view.
// swagger:model QuestionView
type QuestionView struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Likes     int       `json:"likes"`
	Answered  bool      `json:"answered"`
	Hidden    bool      `json:"hidden,omitempty"`
}

// EventView is the read-only projection of an Event handed to clients.
// The moderator view additionally carries the contact address and hidden
// questions; neither view ever includes the moderator token.
// swagger:model EventView
type EventView struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	Free        bool           `json:"free"`
	Contact     string         `json:"contact,omitempty"`
	Questions   []QuestionView `json:"questions"`
}

// Snapshot is a full event view taken at a known sequence number. It is what
// a newly subscribed session receives before incremental change records.
type Snapshot struct {
	Event *EventView `json:"event"`
	Seq   uint64     `json:"seq"`
}

// LikeResult is the outcome of toggling a like.
// swagger:model LikeResult
type LikeResult struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}

// TokenGenerator mints the two event credentials. Both are cryptographically
// random, generated once at event creation and immutable thereafter.
type TokenGenerator interface {
	NewPublicToken() (string, error)
	NewModeratorToken() (string, error)
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
}

// EventService defines the attendee- and moderator-facing operations.
type EventService interface {
	CreateEvent(ctx context.Context, name, description, contact string) (*Event, error)
	// GetEvent returns the public view for an empty secret, the moderator
	// view for a valid secret, and ErrForbidden for an invalid one.
	GetEvent(ctx context.Context, eventID, secret string) (*EventView, error)
	AddQuestion(ctx context.Context, eventID, text string, fp Fingerprint) (*QuestionView, error)
	EditLike(ctx context.Context, eventID, questionID string, fp Fingerprint) (*LikeResult, error)
	ModerateQuestion(ctx context.Context, eventID, secret, questionID string, action ModerateAction) error
	// Subscribe atomically takes a snapshot and enrolls a push subscriber.
	Subscribe(ctx context.Context, eventID string) (*Snapshot, <-chan ChangeRecord, func(), error)
}
