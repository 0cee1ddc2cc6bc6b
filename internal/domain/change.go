package domain

// ChangeKind discriminates the payload of a ChangeRecord.
type ChangeKind string

const (
	ChangeQuestionAdded     ChangeKind = "question_added"
	ChangeLikeToggled       ChangeKind = "like_toggled"
	ChangeQuestionModerated ChangeKind = "question_moderated"
)

// QuestionAddedPayload carries the newly created question.
type QuestionAddedPayload struct {
	Question QuestionView `json:"question"`
}

// LikeToggledPayload carries the new like count of a question.
type LikeToggledPayload struct {
	QuestionID string `json:"question_id"`
	Count      int    `json:"count"`
}

// QuestionModeratedPayload carries the moderation outcome. Question is nil
// when the action removed the question from the public view (hide, delete).
type QuestionModeratedPayload struct {
	QuestionID string         `json:"question_id"`
	Action     ModerateAction `json:"action"`
	Question   *QuestionView  `json:"question,omitempty"`
}

// ChangeRecord describes a single applied mutation. Seq increases strictly
// monotonically per event; records are immutable once produced. Exactly one
// payload field is set, matching Kind.
type ChangeRecord struct {
	EventID string     `json:"event_id"`
	Seq     uint64     `json:"seq"`
	Kind    ChangeKind `json:"kind"`

	QuestionAdded     *QuestionAddedPayload     `json:"question_added,omitempty"`
	LikeToggled       *LikeToggledPayload       `json:"like_toggled,omitempty"`
	QuestionModerated *QuestionModeratedPayload `json:"question_moderated,omitempty"`
}

// Broadcaster fans change records out to enrolled subscribers of an event.
// Publish is called by the store while holding the event's write lock, so it
// must never block.
type Broadcaster interface {
	Enroll(eventID string) (<-chan ChangeRecord, func())
	Publish(rec ChangeRecord)
}
