package domain

import (
	"context"
	"time"
)

// Question belongs to exactly one Event. The like count is always the size
// of the liker set; it is never incremented independently.
type Question struct {
	ID        string                   `json:"id"`
	Text      string                   `json:"text"`
	CreatedAt time.Time                `json:"created_at"`
	Answered  bool                     `json:"answered"`
	Hidden    bool                     `json:"hidden"`
	Likers    map[Fingerprint]struct{} `json:"-"`
}

// NewQuestion returns a new Question with an empty liker set. ID is assigned
// by the store on create.
func NewQuestion(text string, createdAt time.Time) *Question {
	return &Question{
		Text:      text,
		CreatedAt: createdAt,
		Likers:    make(map[Fingerprint]struct{}),
	}
}

// Likes returns the current like count.
func (q *Question) Likes() int { return len(q.Likers) }

// ToggleLike flips membership of fp in the liker set and reports the new state.
func (q *Question) ToggleLike(fp Fingerprint) LikeResult {
	if _, ok := q.Likers[fp]; ok {
		delete(q.Likers, fp)
		return LikeResult{Liked: false, Count: len(q.Likers)}
	}
	q.Likers[fp] = struct{}{}
	return LikeResult{Liked: true, Count: len(q.Likers)}
}

// View returns the read-only projection of the question.
func (q *Question) View() QuestionView {
	return QuestionView{
		ID:        q.ID,
		Text:      q.Text,
		CreatedAt: q.CreatedAt,
		Likes:     len(q.Likers),
		Answered:  q.Answered,
		Hidden:    q.Hidden,
	}
}

// ModerateAction is a moderator command applied to a question.
type ModerateAction string

const (
	ModerateHide   ModerateAction = "hide"
	ModerateShow   ModerateAction = "show"
	ModerateAnswer ModerateAction = "answer"
	ModerateDelete ModerateAction = "delete"
)

// Valid reports whether the action is one of the known moderation commands.
func (a ModerateAction) Valid() bool {
	switch a {
	case ModerateHide, ModerateShow, ModerateAnswer, ModerateDelete:
		return true
	}
	return false
}

// QuestionRepository defines the interface for question and like storage.
type QuestionRepository interface {
	Create(ctx context.Context, eventID string, q *Question) error
	// ListByEventID returns all questions for the event, likers included,
	// ordered by creation time.
	ListByEventID(ctx context.Context, eventID string) ([]*Question, error)
	AddLike(ctx context.Context, questionID string, fp Fingerprint) error
	RemoveLike(ctx context.Context, questionID string, fp Fingerprint) error
	SetFlags(ctx context.Context, questionID string, hidden, answered bool) error
	Delete(ctx context.Context, questionID string) error
}
