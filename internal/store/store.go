// Package store holds the authoritative in-memory event state with
// write-through persistence. Mutations on one event are serialized by a
// per-event lock; change records are published to the broadcaster while that
// lock is held, so every subscriber observes the same order.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"liveask/internal/domain"
)

const (
	// maxQuestionRunes bounds question text length.
	maxQuestionRunes = 500
	// freeTierTTL is how long a new event stays on the free tier.
	freeTierTTL = 7 * 24 * time.Hour
)

// eventState is the live state of one event. mu is the single-writer-per-
// event lock: mutations take the write lock, views the read lock.
type eventState struct {
	mu  sync.RWMutex
	ev  *domain.Event
	seq uint64
}

// Store implements domain.EventStore.
type Store struct {
	mu     sync.RWMutex
	events map[string]*eventState

	eventRepo    domain.EventRepository
	questionRepo domain.QuestionRepository
	tokens       domain.TokenGenerator
	hub          domain.Broadcaster
	logger       *slog.Logger
	now          func() time.Time
}

// New returns a Store backed by the given repositories and broadcaster.
func New(eventRepo domain.EventRepository, questionRepo domain.QuestionRepository,
	tokens domain.TokenGenerator, hub domain.Broadcaster, logger *slog.Logger) *Store {
	return &Store{
		events:       make(map[string]*eventState),
		eventRepo:    eventRepo,
		questionRepo: questionRepo,
		tokens:       tokens,
		hub:          hub,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateEvent generates both tokens, persists the event, and caches it.
func (s *Store) CreateEvent(ctx context.Context, name, description, contact string) (*domain.Event, error) {
	publicToken, err := s.tokens.NewPublicToken()
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	moderatorToken, err := s.tokens.NewModeratorToken()
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	now := s.now()
	ev := domain.NewEvent(name, description, contact, now)
	ev.ID = publicToken
	ev.ModeratorToken = moderatorToken
	ev.FreeUntil = now.Add(freeTierTTL)
	ev.Questions = []*domain.Question{}

	if err := s.eventRepo.Create(ctx, ev); err != nil {
		return nil, fmt.Errorf("persist event: %w", err)
	}

	s.mu.Lock()
	s.events[ev.ID] = &eventState{ev: ev}
	s.mu.Unlock()

	out := *ev
	out.Questions = nil
	return &out, nil
}

// Lookup resolves an event for authorization. The copy carries the moderator
// token but no question state.
func (s *Store) Lookup(ctx context.Context, eventID string) (*domain.Event, error) {
	st, err := s.state(ctx, eventID)
	if err != nil {
		return nil, err
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := *st.ev
	out.Questions = nil
	return &out, nil
}

// View returns a consistent projection of the event for the given role.
func (s *Store) View(ctx context.Context, eventID string, role domain.Role) (*domain.EventView, error) {
	st, err := s.state(ctx, eventID)
	if err != nil {
		return nil, err
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	return s.viewLocked(st, role), nil
}

// AddQuestion validates the text, persists the question, and appends it to
// the event, producing a change record.
func (s *Store) AddQuestion(ctx context.Context, eventID, text string) (*domain.QuestionView, error) {
	if text == "" {
		return nil, fmt.Errorf("question text is empty: %w", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(text) > maxQuestionRunes {
		return nil, fmt.Errorf("question text exceeds %d characters: %w", maxQuestionRunes, domain.ErrInvalidInput)
	}

	st, err := s.state(ctx, eventID)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	q := domain.NewQuestion(text, s.now())
	q.ID = uuid.NewString()
	if err := s.questionRepo.Create(ctx, eventID, q); err != nil {
		return nil, fmt.Errorf("persist question: %w", err)
	}
	st.ev.Questions = append(st.ev.Questions, q)

	view := q.View()
	s.publishLocked(st, domain.ChangeRecord{
		EventID: eventID,
		Kind:    domain.ChangeQuestionAdded,
		QuestionAdded: &domain.QuestionAddedPayload{
			Question: view,
		},
	})
	return &view, nil
}

// EditLike toggles membership of fp in the question's liker set.
func (s *Store) EditLike(ctx context.Context, eventID, questionID string, fp domain.Fingerprint) (*domain.LikeResult, error) {
	st, err := s.state(ctx, eventID)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	q := st.ev.Question(questionID)
	if q == nil {
		return nil, fmt.Errorf("question %s: %w", questionID, domain.ErrNotFound)
	}

	// Persist first so the in-memory count never drifts from storage.
	if _, liked := q.Likers[fp]; liked {
		err = s.questionRepo.RemoveLike(ctx, questionID, fp)
	} else {
		err = s.questionRepo.AddLike(ctx, questionID, fp)
	}
	if err != nil {
		return nil, fmt.Errorf("persist like: %w", err)
	}

	result := q.ToggleLike(fp)
	s.publishLocked(st, domain.ChangeRecord{
		EventID: eventID,
		Kind:    domain.ChangeLikeToggled,
		LikeToggled: &domain.LikeToggledPayload{
			QuestionID: questionID,
			Count:      result.Count,
		},
	})
	return &result, nil
}

// ModerateQuestion applies a moderator action. Deleting an already-deleted
// question is a no-op success so client retries stay safe. The store trusts
// that the authorization gate ran upstream.
func (s *Store) ModerateQuestion(ctx context.Context, eventID, questionID string, action domain.ModerateAction) error {
	if !action.Valid() {
		return fmt.Errorf("unknown moderation action %q: %w", action, domain.ErrInvalidInput)
	}

	st, err := s.state(ctx, eventID)
	if err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	q := st.ev.Question(questionID)
	if q == nil {
		if action == domain.ModerateDelete {
			return nil
		}
		return fmt.Errorf("question %s: %w", questionID, domain.ErrNotFound)
	}

	if action == domain.ModerateDelete {
		if err := s.questionRepo.Delete(ctx, questionID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("delete question: %w", err)
		}
		for i, cur := range st.ev.Questions {
			if cur.ID == questionID {
				st.ev.Questions = append(st.ev.Questions[:i], st.ev.Questions[i+1:]...)
				break
			}
		}
		s.publishLocked(st, domain.ChangeRecord{
			EventID: eventID,
			Kind:    domain.ChangeQuestionModerated,
			QuestionModerated: &domain.QuestionModeratedPayload{
				QuestionID: questionID,
				Action:     action,
			},
		})
		return nil
	}

	hidden, answered := q.Hidden, q.Answered
	switch action {
	case domain.ModerateHide:
		hidden = true
	case domain.ModerateShow:
		hidden = false
	case domain.ModerateAnswer:
		answered = true
	}
	if err := s.questionRepo.SetFlags(ctx, questionID, hidden, answered); err != nil {
		return fmt.Errorf("set question flags: %w", err)
	}
	q.Hidden, q.Answered = hidden, answered

	payload := &domain.QuestionModeratedPayload{
		QuestionID: questionID,
		Action:     action,
	}
	if !q.Hidden {
		view := q.View()
		payload.Question = &view
	}
	s.publishLocked(st, domain.ChangeRecord{
		EventID:           eventID,
		Kind:              domain.ChangeQuestionModerated,
		QuestionModerated: payload,
	})
	return nil
}

// Subscribe snapshots the event and enrolls a subscriber under the event's
// read lock, so no mutation can slip between snapshot and enrollment.
func (s *Store) Subscribe(ctx context.Context, eventID string, role domain.Role) (*domain.Snapshot, <-chan domain.ChangeRecord, func(), error) {
	st, err := s.state(ctx, eventID)
	if err != nil {
		return nil, nil, nil, err
	}
	st.mu.RLock()
	defer st.mu.RUnlock()

	snap := &domain.Snapshot{
		Event: s.viewLocked(st, role),
		Seq:   st.seq,
	}
	ch, cancel := s.hub.Enroll(eventID)
	return snap, ch, cancel, nil
}

// state returns the cached event state, loading it from the repositories on
// first access.
func (s *Store) state(ctx context.Context, eventID string) (*eventState, error) {
	s.mu.RLock()
	st, ok := s.events[eventID]
	s.mu.RUnlock()
	if ok {
		return st, nil
	}

	ev, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("load event: %w", err)
	}
	questions, err := s.questionRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	ev.Questions = questions
	s.logger.Debug("event loaded from storage", "event_id", eventID, "questions", len(questions))

	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.events[eventID]; ok {
		// Lost the load race; keep the first copy.
		return st, nil
	}
	st = &eventState{ev: ev}
	s.events[eventID] = st
	return st, nil
}

// viewLocked builds the projection. Caller holds at least the read lock.
func (s *Store) viewLocked(st *eventState, role domain.Role) *domain.EventView {
	ev := st.ev
	view := &domain.EventView{
		ID:          ev.ID,
		Name:        ev.Name,
		Description: ev.Description,
		CreatedAt:   ev.CreatedAt,
		Free:        s.now().Before(ev.FreeUntil),
		Questions:   make([]domain.QuestionView, 0, len(ev.Questions)),
	}
	if role == domain.RoleModerator {
		view.Contact = ev.Contact
	}
	for _, q := range ev.Questions {
		if q.Hidden && role != domain.RoleModerator {
			continue
		}
		qv := q.View()
		if role != domain.RoleModerator {
			qv.Hidden = false
		}
		view.Questions = append(view.Questions, qv)
	}
	sort.SliceStable(view.Questions, func(i, j int) bool {
		if view.Questions[i].Likes != view.Questions[j].Likes {
			return view.Questions[i].Likes > view.Questions[j].Likes
		}
		return view.Questions[i].CreatedAt.Before(view.Questions[j].CreatedAt)
	})
	return view
}

// publishLocked assigns the next sequence number and hands the record to the
// broadcaster. Caller holds the event's write lock, which is what makes seq
// strictly increasing and delivery order identical for every subscriber.
func (s *Store) publishLocked(st *eventState, rec domain.ChangeRecord) {
	st.seq++
	rec.Seq = st.seq
	s.hub.Publish(rec)
}
