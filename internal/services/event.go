package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"liveask/internal/adapters/auth"
	"liveask/internal/domain"
)

const (
	maxNameRunes        = 200
	maxDescriptionRunes = 2000
)

// EventServiceConfig tunes the mutation pipeline.
type EventServiceConfig struct {
	// BaseURL is the public URL of the frontend, used to build share and
	// moderator links.
	BaseURL string
	// RatePerSecond and RateBurst bound mutations per fingerprint.
	RatePerSecond float64
	RateBurst     int
	Timeout       time.Duration
}

type eventService struct {
	store          domain.EventStore
	emailService   domain.EmailService
	limiters       *limiterPool
	baseURL        string
	contextTimeout time.Duration
	logger         *slog.Logger
}

// NewEventService returns the mutation pipeline in front of the store.
func NewEventService(store domain.EventStore, emailService domain.EmailService,
	cfg EventServiceConfig, logger *slog.Logger) domain.EventService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &eventService{
		store:          store,
		emailService:   emailService,
		limiters:       newLimiterPool(cfg.RatePerSecond, cfg.RateBurst),
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		contextTimeout: timeout,
		logger:         logger,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, name, description, contact string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	contact = strings.TrimSpace(strings.ToLower(contact))

	if name == "" {
		return nil, fmt.Errorf("event name is required: %w", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxNameRunes {
		return nil, fmt.Errorf("event name exceeds %d characters: %w", maxNameRunes, domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(description) > maxDescriptionRunes {
		return nil, fmt.Errorf("event description exceeds %d characters: %w", maxDescriptionRunes, domain.ErrInvalidInput)
	}
	if contact != "" && !strings.Contains(contact, "@") {
		return nil, fmt.Errorf("contact is not an email address: %w", domain.ErrInvalidInput)
	}

	ev, err := s.store.CreateEvent(ctx, name, description, contact)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	if contact != "" {
		// Best effort: the event exists either way, and the creator still
		// has the response body with the moderator token.
		data := &domain.ModeratorLinkEmailData{
			Contact:      contact,
			EventName:    ev.Name,
			ModeratorURL: fmt.Sprintf("%s/event/%s/mod/%s", s.baseURL, ev.ID, ev.ModeratorToken),
			PublicURL:    fmt.Sprintf("%s/event/%s", s.baseURL, ev.ID),
		}
		if err := s.emailService.SendModeratorLink(ctx, data); err != nil {
			s.logger.Error("failed to send moderator link", "event_id", ev.ID, "err", err)
		}
	}
	return ev, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID, secret string) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ev, err := s.store.Lookup(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("lookup event: %w", err)
	}
	role := auth.Authorize(ev, secret)
	if role == domain.RoleDenied {
		return nil, domain.ErrForbidden
	}
	view, err := s.store.View(ctx, eventID, role)
	if err != nil {
		return nil, fmt.Errorf("view event: %w", err)
	}
	return view, nil
}

func (s *eventService) AddQuestion(ctx context.Context, eventID, text string, fp domain.Fingerprint) (*domain.QuestionView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !s.limiters.allow(fp) {
		return nil, domain.ErrRateLimited
	}
	text = strings.TrimSpace(text)
	q, err := s.store.AddQuestion(ctx, eventID, text)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("add question: %w", err)
	}
	return q, nil
}

func (s *eventService) EditLike(ctx context.Context, eventID, questionID string, fp domain.Fingerprint) (*domain.LikeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !s.limiters.allow(fp) {
		return nil, domain.ErrRateLimited
	}
	res, err := s.store.EditLike(ctx, eventID, questionID, fp)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("edit like: %w", err)
	}
	return res, nil
}

func (s *eventService) ModerateQuestion(ctx context.Context, eventID, secret, questionID string, action domain.ModerateAction) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ev, err := s.store.Lookup(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("lookup event: %w", err)
	}
	if auth.Authorize(ev, secret) != domain.RoleModerator {
		return domain.ErrForbidden
	}
	if err := s.store.ModerateQuestion(ctx, eventID, questionID, action); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			return err
		}
		return fmt.Errorf("moderate question: %w", err)
	}
	return nil
}

func (s *eventService) Subscribe(ctx context.Context, eventID string) (*domain.Snapshot, <-chan domain.ChangeRecord, func(), error) {
	// No timeout wrapper: the subscription outlives any single request
	// deadline; the connection's own context governs its lifetime.
	snap, ch, cancel, err := s.store.Subscribe(ctx, eventID, domain.RolePublic)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, nil, domain.ErrNotFound
		}
		return nil, nil, nil, fmt.Errorf("subscribe: %w", err)
	}
	return snap, ch, cancel, nil
}
