package postgres

import (
	"context"
	"database/sql"
	"errors"

	"liveask/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (id, moderator_token, name, description, contact, created_at, free_until)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.DB.ExecContext(ctx, query,
		e.ID, e.ModeratorToken, e.Name, e.Description, e.Contact, e.CreatedAt, e.FreeUntil)
	return err
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT id, moderator_token, name, description, contact, created_at, free_until
		FROM events
		WHERE id = $1
	`
	e := &domain.Event{}
	var contactNull sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.ModeratorToken, &e.Name, &e.Description, &contactNull, &e.CreatedAt, &e.FreeUntil,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if contactNull.Valid {
		e.Contact = contactNull.String
	}
	return e, nil
}
