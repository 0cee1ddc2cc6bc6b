package postgres

import (
	"context"
	"database/sql"

	"liveask/internal/domain"
)

type questionRepository struct {
	DB *sql.DB
}

func NewQuestionRepository(db *sql.DB) domain.QuestionRepository {
	return &questionRepository{
		DB: db,
	}
}

func (r *questionRepository) Create(ctx context.Context, eventID string, q *domain.Question) error {
	query := `
		INSERT INTO questions (id, event_id, text, created_at, hidden, answered)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.DB.ExecContext(ctx, query, q.ID, eventID, q.Text, q.CreatedAt, q.Hidden, q.Answered)
	return err
}

func (r *questionRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Question, error) {
	query := `
		SELECT id, text, created_at, hidden, answered
		FROM questions
		WHERE event_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]*domain.Question, 0)
	byID := make(map[string]*domain.Question)
	for rows.Next() {
		q := &domain.Question{Likers: make(map[domain.Fingerprint]struct{})}
		if err := rows.Scan(&q.ID, &q.Text, &q.CreatedAt, &q.Hidden, &q.Answered); err != nil {
			return nil, err
		}
		questions = append(questions, q)
		byID[q.ID] = q
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	likesQuery := `
		SELECT ql.question_id, ql.fingerprint
		FROM question_likes ql
		JOIN questions q ON q.id = ql.question_id
		WHERE q.event_id = $1
	`
	likeRows, err := r.DB.QueryContext(ctx, likesQuery, eventID)
	if err != nil {
		return nil, err
	}
	defer likeRows.Close()
	for likeRows.Next() {
		var questionID, fp string
		if err := likeRows.Scan(&questionID, &fp); err != nil {
			return nil, err
		}
		if q, ok := byID[questionID]; ok {
			q.Likers[domain.Fingerprint(fp)] = struct{}{}
		}
	}
	return questions, likeRows.Err()
}

func (r *questionRepository) AddLike(ctx context.Context, questionID string, fp domain.Fingerprint) error {
	query := `
		INSERT INTO question_likes (question_id, fingerprint)
		VALUES ($1, $2)
		ON CONFLICT (question_id, fingerprint) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, query, questionID, string(fp))
	return err
}

func (r *questionRepository) RemoveLike(ctx context.Context, questionID string, fp domain.Fingerprint) error {
	query := `DELETE FROM question_likes WHERE question_id = $1 AND fingerprint = $2`
	_, err := r.DB.ExecContext(ctx, query, questionID, string(fp))
	return err
}

func (r *questionRepository) SetFlags(ctx context.Context, questionID string, hidden, answered bool) error {
	query := `UPDATE questions SET hidden = $1, answered = $2 WHERE id = $3`
	result, err := r.DB.ExecContext(ctx, query, hidden, answered, questionID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *questionRepository) Delete(ctx context.Context, questionID string) error {
	// Likes go with the question; deleting an already-deleted question is
	// reported as NotFound and treated as a no-op by the store.
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM question_likes WHERE question_id = $1`, questionID); err != nil {
		return err
	}
	result, err := r.DB.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, questionID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
