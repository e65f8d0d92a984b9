package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sorteo-ig/internal/models"
)

// InsertParticipant stores p and returns the assigned id. A duplicate phone or
// handle yields a *ConstraintError.
func (s *Store) InsertParticipant(ctx context.Context, p models.Participant) (int64, error) {
	var id int64
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO participants (first_name, last_name, phone, handle, region, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		p.FirstName, p.LastName, p.Phone, p.Handle, p.Region, time.Now().UTC().UnixMilli(),
	).Scan(&id)
	if err != nil {
		if column, ok := uniqueViolation(err); ok {
			return 0, &ConstraintError{Constraint: participantConstraint(column), Err: err}
		}
		return 0, fmt.Errorf("insert participant: %w", err)
	}
	return id, nil
}

// ListParticipants returns every participant ordered by id.
func (s *Store) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, first_name, last_name, phone, handle, region
		FROM participants
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Phone, &p.Handle, &p.Region); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return participants, nil
}

// GetParticipant returns the participant with the given id or ErrNotFound.
func (s *Store) GetParticipant(ctx context.Context, id int64) (models.Participant, error) {
	var p models.Participant
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, phone, handle, region
		FROM participants
		WHERE id = ?`, id,
	).Scan(&p.ID, &p.FirstName, &p.LastName, &p.Phone, &p.Handle, &p.Region)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Participant{}, ErrNotFound
	}
	if err != nil {
		return models.Participant{}, fmt.Errorf("get participant %d: %w", id, err)
	}
	return p, nil
}

// CountParticipants returns the number of stored participants.
func (s *Store) CountParticipants(ctx context.Context) (int, error) {
	var n int
	if err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM participants").Scan(&n); err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return n, nil
}

// DeleteAllParticipants truncates the participants table.
func (s *Store) DeleteAllParticipants(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, "DELETE FROM participants"); err != nil {
		return fmt.Errorf("delete participants: %w", err)
	}
	return nil
}
