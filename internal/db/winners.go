package db

import (
	"context"
	"fmt"
	"time"

	"sorteo-ig/internal/models"
)

// InsertWinner records the draw outcome. Only one winner row can exist: a
// second insert fails with ErrWinnerExists, whether or not the caller checked
// WinnerExists first.
func (s *Store) InsertWinner(ctx context.Context, participantID int64, handle string) (int64, error) {
	var id int64
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO winners (slot, participant_id, handle, drawn_at)
		VALUES (1, ?, ?, ?)
		RETURNING id`,
		participantID, handle, time.Now().UTC().UnixMilli(),
	).Scan(&id)
	if err != nil {
		if column, ok := uniqueViolation(err); ok && column == "winners.slot" {
			return 0, ErrWinnerExists
		}
		return 0, fmt.Errorf("insert winner: %w", err)
	}
	return id, nil
}

// ListWinners returns up to limit winner rows, oldest first.
func (s *Store) ListWinners(ctx context.Context, limit int) ([]models.Winner, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, participant_id, handle, drawn_at
		FROM winners
		ORDER BY id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list winners: %w", err)
	}
	defer rows.Close()

	var winners []models.Winner
	for rows.Next() {
		var w models.Winner
		var drawnAt int64
		if err := rows.Scan(&w.ID, &w.ParticipantID, &w.Handle, &drawnAt); err != nil {
			return nil, fmt.Errorf("scan winner: %w", err)
		}
		w.DrawnAt = time.UnixMilli(drawnAt).UTC()
		winners = append(winners, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list winners: %w", err)
	}
	return winners, nil
}

// WinnerExists reports whether the draw has already been recorded.
func (s *Store) WinnerExists(ctx context.Context) (bool, error) {
	winners, err := s.ListWinners(ctx, 1)
	if err != nil {
		return false, err
	}
	return len(winners) > 0, nil
}

// DeleteAllWinners truncates the winners table.
func (s *Store) DeleteAllWinners(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, "DELETE FROM winners"); err != nil {
		return fmt.Errorf("delete winners: %w", err)
	}
	return nil
}
