package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"sorteo-ig/internal/db"
	"sorteo-ig/internal/models"
)

// ExportSheet is the name of the single sheet in the exported workbook.
const ExportSheet = "Participantes"

// ExportHeader is the header row of the exported workbook.
var ExportHeader = []string{"id", "first_name", "last_name", "phone", "handle", "region"}

// Participants returns every registered participant.
func (g *Giveaway) Participants(ctx context.Context) ([]models.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	participants, err := g.store.ListParticipants(ctx)
	if err != nil {
		return nil, storageError(err)
	}
	return participants, nil
}

// Count returns the number of registered participants.
func (g *Giveaway) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	n, err := g.store.CountParticipants(ctx)
	if err != nil {
		return 0, storageError(err)
	}
	return n, nil
}

// RegionCounts tallies participants per region. Regions with no participants
// are absent.
func (g *Giveaway) RegionCounts(ctx context.Context) (map[string]int, error) {
	participants, err := g.Participants(ctx)
	if err != nil {
		return nil, err
	}
	return CountByRegion(participants), nil
}

// CountByRegion tallies participants per region.
func CountByRegion(participants []models.Participant) map[string]int {
	counts := make(map[string]int)
	for _, p := range participants {
		counts[p.Region]++
	}
	return counts
}

// RegionBars orders counts for the chart: known provinces first in form
// order, then any other stored value.
func RegionBars(counts map[string]int) []models.RegionCount {
	bars := make([]models.RegionCount, 0, len(counts))
	seen := make(map[string]bool, len(models.Regions))
	for _, r := range models.Regions {
		seen[r] = true
		if n := counts[r]; n > 0 {
			bars = append(bars, models.RegionCount{Region: r, Count: n})
		}
	}
	for r, n := range counts {
		if !seen[r] && n > 0 {
			bars = append(bars, models.RegionCount{Region: r, Count: n})
		}
	}
	return bars
}

// CurrentWinner returns the drawn participant, or nil before the draw.
func (g *Giveaway) CurrentWinner(ctx context.Context) (*models.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	winners, err := g.store.ListWinners(ctx, 1)
	if err != nil {
		return nil, storageError(err)
	}
	if len(winners) == 0 {
		return nil, nil
	}

	p, err := g.store.GetParticipant(ctx, winners[0].ParticipantID)
	if errors.Is(err, db.ErrNotFound) {
		// Participant row gone but the winner survived a partial reset;
		// show what the winner record still knows.
		return &models.Participant{ID: winners[0].ParticipantID, Handle: winners[0].Handle}, nil
	}
	if err != nil {
		return nil, storageError(err)
	}
	return &p, nil
}

// ExportXLSX renders all participants as an xlsx workbook.
func (g *Giveaway) ExportXLSX(ctx context.Context) ([]byte, error) {
	participants, err := g.Participants(ctx)
	if err != nil {
		return nil, err
	}
	return BuildWorkbook(participants)
}

// BuildWorkbook writes participants into a single-sheet workbook in memory.
func BuildWorkbook(participants []models.Participant) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(ExportHeader))
	for i, h := range ExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(ExportSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, p := range participants {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{p.ID, p.FirstName, p.LastName, p.Phone, p.Handle, p.Region}
		if err := f.SetSheetRow(ExportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
