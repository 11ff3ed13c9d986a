// services/match_service.go
package services

import (
	"context"
	"errors"

	"github.com/wfunc/oddroll/logger"
	"github.com/wfunc/oddroll/models"
	"github.com/wfunc/oddroll/persistence"
	"github.com/wfunc/oddroll/room"
)

var ErrNoWinner = errors.New("match has no winner")

// MatchService records finished games and answers history queries.
type MatchService struct {
	db persistence.Database
}

func NewMatchService(db persistence.Database) *MatchService {
	return &MatchService{db: db}
}

// RecordMatch stores a finished game.
func (s *MatchService) RecordMatch(ctx context.Context, m room.MatchSummary) (*models.MatchRecord, error) {
	if m.Winner == nil {
		return nil, ErrNoWinner
	}
	record := &models.MatchRecord{
		RoomKey:    m.RoomKey,
		WinnerName: m.Winner.Name,
		Rolls:      m.Rolls,
		Shots:      m.Shots,
		Turns:      m.Turns,
		StartedAt:  m.StartedAt,
		EndedAt:    m.EndedAt,
	}
	for _, p := range m.Players {
		record.Players = append(record.Players, models.PlayerResult{
			PlayerID:      p.ID,
			Name:          p.Name,
			ItemTotal:     p.ItemTotal,
			DisabledBoxes: p.DisabledBoxes,
			Alive:         p.Alive,
			Winner:        p.Winner,
		})
	}

	if err := s.db.SaveMatch(ctx, record); err != nil {
		return nil, err
	}
	logger.Log.Infow("match recorded", "id", record.ID, "room", record.RoomKey, "winner", record.WinnerName)
	return record, nil
}

func (s *MatchService) Match(ctx context.Context, id uint) (*models.MatchRecord, error) {
	return s.db.LoadMatch(ctx, id)
}

func (s *MatchService) Recent(ctx context.Context, limit int) ([]models.MatchRecord, error) {
	return s.db.RecentMatches(ctx, limit)
}

func (s *MatchService) Stats(ctx context.Context, name string) (*models.PlayerStats, error) {
	return s.db.PlayerStats(ctx, name)
}
