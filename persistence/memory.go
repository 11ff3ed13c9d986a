package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/wfunc/oddroll/models"
)

// Memory keeps match history in process. It is the default when no database is configured.
type Memory struct {
	matches []models.MatchRecord
	nextID  uint
	mutex   sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{nextID: 1}
}

func (m *Memory) SaveMatch(ctx context.Context, record *models.MatchRecord) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	record.ID = m.nextID
	m.nextID++
	m.matches = append(m.matches, cloneRecord(*record))
	return nil
}

func (m *Memory) LoadMatch(ctx context.Context, id uint) (*models.MatchRecord, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, r := range m.matches {
		if r.ID == id {
			out := cloneRecord(r)
			return &out, nil
		}
	}
	return nil, ErrRecordNotFound
}

// RecentMatches returns up to limit matches, latest end time first.
func (m *Memory) RecentMatches(ctx context.Context, limit int) ([]models.MatchRecord, error) {
	m.mutex.RLock()
	out := make([]models.MatchRecord, 0, len(m.matches))
	for _, r := range m.matches {
		out = append(out, cloneRecord(r))
	}
	m.mutex.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].EndedAt.After(out[j].EndedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) PlayerStats(ctx context.Context, name string) (*models.PlayerStats, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var games, wins, items int
	for _, r := range m.matches {
		for _, p := range r.Players {
			if p.Name != name {
				continue
			}
			games++
			items += p.ItemTotal
			if p.Winner {
				wins++
			}
		}
	}
	return statsFrom(name, games, wins, items), nil
}

func (m *Memory) Close() error {
	return nil
}

func cloneRecord(r models.MatchRecord) models.MatchRecord {
	players := make([]models.PlayerResult, len(r.Players))
	for i, p := range r.Players {
		p.DisabledBoxes = append([]int(nil), p.DisabledBoxes...)
		players[i] = p
	}
	r.Players = players
	return r
}
