// models/gorm_models.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// GormMatch 游戏记录模型
type GormMatch struct {
	gorm.Model
	RoomKey    string `gorm:"index;not null"`
	WinnerName string
	Rolls      int `gorm:"default:0"`
	Shots      int `gorm:"default:0"`
	Turns      int `gorm:"default:0"`
	StartedAt  time.Time
	EndedAt    time.Time         `gorm:"index"`
	Players    []GormMatchPlayer `gorm:"foreignKey:MatchID"`
}

func (GormMatch) TableName() string { return "matches" }

// GormMatchPlayer is one player's line of a match.
type GormMatchPlayer struct {
	gorm.Model
	MatchID       uint   `gorm:"index;not null"`
	PlayerID      string `gorm:"not null"`
	Name          string `gorm:"index;not null"`
	ItemTotal     int    `gorm:"default:0"`
	DisabledBoxes []int  `gorm:"serializer:json"`
	Alive         bool
	Winner        bool
}

func (GormMatchPlayer) TableName() string { return "match_players" }

// NewGormMatch converts a record into its gorm rows.
func NewGormMatch(r *MatchRecord) *GormMatch {
	m := &GormMatch{
		RoomKey:    r.RoomKey,
		WinnerName: r.WinnerName,
		Rolls:      r.Rolls,
		Shots:      r.Shots,
		Turns:      r.Turns,
		StartedAt:  r.StartedAt,
		EndedAt:    r.EndedAt,
	}
	for _, p := range r.Players {
		m.Players = append(m.Players, GormMatchPlayer{
			PlayerID:      p.PlayerID,
			Name:          p.Name,
			ItemTotal:     p.ItemTotal,
			DisabledBoxes: p.DisabledBoxes,
			Alive:         p.Alive,
			Winner:        p.Winner,
		})
	}
	return m
}

// Record converts gorm rows back into a MatchRecord.
func (m *GormMatch) Record() MatchRecord {
	r := MatchRecord{
		ID:         m.ID,
		RoomKey:    m.RoomKey,
		WinnerName: m.WinnerName,
		Rolls:      m.Rolls,
		Shots:      m.Shots,
		Turns:      m.Turns,
		StartedAt:  m.StartedAt,
		EndedAt:    m.EndedAt,
	}
	for _, p := range m.Players {
		r.Players = append(r.Players, PlayerResult{
			PlayerID:      p.PlayerID,
			Name:          p.Name,
			ItemTotal:     p.ItemTotal,
			DisabledBoxes: p.DisabledBoxes,
			Alive:         p.Alive,
			Winner:        p.Winner,
		})
	}
	return r
}
