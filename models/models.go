// models/models.go
package models

import (
	"time"
)

// MatchRecord is the stored result of one finished game.
type MatchRecord struct {
	ID         uint           `json:"id"`
	RoomKey    string         `json:"room_key"`
	WinnerName string         `json:"winner_name"`
	Players    []PlayerResult `json:"players"`
	Rolls      int            `json:"rolls"`
	Shots      int            `json:"shots"`
	Turns      int            `json:"turns"`
	StartedAt  time.Time      `json:"started_at"`
	EndedAt    time.Time      `json:"ended_at"`
}

// PlayerResult 玩家信息（用于游戏记录）
type PlayerResult struct {
	PlayerID      string `json:"player_id"`
	Name          string `json:"name"`
	ItemTotal     int    `json:"item_total"`
	DisabledBoxes []int  `json:"disabled_boxes"`
	Alive         bool   `json:"alive"`
	Winner        bool   `json:"winner"`
}

// PlayerStats aggregates the recorded matches of one display name.
type PlayerStats struct {
	Name           string `json:"name"`
	TotalGames     int    `json:"total_games"`
	Wins           int    `json:"wins"`
	Losses         int    `json:"losses"`
	ItemsCollected int    `json:"items_collected"`
}
