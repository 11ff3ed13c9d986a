// persistence/interface.go
package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/wfunc/oddroll/config"
	"github.com/wfunc/oddroll/models"
)

// Database stores finished matches. Live rooms are never persisted.
type Database interface {
	SaveMatch(ctx context.Context, record *models.MatchRecord) error
	LoadMatch(ctx context.Context, id uint) (*models.MatchRecord, error)
	RecentMatches(ctx context.Context, limit int) ([]models.MatchRecord, error)
	PlayerStats(ctx context.Context, name string) (*models.PlayerStats, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = errors.New("record not found")
)

// Open connects the Database selected by cfg.Driver.
func Open(cfg config.DatabaseConfig) (Database, error) {
	pg := cfg.Postgres
	switch cfg.Driver {
	case config.DriverMemory, "":
		return NewMemory(), nil
	case config.DriverGorm:
		db, err := NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.DriverPostgres:
		db, err := NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.Driver)
	}
}

func statsFrom(name string, games, wins, items int) *models.PlayerStats {
	return &models.PlayerStats{
		Name:           name,
		TotalGames:     games,
		Wins:           wins,
		Losses:         games - wins,
		ItemsCollected: items,
	}
}
