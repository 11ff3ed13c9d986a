// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wfunc/oddroll/models"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"
)

// PostgreSQL 数据库实现
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	// 设置连接池参数
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(ctx, db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS matches (
            id SERIAL PRIMARY KEY,
            room_key VARCHAR(255) NOT NULL,
            winner_name VARCHAR(255) NOT NULL,
            rolls INT NOT NULL DEFAULT 0,
            shots INT NOT NULL DEFAULT 0,
            turns INT NOT NULL DEFAULT 0,
            started_at TIMESTAMP NOT NULL,
            ended_at TIMESTAMP NOT NULL
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS match_players (
            id SERIAL PRIMARY KEY,
            match_id INT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
            player_id VARCHAR(255) NOT NULL,
            name VARCHAR(255) NOT NULL,
            item_total INT NOT NULL DEFAULT 0,
            disabled_boxes JSONB NOT NULL,
            alive BOOLEAN NOT NULL,
            winner BOOLEAN NOT NULL
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
        CREATE INDEX IF NOT EXISTS idx_matches_ended_at ON matches(ended_at);
        CREATE INDEX IF NOT EXISTS idx_match_players_match_id ON match_players(match_id);
        CREATE INDEX IF NOT EXISTS idx_match_players_name ON match_players(name);
    `)

	return err
}

// SaveMatch inserts the match row then one row per player.
func (p *PostgreSQL) SaveMatch(ctx context.Context, record *models.MatchRecord) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var id uint
	err = tx.QueryRowContext(ctx, `
        INSERT INTO matches (room_key, winner_name, rolls, shots, turns, started_at, ended_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `, record.RoomKey, record.WinnerName, record.Rolls, record.Shots, record.Turns,
		record.StartedAt, record.EndedAt).Scan(&id)
	if err != nil {
		return err
	}

	for _, pr := range record.Players {
		boxes, err := json.Marshal(nonNil(pr.DisabledBoxes))
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
            INSERT INTO match_players (match_id, player_id, name, item_total, disabled_boxes, alive, winner)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
        `, id, pr.PlayerID, pr.Name, pr.ItemTotal, boxes, pr.Alive, pr.Winner)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	record.ID = id
	return nil
}

func (p *PostgreSQL) LoadMatch(ctx context.Context, id uint) (*models.MatchRecord, error) {
	var r models.MatchRecord
	err := p.db.QueryRowContext(ctx, `
        SELECT id, room_key, winner_name, rolls, shots, turns, started_at, ended_at
        FROM matches WHERE id = $1
    `, id).Scan(&r.ID, &r.RoomKey, &r.WinnerName, &r.Rolls, &r.Shots, &r.Turns, &r.StartedAt, &r.EndedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	if r.Players, err = p.loadPlayers(ctx, r.ID); err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *PostgreSQL) RecentMatches(ctx context.Context, limit int) ([]models.MatchRecord, error) {
	query := `
        SELECT id, room_key, winner_name, rolls, shots, turns, started_at, ended_at
        FROM matches ORDER BY ended_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MatchRecord
	for rows.Next() {
		var r models.MatchRecord
		if err := rows.Scan(&r.ID, &r.RoomKey, &r.WinnerName, &r.Rolls, &r.Shots, &r.Turns, &r.StartedAt, &r.EndedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Players, err = p.loadPlayers(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *PostgreSQL) PlayerStats(ctx context.Context, name string) (*models.PlayerStats, error) {
	var games, wins, items int
	err := p.db.QueryRowContext(ctx, `
        SELECT COUNT(*),
               COALESCE(SUM(CASE WHEN winner THEN 1 ELSE 0 END), 0),
               COALESCE(SUM(item_total), 0)
        FROM match_players WHERE name = $1
    `, name).Scan(&games, &wins, &items)
	if err != nil {
		return nil, err
	}
	return statsFrom(name, games, wins, items), nil
}

func (p *PostgreSQL) loadPlayers(ctx context.Context, matchID uint) ([]models.PlayerResult, error) {
	rows, err := p.db.QueryContext(ctx, `
        SELECT player_id, name, item_total, disabled_boxes, alive, winner
        FROM match_players WHERE match_id = $1 ORDER BY id
    `, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PlayerResult
	for rows.Next() {
		var (
			pr    models.PlayerResult
			boxes []byte
		)
		if err := rows.Scan(&pr.PlayerID, &pr.Name, &pr.ItemTotal, &boxes, &pr.Alive, &pr.Winner); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(boxes, &pr.DisabledBoxes); err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}

func nonNil(boxes []int) []int {
	if boxes == nil {
		return []int{}
	}
	return boxes
}
