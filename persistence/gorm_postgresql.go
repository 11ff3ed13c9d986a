// persistence/gorm_postgresql.go
package persistence

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/wfunc/oddroll/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	// 配置GORM日志
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := autoMigrate(db); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.GormMatch{},
		&models.GormMatchPlayer{},
	)
}

// SaveMatch writes the match and its player rows in one transaction.
func (p *GormPostgreSQL) SaveMatch(ctx context.Context, record *models.MatchRecord) error {
	row := models.NewGormMatch(record)
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(row).Error
	})
	if err != nil {
		return err
	}
	record.ID = row.ID
	return nil
}

func (p *GormPostgreSQL) LoadMatch(ctx context.Context, id uint) (*models.MatchRecord, error) {
	var row models.GormMatch
	err := p.db.WithContext(ctx).Preload("Players").First(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	record := row.Record()
	return &record, nil
}

func (p *GormPostgreSQL) RecentMatches(ctx context.Context, limit int) ([]models.MatchRecord, error) {
	var rows []models.GormMatch
	q := p.db.WithContext(ctx).Preload("Players").Order("ended_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]models.MatchRecord, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].Record())
	}
	return out, nil
}

func (p *GormPostgreSQL) PlayerStats(ctx context.Context, name string) (*models.PlayerStats, error) {
	var agg struct {
		TotalGames int
		Wins       int
		Items      int
	}
	err := p.db.WithContext(ctx).Model(&models.GormMatchPlayer{}).
		Select("COUNT(*) AS total_games, "+
			"COALESCE(SUM(CASE WHEN winner THEN 1 ELSE 0 END), 0) AS wins, "+
			"COALESCE(SUM(item_total), 0) AS items").
		Where("name = ?", name).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	return statsFrom(name, agg.TotalGames, agg.Wins, agg.Items), nil
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
