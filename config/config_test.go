package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig should tolerate a missing file, got: %v", err)
	}

	if cfg.Server.HTTPAddress != ":3000" {
		t.Errorf("Expected default http address :3000, got %s", cfg.Server.HTTPAddress)
	}
	if cfg.Game.DefaultCapacity != 4 {
		t.Errorf("Expected default capacity 4, got %d", cfg.Game.DefaultCapacity)
	}
	if cfg.Server.IdleTimeout != 2*time.Minute {
		t.Errorf("Expected idle timeout 2m, got %v", cfg.Server.IdleTimeout)
	}
	if cfg.Database.Driver != DriverMemory {
		t.Errorf("Expected memory driver, got %s", cfg.Database.Driver)
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  http_address: ":8080"
  sweep_interval: 5s
game:
  default_capacity: 3
  max_capacity: 6
database:
  driver: gorm
  postgres:
    host: db
    port: 6543
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ODDROLL_GAME_MAX_CAPACITY", "5")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.HTTPAddress != ":8080" {
		t.Errorf("Expected http address :8080, got %s", cfg.Server.HTTPAddress)
	}
	if cfg.Server.SweepInterval != 5*time.Second {
		t.Errorf("Expected sweep interval 5s, got %v", cfg.Server.SweepInterval)
	}
	if cfg.Game.DefaultCapacity != 3 {
		t.Errorf("Expected default capacity 3, got %d", cfg.Game.DefaultCapacity)
	}
	if cfg.Game.MaxCapacity != 5 {
		t.Errorf("Expected env override max capacity 5, got %d", cfg.Game.MaxCapacity)
	}
	if cfg.Database.Postgres.Host != "db" || cfg.Database.Postgres.Port != 6543 {
		t.Errorf("Expected postgres db:6543, got %s:%d", cfg.Database.Postgres.Host, cfg.Database.Postgres.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name:    "ok",
			cfg:     Config{Game: GameConfig{DefaultCapacity: 4, MaxCapacity: 8}, Database: DatabaseConfig{Driver: DriverMemory}},
			wantErr: nil,
		},
		{
			name:    "capacity below two",
			cfg:     Config{Game: GameConfig{DefaultCapacity: 1, MaxCapacity: 8}, Database: DatabaseConfig{Driver: DriverMemory}},
			wantErr: ErrInvalidCapacity,
		},
		{
			name:    "default above max",
			cfg:     Config{Game: GameConfig{DefaultCapacity: 9, MaxCapacity: 8}, Database: DatabaseConfig{Driver: DriverMemory}},
			wantErr: ErrInvalidCapacity,
		},
		{
			name:    "unknown driver",
			cfg:     Config{Game: GameConfig{DefaultCapacity: 4, MaxCapacity: 8}, Database: DatabaseConfig{Driver: "redis"}},
			wantErr: ErrUnknownDriver,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
