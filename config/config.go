package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Game     GameConfig     `mapstructure:"game"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	HTTPAddress    string        `mapstructure:"http_address"`
	RPCAddress     string        `mapstructure:"rpc_address"`
	GRPCAddress    string        `mapstructure:"grpc_address"`
	MetricsAddress string        `mapstructure:"metrics_address"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	SweepInterval  time.Duration `mapstructure:"sweep_interval"`
}

// GameConfig bounds the capacity a joining player may request for a new room.
type GameConfig struct {
	DefaultCapacity int `mapstructure:"default_capacity"`
	MaxCapacity     int `mapstructure:"max_capacity"`
}

type DatabaseConfig struct {
	// Driver is one of "memory", "gorm" or "postgres".
	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type LogConfig struct {
	Debug bool `mapstructure:"debug"`
}

const (
	DriverMemory   = "memory"
	DriverGorm     = "gorm"
	DriverPostgres = "postgres"
)

// EnvPrefix prefixes every environment override, e.g. ODDROLL_SERVER_HTTP_ADDRESS.
const EnvPrefix = "ODDROLL"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_address", ":3000")
	v.SetDefault("server.rpc_address", ":3001")
	v.SetDefault("server.grpc_address", ":3002")
	v.SetDefault("server.metrics_address", ":9100")
	v.SetDefault("server.idle_timeout", 2*time.Minute)
	v.SetDefault("server.sweep_interval", 15*time.Second)

	v.SetDefault("game.default_capacity", 4)
	v.SetDefault("game.max_capacity", 8)

	v.SetDefault("database.driver", DriverMemory)
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.dbname", "oddroll")

	v.SetDefault("log.debug", false)
}

// LoadConfig reads config.yaml from path, applies environment overrides and
// falls back to defaults for anything unset. A missing file is not an error.
func LoadConfig(path string) (config *Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

var (
	ErrInvalidCapacity = errors.New("game capacity must satisfy 2 <= default_capacity <= max_capacity")
	ErrUnknownDriver   = errors.New("unknown database driver")
)

func (c *Config) Validate() error {
	if c.Game.DefaultCapacity < 2 || c.Game.DefaultCapacity > c.Game.MaxCapacity {
		return ErrInvalidCapacity
	}
	switch c.Database.Driver {
	case DriverMemory, DriverGorm, DriverPostgres:
	default:
		return ErrUnknownDriver
	}
	return nil
}
