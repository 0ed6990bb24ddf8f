package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App    AppConfig
	Roster RosterConfig
	DB     DBConfig
	Merge  MergeConfig
	CORS   CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GATEKEEPER_APP_ENV" required:"true"`
	Port         string `envconfig:"GATEKEEPER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GATEKEEPER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GATEKEEPER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// RosterConfig locates the per-gateway roster tables on disk.
type RosterConfig struct {
	DataDir string `envconfig:"GATEKEEPER_ROSTER_DATA_DIR" default:"./data/rosters"`
}

type DBConfig struct {
	Path string `envconfig:"GATEKEEPER_DB_PATH" default:"./data/gatekeeper.db"`

	MaxOpenConns    int           `envconfig:"GATEKEEPER_DB_MAX_OPEN_CONNS" default:"1"`
	MaxIdleConns    int           `envconfig:"GATEKEEPER_DB_MAX_IDLE_CONNS" default:"1"`
	ConnMaxLifetime time.Duration `envconfig:"GATEKEEPER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GATEKEEPER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// MergeConfig holds the bulk merge policy switches.
type MergeConfig struct {
	// DropMissing switches the merge from additive (retain members absent
	// from a new snapshot) to replace semantics.
	DropMissing bool `envconfig:"GATEKEEPER_MERGE_DROP_MISSING" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"GATEKEEPER_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}
