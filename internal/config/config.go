package config

import (
	"errors"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
	"teenpatti-server/internal/util"
	"teenpatti-server/pkg/playable/teenpatti"
)

// Config provides configuration for the Teen Patti server
type Config struct {
	loaded         bool
	PGDSN          string `yaml:"pgDsn" envconfig:"pg_dsn"`
	MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`
	JWT            struct {
		PublicKey string `yaml:"publicKey" envconfig:"public_key"`
	} `yaml:"jwt"`
	Redis struct {
		Addr  string `yaml:"addr"`
		DB    int    `yaml:"db"`
		Queue string `yaml:"queue"`
	} `yaml:"redis"`
	Log struct {
		Level             string `yaml:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	} `yaml:"log"`
	Wallet struct {
		StartingBalance int `yaml:"startingBalance" envconfig:"starting_balance"`
	} `yaml:"wallet"`
	Table Table `yaml:"table"`
	Room  Room  `yaml:"room"`
}

// Table holds the table settings every room is created with
type Table struct {
	Boot                   int     `yaml:"boot"`
	BetCeiling             int     `yaml:"betCeiling" envconfig:"bet_ceiling"`
	MinPlayers             int     `yaml:"minPlayers" envconfig:"min_players"`
	MaxPlayers             int     `yaml:"maxPlayers" envconfig:"max_players"`
	MinBalance             int     `yaml:"minBalance" envconfig:"min_balance"`
	TurnSeconds            int     `yaml:"turnSeconds" envconfig:"turn_seconds"`
	Rake                   float64 `yaml:"rake"`
	MaxConsecutiveTimeouts int     `yaml:"maxConsecutiveTimeouts" envconfig:"max_consecutive_timeouts"`
}

// Room holds the timings enforced around the game by a room
type Room struct {
	DisconnectGraceSeconds int `yaml:"disconnectGraceSeconds" envconfig:"disconnect_grace_seconds"`
	ConsentSeconds         int `yaml:"consentSeconds" envconfig:"consent_seconds"`
	NextRoundDelaySeconds  int `yaml:"nextRoundDelaySeconds" envconfig:"next_round_delay_seconds"`
	StartDelaySeconds      int `yaml:"startDelaySeconds" envconfig:"start_delay_seconds"`
}

// Options returns the game options for the table
func (t Table) Options() teenpatti.Options {
	return teenpatti.Options{
		Boot:                   t.Boot,
		BetCeiling:             t.BetCeiling,
		MinPlayers:             t.MinPlayers,
		MaxPlayers:             t.MaxPlayers,
		MinBalance:             t.MinBalance,
		TurnTimeLimit:          time.Duration(t.TurnSeconds) * time.Second,
		Rake:                   t.Rake,
		MaxConsecutiveTimeouts: t.MaxConsecutiveTimeouts,
	}
}

// DisconnectGrace is how long a dropped player keeps their seat
func (r Room) DisconnectGrace() time.Duration {
	return time.Duration(r.DisconnectGraceSeconds) * time.Second
}

// ConsentWindow is how long players have to opt out of the next round
func (r Room) ConsentWindow() time.Duration {
	return time.Duration(r.ConsentSeconds) * time.Second
}

// NextRoundDelay is the pause between a round's result and the consent phase
func (r Room) NextRoundDelay() time.Duration {
	return time.Duration(r.NextRoundDelaySeconds) * time.Second
}

// StartDelay is the pause between enough players sitting down and the first deal
func (r Room) StartDelay() time.Duration {
	return time.Duration(r.StartDelaySeconds) * time.Second
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	opts := teenpatti.DefaultOptions()

	cfg := Config{
		PGDSN:          "postgres://postgres@localhost:5432/postgres?sslmode=disable",
		MigrationsPath: "./sql",
		Table: Table{
			Boot:                   opts.Boot,
			BetCeiling:             opts.BetCeiling,
			MinPlayers:             opts.MinPlayers,
			MaxPlayers:             opts.MaxPlayers,
			MinBalance:             opts.MinBalance,
			TurnSeconds:            int(opts.TurnTimeLimit / time.Second),
			Rake:                   opts.Rake,
			MaxConsecutiveTimeouts: opts.MaxConsecutiveTimeouts,
		},
		Room: Room{
			DisconnectGraceSeconds: 30,
			ConsentSeconds:         10,
			NextRoundDelaySeconds:  5,
			StartDelaySeconds:      3,
		},
	}

	cfg.JWT.PublicKey = "public.pem"
	cfg.Redis.Queue = "teenpatti_rounds"
	cfg.Log.Level = "info"
	cfg.Wallet.StartingBalance = 1000

	return cfg
}

var config Config

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration
// The file named by TP_CONFIG_FILE (default config.yaml) is read over the defaults if it exists,
// then TP_* environment variables are applied.
func Load() error {
	cfg := DefaultConfig()

	configFile := util.Getenv("TP_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if file != nil {
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
			return err
		}
	}

	if err := envconfig.Process("tp", &cfg); err != nil {
		return err
	}

	if err := cfg.Table.Options().Validate(); err != nil {
		return err
	}

	cfg.loaded = true
	config = cfg
	return nil
}
