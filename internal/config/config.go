package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/tictactoe-engine/internal/search"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

var (
	ErrUnknownStorage = errors.New("unknown storage")
	ErrInvalidDepth   = errors.New("bot depth must be positive")
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Storage    string `yaml:"storage" env:"STORAGE" env-default:"memory"`
	Redis      Redis  `yaml:"redis"`
	Bot        Bot    `yaml:"bot"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// Bot configures the automated player.
type Bot struct {
	Strategy   string        `yaml:"strategy" env:"BOT_STRATEGY" env-default:"alphabeta"`
	Depth      int           `yaml:"depth" env:"BOT_DEPTH" env-default:"9"`
	MoveDelay  time.Duration `yaml:"move-delay" env:"BOT_MOVE_DELAY" env-default:"1s"`
	ResetDelay time.Duration `yaml:"reset-delay" env:"BOT_RESET_DELAY" env-default:"3s"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	if err := config.Validate(); err != nil {
		panic(fmt.Errorf("invalid config: %w", err))
	}

	return config
}

// Validate - checks the values that cleanenv cannot check by itself.
func (that *Config) Validate() error {
	if that.Storage != StorageMemory && that.Storage != StorageRedis {
		return fmt.Errorf("%w: %q", ErrUnknownStorage, that.Storage)
	}

	if !slices.Contains(search.Names(), that.Bot.Strategy) {
		return fmt.Errorf("%w: %q", search.ErrUnknownStrategy, that.Bot.Strategy)
	}

	if that.Bot.Depth < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidDepth, that.Bot.Depth)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
