package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel          string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort          string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort        string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Redis             Redis  `yaml:"redis"`
	SQLiteStoragePath string `yaml:"sqlite-storage-path" env:"SQLITE_STORAGE_PATH" env-default:"./storage/icons.db"`
	Game              Game   `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// Game tunes the table: how long the computer "thinks", what a win pays and
// how long an abandoned session is kept.
type Game struct {
	BotDelay          time.Duration `yaml:"bot-delay" env:"GAME_BOT_DELAY" env-default:"600ms"`
	WinCoins          int           `yaml:"win-coins" env:"GAME_WIN_COINS" env-default:"10"`
	UnlockAllBonus    int           `yaml:"unlock-all-bonus" env:"GAME_UNLOCK_ALL_BONUS" env-default:"500"`
	BotIgnoresUnlocks bool          `yaml:"bot-ignores-unlocks" env:"GAME_BOT_IGNORES_UNLOCKS" env-default:"true"`
	SessionTTL        time.Duration `yaml:"session-ttl" env:"GAME_SESSION_TTL" env-default:"24h"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
