package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StatsStorageRedis  = "redis"
	StatsStorageSQLite = "sqlite"
)

type Config struct {
	LogLevel string `yaml:"log-level" env-default:"info"`
	HTTPPort string `yaml:"http-port" env-default:"9090"`
	Stats    Stats  `yaml:"stats"`
	Bot      Bot    `yaml:"bot"`
}

type Stats struct {
	Storage    string `yaml:"storage" env-default:"redis"`
	Redis      Redis  `yaml:"redis"`
	SQLitePath string `yaml:"sqlite-path" env-default:"stats.db"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

type Bot struct {
	MediumOptimalRate float64 `yaml:"medium-optimal-rate" env-default:"0.5"`
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
