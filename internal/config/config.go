package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort    string `mapstructure:"SERVER_PORT"`
	PostgresURL   string `mapstructure:"POSTGRES_URL"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	JWTSecret     string `mapstructure:"JWT_SECRET"`
	TrailsCSV     string `mapstructure:"TRAILS_CSV"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`

	ChartWidth          float64 `mapstructure:"CHART_WIDTH"`
	ChartHeight         float64 `mapstructure:"CHART_HEIGHT"`
	TerrainWidth        float64 `mapstructure:"TERRAIN_WIDTH"`
	TerrainHeight       float64 `mapstructure:"TERRAIN_HEIGHT"`
	HoverThrottleMs     int     `mapstructure:"HOVER_THROTTLE_MS"`
	HoverPixelTolerance float64 `mapstructure:"HOVER_PIXEL_TOLERANCE"`
	FrameIntervalMs     int     `mapstructure:"FRAME_INTERVAL_MS"`
}

// envFiles lists the dotenv files read before the environment is consulted.
var envFiles = []string{".env"}

func Load() Config {
	// a missing .env is normal outside local development
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("SERVER_PORT", ":8080")
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "dev-secret-change-me")
	v.SetDefault("TRAILS_CSV", "trails.csv")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CHART_WIDTH", 320)
	v.SetDefault("CHART_HEIGHT", 100)
	v.SetDefault("TERRAIN_WIDTH", 350)
	v.SetDefault("TERRAIN_HEIGHT", 300)
	v.SetDefault("HOVER_THROTTLE_MS", 50)
	v.SetDefault("HOVER_PIXEL_TOLERANCE", 1)
	v.SetDefault("FRAME_INTERVAL_MS", 16)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

func (c Config) HoverThrottle() time.Duration {
	return time.Duration(c.HoverThrottleMs) * time.Millisecond
}

func (c Config) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMs) * time.Millisecond
}
