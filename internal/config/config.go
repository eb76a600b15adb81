package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Worker    WorkerConfig    `yaml:"worker"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	CORS       CORSConfig       `yaml:"cors"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Matchmaker MatchmakerConfig `yaml:"matchmaker"`
}

// ServerConfig - конфигурация HTTP сервера
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig - конфигурация PostgreSQL
type DatabaseConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	User           string        `yaml:"user"`
	Password       string        `yaml:"password"`
	Name           string        `yaml:"name"`
	MaxConnections int           `yaml:"max_connections"`
	MaxIdle        int           `yaml:"max_idle"`
	MaxLifetime    time.Duration `yaml:"max_lifetime"`
}

// DSN возвращает строку подключения к PostgreSQL (формат key=value)
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name,
	)
}

// DSNURL возвращает строку подключения в URL формате (для golang-migrate)
func (c DatabaseConfig) DSNURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Name,
	)
}

// RedisConfig - конфигурация Redis
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// Address возвращает адрес Redis
func (c RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WorkerConfig - конфигурация worker pool
type WorkerConfig struct {
	MinWorkers    int           `yaml:"min_workers"`
	MaxWorkers    int           `yaml:"max_workers"`
	QueueSize     int           `yaml:"queue_size"`
	Timeout       time.Duration `yaml:"timeout"`
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
}

// LoggingConfig - конфигурация логирования
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	Async  bool   `yaml:"async"` // Асинхронное логирование с буферизацией
}

// MetricsConfig - конфигурация метрик
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// CORSConfig - конфигурация CORS
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	MaxAge         int      `yaml:"max_age"`
}

// RateLimitConfig - конфигурация rate limiting
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	Burst             int  `yaml:"burst"`
}

// MatchmakerConfig - конфигурация ядра подбора матчей
type MatchmakerConfig struct {
	BaseElo          float64 `yaml:"base_elo"`
	PointsPerMatch   float64 `yaml:"points_per_match"`
	KFactor          int     `yaml:"k_factor"`
	PeriodActive     int     `yaml:"period_active"`
	PeriodDutyCycle  float64 `yaml:"period_duty_cycle"`
	TriggerThreshold int     `yaml:"trigger_threshold"`
	MaxHistory       int     `yaml:"max_history"`
	Principal        string  `yaml:"principal"`
}

// Validate валидирует конфигурацию
func (c *Config) Validate() error {
	// Валидация Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Валидация Database
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max_connections must be positive")
	}

	// Валидация Redis
	if c.Redis.Host == "" {
		return fmt.Errorf("redis host is required")
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		return fmt.Errorf("invalid redis port: %d", c.Redis.Port)
	}

	// Валидация Worker
	if c.Worker.MinWorkers < 1 {
		return fmt.Errorf("worker min_workers must be positive")
	}
	if c.Worker.MaxWorkers < c.Worker.MinWorkers {
		return fmt.Errorf("worker max_workers must be >= min_workers")
	}
	if c.Worker.QueueSize < 1 {
		return fmt.Errorf("worker queue_size must be positive")
	}

	// Валидация Logging
	validLevels := []string{"debug", "info", "warn", "error"}
	validLevel := false
	for _, level := range validLevels {
		if c.Logging.Level == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}

	// Валидация Matchmaker
	if c.Matchmaker.KFactor < 1 {
		return fmt.Errorf("matchmaker k_factor must be positive")
	}
	if c.Matchmaker.TriggerThreshold < 2 || c.Matchmaker.TriggerThreshold%2 != 0 {
		return fmt.Errorf("matchmaker trigger_threshold must be an even number >= 2")
	}
	if c.Matchmaker.MaxHistory < 0 {
		return fmt.Errorf("matchmaker max_history must not be negative")
	}

	return nil
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	// Загружаем .env файл если существует
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvInt("API_PORT", 8080),
			ReadTimeout:     getEnvDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvDuration("WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnvInt("DB_PORT", 5432),
			User:           getEnv("DB_USER", "matchmaker"),
			Password:       getEnvOrFile("DB_PASSWORD", "secret"), // Поддержка Docker secrets
			Name:           getEnv("DB_NAME", "matchmaker"),
			MaxConnections: getEnvInt("DB_MAX_CONNECTIONS", 50),
			MaxIdle:        getEnvInt("DB_MAX_IDLE", 10),
			MaxLifetime:    getEnvDuration("DB_MAX_LIFETIME", 1*time.Hour),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnvOrFile("REDIS_PASSWORD", ""), // Поддержка Docker secrets
			DB:       getEnvInt("REDIS_DB", 0),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 100),
		},
		Worker: WorkerConfig{
			MinWorkers:    getEnvInt("WORKER_MIN", 10),
			MaxWorkers:    getEnvInt("WORKER_MAX", 1000),
			QueueSize:     getEnvInt("WORKER_QUEUE_SIZE", 10000),
			Timeout:       getEnvDuration("WORKER_TIMEOUT", 30*time.Second),
			RetryAttempts: getEnvInt("WORKER_RETRY_ATTEMPTS", 3),
			RetryDelay:    getEnvDuration("WORKER_RETRY_DELAY", 5*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
			Async:  getEnvBool("LOG_ASYNC", true), // По умолчанию async для production
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Port:    getEnvInt("METRICS_PORT", 9090),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
			MaxAge:         getEnvInt("CORS_MAX_AGE", 3600),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getEnvBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMinute: getEnvInt("RATE_LIMIT_RPM", 100),
			Burst:             getEnvInt("RATE_LIMIT_BURST", 200),
		},
		Matchmaker: MatchmakerConfig{
			BaseElo:          getEnvFloat("MM_BASE_ELO", 1000),
			PointsPerMatch:   getEnvFloat("MM_POINTS_PER_MATCH", 1),
			KFactor:          getEnvInt("MM_K_FACTOR", 32),
			PeriodActive:     getEnvInt("MM_PERIOD_ACTIVE", 3),
			PeriodDutyCycle:  getEnvFloat("MM_PERIOD_DUTY_CYCLE", 1),
			TriggerThreshold: getEnvInt("MM_TRIGGER_THRESHOLD", 10),
			MaxHistory:       getEnvInt("MM_MAX_HISTORY", 0),
			Principal:        getEnv("MM_PRINCIPAL", "max_sum"),
		},
	}

	// Валидируем конфигурацию
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Вспомогательные функции для чтения переменных окружения

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%g", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvOrFile читает значение из переменной окружения или из файла
// Сначала проверяет KEY, затем KEY_FILE
// Это поддерживает Docker secrets
func getEnvOrFile(key, defaultValue string) string {
	// Сначала проверяем обычную переменную
	if value := os.Getenv(key); value != "" {
		return value
	}

	// Затем проверяем переменную с суффиксом _FILE
	fileKey := key + "_FILE"
	if filePath := os.Getenv(fileKey); filePath != "" {
		content, err := os.ReadFile(filePath)
		if err == nil {
			// Убираем trailing newline
			return strings.TrimSpace(string(content))
		}
	}

	return defaultValue
}
