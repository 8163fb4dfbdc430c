package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Configuration struct {
	Environment string         `yaml:"environment"`
	Server      ServerConfig   `yaml:"server"`
	Database    DatabaseConfig `yaml:"database"`
	AI          AIConfig       `yaml:"ai"`
	SMTP        SMTPConfig     `yaml:"smtp"`
	Dispatch    DispatchConfig `yaml:"dispatch"`
}

type ServerConfig struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	FrontendURL     string        `yaml:"frontend_url"`
	// MaxBodyBytes ограничивает размер тела запроса
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

type DatabaseConfig struct {
	ConnString      string        `yaml:"conn_string"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type AIConfig struct {
	APIKey            string        `yaml:"api_key"`
	Model             string        `yaml:"model"`
	Temperature       float32       `yaml:"temperature"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
}

type SMTPConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	User     string        `yaml:"user"`
	Password string        `yaml:"password"`
	From     string        `yaml:"from"`
	Timeout  time.Duration `yaml:"timeout"`
}

type DispatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

func Default() *Configuration {
	return &Configuration{
		Environment: "development",
		Server: ServerConfig{
			Address:         "0.0.0.0:8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    180 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			FrontendURL:     "http://localhost:5173",
			MaxBodyBytes:    10 << 20,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		AI: AIConfig{
			Model:       "gemini-2.5-flash",
			Temperature: 0.3,
			Timeout:     60 * time.Second,
		},
		SMTP: SMTPConfig{
			Port:    587,
			Timeout: 30 * time.Second,
		},
		Dispatch: DispatchConfig{
			Concurrency: 8,
		},
	}
}

// Load собирает конфигурацию: значения по умолчанию, затем YAML-файл
// (если задан path), затем переменные окружения
func Load(path string) (*Configuration, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Configuration) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("APP_ENV", &c.Environment)
	str("SERVER_ADDRESS", &c.Server.Address)
	str("FRONTEND_URL", &c.Server.FrontendURL)
	str("POSTGRES_CONN", &c.Database.ConnString)
	str("GEMINI_API_KEY", &c.AI.APIKey)
	str("AI_MODEL", &c.AI.Model)
	dur("AI_TIMEOUT", &c.AI.Timeout)
	num("AI_RPM", &c.AI.RequestsPerMinute)
	str("SMTP_HOST", &c.SMTP.Host)
	num("SMTP_PORT", &c.SMTP.Port)
	str("SMTP_USER", &c.SMTP.User)
	str("SMTP_PASSWORD", &c.SMTP.Password)
	str("FROM_EMAIL", &c.SMTP.From)
	num("DISPATCH_CONCURRENCY", &c.Dispatch.Concurrency)

	return errors.Join(errs...)
}

func (c *Configuration) Validate() error {
	var errs []error
	if c.Database.ConnString == "" {
		errs = append(errs, errors.New("POSTGRES_CONN env variable is not set"))
	}
	if c.Dispatch.Concurrency <= 0 {
		errs = append(errs, errors.New("dispatch concurrency must be positive"))
	}
	if c.AI.Timeout < 0 {
		errs = append(errs, errors.New("AI timeout must not be negative"))
	}
	if c.AI.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("AI requests per minute must not be negative"))
	}
	return errors.Join(errs...)
}

func (c *Configuration) LogConfig(logger *zap.Logger) {
	logger.Info("Application configuration",
		zap.String("environment", c.Environment),
		zap.String("address", c.Server.Address),
		zap.String("frontend_url", c.Server.FrontendURL),
		zap.Duration("write_timeout", c.Server.WriteTimeout),
		zap.Int("db_max_open_conns", c.Database.MaxOpenConns),
		zap.String("ai_model", c.AI.Model),
		zap.Bool("ai_key_set", c.AI.APIKey != ""),
		zap.Duration("ai_timeout", c.AI.Timeout),
		zap.Int("ai_rpm", c.AI.RequestsPerMinute),
		zap.String("smtp_host", c.SMTP.Host),
		zap.Int("smtp_port", c.SMTP.Port),
		zap.String("smtp_user", c.SMTP.User),
		zap.String("smtp_password", redact(c.SMTP.Password)),
		zap.String("from_email", c.SMTP.From),
		zap.Int("dispatch_concurrency", c.Dispatch.Concurrency),
	)
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}
