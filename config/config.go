package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type TermiiConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
	SenderID  string        `mapstructure:"sender_id"`
	ChunkSize int           `mapstructure:"chunk_size"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type SMTPConfig struct {
	Host       string        `mapstructure:"host"`
	Port       int           `mapstructure:"port"`
	Username   string        `mapstructure:"username"`
	Password   string        `mapstructure:"password"`
	FromName   string        `mapstructure:"from_name"`
	FromEmail  string        `mapstructure:"from_email"`
	BatchSize  int           `mapstructure:"batch_size"`
	BatchDelay time.Duration `mapstructure:"batch_delay"`
}

type CostConfig struct {
	SMS      int `mapstructure:"sms"`
	WhatsApp int `mapstructure:"whatsapp"`
	Email    int `mapstructure:"email"`
}

type MessagingConfig struct {
	Termii TermiiConfig `mapstructure:"termii"`
	SMTP   SMTPConfig   `mapstructure:"smtp"`
	Costs  CostConfig   `mapstructure:"costs"`
}

type BirthdayConfig struct {
	SendTime string `mapstructure:"send_time"`
	Timezone string `mapstructure:"timezone"`
}

type SchedulerConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Messaging MessagingConfig `mapstructure:"messaging"`
	Birthday  BirthdayConfig  `mapstructure:"birthday"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// secrets are credentials that may not live in the config file. Any that
// are set in the environment override the file values.
type secrets struct {
	DatabasePassword string `envconfig:"DB_PASSWORD"`
	JWTSecret        string `envconfig:"JWT_SECRET"`
	TermiiAPIKey     string `envconfig:"TERMII_API_KEY"`
	SMTPPassword     string `envconfig:"SMTP_PASSWORD"`
	RedisURL         string `envconfig:"REDIS_URL"`
}

// Load reads config.yml from the usual locations and applies environment
// overrides for secrets.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/app")
	viper.AddConfigPath("/app/config")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var sec secrets
	if err := envconfig.Process("", &sec); err != nil {
		return nil, fmt.Errorf("failed to read environment overrides: %w", err)
	}
	if sec.DatabasePassword != "" {
		cfg.Database.Password = sec.DatabasePassword
	}
	if sec.JWTSecret != "" {
		cfg.JWT.Secret = sec.JWTSecret
	}
	if sec.TermiiAPIKey != "" {
		cfg.Messaging.Termii.APIKey = sec.TermiiAPIKey
	}
	if sec.SMTPPassword != "" {
		cfg.Messaging.SMTP.Password = sec.SMTPPassword
	}
	if sec.RedisURL != "" {
		cfg.Redis.URL = sec.RedisURL
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.JWT.ExpiryHours == 0 {
		c.JWT.ExpiryHours = 24
	}
	if c.Messaging.Termii.ChunkSize == 0 {
		c.Messaging.Termii.ChunkSize = 100
	}
	if c.Messaging.SMTP.BatchSize == 0 {
		c.Messaging.SMTP.BatchSize = 50
	}
	if c.Messaging.SMTP.BatchDelay == 0 {
		c.Messaging.SMTP.BatchDelay = time.Second
	}
	if c.Messaging.Costs.SMS == 0 {
		c.Messaging.Costs.SMS = 3
	}
	if c.Messaging.Costs.WhatsApp == 0 {
		c.Messaging.Costs.WhatsApp = 3
	}
	if c.Messaging.Costs.Email == 0 {
		c.Messaging.Costs.Email = 2
	}
	if c.Birthday.SendTime == "" {
		c.Birthday.SendTime = "08:10"
	}
	if c.Scheduler.PollInterval == 0 {
		c.Scheduler.PollInterval = 10 * time.Second
	}
	if c.Scheduler.BatchSize == 0 {
		c.Scheduler.BatchSize = 20
	}
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	if c.Database.Host == "" || c.Database.Name == "" {
		return fmt.Errorf("database host and name are required")
	}
	return nil
}
