package configs

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

type StoreDriver string

const (
	StoreMemory   StoreDriver = "memory"
	StorePostgres StoreDriver = "postgres"
	StoreSQLite   StoreDriver = "sqlite"
)

type Config struct {
	HTTP struct {
		Port string `env:"HTTP_PORT,default=8080"`
	}
	GRPC struct {
		Port string `env:"GRPC_PORT,default=9090"`
	}
	Auth struct {
		JWTSecret string        `env:"JWT_SECRET"`
		TokenTTL  time.Duration `env:"JWT_TTL,default=24h"`
	}
	Store struct {
		Driver     StoreDriver `env:"STORE_DRIVER,default=memory"`
		SQLitePath string      `env:"SQLITE_PATH,default=recipes.sqlite"`
	}
	DB struct {
		Host     string `env:"POSTGRES_HOST"`
		Port     string `env:"POSTGRES_PORT,default=5432"`
		User     string `env:"POSTGRES_USER"`
		Password string `env:"POSTGRES_PASSWORD"`
		Database string `env:"POSTGRES_DB"`
	}
	Redis struct {
		Addr     string `env:"REDIS_ADDR"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB,default=0"`
	}
	Kafka struct {
		Brokers string `env:"KAFKA_BROKERS"`
		Topic   string `env:"KAFKA_TOPIC,default=recipes.events"`
	}
	S3 struct {
		Endpoint     string `env:"S3_ENDPOINT"`
		AccessKey    string `env:"S3_ACCESS_KEY"`
		SecretKey    string `env:"S3_SECRET_KEY"`
		Bucket       string `env:"S3_BUCKET"`
		Region       string `env:"S3_REGION,default=us-east-1"`
		ExternalHost string `env:"S3_EXTERNAL_HOST"`
		UseSSL       bool   `env:"S3_USE_SSL,default=false"`
	}
	Upload struct {
		TTL time.Duration `env:"IMAGE_UPLOAD_TTL,default=15m"`
	}
	Log struct {
		Level string `env:"LOG_LEVEL,default=info"`
	}
}

// NewConfig loads the environment and validates it for the application server.
func NewConfig() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the environment, after loading a .env file when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.Store.Driver {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.DB.Host == "" {
			return fmt.Errorf("POSTGRES_HOST is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	return nil
}

func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Database)
}

func (c *Config) KafkaBrokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.Kafka.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
