package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr    string `env:"HTTP_ADDR"    env-default:":8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	LogLevel    string `env:"LOG_LEVEL"    env-default:"info"`

	JWT    JWTConfig
	S3     S3Config
	ES     ESConfig
	Worker WorkerConfig

	KafkaBrokers   []string `env:"KAFKA_BROKERS" env-separator:","`
	MaxUploadBytes int64    `env:"MAX_UPLOAD_BYTES" env-default:"20971520"`
}

type JWTConfig struct {
	AccessSecret  string        `env:"JWT_ACCESS_SECRET"`
	RefreshSecret string        `env:"JWT_REFRESH_SECRET"`
	AccessTTL     time.Duration `env:"JWT_ACCESS_TOKEN_TTL"  env-default:"15m"`
	RefreshTTL    time.Duration `env:"JWT_REFRESH_TOKEN_TTL" env-default:"168h"`
}

type S3Config struct {
	Endpoint      string `env:"S3_ENDPOINT"`
	AccessKey     string `env:"S3_ACCESS_KEY"`
	SecretKey     string `env:"S3_SECRET_KEY"`
	Bucket        string `env:"S3_BUCKET"          env-default:"documents"`
	PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`
}

type ESConfig struct {
	URL      string `env:"ES_URL"`
	User     string `env:"ES_USER"`
	Password string `env:"ES_PASSWORD"`
	Index    string `env:"ES_INDEX" env-default:"documents"`
}

type WorkerConfig struct {
	URL       string        `env:"WORKER_URL"        env-default:"http://localhost:8080/python-mock"`
	Token     string        `env:"WORKER_TOKEN"`
	Timeout   time.Duration `env:"WORKER_TIMEOUT"    env-default:"10s"`
	Mock      bool          `env:"WORKER_MOCK"       env-default:"false"`
	MockDelay time.Duration `env:"WORKER_MOCK_DELAY" env-default:"0s"`
}

// Load reads an optional .env file into the process environment and then
// fills Config from the environment.
func Load(envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil {
		log.Printf("Notice: %s file not found: %v. Using system environment variables", envFile, err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("missing required env DATABASE_URL"))
	}
	if c.JWT.AccessSecret == "" {
		errs = append(errs, errors.New("missing required env JWT_ACCESS_SECRET"))
	}
	if c.JWT.RefreshSecret == "" {
		errs = append(errs, errors.New("missing required env JWT_REFRESH_SECRET"))
	}
	if c.JWT.AccessSecret != "" && c.JWT.AccessSecret == c.JWT.RefreshSecret {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	if c.JWT.AccessTTL >= c.JWT.RefreshTTL {
		errs = append(errs, errors.New("JWT_ACCESS_TOKEN_TTL must be shorter than JWT_REFRESH_TOKEN_TTL"))
	}
	return errors.Join(errs...)
}
