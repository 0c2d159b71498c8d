package configs

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config carries both halves of the repo: the client SDK settings and the
// settings for the local stub of the remote API.
type Config struct {
	Env struct {
		CurrentEnv string `yaml:"current_env"`
	} `yaml:"env"`

	API struct {
		BaseURL         string `yaml:"base_url"`
		TimeoutSeconds  int    `yaml:"timeout_seconds"`
		CredentialsFile string `yaml:"credentials_file"`
	} `yaml:"api"`

	Stub struct {
		HTTPPort  string `yaml:"http_port"`
		Driver    string `yaml:"driver"` // sqlite or mysql
		SQLiteDSN string `yaml:"sqlite_dsn"`
		MySQLDSN  string `yaml:"mysql_dsn"`
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"stub"`

	Redis struct {
		Addr     string `yaml:"redis_addr"`
		Password string `yaml:"redis_password"`
		DB       int    `yaml:"redis_db"`
	} `yaml:"redis"`

	Mail struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     string `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_username"`
		SMTPPassword string `yaml:"smtp_password"`
		SenderEmail  string `yaml:"sender_email"`
		EmailAPIKey  string `yaml:"email_api_key"`
	} `yaml:"mail"`
}

func Load(env string) (*Config, error) {
	var cfg Config
	configFile := "dev.yml"

	if env == "production" {
		configFile = "prod.yml"
	}

	configPath := filepath.Join("internal", "configs", configFile)
	file, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	log.Printf("Loading config from: %s", configPath)

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.Env.CurrentEnv = env
	expandConfig(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

// Default returns a config without touching the filesystem; the base URL
// still honors LEGAL_API_BASE. Used by the CLI when no config file exists.
func Default(env string) *Config {
	var cfg Config
	cfg.Env.CurrentEnv = env
	expandConfig(&cfg)
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8089/api"
	}
	if cfg.API.CredentialsFile == "" {
		cfg.API.CredentialsFile = defaultCredentialsPath()
	}
	if cfg.Stub.HTTPPort == "" {
		cfg.Stub.HTTPPort = "8089"
	}
	if cfg.Stub.Driver == "" {
		cfg.Stub.Driver = "sqlite"
	}
	if cfg.Stub.SQLiteDSN == "" {
		cfg.Stub.SQLiteDSN = "file:stubapi.db?cache=shared&_fk=1"
	}
	if cfg.Stub.JWTSecret == "" {
		cfg.Stub.JWTSecret = os.Getenv("JWT_SECRET")
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
}

func expandConfig(cfg *Config) {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	if base := os.Getenv("LEGAL_API_BASE"); base != "" {
		cfg.API.BaseURL = base
	}
	if timeout := os.Getenv("LEGAL_API_TIMEOUT_SECONDS"); timeout != "" {
		if n, err := strconv.Atoi(timeout); err == nil {
			cfg.API.TimeoutSeconds = n
		}
	}

	cfg.Stub.MySQLDSN = os.ExpandEnv(cfg.Stub.MySQLDSN)
	cfg.Stub.JWTSecret = os.ExpandEnv(cfg.Stub.JWTSecret)
	cfg.Redis.Password = os.ExpandEnv(cfg.Redis.Password)
	cfg.Mail.SMTPPassword = os.ExpandEnv(cfg.Mail.SMTPPassword)
	cfg.Mail.EmailAPIKey = os.ExpandEnv(cfg.Mail.EmailAPIKey)
}

func defaultCredentialsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".advocaid-credentials.json"
	}
	return filepath.Join(dir, "advocaid", "credentials.json")
}

func (c *Config) ListenAddress() string {
	return fmt.Sprintf(":%s", c.Stub.HTTPPort)
}
