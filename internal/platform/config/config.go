package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Organizations OrganizationsConfig `mapstructure:"organizations"`
	Workers       WorkersConfig       `mapstructure:"workers"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	URL            string `mapstructure:"url"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type JWTConfig struct {
	Secret                   string `mapstructure:"secret"`
	Algorithm                string `mapstructure:"algorithm"`
	AccessTokenExpireMinutes int    `mapstructure:"access_token_expire_minutes"`
	RefreshTokenExpireDays   int    `mapstructure:"refresh_token_expire_days"`
}

func (c JWTConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

func (c JWTConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenExpireDays) * 24 * time.Hour
}

type AuthConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type OrganizationsConfig struct {
	DefaultTimeZone string `mapstructure:"default_time_zone"`
}

type WorkersConfig struct {
	Count             int           `mapstructure:"count"`
	QueueSize         int           `mapstructure:"queue_size"`
	TaskTimeout       time.Duration `mapstructure:"task_timeout"`
	ReconcileInterval time.Duration `mapstructure:"reconcile_interval"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// envAliases maps config keys to the flat environment names operators
// already use for this service.
var envAliases = map[string][]string{
	"jwt.secret":                      {"SECRET_KEY", "JWT_SECRET"},
	"jwt.algorithm":                   {"ALGORITHM", "JWT_ALGORITHM"},
	"jwt.access_token_expire_minutes": {"ACCESS_TOKEN_EXPIRE_MINUTES", "JWT_ACCESS_TOKEN_EXPIRE_MINUTES"},
	"jwt.refresh_token_expire_days":   {"REFRESH_TOKEN_EXPIRE_DAYS", "JWT_REFRESH_TOKEN_EXPIRE_DAYS"},
	"database.url":                    {"DATABASE_URL"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)

	v.SetDefault("database.url", "sqlite://riffraff.db")
	v.SetDefault("database.max_connections", 10)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.algorithm", "HS256")
	v.SetDefault("jwt.access_token_expire_minutes", 15)
	v.SetDefault("jwt.refresh_token_expire_days", 15)

	v.SetDefault("auth.bcrypt_cost", bcrypt.DefaultCost)
	v.SetDefault("organizations.default_time_zone", "UTC")

	v.SetDefault("workers.count", 2)
	v.SetDefault("workers.queue_size", 64)
	v.SetDefault("workers.task_timeout", 30*time.Second)
	v.SetDefault("workers.reconcile_interval", 10*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.file_path", "")
}

// Load reads configuration from path (optional), a local .env file
// (optional) and the environment, in increasing order of precedence.
func Load(path string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, names := range envAliases {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt secret is required (SECRET_KEY)")
	}
	method := jwt.GetSigningMethod(c.JWT.Algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return fmt.Errorf("unsupported signing algorithm %q: only HS256, HS384 and HS512 are allowed", c.JWT.Algorithm)
	}
	if c.JWT.AccessTokenExpireMinutes <= 0 {
		return errors.New("access token lifetime must be positive")
	}
	if c.JWT.RefreshTokenExpireDays <= 0 {
		return errors.New("refresh token lifetime must be positive")
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Workers.Count <= 0 || c.Workers.QueueSize <= 0 {
		return errors.New("workers.count and workers.queue_size must be positive")
	}
	return nil
}
