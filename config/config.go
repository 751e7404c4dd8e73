package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLServer = "sqlserver"
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite"
)

// Placeholder connection strings used when nothing is configured. They are
// syntactically valid but point nowhere, so the service fails on first use
// instead of silently talking to the wrong database.
var placeholderDSNs = map[string]string{
	DriverSQLServer: "sqlserver://[username]:[password]@[your-server].database.windows.net:1433?database=NamesDB&encrypt=true",
	DriverPostgres:  "host=localhost user=postgres password=postgres dbname=names port=5432 sslmode=disable",
	DriverSQLite:    "names.db",
}

// Config holds everything the service reads at startup.
type Config struct {
	Port            int           `mapstructure:"port"`
	GinMode         string        `mapstructure:"gin_mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	DB              DBConfig      `mapstructure:"db"`
	CORS            CORSConfig    `mapstructure:"cors"`
	Log             LogConfig     `mapstructure:"log"`
}

type DBConfig struct {
	Driver      string `mapstructure:"driver"`
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
	LogLevel    string `mapstructure:"log_level"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadEnvVars loads a .env file from the working directory if one exists.
// A missing file is not an error; real deployments set the environment directly.
func LoadEnvVars() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}

// New returns a viper instance with defaults, config file search paths and
// environment bindings set up. Callers may bind flags on it before Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("port", 8080)
	v.SetDefault("gin_mode", "release")
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("db.driver", DriverSQLServer)
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.auto_migrate", false)
	v.SetDefault("db.log_level", "silent")
	v.SetDefault("cors.allowed_origins", []string{"https://[votre-frontend-url]"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if dir := os.Getenv("ITEMS_CONFIG_DIR"); dir != "" {
		v.AddConfigPath(dir)
	}

	// db.dsn -> DB_DSN, cors.allowed_origins -> CORS_ALLOWED_ORIGINS
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the optional config file and unmarshals the result.
func Load(v *viper.Viper) (*Config, error) {
	// An explicit file must exist; the search paths are optional.
	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// Env vars arrive as a single comma-separated string.
	cfg.CORS.AllowedOrigins = splitOrigins(cfg.CORS.AllowedOrigins)

	if cfg.DB.DSN == "" {
		// Key set by Azure App Service for the "DefaultConnection" connection string.
		cfg.DB.DSN = os.Getenv("ConnectionStrings__DefaultConnection")
	}
	if cfg.DB.DSN == "" {
		cfg.DB.DSN = placeholderDSNs[cfg.DB.Driver]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	if _, ok := placeholderDSNs[c.DB.Driver]; !ok {
		return fmt.Errorf("unsupported database driver %q", c.DB.Driver)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		return errors.New("at least one allowed CORS origin is required")
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid gin mode %q", c.GinMode)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout %s", c.ShutdownTimeout)
	}
	return nil
}

// UsesPlaceholderDSN reports whether no connection string was configured.
func (c *Config) UsesPlaceholderDSN() bool {
	return c.DB.DSN == placeholderDSNs[c.DB.Driver]
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func splitOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, entry := range in {
		for _, origin := range strings.Split(entry, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				out = append(out, origin)
			}
		}
	}
	return out
}
