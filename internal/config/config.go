package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kr/pretty"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Storage backends
const (
	StoreSQL   = "sql"
	StoreRedis = "redis"
	StoreMongo = "mongo"
	StoreHost  = "host"
)

// EnvPrefix is prepended to every environment variable, e.g. POLLBOARD_PORT
const EnvPrefix = "POLLBOARD"

// Config is the effective server configuration
type Config struct {
	Port       int    `mapstructure:"port"`
	Store      string `mapstructure:"store"`
	DBDriver   string `mapstructure:"db_driver"`
	DB         string `mapstructure:"db"`
	RedisURI   string `mapstructure:"redis_uri"`
	MongoURI   string `mapstructure:"mongo_uri"`
	MongoDB    string `mapstructure:"mongo_db"`
	HostURL    string `mapstructure:"host_url"`
	HostToken  string `mapstructure:"host_token"`
	BaseURL    string `mapstructure:"base_url"`
	Group      string `mapstructure:"group"`
	AdminPW    string `mapstructure:"adminpw"`
	LogLevel   string `mapstructure:"loglevel"`
	LogFormat  string `mapstructure:"logformat"`
	HTTPLog    bool   `mapstructure:"http_log"`
	Open       bool   `mapstructure:"open"`
	NoKeyboard bool   `mapstructure:"nokeyboard"`
	Version    bool   `mapstructure:"version"`
	ConfigFile string `mapstructure:"config"`
	EnvFile    string `mapstructure:"env_file"`
}

// Addr is the listen address for Port
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Dump renders the config for debug logs with secrets masked
func (c *Config) Dump() string {
	type plain Config
	masked := plain(*c)
	if masked.AdminPW != "" {
		masked.AdminPW = "********"
	}
	if masked.HostToken != "" {
		masked.HostToken = "********"
	}
	return fmt.Sprintf("%# v", pretty.Formatter(masked))
}

func flagSet(name string) *pflag.FlagSet {
	f := pflag.NewFlagSet(name, pflag.ContinueOnError)
	f.SetOutput(io.Discard)
	f.Usage = func() {}
	f.Int("port", 8081, "HTTP server port")
	f.String("store", StoreSQL, "Document store: sql, redis, mongo or host")
	f.String("db_driver", "sqlite3", "SQL driver: sqlite3 or postgres")
	f.String("db", "pollboard.db", "SQL data source (sqlite path or postgres DSN)")
	f.String("redis_uri", "redis://localhost:6379/0", "Redis server URI")
	f.String("mongo_uri", "mongodb://localhost:27017", "MongoDB server URI")
	f.String("mongo_db", "pollboard", "MongoDB database name")
	f.String("host_url", "", "Base URL of the host application's group data API")
	f.String("host_token", "", "Bearer token for the host application")
	f.String("base_url", "", "Public URL used in share links (request host when empty)")
	f.String("group", "default", "Group shown at /")
	f.String("adminpw", "", "Admin password (auto-generated if not set)")
	f.String("loglevel", "info", "Log level: debug, info, warn, error")
	f.String("logformat", "text", "Log format: text or json")
	f.Bool("http_log", false, "Log HTTP requests")
	f.Bool("open", false, "Open the board in a browser on start")
	f.Bool("nokeyboard", false, "Disable keyboard shortcuts")
	f.Bool("version", false, "Show version and exit")
	f.String("config", "", "Config file (yaml, json or toml)")
	f.String("env_file", ".env", "Dotenv file loaded before reading the environment")
	return f
}

// Usage returns the flag help text
func Usage(name string) string {
	return flagSet(name).FlagUsages()
}

// Load builds the configuration from, in increasing priority: defaults, the
// config file, the environment (after loading the dotenv file) and flags.
func Load(name string, args []string) (*Config, error) {
	flags := flagSet(name)
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}

	envFile, _ := flags.GetString("env_file")
	if envFile != "" {
		// godotenv never overrides variables already set
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that cannot be defaulted
func (c *Config) Validate() error {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	switch c.Store {
	case StoreSQL:
		if c.DBDriver != "sqlite3" && c.DBDriver != "postgres" {
			return fmt.Errorf("unsupported db_driver %q", c.DBDriver)
		}
	case StoreRedis:
		if c.RedisURI == "" {
			return errors.New("redis_uri is required for the redis store")
		}
	case StoreMongo:
		if c.MongoURI == "" || c.MongoDB == "" {
			return errors.New("mongo_uri and mongo_db are required for the mongo store")
		}
	case StoreHost:
		if c.HostURL == "" {
			return errors.New("host_url is required for the host store")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if strings.TrimSpace(c.Group) == "" {
		return errors.New("group must not be empty")
	}
	return nil
}
