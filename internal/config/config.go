package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath es el archivo que se busca cuando no se pasa --config.
// Si no existe se usan defaults + env.
const DefaultPath = "datagate.yaml"

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Server struct {
		Addr            string `yaml:"addr"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	// UsersFile es el JSON de credenciales (mapping username -> record).
	UsersFile string `yaml:"users_file"`

	Warehouse struct {
		// bigquery | postgres | none
		Driver       string `yaml:"driver"`
		Project      string `yaml:"project"`
		Dataset      string `yaml:"dataset"`
		Location     string `yaml:"location"`
		DSN          string `yaml:"dsn"`
		QueryTimeout string `yaml:"query_timeout"`
	} `yaml:"warehouse"`

	Cache struct {
		// memory | redis
		Kind  string `yaml:"kind"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		TablesTTL string `yaml:"tables_ttl"`
	} `yaml:"cache"`

	Auth struct {
		JWTSecret  string `yaml:"jwt_secret"`
		SessionTTL string `yaml:"session_ttl"`
		CookieName string `yaml:"cookie_name"`
		Secure     bool   `yaml:"secure_cookie"`
	} `yaml:"auth"`

	Access struct {
		// raw | strict
		FilterMode string `yaml:"filter_mode"`
	} `yaml:"access"`

	Security struct {
		// sha256 | argon2id (sólo para usuarios nuevos)
		PasswordScheme string `yaml:"password_scheme"`
	} `yaml:"security"`

	Bootstrap struct {
		AdminPassword string `yaml:"admin_password"`
	} `yaml:"bootstrap"`
}

// Load lee el YAML (si existe), aplica defaults y luego env.
// Un path explícito que no existe es error; DefaultPath ausente no.
func Load(path string) (*Config, error) {
	var c Config
	if path == "" {
		path = DefaultPath
	}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && path == DefaultPath:
		// sin archivo: defaults + env
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	c.applyDefaults()
	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default devuelve la config sin archivo ni env. Útil en tests.
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.UsersFile == "" {
		c.UsersFile = "users.json"
	}
	if c.Warehouse.Driver == "" {
		c.Warehouse.Driver = "bigquery"
	}
	if c.Warehouse.Dataset == "" {
		c.Warehouse.Dataset = "rawc_data"
	}
	if c.Warehouse.Location == "" {
		c.Warehouse.Location = "US"
	}
	if c.Warehouse.QueryTimeout == "" {
		c.Warehouse.QueryTimeout = "30s"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "datagate"
	}
	if c.Cache.TablesTTL == "" {
		c.Cache.TablesTTL = "1h"
	}
	if c.Auth.SessionTTL == "" {
		c.Auth.SessionTTL = "12h"
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "datagate_session"
	}
	if c.Access.FilterMode == "" {
		c.Access.FilterMode = "raw"
	}
	if c.Security.PasswordScheme == "" {
		c.Security.PasswordScheme = "sha256"
	}
	if c.Bootstrap.AdminPassword == "" {
		c.Bootstrap.AdminPassword = "admin123"
	}
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

// applyEnvOverrides: pisa el YAML con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP / LOG
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("USERS_FILE"); ok {
		c.UsersFile = v
	}

	// WAREHOUSE
	if v, ok := getEnvStr("WAREHOUSE_DRIVER"); ok {
		c.Warehouse.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("GOOGLE_CLOUD_PROJECT"); ok {
		c.Warehouse.Project = v
	}
	if v, ok := getEnvStr("WAREHOUSE_PROJECT"); ok {
		c.Warehouse.Project = v
	}
	if v, ok := getEnvStr("WAREHOUSE_DATASET"); ok {
		c.Warehouse.Dataset = v
	}
	if v, ok := getEnvStr("WAREHOUSE_LOCATION"); ok {
		c.Warehouse.Location = v
	}
	if v, ok := getEnvStr("WAREHOUSE_DSN"); ok {
		c.Warehouse.DSN = v
	}
	if v, ok := getEnvStr("WAREHOUSE_QUERY_TIMEOUT"); ok {
		c.Warehouse.QueryTimeout = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = strings.ToLower(v)
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("CACHE_TABLES_TTL"); ok {
		c.Cache.TablesTTL = v
	}

	// AUTH
	if v, ok := getEnvStr("AUTH_JWT_SECRET"); ok {
		c.Auth.JWTSecret = v
	}
	if v, ok := getEnvStr("AUTH_SESSION_TTL"); ok {
		c.Auth.SessionTTL = v
	}
	if v, ok := getEnvBool("AUTH_SECURE_COOKIE"); ok {
		c.Auth.Secure = v
	}

	// ACCESS / SECURITY
	if v, ok := getEnvStr("ACCESS_FILTER_MODE"); ok {
		c.Access.FilterMode = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SECURITY_PASSWORD_SCHEME"); ok {
		c.Security.PasswordScheme = strings.ToLower(v)
	}
	if v, ok := getEnvStr("BOOTSTRAP_ADMIN_PASSWORD"); ok {
		c.Bootstrap.AdminPassword = v
	}

	// en prod las cookies siempre Secure
	if c.App.Env == "prod" {
		c.Auth.Secure = true
	}
}

// Validate chequea enums y duraciones.
func (c *Config) Validate() error {
	switch c.Warehouse.Driver {
	case "bigquery", "postgres", "none":
	default:
		return fmt.Errorf("config: warehouse.driver must be bigquery|postgres|none, got %q", c.Warehouse.Driver)
	}
	switch c.Cache.Kind {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: cache.kind must be memory|redis, got %q", c.Cache.Kind)
	}
	switch c.Access.FilterMode {
	case "raw", "strict":
	default:
		return fmt.Errorf("config: access.filter_mode must be raw|strict, got %q", c.Access.FilterMode)
	}
	if c.Warehouse.Driver == "postgres" && c.Warehouse.DSN == "" {
		return errors.New("config: warehouse.dsn is required for the postgres driver")
	}
	if strings.Count(c.Warehouse.Dataset, ".") > 0 {
		return fmt.Errorf("config: warehouse.dataset %q must not contain dots", c.Warehouse.Dataset)
	}

	durations := map[string]string{
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"warehouse.query_timeout": c.Warehouse.QueryTimeout,
		"cache.tables_ttl":        c.Cache.TablesTTL,
		"auth.session_ttl":        c.Auth.SessionTTL,
	}
	for k, v := range durations {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: invalid duration %q", k, v)
		}
		if d <= 0 {
			return fmt.Errorf("config: %s must be positive", k)
		}
	}
	return nil
}

// mustDuration parsea un campo ya validado por Validate.
func mustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (c *Config) QueryTimeout() time.Duration    { return mustDuration(c.Warehouse.QueryTimeout) }
func (c *Config) TablesTTL() time.Duration       { return mustDuration(c.Cache.TablesTTL) }
func (c *Config) SessionTTL() time.Duration      { return mustDuration(c.Auth.SessionTTL) }
func (c *Config) ShutdownTimeout() time.Duration { return mustDuration(c.Server.ShutdownTimeout) }
