package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Drivers de almacenamiento soportados (STORE_DRIVER).
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App   AppConfig
	Store StoreConfig
	DB    DBConfig
	Mongo MongoConfig
	JWT   JWTConfig
	HTTP  HTTPConfig
	Admin AdminConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// IsDevelopment indica si la app corre en modo desarrollo.
func (c AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// StoreConfig selecciona el adaptador de persistencia.
type StoreConfig struct {
	Driver string // postgres | mongo | memory
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int32 // tamaño máximo del pool
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// MongoConfig configuración de MongoDB.
type MongoConfig struct {
	URI      string
	Database string
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret      string
	Expiration  int // minutos (access token)
	RefreshDays int
	Issuer      string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host        string
	Port        int
	FrontendURL string // origen permitido por CORS
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AdminConfig usuario administrador sembrado al arrancar.
type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := fromViper(v)
	if cfg.JWT.Secret == "" && cfg.App.IsDevelopment() {
		cfg.JWT.Secret = devJWTSecret
	}
	return cfg, nil
}

// devJWTSecret solo se usa en development cuando JWT_SECRET no está definido.
const devJWTSecret = "development-only-secret"

func fromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "textile-stock-api"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getString(v, "STORE_DRIVER", DriverPostgres)),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "stock_management"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    int32(getInt(v, "DB_MAX_CONNS", 10)),
		},
		Mongo: MongoConfig{
			URI:      getString(v, "MONGODB_URI", "mongodb://localhost:27017/stock-management"),
			Database: getString(v, "MONGODB_DATABASE", "stock-management"),
		},
		JWT: JWTConfig{
			Secret:      getString(v, "JWT_SECRET", ""),
			Expiration:  getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			RefreshDays: getInt(v, "JWT_REFRESH_DAYS", 7),
			Issuer:      getString(v, "JWT_ISSUER", "textile-stock-api"),
		},
		HTTP: HTTPConfig{
			Host:        getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:        getInt(v, "HTTP_PORT", 4000),
			FrontendURL: getString(v, "FRONTEND_URL", "http://localhost:3000"),
		},
		Admin: AdminConfig{
			Email:    strings.ToLower(getString(v, "ADMIN_EMAIL", "")),
			Password: getString(v, "ADMIN_PASSWORD", ""),
			Name:     getString(v, "ADMIN_NAME", "Administrator"),
		},
	}
}

// Validate revisa combinaciones inválidas antes de arrancar.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverPostgres, DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("config: STORE_DRIVER desconocido %q", c.Store.Driver)
	}
	if c.JWT.Secret == "" && !c.App.IsDevelopment() {
		return fmt.Errorf("config: JWT_SECRET es obligatorio en %s", c.App.Env)
	}
	if c.JWT.Expiration <= 0 || c.JWT.RefreshDays <= 0 {
		return fmt.Errorf("config: duración de tokens inválida")
	}
	if c.Store.Driver == DriverPostgres && c.DB.MaxConns <= 0 {
		return fmt.Errorf("config: DB_MAX_CONNS debe ser positivo")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("config: HTTP_PORT fuera de rango: %d", c.HTTP.Port)
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
