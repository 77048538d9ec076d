package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/jwalitptl/dental-admin/pkg/logger"
	"github.com/jwalitptl/dental-admin/pkg/mailer"
	"github.com/jwalitptl/dental-admin/pkg/messaging/redis"
	"github.com/jwalitptl/dental-admin/pkg/security"
	"github.com/jwalitptl/dental-admin/pkg/timeslot"
)

// EnvPrefix prefixes every environment override, e.g. DENTAL_SERVER_PORT
const EnvPrefix = "DENTAL"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Session   SessionConfig   `mapstructure:"session"`
	Hours     HoursConfig     `mapstructure:"hours"`
	Gate      GateConfig      `mapstructure:"gate"`
	Booking   BookingConfig   `mapstructure:"booking"`
	Patients  PatientsConfig  `mapstructure:"patients"`
	Reminder  ReminderConfig  `mapstructure:"reminder"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Database  DatabaseConfig  `mapstructure:"database"`
	SMTP      mailer.Config   `mapstructure:"smtp"`
	PDF       PDFConfig       `mapstructure:"pdf"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
	StaticDir string          `mapstructure:"static_dir"`
	Timezone  string          `mapstructure:"timezone"`

	Secrets Secrets `mapstructure:"-"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Mode         string        `mapstructure:"mode"`
}

type BackendConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxFailures int           `mapstructure:"max_failures"`
	OpenTimeout time.Duration `mapstructure:"open_timeout"`
}

type SessionConfig struct {
	CookieName string        `mapstructure:"cookie_name"`
	TTL        time.Duration `mapstructure:"ttl"`
	Secure     bool          `mapstructure:"secure"`
	Domain     string        `mapstructure:"domain"`
}

type WindowConfig struct {
	Open  string `mapstructure:"open"`
	Close string `mapstructure:"close"`
}

// HoursConfig holds both business-hours windows. They are kept separate on
// purpose: the calendar grid and the reschedule pickers use different hours.
type HoursConfig struct {
	Calendar    WindowConfig `mapstructure:"calendar"`
	Reschedule  WindowConfig `mapstructure:"reschedule"`
	SlotMinutes int          `mapstructure:"slot_minutes"`
}

func (h HoursConfig) step() time.Duration {
	return time.Duration(h.SlotMinutes) * time.Minute
}

func (h HoursConfig) CalendarWindow() (timeslot.Window, error) {
	return timeslot.NewWindow(h.Calendar.Open, h.Calendar.Close, h.step())
}

func (h HoursConfig) RescheduleWindow() (timeslot.Window, error) {
	return timeslot.NewWindow(h.Reschedule.Open, h.Reschedule.Close, h.step())
}

type GateConfig struct {
	LoginPath       string   `mapstructure:"login_path"`
	HomePath        string   `mapstructure:"home_path"`
	ProtectedPrefix []string `mapstructure:"protected"`
}

type BookingConfig struct {
	Latency  time.Duration `mapstructure:"latency"`
	Services []string      `mapstructure:"services"`
}

// Patient stores
const (
	PatientStoreBackend = "backend"
	PatientStoreMemory  = "memory"
)

// PatientsConfig picks where patient records live. The memory store is for
// demos and offline front-end work; Demo seeds it with sample patients.
type PatientsConfig struct {
	Store string `mapstructure:"store"`
	Demo  bool   `mapstructure:"demo"`
}

type ReminderConfig struct {
	Schedule    string `mapstructure:"schedule"`
	CountryCode string `mapstructure:"country_code"`
	ClinicName  string `mapstructure:"clinic_name"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type PDFConfig struct {
	ClinicName string `mapstructure:"clinic_name"`
	LogoPath   string `mapstructure:"logo_path"`
	Currency   string `mapstructure:"currency"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Secrets never live in config.yml. They are read from the environment
// (optionally seeded from .env) with the DENTAL_ prefix.
type Secrets struct {
	SessionSecret string `envconfig:"SESSION_SECRET" required:"true"`
	ServiceToken  string `envconfig:"BACKEND_SERVICE_TOKEN"`
	SMTPPassword  string `envconfig:"SMTP_PASSWORD"`
	DatabaseDSN   string `envconfig:"DATABASE_DSN"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 0)
	v.SetDefault("server.mode", "release")

	v.SetDefault("backend.base_url", "http://localhost:3000/api")
	v.SetDefault("backend.timeout", 10*time.Second)
	v.SetDefault("backend.max_failures", 5)
	v.SetDefault("backend.open_timeout", 30*time.Second)

	v.SetDefault("session.cookie_name", "session")
	v.SetDefault("session.ttl", 8*time.Hour)
	v.SetDefault("session.secure", true)

	v.SetDefault("hours.calendar.open", "07:00")
	v.SetDefault("hours.calendar.close", "21:00")
	v.SetDefault("hours.reschedule.open", "08:00")
	v.SetDefault("hours.reschedule.close", "20:00")
	v.SetDefault("hours.slot_minutes", 30)

	v.SetDefault("gate.login_path", "/login")
	v.SetDefault("gate.home_path", "/dashboard")
	v.SetDefault("gate.protected", []string{
		"/dashboard", "/citas", "/pacientes", "/personal",
		"/servicios", "/presupuestos", "/api/v1/app",
	})

	v.SetDefault("booking.latency", time.Second)
	v.SetDefault("booking.services", []string{
		"Limpieza dental", "Ortodoncia", "Endodoncia", "Blanqueamiento", "Implantes",
	})

	v.SetDefault("patients.store", PatientStoreBackend)
	v.SetDefault("patients.demo", false)

	v.SetDefault("reminder.schedule", "0 18 * * *")
	v.SetDefault("reminder.country_code", "51")
	v.SetDefault("reminder.clinic_name", "Clínica Dental")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("smtp.port", 587)

	v.SetDefault("pdf.clinic_name", "Clínica Dental")
	v.SetDefault("pdf.currency", "S/")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 2)
	v.SetDefault("rate_limit.burst", 5)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("timezone", "America/Lima")
}

// Load reads .env (if present), config.yml and the environment. A missing
// config file is not an error; defaults cover every setting.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")
	v.AddConfigPath("/app/config")
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg.Secrets); err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}
	cfg.SMTP.Password = cfg.Secrets.SMTPPassword

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if len(c.Secrets.SessionSecret) < security.MinSecretLen {
		return fmt.Errorf("%s_SESSION_SECRET must be at least %d bytes", EnvPrefix, security.MinSecretLen)
	}
	if _, err := c.Hours.CalendarWindow(); err != nil {
		return fmt.Errorf("hours.calendar: %w", err)
	}
	if _, err := c.Hours.RescheduleWindow(); err != nil {
		return fmt.Errorf("hours.reschedule: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	switch c.Patients.Store {
	case "", PatientStoreBackend, PatientStoreMemory:
	default:
		return fmt.Errorf("patients.store must be %q or %q, got %q", PatientStoreBackend, PatientStoreMemory, c.Patients.Store)
	}
	return nil
}

func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{Level: c.Log.Level, Format: c.Log.Format}
}

func (c *RedisConfig) ToBrokerConfig() redis.Config {
	return redis.Config{
		URL:          c.URL,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: c.RetryBackoff,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
	}
}
