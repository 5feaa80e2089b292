package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"rageroom-backend/utils"
)

// DefaultTimeSlots is the slot catalogue used when none is configured.
var DefaultTimeSlots = []string{"16:00", "17:00", "18:00", "19:00", "20:00", "21:00"}

type Settings struct {
	Port           string           `yaml:"port"`
	CORSOrigins    []string         `yaml:"cors_origins"`
	WhatsAppNumber string           `yaml:"whatsapp_number"`
	UploadDir      string           `yaml:"upload_dir"`
	Database       DatabaseSettings `yaml:"database"`
	Auth           AuthSettings     `yaml:"auth"`
	Booking        BookingSettings  `yaml:"booking"`
	Redis          RedisSettings    `yaml:"redis"`
	Logging        LoggingSettings  `yaml:"logging"`
	Metrics        MetricsSettings  `yaml:"metrics"`
	SMTP           utils.SMTPConfig `yaml:"smtp"`
}

type DatabaseSettings struct {
	URL  string `yaml:"url"`
	User string `yaml:"user"`
	Pass string `yaml:"password"`
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Name string `yaml:"name"`
}

type AuthSettings struct {
	JWTSecret         string        `yaml:"jwt_secret"`
	TokenTTL          time.Duration `yaml:"token_ttl"`
	AdminEmails       []string      `yaml:"admin_emails"`
	AdminSeedPassword string        `yaml:"admin_seed_password"`
	// RateLimit is the number of auth requests allowed per minute and client IP.
	RateLimit int `yaml:"rate_limit"`
	RateBurst int `yaml:"rate_burst"`
}

type BookingSettings struct {
	TimeSlots       []string `yaml:"time_slots"`
	DailyCapacity   int      `yaml:"daily_capacity"`
	AutoApproveFree bool     `yaml:"auto_approve_free"`
	OwnerDelete     bool     `yaml:"owner_delete"`
}

type RedisSettings struct {
	Address  string        `yaml:"address"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsSettings struct {
	Enabled bool `yaml:"enabled"`
}

func defaultSettings() Settings {
	return Settings{
		Port:           "8080",
		CORSOrigins:    []string{"*"},
		WhatsAppNumber: "5547991621578",
		UploadDir:      "uploads",
		SMTP:           utils.SMTPConfig{FromName: "Sala da Raiva Joinville"},
		Database: DatabaseSettings{
			User: "root",
			Host: "127.0.0.1",
			Port: "3306",
			Name: "rageroom",
		},
		Auth: AuthSettings{
			TokenTTL:  7 * 24 * time.Hour,
			RateLimit: 10,
			RateBurst: 5,
		},
		Booking: BookingSettings{
			TimeSlots:       append([]string(nil), DefaultTimeSlots...),
			DailyCapacity:   2,
			AutoApproveFree: true,
			OwnerDelete:     true,
		},
		Redis: RedisSettings{
			CacheTTL: 5 * time.Minute,
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsSettings{Enabled: true},
	}
}

// Load builds the settings from defaults, an optional YAML file and the environment,
// in that order of precedence (environment wins). A missing file at path is not an error.
func Load(path string) (*Settings, error) {
	s := defaultSettings()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			expanded := []byte(os.ExpandEnv(string(data)))
			if err := yaml.Unmarshal(expanded, &s); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if err := applyEnv(&s); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func applyEnv(s *Settings) error {
	setString(&s.Port, "PORT")
	setList(&s.CORSOrigins, "CORS_ORIGINS")
	setString(&s.WhatsAppNumber, "WHATSAPP_NUMBER")
	setString(&s.UploadDir, "UPLOAD_DIR")
	setString(&s.SMTP.Host, "SMTP_HOST")
	setString(&s.SMTP.Port, "SMTP_PORT")
	setString(&s.SMTP.Username, "SMTP_USERNAME")
	setString(&s.SMTP.Password, "SMTP_PASSWORD")
	setString(&s.SMTP.FromName, "SMTP_FROM_NAME")

	if raw := envValue("MYSQL_URL"); raw != "" {
		s.Database.URL = raw
	} else {
		setString(&s.Database.URL, "DATABASE_URL")
	}
	setString(&s.Database.User, "DB_USER")
	setString(&s.Database.Pass, "DB_PASS")
	setString(&s.Database.Host, "DB_HOST")
	setString(&s.Database.Port, "DB_PORT")
	setString(&s.Database.Name, "DB_NAME")

	setString(&s.Auth.JWTSecret, "JWT_SECRET")
	setList(&s.Auth.AdminEmails, "ADMIN_EMAILS")
	setString(&s.Auth.AdminSeedPassword, "ADMIN_SEED_PASSWORD")

	setString(&s.Redis.Address, "REDIS_ADDR")
	setString(&s.Redis.Password, "REDIS_PASSWORD")

	setString(&s.Logging.Level, "LOG_LEVEL")
	setString(&s.Logging.Format, "LOG_FORMAT")

	setList(&s.Booking.TimeSlots, "TIME_SLOTS")

	var errs []error
	errs = append(errs,
		setDuration(&s.Auth.TokenTTL, "JWT_TTL"),
		setDuration(&s.SMTP.Timeout, "SMTP_TIMEOUT"),
		setInt(&s.Auth.RateLimit, "AUTH_RATE_LIMIT"),
		setInt(&s.Auth.RateBurst, "AUTH_RATE_BURST"),
		setInt(&s.Booking.DailyCapacity, "DAILY_CAPACITY"),
		setBool(&s.Booking.AutoApproveFree, "AUTO_APPROVE_FREE"),
		setBool(&s.Booking.OwnerDelete, "OWNER_DELETE"),
		setInt(&s.Redis.DB, "REDIS_DB"),
		setDuration(&s.Redis.CacheTTL, "ROOM_INFO_CACHE_TTL"),
		setBool(&s.Metrics.Enabled, "METRICS_ENABLED"),
	)
	return errors.Join(errs...)
}

func (s *Settings) validate() error {
	if strings.TrimSpace(s.Auth.JWTSecret) == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if s.Auth.TokenTTL <= 0 {
		return errors.New("config: token ttl must be positive")
	}
	if s.Booking.DailyCapacity < 1 {
		return fmt.Errorf("config: daily capacity must be at least 1, got %d", s.Booking.DailyCapacity)
	}
	if len(s.Booking.TimeSlots) == 0 {
		return errors.New("config: at least one time slot is required")
	}
	seen := make(map[string]struct{}, len(s.Booking.TimeSlots))
	for _, slot := range s.Booking.TimeSlots {
		if _, dup := seen[slot]; dup {
			return fmt.Errorf("config: duplicate time slot %q", slot)
		}
		seen[slot] = struct{}{}
	}
	if s.Auth.RateLimit < 1 || s.Auth.RateBurst < 1 {
		return errors.New("config: auth rate limit and burst must be positive")
	}
	return nil
}

func envValue(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func setString(dst *string, key string) {
	if v := envValue(key); v != "" {
		*dst = v
	}
}

// setList reads a comma separated variable, dropping blank entries.
func setList(dst *[]string, key string) {
	raw := envValue(key)
	if raw == "" {
		return
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) > 0 {
		*dst = out
	}
}

func setInt(dst *int, key string) error {
	v := envValue(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := envValue(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := envValue(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = d
	return nil
}
