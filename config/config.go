// Package config loads process settings from the environment.
//
// A .env file is read first when present, then every key is resolved
// through viper so nested keys map to upper-case, underscore-separated
// environment variables (db.host -> DB_HOST). The resulting Settings are
// validated before the server starts.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DatabaseSettings holds Postgres connection parameters.
type DatabaseSettings struct {
	URL      string
	User     string `validate:"required_without=URL"`
	Password string
	Host     string `validate:"required_without=URL"`
	Port     string
	Name     string `validate:"required_without=URL"`
	SSLMode  string `validate:"omitempty,oneof=disable require verify-ca verify-full"`
}

// DSN returns the connection string, preferring an explicit URL.
func (d DatabaseSettings) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

// ServiceSettings describes one outbound HTTP API.
type ServiceSettings struct {
	BaseURL string `validate:"required,url"`
	APIKey  string
	Model   string
	Timeout time.Duration `validate:"gt=0"`
}

type Settings struct {
	Port               string `validate:"required"`
	LogLevel           string `validate:"oneof=debug info warn warning error"`
	JWTSecret          string `validate:"required"`
	AllowedOrigins     []string
	Database           DatabaseSettings
	AI                 ServiceSettings
	Speech             ServiceSettings
	Render             ServiceSettings
	Mail               ServiceSettings
	Storage            ServiceSettings
	MailFrom           string `validate:"required"`
	RenderCallbackURL  string `validate:"omitempty,url"`
	RenderWebhookToken string
	RenderSyncInterval time.Duration `validate:"gt=0"`
	RenderWebhookGrace time.Duration `validate:"gte=0"`
	AutoMigrate        bool
}

// Validate checks that all fields in Settings are valid.
func (s *Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("validation failed for Settings: %w", err)
	}
	if s.RenderCallbackURL != "" && s.RenderWebhookToken == "" {
		return fmt.Errorf("RENDER_WEBHOOK_TOKEN is required when RENDER_CALLBACK_URL is set")
	}
	return nil
}

// Load reads .env (if any) and the process environment.
func Load() (*Settings, error) {
	// A missing .env is normal in deployed environments.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds Settings from v after applying defaults.
func FromViper(v *viper.Viper) (*Settings, error) {
	setDefaults(v)

	s := &Settings{
		Port:               v.GetString("port"),
		LogLevel:           v.GetString("log.level"),
		JWTSecret:          strings.TrimSpace(v.GetString("supabase.jwt.secret")),
		AllowedOrigins:     splitList(v.GetString("cors.origins")),
		Database:           database(v),
		AI:                 service(v, "ai"),
		Speech:             service(v, "speech"),
		Render:             service(v, "render"),
		Mail:               service(v, "mail"),
		Storage:            service(v, "storage"),
		MailFrom:           v.GetString("mail.from"),
		RenderCallbackURL:  v.GetString("render.callback.url"),
		RenderWebhookToken: v.GetString("render.webhook.token"),
		RenderSyncInterval: v.GetDuration("render.sync.interval"),
		RenderWebhookGrace: v.GetDuration("render.webhook.grace"),
		AutoMigrate:        v.GetBool("db.migrate"),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadDatabase reads only the database settings, for tools that never
// start the HTTP server.
func LoadDatabase() (DatabaseSettings, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	d := database(v)
	if err := validator.New().Struct(d); err != nil {
		return DatabaseSettings{}, fmt.Errorf("validation failed for DatabaseSettings: %w", err)
	}
	return d, nil
}

func database(v *viper.Viper) DatabaseSettings {
	return DatabaseSettings{
		URL:      strings.TrimSpace(v.GetString("database.url")),
		User:     strings.TrimSpace(v.GetString("db.user")),
		Password: strings.TrimSpace(v.GetString("db.password")),
		Host:     strings.TrimSpace(v.GetString("db.host")),
		Port:     strings.TrimSpace(v.GetString("db.port")),
		Name:     strings.TrimSpace(v.GetString("db.name")),
		SSLMode:  strings.TrimSpace(v.GetString("db.sslmode")),
	}
}

func service(v *viper.Viper, name string) ServiceSettings {
	return ServiceSettings{
		BaseURL: strings.TrimRight(v.GetString(name+".base.url"), "/"),
		APIKey:  strings.TrimSpace(v.GetString(name + ".api.key")),
		Model:   v.GetString(name + ".model"),
		Timeout: v.GetDuration(name + ".timeout"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("cors.origins", "*")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.sslmode", "require")

	v.SetDefault("ai.base.url", "https://ai.gateway.lovable.dev/v1")
	v.SetDefault("ai.model", "google/gemini-2.5-flash")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("speech.base.url", "https://api.openai.com/v1")
	v.SetDefault("speech.model", "whisper-1")
	v.SetDefault("speech.timeout", 5*time.Minute)
	v.SetDefault("render.base.url", "https://api.shotstack.io/edit/stage")
	v.SetDefault("render.timeout", 30*time.Second)
	v.SetDefault("mail.base.url", "https://api.resend.com")
	v.SetDefault("mail.timeout", 15*time.Second)
	v.SetDefault("mail.from", "Seeksy <no-reply@seeksy.io>")
	v.SetDefault("storage.base.url", "http://localhost:54321/storage/v1")
	v.SetDefault("storage.timeout", 60*time.Second)
	v.SetDefault("render.sync.interval", 30*time.Second)
	v.SetDefault("render.webhook.grace", 2*time.Minute)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
