package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"

	"github.com/weirdbrains/onesignal-mcp/internal/registry"
)

const (
	// DefaultAPIURL is the OneSignal REST API base URL.
	DefaultAPIURL = "https://api.onesignal.com/api/v1"

	// DefaultAppKey is the key reported for the app built from ONESIGNAL_APP_ID.
	DefaultAppKey = "default"

	defaultEnvFile = ".env"
)

var namedAppVar = regexp.MustCompile(`^ONESIGNAL_([A-Z0-9_]+)_APP_ID$`)

// Settings holds values bound directly from environment variables.
type Settings struct {
	AppID     string `env:"ONESIGNAL_APP_ID"`
	APIKey    string `env:"ONESIGNAL_API_KEY"`
	OrgAPIKey string `env:"ONESIGNAL_ORG_API_KEY"`

	APIURL      string        `env:"ONESIGNAL_API_URL" default:"https://api.onesignal.com/api/v1"`
	HTTPTimeout time.Duration `env:"ONESIGNAL_HTTP_TIMEOUT" default:"30s"`
	AppsFile    string        `env:"ONESIGNAL_APPS_FILE"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	AuthToken string `env:"MCP_AUTH_TOKEN"`
}

// Config is the complete server configuration.
type Config struct {
	Settings

	// Apps are the named apps discovered in the environment, sorted by key.
	Apps []registry.AppConfig
}

// Load reads envFile (or .env when empty) and binds the environment.
// A missing default .env is not an error; a missing explicit file is.
func Load(envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	var cfg Config
	if err := env.Load(&cfg.Settings, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg.Settings); err != nil {
		return nil, err
	}

	cfg.Apps = DiscoverApps(os.Environ())
	return &cfg, nil
}

func loadEnvFile(envFile string) error {
	path := envFile
	if path == "" {
		path = defaultEnvFile
	}

	err := godotenv.Load(path)
	switch {
	case err == nil:
		slog.Debug("loaded environment file", "path", path)
		return nil
	case envFile == "" && errors.Is(err, fs.ErrNotExist):
		slog.Debug("no .env file found, using environment variables")
		return nil
	default:
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
}

func validate(s *Settings) error {
	u, err := url.Parse(s.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("ONESIGNAL_API_URL must be an absolute URL, got %q", s.APIURL)
	}
	s.APIURL = strings.TrimRight(s.APIURL, "/")

	if s.HTTPTimeout <= 0 {
		return fmt.Errorf("ONESIGNAL_HTTP_TIMEOUT must be positive, got %s", s.HTTPTimeout)
	}

	if (s.AppID == "") != (s.APIKey == "") {
		return errors.New("ONESIGNAL_APP_ID and ONESIGNAL_API_KEY must be set together")
	}

	switch strings.ToLower(s.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", s.LogFormat)
	}

	return nil
}

// DefaultApp returns the app configured by ONESIGNAL_APP_ID and ONESIGNAL_API_KEY.
func (c *Config) DefaultApp() (registry.AppConfig, bool) {
	if c.AppID == "" || c.APIKey == "" {
		return registry.AppConfig{}, false
	}
	return registry.AppConfig{
		Key:       DefaultAppKey,
		AppID:     c.AppID,
		APIKey:    c.APIKey,
		OrgAPIKey: c.OrgAPIKey,
		Name:      "Default App",
	}, true
}

// SlogLevel parses LogLevel, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// DiscoverApps finds named apps in environ, which has the form of os.Environ.
// Entries without an API key are skipped with a warning.
func DiscoverApps(environ []string) []registry.AppConfig {
	values := make(map[string]string, len(environ))
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if ok {
			values[name] = value
		}
	}

	var apps []registry.AppConfig
	for name, appID := range values {
		m := namedAppVar.FindStringSubmatch(name)
		if m == nil || appID == "" {
			continue
		}

		prefix := "ONESIGNAL_" + m[1] + "_"
		apiKey := values[prefix+"API_KEY"]
		if apiKey == "" {
			slog.Warn("skipping app without API key", "variable", prefix+"API_KEY")
			continue
		}

		apps = append(apps, registry.AppConfig{
			Key:       strings.ToLower(m[1]),
			AppID:     appID,
			APIKey:    apiKey,
			OrgAPIKey: values[prefix+"ORG_API_KEY"],
			Name:      values[prefix+"APP_NAME"],
		})
	}

	sort.Slice(apps, func(i, j int) bool {
		return apps[i].Key < apps[j].Key
	})
	return apps
}
