package configuration

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iota-uz/fm-taskrequest/pkg/logging"

	"github.com/caarlos0/env/v11"
	"github.com/iota-uz/utils/fs"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const Production = "production"

// DefaultEnvFiles are loaded in order; later files do not override earlier ones.
var DefaultEnvFiles = []string{".env", ".env.local"}

func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if fs.FileExists(file) {
			existingFiles = append(existingFiles, file)
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

type ArxsOptions struct {
	APIKey         string        `env:"ARXS_API_KEY"`
	TenantID       string        `env:"ARXS_TENANT_ID"`
	IdentityURL    string        `env:"ARXS_IDENTITY_URL"`
	BaseURL        string        `env:"ARXS_BASE_URL"`
	RequestTimeout time.Duration `env:"ARXS_REQUEST_TIMEOUT" envDefault:"30s"`
	// Storage service version sent with blob uploads (x-ms-version).
	BlobVersion string `env:"ARXS_BLOB_VERSION" envDefault:"2020-04-08"`
}

// Validate checks that the platform endpoints and credentials are usable.
func (a *ArxsOptions) Validate() error {
	if strings.TrimSpace(a.APIKey) == "" {
		return fmt.Errorf("ARXS_API_KEY is required")
	}
	for name, raw := range map[string]string{
		"ARXS_IDENTITY_URL": a.IdentityURL,
		"ARXS_BASE_URL":     a.BaseURL,
	} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return fmt.Errorf("%s is required", name)
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s=%q", name, raw)
		}
	}
	if a.RequestTimeout <= 0 {
		return fmt.Errorf("ARXS_REQUEST_TIMEOUT must be positive, got %s", a.RequestTimeout)
	}
	return nil
}

type LogOptions struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	// Empty path logs to stderr.
	Path string `env:"LOG_PATH"`
}

type OpenTelemetryOptions struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	TempoURL    string `env:"OTEL_TEMPO_URL" envDefault:"localhost:4318"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"fm-taskrequest"`
}

type PrometheusOptions struct {
	// Node exporter textfile target; metrics are written once per run.
	TextfilePath string `env:"PROMETHEUS_TEXTFILE_PATH"`
}

type Configuration struct {
	Arxs          ArxsOptions
	Log           LogOptions
	OpenTelemetry OpenTelemetryOptions
	Prometheus    PrometheusOptions

	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	// Sent with every platform call; a fresh uuid per request.
	RequestIDHeader string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// Load reads env files and the process environment into a new Configuration.
// Parse errors are returned, never panicked on.
// Platform options are not validated here; commands call Arxs.Validate before
// talking to the platform.
func Load(envFiles []string) (*Configuration, error) {
	c := &Configuration{}
	if err := c.load(envFiles); err != nil {
		c.Unload()
		return nil, err
	}
	return c, nil
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if err := env.Parse(c); err != nil {
		return err
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.Log.Path)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger

	if n == 0 {
		wd, _ := os.Getwd()
		tried := make([]string, 0, len(envFiles))
		for _, file := range envFiles {
			tried = append(tried, filepath.Join(wd, file))
		}
		c.logger.WithField("tried", tried).Debug("no .env files found")
	}
	return nil
}

// Unload closes the log file, if any.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
