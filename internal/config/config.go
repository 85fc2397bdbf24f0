package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration. It is built once at startup
// and passed to components; nothing re-reads the environment after Load.
type Config struct {
	// Canvus server
	TargetServer string // base URL, scheme auto-prefixed with https://
	APIKey       string // Private-Token header value

	// Generative service
	OpenAIAPIKey  string
	OpenAIBaseURL string

	// Polling
	CanvasName   string        // single target canvas name
	CanvasesFile string        // optional JSON file listing target canvases (hot-reloaded)
	PollInterval time.Duration // fixed delay between the end of one cycle and the next

	// Observability
	LoggingEnabled      bool
	StatusPort          string // empty disables the status/metrics server
	StuckReportSchedule string // cron expression for the stuck-note report
}

// Load loads configuration from environment variables with defaults.
func Load() *Config {
	targetServer := strings.TrimSpace(getEnv("TARGET_SERVER", ""))

	// The server address is commonly configured without a scheme
	if targetServer != "" && !strings.HasPrefix(targetServer, "http://") && !strings.HasPrefix(targetServer, "https://") {
		targetServer = "https://" + targetServer
	}

	return &Config{
		TargetServer: targetServer,
		APIKey:       strings.TrimSpace(getEnv("API_KEY", "")),

		OpenAIAPIKey:  strings.TrimSpace(getEnv("OPENAI_API_KEY", "")),
		OpenAIBaseURL: strings.TrimSuffix(getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"), "/"),

		CanvasName:   strings.TrimSpace(getEnv("CANVAS_NAME", "")),
		CanvasesFile: getEnv("CANVASES_FILE", ""),
		PollInterval: getDurationEnv("POLL_INTERVAL", 2*time.Second),

		LoggingEnabled:      getBoolEnv("LOGGING", true),
		StatusPort:          getEnv("STATUS_PORT", ""),
		StuckReportSchedule: getEnv("STUCK_REPORT_SCHEDULE", "0 * * * *"),
	}
}

// Validate checks that the required settings are present. A failure here is
// fatal: the poller cannot reach either collaborator without them.
func (c *Config) Validate() error {
	if c.TargetServer == "" {
		return fmt.Errorf("TARGET_SERVER is not set")
	}
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY is not set")
	}
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set or is empty")
	}
	if c.CanvasName == "" && c.CanvasesFile == "" {
		return fmt.Errorf("CANVAS_NAME or CANVASES_FILE must be set")
	}
	return nil
}

// CanvasesConfig is the shape of the optional canvases file. It lets one
// poller watch several canvases; with only CANVAS_NAME set the poller
// behaves exactly as the single-target setup.
type CanvasesConfig struct {
	Canvases []CanvasTarget `json:"canvases"`
}

// CanvasTarget names one canvas to poll.
type CanvasTarget struct {
	Name string `json:"name"`
}

// LoadCanvases loads the canvases configuration from a JSON file.
func LoadCanvases(filePath string) (*CanvasesConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read canvases file: %w", err)
	}

	var cfg CanvasesConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse canvases JSON: %w", err)
	}

	return &cfg, nil
}

// Names returns the target canvas names in file order, skipping blanks.
func (c *CanvasesConfig) Names() []string {
	names := make([]string, 0, len(c.Canvases))
	for _, t := range c.Canvases {
		name := strings.TrimSpace(t.Name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(strings.TrimSpace(value))
		if err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
