package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Stream names published by the backend under /api/streams/.
const (
	StreamContainers     = "containerlist"
	StreamImages         = "imagelist"
	StreamStats          = "containermetrics"
	StreamServerMessages = "servermessages"
	StreamComposeFiles   = "composefiles"
)

// KnownStreams lists every stream the dashboard understands, in open order.
var KnownStreams = []string{
	StreamContainers,
	StreamImages,
	StreamStats,
	StreamServerMessages,
	StreamComposeFiles,
}

// KnownPages lists every dashboard page in default display order.
var KnownPages = []string{"containers", "images", "stats", "compose", "events"}

// Config represents the complete dashboard configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	API      APIConfig      `yaml:"api"`
	Streams  StreamsConfig  `yaml:"streams"`
	Actions  ActionsConfig  `yaml:"actions"`
	UI       UIConfig       `yaml:"ui"`
	Logging  LoggingConfig  `yaml:"logging"`
	Recorder RecorderConfig `yaml:"recorder"`

	// LoadedFrom is the directory the configuration was merged from.
	LoadedFrom string `yaml:"-"`
}

// ServerConfig contains general identity settings
type ServerConfig struct {
	Name string `yaml:"name"`
}

// APIConfig describes the backend REST/SSE endpoint.
type APIConfig struct {
	BaseURL               string `yaml:"base_url"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	UserAgent             string `yaml:"user_agent"`
}

// StreamsConfig controls event stream subscriptions.
type StreamsConfig struct {
	ReconnectDelayMS        int      `yaml:"reconnect_delay_ms"`
	Enabled                 []string `yaml:"enabled"`
	MaxEventBytes           int      `yaml:"max_event_bytes"`
	ErrorLogIntervalSeconds int      `yaml:"error_log_interval_seconds"`
}

// ActionsConfig controls user-triggered backend requests.
type ActionsConfig struct {
	PullStatusTTLSeconds int    `yaml:"pull_status_ttl_seconds"`
	DefaultTag           string `yaml:"default_tag"`
}

// UIConfig selects and tunes the console surface.
type UIConfig struct {
	Mode          string            `yaml:"mode"`
	TargetFPS     int               `yaml:"target_fps"`
	EnableMouse   bool              `yaml:"enable_mouse"`
	Pages         []string          `yaml:"pages"`
	Events        EventBufferConfig `yaml:"events"`
	StatsInterval int               `yaml:"stats_interval_seconds"`
}

// EventBufferConfig bounds the events page ring buffer.
type EventBufferConfig struct {
	MaxEvents       int  `yaml:"max_events"`
	MaxBytesMB      int  `yaml:"max_bytes_mb"`
	MaxMessageBytes int  `yaml:"max_message_bytes"`
	LogDrops        bool `yaml:"log_drops"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
}

// RecorderConfig controls the optional raw stream capture.
type RecorderConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Path           string `yaml:"path"`
	PerStreamLimit int    `yaml:"per_stream_limit"`
}

// Load merges every YAML file in dir (sorted by name, later files win key by
// key), applies defaults, and validates the result.
func Load(dir string) (*Config, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("config path %q is not a directory", dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml":
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no yaml files found in %s", dir)
	}
	sort.Strings(names)

	merged := map[string]any{}
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", name, err)
		}
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", name, err)
		}
		mergeMaps(merged, doc)
	}

	raw, err := yaml.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode merged config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode merged config: %w", err)
	}
	cfg.LoadedFrom = dir
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func mergeMaps(dst, src map[string]any) {
	for key, value := range src {
		srcChild, srcIsMap := value.(map[string]any)
		dstChild, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			mergeMaps(dstChild, srcChild)
			continue
		}
		dst[key] = value
	}
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Server.Name) == "" {
		c.Server.Name = "dockdash"
	}
	if strings.TrimSpace(c.API.BaseURL) == "" {
		c.API.BaseURL = "http://localhost:5002"
	}
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.RequestTimeoutSeconds == 0 {
		c.API.RequestTimeoutSeconds = 30
	}
	if c.API.UserAgent == "" {
		c.API.UserAgent = "dockdash"
	}
	if c.Streams.ReconnectDelayMS == 0 {
		c.Streams.ReconnectDelayMS = 5000
	}
	if len(c.Streams.Enabled) == 0 {
		c.Streams.Enabled = append([]string(nil), KnownStreams...)
	}
	if c.Streams.MaxEventBytes == 0 {
		c.Streams.MaxEventBytes = 1 << 20
	}
	if c.Streams.ErrorLogIntervalSeconds == 0 {
		c.Streams.ErrorLogIntervalSeconds = 60
	}
	if c.Actions.PullStatusTTLSeconds == 0 {
		c.Actions.PullStatusTTLSeconds = 10
	}
	if strings.TrimSpace(c.Actions.DefaultTag) == "" {
		c.Actions.DefaultTag = "latest"
	}
	c.UI.Mode = strings.ToLower(strings.TrimSpace(c.UI.Mode))
	if c.UI.Mode == "" {
		c.UI.Mode = "tview"
	}
	if c.UI.TargetFPS == 0 {
		c.UI.TargetFPS = 30
	}
	if len(c.UI.Pages) == 0 {
		c.UI.Pages = append([]string(nil), KnownPages...)
	}
	for i, page := range c.UI.Pages {
		c.UI.Pages[i] = strings.ToLower(strings.TrimSpace(page))
	}
	if c.UI.Events.MaxEvents == 0 {
		c.UI.Events.MaxEvents = 1000
	}
	if c.UI.Events.MaxBytesMB == 0 {
		c.UI.Events.MaxBytesMB = 1
	}
	if c.UI.Events.MaxMessageBytes == 0 {
		c.UI.Events.MaxMessageBytes = 4096
	}
	if c.UI.StatsInterval == 0 {
		c.UI.StatsInterval = 30
	}
	if strings.TrimSpace(c.Logging.Dir) == "" {
		c.Logging.Dir = filepath.Join("data", "logs")
	}
	if c.Logging.RetentionDays == 0 {
		c.Logging.RetentionDays = 7
	}
	if strings.TrimSpace(c.Recorder.Path) == "" {
		c.Recorder.Path = filepath.Join("data", "recorder", "streams.db")
	}
	if c.Recorder.PerStreamLimit == 0 {
		c.Recorder.PerStreamLimit = 500
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.API.BaseURL == "" {
		return errors.New("api.base_url must not be empty")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url %q must start with http:// or https://", c.API.BaseURL)
	}
	switch c.UI.Mode {
	case "tview", "headless":
	default:
		return fmt.Errorf("ui.mode %q is not supported (tview, headless)", c.UI.Mode)
	}
	if err := checkNames("ui.pages", c.UI.Pages, KnownPages); err != nil {
		return err
	}
	if err := checkNames("streams.enabled", c.Streams.Enabled, KnownStreams); err != nil {
		return err
	}
	negatives := []struct {
		name  string
		value int
	}{
		{"api.request_timeout_seconds", c.API.RequestTimeoutSeconds},
		{"streams.reconnect_delay_ms", c.Streams.ReconnectDelayMS},
		{"streams.max_event_bytes", c.Streams.MaxEventBytes},
		{"streams.error_log_interval_seconds", c.Streams.ErrorLogIntervalSeconds},
		{"actions.pull_status_ttl_seconds", c.Actions.PullStatusTTLSeconds},
		{"ui.target_fps", c.UI.TargetFPS},
		{"ui.events.max_events", c.UI.Events.MaxEvents},
		{"ui.events.max_bytes_mb", c.UI.Events.MaxBytesMB},
		{"ui.events.max_message_bytes", c.UI.Events.MaxMessageBytes},
		{"ui.stats_interval_seconds", c.UI.StatsInterval},
		{"logging.retention_days", c.Logging.RetentionDays},
		{"recorder.per_stream_limit", c.Recorder.PerStreamLimit},
	}
	for _, n := range negatives {
		if n.value < 0 {
			return fmt.Errorf("%s must be >= 0, got %d", n.name, n.value)
		}
	}
	return nil
}

func checkNames(field string, values, known []string) error {
	seen := make(map[string]bool, len(values))
	for _, value := range values {
		ok := false
		for _, k := range known {
			if value == k {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("%s: unknown entry %q (known: %s)", field, value, strings.Join(known, ", "))
		}
		if seen[value] {
			return fmt.Errorf("%s: duplicate entry %q", field, value)
		}
		seen[value] = true
	}
	return nil
}

// Print displays the configuration
func (c *Config) Print() {
	fmt.Printf("Dashboard: %s (config %s)\n", c.Server.Name, c.LoadedFrom)
	fmt.Printf("API: %s (timeout %ds)\n", c.API.BaseURL, c.API.RequestTimeoutSeconds)
	fmt.Printf("Streams: %s (reconnect every %dms)\n", strings.Join(c.Streams.Enabled, ", "), c.Streams.ReconnectDelayMS)
	fmt.Printf("UI: mode=%s pages=%s\n", c.UI.Mode, strings.Join(c.UI.Pages, ", "))
	if c.Logging.Enabled {
		fmt.Printf("Logging: %s (retain %d days)\n", c.Logging.Dir, c.Logging.RetentionDays)
	}
	if c.Recorder.Enabled {
		fmt.Printf("Recorder: %s (%d per stream)\n", c.Recorder.Path, c.Recorder.PerStreamLimit)
	}
}
