package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	InboxDir    string `toml:"inbox_dir"`
	LibraryDir  string `toml:"library_dir"`
	PodcastDir  string `toml:"podcast_dir"`
	TemplateDir string `toml:"template_dir"`
	LogDir      string `toml:"log_dir"`
}

// LLM contains connection settings for the translation endpoint.
type LLM struct {
	Provider       string `toml:"provider"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Token          string `toml:"token"`
	Prompt         string `toml:"prompt"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Translation contains chunking and retry configuration.
type Translation struct {
	// ChunkSize is the maximum chunk length in runes sent per LLM request.
	ChunkSize int `toml:"chunk_size"`
	// ChunkRetries is the attempt budget per chunk before the chapter fails.
	ChunkRetries int `toml:"chunk_retries"`
	// RetryDelaySeconds is the pause between failed attempts.
	RetryDelaySeconds int `toml:"retry_delay_seconds"`
	// MaxVariance is the tolerated line/character count drift between the
	// source and the translation, as a fraction. Zero disables validation.
	MaxVariance float64 `toml:"max_variance"`
}

// Podcast contains configuration for episode synthesis and feed metadata.
type Podcast struct {
	SiteBaseURL  string `toml:"site_base_url"`
	AudioBaseURL string `toml:"audio_base_url"`
	TTSBinary    string `toml:"tts_binary"`
	TTSVoice     string `toml:"tts_voice"`
	BitrateKbps  int    `toml:"bitrate_kbps"`
	Language     string `toml:"language"`
	Author       string `toml:"author"`
}

// Publish contains configuration for committing rendered chapters to git.
type Publish struct {
	Enabled bool   `toml:"enabled"`
	Remote  string `toml:"remote"`
	Branch  string `toml:"branch"`
}

// Workflow contains daemon polling and heartbeat intervals.
type Workflow struct {
	InboxScanInterval  int `toml:"inbox_scan_interval"`
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
	HeartbeatInterval  int `toml:"heartbeat_interval"`
	// HeartbeatTimeout is how long a processing item may go without a
	// heartbeat before it is reclaimed. Zero disables reclamation.
	HeartbeatTimeout int `toml:"heartbeat_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for inkcast.
//
// Configuration sections by subsystem:
//   - Paths: inbox, library, podcast, template, and log directories
//   - LLM: translation endpoint connection settings
//   - Translation: chunk sizing, retry budget, and output validation
//   - Podcast: episode synthesis binaries and feed metadata
//   - Publish: git publishing of rendered chapters
//   - Workflow: daemon polling intervals
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	LLM         LLM         `toml:"llm"`
	Translation Translation `toml:"translation"`
	Podcast     Podcast     `toml:"podcast"`
	Publish     Publish     `toml:"publish"`
	Workflow    Workflow    `toml:"workflow"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/inkcast/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded, environment overrides applied, and defaults
// filled in.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides(os.Getenv)

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("inkcast.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	pathFields := []struct {
		name  string
		value *string
	}{
		{"paths.inbox_dir", &c.Paths.InboxDir},
		{"paths.library_dir", &c.Paths.LibraryDir},
		{"paths.podcast_dir", &c.Paths.PodcastDir},
		{"paths.template_dir", &c.Paths.TemplateDir},
		{"paths.log_dir", &c.Paths.LogDir},
	}
	for _, field := range pathFields {
		trimmed := strings.TrimSpace(*field.value)
		if trimmed == "" {
			*field.value = ""
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}

	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(c.LLM.BaseURL), "/")
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	c.LLM.Token = strings.TrimSpace(c.LLM.Token)
	c.Podcast.SiteBaseURL = strings.TrimRight(strings.TrimSpace(c.Podcast.SiteBaseURL), "/")
	c.Podcast.AudioBaseURL = strings.TrimRight(strings.TrimSpace(c.Podcast.AudioBaseURL), "/")
	return nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.InboxDir, c.Paths.LibraryDir, c.Paths.PodcastDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// GitBinary returns the git executable name used for publishing.
func (c *Config) GitBinary() string {
	return "git"
}

// FFmpegBinary returns the ffmpeg executable name used for audio transcoding.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for duration probing.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
