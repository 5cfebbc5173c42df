package config

import (
	"errors"
	"fmt"
	"strings"
)

var supportedProviders = map[string]struct{}{
	"openai": {},
	"gemini": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateTranslation(); err != nil {
		return err
	}
	if err := c.validatePodcast(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateLLM() error {
	if _, ok := supportedProviders[c.LLM.Provider]; !ok {
		return fmt.Errorf("llm.provider: unsupported value %q (openai or gemini)", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/inkcast/config.toml"
		}
		return fmt.Errorf("llm.model is required. Set %s env var or edit %s (create with 'inkcast config init')", EnvLLMModel, defaultPath)
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateTranslation() error {
	if c.Translation.ChunkSize <= 0 {
		return errors.New("translation.chunk_size must be positive")
	}
	if c.Translation.ChunkRetries <= 0 {
		return errors.New("translation.chunk_retries must be positive")
	}
	if c.Translation.RetryDelaySeconds < 0 {
		return errors.New("translation.retry_delay_seconds must not be negative")
	}
	if c.Translation.MaxVariance < 0 || c.Translation.MaxVariance >= 1 {
		return errors.New("translation.max_variance must be in [0, 1)")
	}
	return nil
}

func (c *Config) validatePodcast() error {
	if strings.TrimSpace(c.Podcast.TTSBinary) == "" {
		return errors.New("podcast.tts_binary must be set")
	}
	if c.Podcast.BitrateKbps <= 0 {
		return errors.New("podcast.bitrate_kbps must be positive")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"workflow.inbox_scan_interval":  c.Workflow.InboxScanInterval,
		"workflow.queue_poll_interval":  c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
	}); err != nil {
		return err
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		return errors.New("workflow.heartbeat_interval must be positive")
	}
	if c.Workflow.HeartbeatTimeout < 0 {
		return errors.New("workflow.heartbeat_timeout must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
