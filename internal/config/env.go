package config

import (
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names recognized as overrides for the [llm] section.
// They match the names the CI workflows export, so a config file is optional
// when running under automation.
const (
	EnvLLMProvider = "LLM_PROVIDER"
	EnvLLMURL      = "LLM_URL"
	EnvLLMModel    = "LLM_MODEL"
	EnvLLMPrompt   = "LLM_PROMPT"
	EnvLLMToken    = "LLM_TOKEN"
)

// LoadDotenv loads a .env file from the working directory into the process
// environment. Missing files are not an error; values already present in the
// environment win.
func LoadDotenv() {
	_ = godotenv.Load()
}

func (c *Config) applyEnvOverrides(lookup func(string) string) {
	if lookup == nil {
		return
	}
	if v := strings.TrimSpace(lookup(EnvLLMProvider)); v != "" {
		c.LLM.Provider = v
	}
	if v := strings.TrimSpace(lookup(EnvLLMURL)); v != "" {
		c.LLM.BaseURL = v
	}
	if v := strings.TrimSpace(lookup(EnvLLMModel)); v != "" {
		c.LLM.Model = v
	}
	if v := strings.TrimSpace(lookup(EnvLLMPrompt)); v != "" {
		c.LLM.Prompt = v
	}
	if v := strings.TrimSpace(lookup(EnvLLMToken)); v != "" {
		c.LLM.Token = v
	}
}
