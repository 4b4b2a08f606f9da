package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnv.
const (
	EnvOpenAIAPIKey  = "OPENAI_API_KEY"
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	EnvModel         = "APTSCOUT_MODEL"
	EnvProxy         = "APTSCOUT_PROXY"
	EnvBaseURL       = "APTSCOUT_BASE_URL"
	EnvDBDir         = "APTSCOUT_DB_DIR"
	EnvChromePath    = "APTSCOUT_CHROME_PATH"
	EnvUserAgent     = "APTSCOUT_USER_AGENT"
)

// DefaultEnvFile is loaded from the working directory when present.
const DefaultEnvFile = ".env"

// LoadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is ignored unless
// required is true.
func LoadDotEnv(path string, required bool) error {
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv copies known environment variables into c. lookup is usually
// os.LookupEnv; a nil lookup uses it.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(EnvOpenAIAPIKey, &c.OpenAIAPIKey)
	set(EnvOpenAIBaseURL, &c.OpenAIBaseURL)
	set(EnvModel, &c.Model)
	set(EnvProxy, &c.ProxyAddress)
	set(EnvBaseURL, &c.BaseURL)
	set(EnvDBDir, &c.DBDir)
	set(EnvChromePath, &c.ChromePath)
	set(EnvUserAgent, &c.UserAgent)
}
