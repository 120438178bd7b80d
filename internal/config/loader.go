package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoaderOptions describes how configuration should be discovered.
type LoaderOptions struct {
	ConfigPaths []string
	FileName    string
	EnvPrefix   string
}

// Load returns the merged configuration from dotfiles, config files, and
// environment variables. Precedence, lowest to highest: defaults, config
// file, dotfile-sourced env, real env. CLI flags are applied above this
// layer by the caller.
func Load(opts LoaderOptions) (Config, error) {
	loadDotenv(opts.ConfigPaths)

	v := viper.New()

	name := opts.FileName
	if name == "" {
		name = "llmq"
	}

	configFile := locateConfigFile(name, opts.ConfigPaths)
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(name)
	}

	prefix := opts.EnvPrefix
	if prefix == "" {
		prefix = "LLM"
	}
	v.SetEnvPrefix(prefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AllowEmptyEnv(true)

	// Legacy variable names are honored after the current ones.
	_ = v.BindEnv("api.key", "LLM_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("api.endpoint", "LLM_ENDPOINT", "OPENAI_API_ENDPOINT")
	_ = v.BindEnv("api.model", "LLM_MODEL")

	setDefaults(v)

	if configFile != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return expandEnvVars(cfg), nil
}

// loadDotenv reads .env files without overriding real environment
// variables. The local dotfile is loaded first so it beats the global one.
func loadDotenv(paths []string) {
	_ = godotenv.Load(".env")
	for _, dir := range paths {
		if dir == "" || dir == "." {
			continue
		}
		_ = godotenv.Load(filepath.Join(dir, ".env"))
	}
}

// expandEnvVars expands ${VAR} and $VAR syntax in configuration strings.
func expandEnvVars(cfg Config) Config {
	cfg.API.Key = expandEnvString(cfg.API.Key)
	cfg.API.Endpoint = expandEnvString(cfg.API.Endpoint)
	cfg.API.Model = expandEnvString(cfg.API.Model)

	cfg.HTTP.Timeout = expandEnvString(cfg.HTTP.Timeout)
	cfg.HTTP.InitialBackoff = expandEnvString(cfg.HTTP.InitialBackoff)
	cfg.HTTP.MaxBackoff = expandEnvString(cfg.HTTP.MaxBackoff)

	cfg.Logging.Level = expandEnvString(cfg.Logging.Level)
	cfg.Logging.Format = expandEnvString(cfg.Logging.Format)

	return cfg
}

var (
	bracedVarRe = regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)\}`)
	bareVarRe   = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)
)

// expandEnvString replaces ${VAR} or $VAR with environment variable values.
func expandEnvString(s string) string {
	if s == "" {
		return s
	}

	s = bracedVarRe.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	s = bareVarRe.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

func locateConfigFile(name string, paths []string) string {
	searchPaths := append([]string{}, paths...)
	searchPaths = append(searchPaths, ".")
	for _, dir := range searchPaths {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name+".yaml")
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.endpoint", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("api.model", "gpt-3.5-turbo")
	v.SetDefault("api.maxTokens", 1000)

	// HTTP defaults: finite timeout, single attempt
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.maxRetries", 0)
	v.SetDefault("http.initialBackoff", "2s")
	v.SetDefault("http.maxBackoff", "32s")
	v.SetDefault("http.backoffMultiplier", 2.0)

	// Prompt size guard (~32k chars at 4 chars/token)
	v.SetDefault("prompt.maxTokens", 8000)

	// Logging defaults
	v.SetDefault("logging.enabled", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "human")
	v.SetDefault("logging.redactAPIKeys", true)

	// Metrics defaults
	v.SetDefault("metrics.enabled", false)
}
