package config

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DirName is the per-project directory holding config, wallets, proxies and state.
const DirName = ".lightnode"

// File names inside DirName.
const (
	ConfigFile  = "config.yaml"
	EnvFile     = ".env"
	WalletsFile = "wallets.json"
	ProxiesFile = "proxies.txt"
	StateFile   = "state.json"
)

// Default values for Config.
const (
	DefaultRefCode        = "cvIwhX0T"
	DefaultConcurrency    = 5
	DefaultInterval       = time.Hour
	DefaultTaskDelay      = time.Second
	DefaultLogLevel       = "info"
	DefaultMaxAttempts    = 20
	DefaultTimeout        = 60 * time.Second
	DefaultRateLimitDelay = 60 * time.Second
	DefaultRetryDelay     = 2 * time.Second

	DefaultReferralURL  = "https://referralapi.layeredge.io/api"
	DefaultDashboardURL = "https://dashboard.layeredge.io"
	DefaultCardURL      = "https://staging-referralapi.layeredge.io/api"
)

// Environment overrides, applied after config.yaml and .env.
const (
	EnvRefCode     = "LIGHTNODE_REF_CODE"
	EnvConcurrency = "LIGHTNODE_CONCURRENCY"
	EnvMaxAttempts = "LIGHTNODE_MAX_ATTEMPTS"
	EnvLogLevel    = "LIGHTNODE_LOG_LEVEL"
)

// DefaultTasks returns the task sequence used when config.yaml lists none.
func DefaultTasks() []Task {
	return []Task{
		{
			ID:      ProofTaskID,
			Title:   "Submit Proof",
			Message: "I am claiming my proof submission node points for",
		},
		{
			ID:      "light-node-run-100-hours",
			Title:   "Run Light Node 100 Hours",
			Message: "I am claiming my light node run task node points for",
		},
	}
}

// DefaultRequestConfig returns the request policy of the upstream client.
func DefaultRequestConfig() RequestConfig {
	return RequestConfig{
		MaxAttempts:    DefaultMaxAttempts,
		Timeout:        DefaultTimeout,
		RateLimitDelay: DefaultRateLimitDelay,
		RetryDelay:     DefaultRetryDelay,
	}
}

// DefaultAPIConfig returns the production endpoints.
func DefaultAPIConfig() APIConfig {
	return APIConfig{
		ReferralURL:  DefaultReferralURL,
		DashboardURL: DefaultDashboardURL,
		CardURL:      DefaultCardURL,
	}
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		RefCode:     DefaultRefCode,
		Concurrency: DefaultConcurrency,
		Interval:    DefaultInterval,
		TaskDelay:   DefaultTaskDelay,
		LogLevel:    DefaultLogLevel,
		Request:     DefaultRequestConfig(),
		API:         DefaultAPIConfig(),
		Tasks:       DefaultTasks(),
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// Dir returns the lightnode directory under basePath.
func Dir(basePath string) string {
	return filepath.Join(basePath, DirName)
}

// LoadConfig reads .lightnode/config.yaml, then .lightnode/.env, then the
// process environment, each layer overriding the previous one.
// A missing config.yaml yields the defaults.
func LoadConfig(basePath string) (*Config, error) {
	return loadConfig(basePath, os.LookupEnv)
}

func loadConfig(basePath string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filepath.Join(Dir(basePath), ConfigFile))
	switch {
	case err == nil:
		// Unmarshal into a fresh slice so a configured list replaces the defaults.
		cfg.Tasks = nil
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		if len(cfg.Tasks) == 0 {
			cfg.Tasks = DefaultTasks()
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	env, err := LoadEnvFile(basePath)
	if err != nil {
		return nil, err
	}
	get := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := env[key]
		return v, ok
	}
	if err := applyEnv(&cfg, get); err != nil {
		return nil, err
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config, get func(string) (string, bool)) error {
	if v, ok := get(EnvRefCode); ok && strings.TrimSpace(v) != "" {
		cfg.RefCode = strings.TrimSpace(v)
	}
	if v, ok := get(EnvConcurrency); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return ValidationError{Field: EnvConcurrency, Message: "must be an integer"}
		}
		cfg.Concurrency = n
	}
	if v, ok := get(EnvMaxAttempts); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return ValidationError{Field: EnvMaxAttempts, Message: "must be an integer"}
		}
		cfg.Request.MaxAttempts = n
	}
	if v, ok := get(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	return nil
}

// ValidateConfig checks that all config values are valid.
func ValidateConfig(cfg *Config) error {
	if cfg.RefCode == "" {
		return ValidationError{Field: "ref_code", Message: "required field is empty"}
	}
	if cfg.Concurrency <= 0 {
		return ValidationError{Field: "concurrency", Message: "must be positive"}
	}
	if cfg.Interval <= 0 {
		return ValidationError{Field: "interval", Message: "must be positive"}
	}
	if cfg.TaskDelay < 0 {
		return ValidationError{Field: "task_delay", Message: "must not be negative"}
	}
	if cfg.Request.MaxAttempts <= 0 {
		return ValidationError{Field: "request.max_attempts", Message: "must be positive"}
	}
	if cfg.Request.Timeout <= 0 {
		return ValidationError{Field: "request.timeout", Message: "must be positive"}
	}
	if cfg.Request.RateLimitDelay < 0 {
		return ValidationError{Field: "request.rate_limit_delay", Message: "must not be negative"}
	}
	if cfg.Request.RetryDelay < 0 {
		return ValidationError{Field: "request.retry_delay", Message: "must not be negative"}
	}

	for field, raw := range map[string]string{
		"api.referral_url":  cfg.API.ReferralURL,
		"api.dashboard_url": cfg.API.DashboardURL,
		"api.card_url":      cfg.API.CardURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return ValidationError{Field: field, Message: "must be an absolute URL"}
		}
	}

	seen := make(map[string]bool, len(cfg.Tasks))
	for i, task := range cfg.Tasks {
		if task.ID == "" {
			return ValidationError{Field: fmt.Sprintf("tasks[%d].id", i), Message: "required field is empty"}
		}
		if seen[task.ID] {
			return ValidationError{Field: fmt.Sprintf("tasks[%d].id", i), Message: "duplicate task id " + task.ID}
		}
		seen[task.ID] = true
	}
	return nil
}

// LoadEnvFile parses .lightnode/.env. A missing file yields an empty map.
func LoadEnvFile(basePath string) (map[string]string, error) {
	envPath := filepath.Join(Dir(basePath), EnvFile)

	env, err := godotenv.Read(envPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}
	return env, nil
}

// LoadWallets reads .lightnode/wallets.json.
// A missing file yields an empty list.
func LoadWallets(basePath string) ([]Wallet, error) {
	data, err := os.ReadFile(filepath.Join(Dir(basePath), WalletsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []Wallet{}, nil
		}
		return nil, fmt.Errorf("failed to read wallets file: %w", err)
	}

	var wallets []Wallet
	if err := json.Unmarshal(data, &wallets); err != nil {
		return nil, fmt.Errorf("failed to parse wallets file: %w", err)
	}
	for i, w := range wallets {
		if strings.TrimSpace(w.PrivateKey) == "" {
			return nil, ValidationError{Field: fmt.Sprintf("wallets[%d].privateKey", i), Message: "required field is empty"}
		}
	}
	return wallets, nil
}

// SaveWallets writes wallets to .lightnode/wallets.json with owner-only permissions.
func SaveWallets(basePath string, wallets []Wallet) error {
	if err := os.MkdirAll(Dir(basePath), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(wallets, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal wallets: %w", err)
	}
	if err := os.WriteFile(filepath.Join(Dir(basePath), WalletsFile), data, 0o600); err != nil {
		return fmt.Errorf("failed to write wallets file: %w", err)
	}
	return nil
}

// LoadProxies reads .lightnode/proxies.txt, one proxy per line.
// Empty lines and lines starting with # are skipped. A missing file yields no proxies.
func LoadProxies(basePath string) ([]string, error) {
	file, err := os.Open(filepath.Join(Dir(basePath), ProxiesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to open proxies file: %w", err)
	}
	defer file.Close()

	proxies := []string{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		proxies = append(proxies, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read proxies file: %w", err)
	}
	return proxies, nil
}
