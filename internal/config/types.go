package config

import "time"

// Task is one remote action a wallet completes once. Message is the phrase
// that precedes "<address> at <timestamp>" in the signed payload.
type Task struct {
	ID      string `yaml:"id"`
	Title   string `yaml:"title"`
	Message string `yaml:"message"`
}

// ProofTaskID is the task gated behind proof submission and card generation.
const ProofTaskID = "proof-submission"

// RequestConfig controls the resilient request client.
type RequestConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	Timeout        time.Duration `yaml:"timeout"`
	RateLimitDelay time.Duration `yaml:"rate_limit_delay"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
}

// APIConfig holds the upstream base URLs. Tests point all three at one fake server.
type APIConfig struct {
	ReferralURL  string `yaml:"referral_url"`
	DashboardURL string `yaml:"dashboard_url"`
	CardURL      string `yaml:"card_url"`
}

// Config represents the .lightnode/config.yaml file.
type Config struct {
	RefCode     string        `yaml:"ref_code"`
	Concurrency int           `yaml:"concurrency"`
	Interval    time.Duration `yaml:"interval"`
	TaskDelay   time.Duration `yaml:"task_delay"`
	LogLevel    string        `yaml:"log_level"`
	Request     RequestConfig `yaml:"request"`
	API         APIConfig     `yaml:"api"`
	Tasks       []Task        `yaml:"tasks"`
}

// Wallet is one entry of .lightnode/wallets.json.
type Wallet struct {
	Address    string `json:"address"`
	PrivateKey string `json:"privateKey"`
}
