package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Agent() AgentConfig
	LLM() LLMConfig
	Archive() ArchiveConfig

	// Setters used by CLI flag overrides.
	SetBrowserHeadless(bool)
	SetBrowserStartURL(string)
	SetAgentMode(Mode)
	SetAgentVocabulary(string)
	SetAgentMaxTurns(int)
	SetLLMModel(string)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	BrowserCfg BrowserConfig `mapstructure:"browser" yaml:"browser"`
	AgentCfg   AgentConfig   `mapstructure:"agent" yaml:"agent"`
	LLMCfg     LLMConfig     `mapstructure:"llm" yaml:"llm"`
	ArchiveCfg ArchiveConfig `mapstructure:"archive" yaml:"archive"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig   { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig { return c.BrowserCfg }
func (c *Config) Agent() AgentConfig     { return c.AgentCfg }
func (c *Config) LLM() LLMConfig         { return c.LLMCfg }
func (c *Config) Archive() ArchiveConfig { return c.ArchiveCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetBrowserHeadless(b bool)   { c.BrowserCfg.Headless = b }
func (c *Config) SetBrowserStartURL(u string) { c.BrowserCfg.StartURL = u }
func (c *Config) SetAgentMode(m Mode)         { c.AgentCfg.Mode = m }
func (c *Config) SetAgentVocabulary(v string) { c.AgentCfg.Vocabulary = v }
func (c *Config) SetAgentMaxTurns(n int)      { c.AgentCfg.MaxTurns = n }
func (c *Config) SetLLMModel(m string)        { c.LLMCfg.Model = m }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig configures the headless browser the agent drives.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	DisableGPU        bool          `mapstructure:"disable_gpu" yaml:"disable_gpu"`
	IgnoreTLSErrors   bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	ExecPath          string        `mapstructure:"exec_path" yaml:"exec_path"`
	Args              []string      `mapstructure:"args" yaml:"args"`
	ViewportWidth     int           `mapstructure:"viewport_width" yaml:"viewport_width"`
	ViewportHeight    int           `mapstructure:"viewport_height" yaml:"viewport_height"`
	UseCursor         bool          `mapstructure:"use_cursor" yaml:"use_cursor"`
	StartURL          string        `mapstructure:"start_url" yaml:"start_url"`
	ActionTimeout     time.Duration `mapstructure:"action_timeout" yaml:"action_timeout"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	// SettleDelay is waited after each state-changing action before the screenshot.
	SettleDelay time.Duration `mapstructure:"settle_delay" yaml:"settle_delay"`
}

// Mode selects which agent loop drives the browser.
type Mode string

const (
	ModeDSL   Mode = "dsl"
	ModeTools Mode = "tools"
)

// AgentConfig configures the sampling loops and the dispatcher.
type AgentConfig struct {
	Mode             Mode          `mapstructure:"mode" yaml:"mode"`
	Vocabulary       string        `mapstructure:"vocabulary" yaml:"vocabulary"`
	ImageRetention   int           `mapstructure:"image_retention" yaml:"image_retention"`
	TypingGroupSize  int           `mapstructure:"typing_group_size" yaml:"typing_group_size"`
	TypingRate       float64       `mapstructure:"typing_rate" yaml:"typing_rate"`
	ScrollMultiplier int           `mapstructure:"scroll_multiplier" yaml:"scroll_multiplier"`
	DSLScrollStep    int           `mapstructure:"dsl_scroll_step" yaml:"dsl_scroll_step"`
	DSLWaitUnits     float64       `mapstructure:"dsl_wait_units" yaml:"dsl_wait_units"`
	TimeUnit         time.Duration `mapstructure:"time_unit" yaml:"time_unit"`
	StrictParse      bool          `mapstructure:"strict_parse" yaml:"strict_parse"`
	// MaxTurns bounds the number of model calls per run; 0 means unlimited.
	MaxTurns int `mapstructure:"max_turns" yaml:"max_turns"`
}

// Supported model providers.
const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// LLMConfig holds the model endpoint used by the active loop.
type LLMConfig struct {
	Provider         string        `mapstructure:"provider" yaml:"provider"`
	Model            string        `mapstructure:"model" yaml:"model"`
	APIKey           string        `mapstructure:"api_key" yaml:"api_key"`
	Endpoint         string        `mapstructure:"endpoint" yaml:"endpoint"`
	MaxTokens        int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature      float64       `mapstructure:"temperature" yaml:"temperature"`
	FrequencyPenalty float64       `mapstructure:"frequency_penalty" yaml:"frequency_penalty"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// ArchiveConfig controls where finished transcripts are kept.
type ArchiveConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	DatabaseURL string `mapstructure:"database_url" yaml:"database_url"`
	ExportDir   string `mapstructure:"export_dir" yaml:"export_dir"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "webpilot")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.disable_gpu", true)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.viewport_width", 1280)
	v.SetDefault("browser.viewport_height", 800)
	v.SetDefault("browser.use_cursor", true)
	v.SetDefault("browser.start_url", "https://www.google.com")
	v.SetDefault("browser.action_timeout", "10s")
	v.SetDefault("browser.navigation_timeout", "45s")
	v.SetDefault("browser.settle_delay", "2s")

	// -- Agent --
	v.SetDefault("agent.mode", string(ModeDSL))
	v.SetDefault("agent.vocabulary", "v1")
	v.SetDefault("agent.image_retention", 5)
	v.SetDefault("agent.typing_group_size", 50)
	v.SetDefault("agent.typing_rate", 0)
	v.SetDefault("agent.scroll_multiplier", 500)
	v.SetDefault("agent.dsl_scroll_step", 100)
	v.SetDefault("agent.dsl_wait_units", 5)
	v.SetDefault("agent.time_unit", "1s")
	v.SetDefault("agent.strict_parse", false)
	v.SetDefault("agent.max_turns", 0)

	// -- LLM --
	v.SetDefault("llm.provider", ProviderOpenAI)
	v.SetDefault("llm.model", "ui-tars")
	v.SetDefault("llm.max_tokens", 1000)
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.frequency_penalty", 1.0)
	v.SetDefault("llm.request_timeout", "2m")

	// -- Archive --
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.export_dir", "")
}

// NewConfigFromViper unmarshals and validates a configuration from a viper instance.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data
	_ = v.BindEnv("llm.api_key", "WEBPILOT_LLM_API_KEY")
	_ = v.BindEnv("archive.database_url", "WEBPILOT_DATABASE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.BrowserCfg.ViewportWidth <= 0 || c.BrowserCfg.ViewportHeight <= 0 {
		return fmt.Errorf("browser.viewport_width and browser.viewport_height must be positive integers")
	}
	switch c.AgentCfg.Mode {
	case ModeDSL, ModeTools:
	default:
		return fmt.Errorf("agent.mode must be one of 'dsl' or 'tools', got %q", c.AgentCfg.Mode)
	}
	if c.AgentCfg.ImageRetention <= 0 {
		return fmt.Errorf("agent.image_retention must be a positive integer")
	}
	if c.AgentCfg.TypingGroupSize <= 0 {
		return fmt.Errorf("agent.typing_group_size must be a positive integer")
	}
	if c.AgentCfg.ScrollMultiplier <= 0 {
		return fmt.Errorf("agent.scroll_multiplier must be a positive integer")
	}
	if c.AgentCfg.TypingRate < 0 {
		return fmt.Errorf("agent.typing_rate must not be negative")
	}
	if c.AgentCfg.TimeUnit < 0 {
		return fmt.Errorf("agent.time_unit must not be negative")
	}
	if c.AgentCfg.MaxTurns < 0 {
		return fmt.Errorf("agent.max_turns must not be negative")
	}
	if err := c.LLMCfg.Validate(); err != nil {
		return fmt.Errorf("llm configuration invalid: %w", err)
	}
	if c.ArchiveCfg.Enabled && c.ArchiveCfg.DatabaseURL == "" {
		return fmt.Errorf("archive.database_url is required when archive.enabled is true")
	}
	return nil
}

// Validate checks the LLM configuration.
func (l *LLMConfig) Validate() error {
	switch strings.ToLower(l.Provider) {
	case ProviderOpenAI, ProviderGemini, ProviderAnthropic:
	default:
		return fmt.Errorf("llm.provider must be one of 'openai', 'gemini' or 'anthropic', got %q", l.Provider)
	}
	if l.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if l.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be a positive integer")
	}
	return nil
}
