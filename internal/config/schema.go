package config

// Config holds searchify configuration.
// Loaded from ./config.yaml or ~/.searchify/config.yaml, with SEARCHIFY_*
// environment variables and CLI flags layered on top.
type Config struct {
	Service ServiceCfg `mapstructure:"service" yaml:"service"`
	Polling PollingCfg `mapstructure:"polling" yaml:"polling"`
	Logging LoggingCfg `mapstructure:"logging" yaml:"logging"`
}

// ServiceCfg configures the Document Intelligence endpoint.
type ServiceCfg struct {
	Endpoint       string `mapstructure:"endpoint" yaml:"endpoint"`
	Key            string `mapstructure:"key" yaml:"key"` // supports ${ENV_VAR} syntax
	APIVersion     string `mapstructure:"api_version" yaml:"api_version"`
	ModelID        string `mapstructure:"model_id" yaml:"model_id"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// PollingCfg configures the status poll loop.
type PollingCfg struct {
	IntervalSeconds int `mapstructure:"interval_seconds" yaml:"interval_seconds"`
	MaxAttempts     int `mapstructure:"max_attempts" yaml:"max_attempts"`
}

// LoggingCfg configures the process logger.
type LoggingCfg struct {
	Level string `mapstructure:"level" yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns configuration with sensible defaults. Endpoint and
// key have no defaults; they come from flags, env, or the config file.
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceCfg{
			Key:            "${AZURE_DI_KEY}",
			APIVersion:     "2024-11-30",
			ModelID:        "prebuilt-read",
			TimeoutSeconds: 60,
		},
		Polling: PollingCfg{
			IntervalSeconds: 5,
			MaxAttempts:     60,
		},
		Logging: LoggingCfg{
			Level: "info",
		},
	}
}
