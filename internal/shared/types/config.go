package types

// Config represents the application configuration that can be loaded from a file.
type Config struct {
	ListenAddr         string `json:"listen_addr" yaml:"listen_addr" toml:"listen_addr"`
	AWSProfile         string `json:"aws_profile" yaml:"aws_profile" toml:"aws_profile"`
	AWSRegion          string `json:"aws_region" yaml:"aws_region" toml:"aws_region"`
	MaxSpanDays        int    `json:"max_span_days" yaml:"max_span_days" toml:"max_span_days"`
	HourlyLookbackDays int    `json:"hourly_lookback_days" yaml:"hourly_lookback_days" toml:"hourly_lookback_days"`
	MaxDaysPerQuery    int    `json:"max_days_per_query" yaml:"max_days_per_query" toml:"max_days_per_query"`
	BackendTimeout     int    `json:"backend_timeout" yaml:"backend_timeout" toml:"backend_timeout"`
	MaxRetries         int    `json:"max_retries" yaml:"max_retries" toml:"max_retries"`
	DefaultCurrency    string `json:"default_currency" yaml:"default_currency" toml:"default_currency"`
	ExportDir          string `json:"export_dir" yaml:"export_dir" toml:"export_dir"`
}

// DefaultConfig returns the configuration used when no file or flag overrides it.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:         ":8000",
		AWSProfile:         "default",
		AWSRegion:          "us-east-1",
		MaxSpanDays:        365,
		HourlyLookbackDays: 14,
		MaxDaysPerQuery:    90,
		BackendTimeout:     30,
		MaxRetries:         3,
		DefaultCurrency:    "USD",
		ExportDir:          ".",
	}
}

// Merge overlays non-zero fields from other on top of c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.ListenAddr != "" {
		c.ListenAddr = other.ListenAddr
	}
	if other.AWSProfile != "" {
		c.AWSProfile = other.AWSProfile
	}
	if other.AWSRegion != "" {
		c.AWSRegion = other.AWSRegion
	}
	if other.MaxSpanDays > 0 {
		c.MaxSpanDays = other.MaxSpanDays
	}
	if other.HourlyLookbackDays > 0 {
		c.HourlyLookbackDays = other.HourlyLookbackDays
	}
	if other.MaxDaysPerQuery > 0 {
		c.MaxDaysPerQuery = other.MaxDaysPerQuery
	}
	if other.BackendTimeout > 0 {
		c.BackendTimeout = other.BackendTimeout
	}
	if other.MaxRetries > 0 {
		c.MaxRetries = other.MaxRetries
	}
	if other.DefaultCurrency != "" {
		c.DefaultCurrency = other.DefaultCurrency
	}
	if other.ExportDir != "" {
		c.ExportDir = other.ExportDir
	}
}
