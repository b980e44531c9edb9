// Package config provides static configuration for thermarun.
//
// Thermal thresholds arrive on the command line and are validated exactly
// once, before any child process exists. The sensor tables, event sinks, and
// logging settings come from an optional JSON file; only the logging section
// is hot-reloadable, everything thermal is immutable for the process lifetime.
package config

import (
	"fmt"
	"time"

	"thermarun/internal/logger"
	"thermarun/internal/sensors"
)

// Fixed safety limits for the thermal thresholds.
const (
	// MaxHotThreshold is the ceiling for the hot threshold: supervising a
	// machine allowed to pass 90°C is not protection.
	MaxHotThreshold = 90.0
	// MinCoolThreshold is the floor for the cool threshold: resuming only
	// below 30°C would keep most machines suspended forever.
	MinCoolThreshold = 30.0
)

// Thresholds are the validated thermal limits, immutable after validation.
type Thresholds struct {
	Hot  float64
	Cool float64
}

// ValidationError reports an invalid configuration value. It is fatal before
// any child is spawned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewThresholds validates the thermal limits: hot ≤ 90, cool ≥ 30,
// hot ≥ cool. Checked here once and never re-validated.
func NewThresholds(hot, cool float64) (Thresholds, error) {
	if hot > MaxHotThreshold {
		return Thresholds{}, &ValidationError{
			Field:  "hot threshold",
			Reason: fmt.Sprintf("%g must not exceed %g", hot, MaxHotThreshold),
		}
	}
	if cool < MinCoolThreshold {
		return Thresholds{}, &ValidationError{
			Field:  "cool threshold",
			Reason: fmt.Sprintf("%g must be at least %g", cool, MinCoolThreshold),
		}
	}
	if hot < cool {
		return Thresholds{}, &ValidationError{
			Field:  "thresholds",
			Reason: fmt.Sprintf("hot %g must not be less than cool %g", hot, cool),
		}
	}
	return Thresholds{Hot: hot, Cool: cool}, nil
}

// Config is the root configuration structure.
type Config struct {
	// Backend selects the sensor backend: "hwmon" (default) or "gopsutil".
	Backend string `json:"Backend"`

	// TemperatureFeatures are the monitored temperature channels.
	TemperatureFeatures []sensors.FeatureSpec `json:"TemperatureFeatures"`
	// FanFeatures are read for diagnostics only.
	FanFeatures []sensors.FeatureSpec `json:"FanFeatures"`

	Intervals IntervalsConfig `json:"Intervals"`
	Events    EventsConfig    `json:"Events"`
	Logging   logger.Config   `json:"Logging"`
}

// IntervalsConfig holds the loop cadence. HotPoll must stay the longer one:
// a suspended child gives no urgency to re-check, a running one does.
type IntervalsConfig struct {
	HotPoll   time.Duration `json:"HotPoll"`
	CoolPoll  time.Duration `json:"CoolPoll"`
	FanReport time.Duration `json:"FanReport"`
}

// EventsConfig configures the optional event sinks. The numbered stdout
// protocol is unconditional and not configured here.
type EventsConfig struct {
	File  FileSinkConfig  `json:"File"`
	Kafka KafkaSinkConfig `json:"Kafka"`
	Redis RedisSinkConfig `json:"Redis"`

	SOCKSProxy SOCKSConfig `json:"SocksProxy"`
}

// FileSinkConfig mirrors events to a rotating JSON-lines file.
type FileSinkConfig struct {
	Enabled    bool   `json:"Enabled"`
	FilePath   string `json:"FilePath"`
	MaxSizeMB  int    `json:"MaxSizeMB"`
	MaxBackups int    `json:"MaxBackups"`
}

// KafkaSinkConfig publishes events to a Kafka topic.
type KafkaSinkConfig struct {
	Enabled       bool          `json:"Enabled"`
	Brokers       []string      `json:"Brokers"`
	Topic         string        `json:"Topic"`
	Compression   string        `json:"Compression"`
	RequiredAcks  int           `json:"RequiredAcks"`
	Timeout       time.Duration `json:"Timeout"`
	EnableTLS     bool          `json:"EnableTLS"`
	TLSCAFile     string        `json:"TLSCAFile"`
	SASLEnabled   bool          `json:"SASLEnabled"`
	SASLMechanism string        `json:"SASLMechanism"`
	SASLUser      string        `json:"SASLUser"`
	SASLPassword  string        `json:"SASLPassword"`
}

// RedisSinkConfig appends events to a bounded Redis list.
type RedisSinkConfig struct {
	Enabled  bool   `json:"Enabled"`
	Addr     string `json:"Addr"`
	Password string `json:"Password"`
	DB       int    `json:"DB"`
	Key      string `json:"Key"`
	MaxLen   int64  `json:"MaxLen"`
}

// SOCKSConfig contains SOCKS5 proxy settings for the kafka and redis sinks.
type SOCKSConfig struct {
	Host string `json:"Host"`
	Port int    `json:"Port"`
}

// DefaultConfig returns the reference hardware tables and cadences.
func DefaultConfig() *Config {
	return &Config{
		Backend: "hwmon",
		TemperatureFeatures: []sensors.FeatureSpec{
			{Chip: "coretemp-isa-0000", Feature: "temp2"},
			{Chip: "coretemp-isa-0000", Feature: "temp3"},
			{Chip: "coretemp-isa-0000", Feature: "temp4"},
			{Chip: "coretemp-isa-0000", Feature: "temp5"},
			{Chip: "coretemp-isa-0000", Feature: "temp6"},
			{Chip: "coretemp-isa-0000", Feature: "temp7"},
		},
		FanFeatures: []sensors.FeatureSpec{
			{Chip: "nct6776-isa-0290", Feature: "fan1"},
			{Chip: "nct6776-isa-0290", Feature: "fan2"},
		},
		Intervals: IntervalsConfig{
			HotPoll:   1 * time.Second,
			CoolPoll:  100 * time.Millisecond,
			FanReport: 30 * time.Second,
		},
		Events: EventsConfig{
			File: FileSinkConfig{
				FilePath:   "log/thermarun/events.jsonl",
				MaxSizeMB:  10,
				MaxBackups: 3,
			},
			Kafka: KafkaSinkConfig{
				Brokers:      []string{"localhost:9092"},
				Topic:        "thermal-events",
				Compression:  "snappy",
				RequiredAcks: 1,
				Timeout:      10 * time.Second,
			},
			Redis: RedisSinkConfig{
				Addr:   "localhost:6379",
				Key:    "thermarun:events",
				MaxLen: 1000,
			},
		},
		Logging: logger.DefaultConfig(),
	}
}

// Validate checks everything not covered by NewThresholds.
func (c *Config) Validate() error {
	if len(c.TemperatureFeatures) == 0 {
		return &ValidationError{Field: "TemperatureFeatures", Reason: "at least one temperature channel is required"}
	}
	if c.Intervals.HotPoll <= 0 || c.Intervals.CoolPoll <= 0 {
		return &ValidationError{Field: "Intervals", Reason: "poll intervals must be positive"}
	}
	if c.Intervals.HotPoll < c.Intervals.CoolPoll {
		return &ValidationError{Field: "Intervals", Reason: "HotPoll must not be shorter than CoolPoll"}
	}
	return nil
}
